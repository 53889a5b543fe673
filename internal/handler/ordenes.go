package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"printflow/internal/apierror"
	"printflow/internal/infra"
	"printflow/internal/repository"
	"printflow/internal/worker"
)

// MedirRequest encola órdenes para (re)medición de sus archivos.
type MedirRequest struct {
	OrdenIDs   []string `json:"orden_ids" validate:"required,min=1,dive,uuid4"`
	Reprocesar bool     `json:"reprocesar"`
}

type OrdenesHandler struct {
	repo        repository.OrdenRepository
	dispatcher  *worker.Dispatcher
	storagePath string
}

func NewOrdenesHandler(repo repository.OrdenRepository, dispatcher *worker.Dispatcher, storagePath string) *OrdenesHandler {
	return &OrdenesHandler{repo: repo, dispatcher: dispatcher, storagePath: storagePath}
}

// Medir godoc
// @Summary      Encolar medición de órdenes
// @Description  Encola la medición de los archivos de producción de las órdenes indicadas. Responde de inmediato; el resultado se observa por el canal de notificaciones. Con reprocesar=true se limpian las mediciones confirmadas antes de volver a medir.
// @Tags         ordenes
// @Accept       json
// @Produce      json
// @Param        body body MedirRequest true "IDs de órdenes a medir"
// @Success      202  {object} map[string]interface{}
// @Failure      400  {object} apierror.APIError
// @Router       /v1/ordenes/medir [post]
func (h *OrdenesHandler) Medir(c *gin.Context) {
	var req MedirRequest
	if !bindAndValidate(c, &req) {
		return
	}

	job := worker.MedicionJobPayload{OrdenIDs: req.OrdenIDs, Reprocesar: req.Reprocesar}
	if err := h.dispatcher.EnqueueMedicion(c.Request.Context(), job); err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("No se pudo encolar la medición"))
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"encoladas": len(req.OrdenIDs)})
}

// Ficha godoc
// @Summary      Ficha de orden en PDF
// @Description  Genera y devuelve la ficha de trabajo de la orden.
// @Tags         ordenes
// @Produce      application/pdf
// @Param        id   path  string  true  "UUID de la orden"
// @Success      200  {file} file
// @Failure      400  {object} apierror.APIError
// @Failure      404  {object} apierror.APIError
// @Router       /v1/ordenes/{id}/ficha [get]
func (h *OrdenesHandler) Ficha(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}

	orden, err := h.repo.FindByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New("Orden no encontrada"))
		return
	}

	path, err := infra.GenerateFichaPDF(orden, h.storagePath)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("No se pudo generar la ficha"))
		return
	}
	c.FileAttachment(path, "ficha_"+orden.NroDoc+".pdf")
}
