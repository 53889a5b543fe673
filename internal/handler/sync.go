package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"printflow/internal/apierror"
	syncsvc "printflow/internal/sync"
)

type SyncHandler struct{ svc *syncsvc.Service }

func NewSyncHandler(svc *syncsvc.Service) *SyncHandler { return &SyncHandler{svc: svc} }

// Trigger godoc
// @Summary      Disparar ciclo de sincronización
// @Description  Corre un ciclo completo contra el ERP: trae facturas nuevas, las clasifica y crea órdenes. Rechaza el pedido si ya hay un ciclo en vuelo.
// @Tags         sync
// @Produce      json
// @Success      200  {object} sync.Resultado
// @Failure      409  {object} apierror.APIError
// @Failure      502  {object} apierror.APIError
// @Router       /v1/sync [post]
func (h *SyncHandler) Trigger(c *gin.Context) {
	res, err := h.svc.RunCycle(c.Request.Context())
	if err != nil {
		if errors.Is(err, syncsvc.ErrCicloEnCurso) {
			c.JSON(http.StatusConflict, apierror.New("Ya hay un ciclo de sincronización en curso"))
			return
		}
		c.JSON(http.StatusBadGateway, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, res)
}

// Estado godoc
// @Summary      Estado del sincronizador
// @Description  Informa si hay un ciclo en vuelo y el resumen del último ciclo terminado.
// @Tags         sync
// @Produce      json
// @Success      200  {object} map[string]interface{}
// @Router       /v1/sync/estado [get]
func (h *SyncHandler) Estado(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"ocupado": h.svc.Ocupado(),
		"ultimo":  h.svc.UltimoResultado(),
	})
}
