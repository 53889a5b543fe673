package worker

// medicion_worker.go
// Procesa jobs de medición de QueueMedicion: para cada orden, mide los
// archivos de producción sin medida confirmada (caja de página PDF o píxeles
// + DPI de imagen), persiste la geometría y recalcula la magnitud agregada
// de la orden. Corre desacoplado del ciclo de sync y del request que lo
// disparó.

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"printflow/internal/filestore"
	"printflow/internal/measure"
	"printflow/internal/model"
	"printflow/internal/notify"
	"printflow/internal/repository"
)

// MedicionJobPayload is the job envelope sent to QueueMedicion.
type MedicionJobPayload struct {
	OrdenIDs   []string `json:"orden_ids"`
	Reprocesar bool     `json:"reprocesar"`
}

// MedicionWorker mide archivos y actualiza magnitudes de órdenes.
type MedicionWorker struct {
	ordenes  repository.OrdenRepository
	store    *filestore.Store
	notifier *notify.Notifier
}

func NewMedicionWorker(ordenes repository.OrdenRepository, store *filestore.Store, notifier *notify.Notifier) *MedicionWorker {
	return &MedicionWorker{ordenes: ordenes, store: store, notifier: notifier}
}

// Process handles a single measurement job. La falla de un archivo se aísla:
// se loguea y se sigue con el resto; la magnitud se recalcula con lo que
// haya confirmado.
func (w *MedicionWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload MedicionJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("medicion_worker: invalid payload")
		return
	}

	actualizadas := 0
	for _, idStr := range payload.OrdenIDs {
		ordenID, err := uuid.Parse(idStr)
		if err != nil {
			log.Error().Str("orden_id", idStr).Msg("medicion_worker: orden_id inválido")
			continue
		}
		if w.procesarOrden(ctx, ordenID, payload.Reprocesar) {
			actualizadas++
			if w.notifier != nil {
				w.notifier.OrdenActualizada(ctx, idStr)
			}
		}
	}

	if actualizadas > 0 && w.notifier != nil {
		w.notifier.OrdenesActualizadas(ctx, actualizadas)
	}
}

func (w *MedicionWorker) procesarOrden(ctx context.Context, ordenID uuid.UUID, reprocesar bool) bool {
	if reprocesar {
		if err := w.ordenes.LimpiarMediciones(ctx, ordenID); err != nil {
			log.Error().Err(err).Str("orden_id", ordenID.String()).Msg("medicion_worker: limpiar mediciones")
			return false
		}
	}

	archivos, err := w.ordenes.ArchivosSinConfirmar(ctx, ordenID)
	if err != nil {
		log.Error().Err(err).Str("orden_id", ordenID.String()).Msg("medicion_worker: listar archivos")
		return false
	}

	medidos := 0
	for i := range archivos {
		if w.medirArchivo(ctx, &archivos[i]) {
			medidos++
		}
	}

	if err := w.recalcularMagnitud(ctx, ordenID); err != nil {
		log.Error().Err(err).Str("orden_id", ordenID.String()).Msg("medicion_worker: recalcular magnitud")
		return medidos > 0
	}

	log.Info().
		Str("orden_id", ordenID.String()).
		Int("archivos_medidos", medidos).
		Int("archivos_pendientes", len(archivos)-medidos).
		Msg("medicion_worker: orden procesada")
	return true
}

// medirArchivo baja los bytes, extrae la geometría y persiste la medición.
// La cantidad medida queda en metros lineales (el alto del archivo).
func (w *MedicionWorker) medirArchivo(ctx context.Context, a *model.ArchivoProduccion) bool {
	data, nuevaRuta, err := w.store.Fetch(ctx, a.Archivo)
	if err != nil {
		log.Warn().Err(err).Str("archivo", a.Archivo).Msg("medicion_worker: no se pudo obtener el archivo")
		return false
	}

	med, err := measure.Medir(data)
	if err != nil {
		log.Warn().Err(err).Str("archivo", a.Archivo).Msg("medicion_worker: no se pudo medir")
		return false
	}

	a.AnchoM = med.AnchoM
	a.AltoM = med.AltoM
	a.Metros = med.AltoM
	a.TipoArchivo = med.Tipo
	a.MedidaConfirmada = true
	if nuevaRuta != "" {
		a.Archivo = nuevaRuta
	}

	if err := w.ordenes.UpdateArchivo(ctx, a); err != nil {
		log.Error().Err(err).Str("archivo_id", a.ID.String()).Msg("medicion_worker: persistir medición")
		return false
	}
	return true
}

// recalcularMagnitud recompone la magnitud de la orden: Σ(metros × copias)
// sobre los archivos no cancelados más Σ(cantidad) de los servicios extra.
func (w *MedicionWorker) recalcularMagnitud(ctx context.Context, ordenID uuid.UUID) error {
	archivos, err := w.ordenes.ArchivosActivos(ctx, ordenID)
	if err != nil {
		return err
	}
	servicios, err := w.ordenes.ServiciosDeOrden(ctx, ordenID)
	if err != nil {
		return err
	}

	total := decimal.Zero
	for _, a := range archivos {
		total = total.Add(decimal.NewFromFloat(a.Metros).Mul(decimal.NewFromInt(int64(a.CantCopias))))
	}
	for _, s := range servicios {
		total = total.Add(s.Cantidad)
	}

	return w.ordenes.UpdateMagnitud(ctx, ordenID, total.Round(4).String())
}
