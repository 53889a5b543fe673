package worker

// sync_cron.go
// Goroutine de fondo que dispara el ciclo de sync cada intervalo, pasando
// por el circuit breaker del ERP para no martillar un upstream caído.
// Un tick que cae mientras otro ciclo sigue en vuelo se descarta (el ciclo
// mismo lo rechaza con ErrCicloEnCurso).

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"printflow/internal/infra"
	syncsvc "printflow/internal/sync"
)

// SyncCronConfig holds all dependencies for the sync goroutine.
type SyncCronConfig struct {
	Service    *syncsvc.Service
	CB         *infra.CircuitBreaker
	Dispatcher *Dispatcher
	AlertEmail string
	Interval   time.Duration
}

// StartSyncCron launches a background goroutine that ticks every Interval and
// runs a sync cycle through the CB. It respects the context for graceful
// shutdown.
func StartSyncCron(ctx context.Context, cfg SyncCronConfig) {
	if cfg.Interval <= 0 {
		cfg.Interval = 10 * time.Minute
	}
	go func() {
		ticker := time.NewTicker(cfg.Interval)
		defer ticker.Stop()

		log.Info().Dur("interval", cfg.Interval).Msg("sync_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("sync_cron: shutting down")
				return
			case <-ticker.C:
				runSyncTick(ctx, cfg)
			}
		}
	}()
}

func runSyncTick(ctx context.Context, cfg SyncCronConfig) {
	if cfg.CB.State() == infra.CBOpen {
		log.Debug().Msg("sync_cron: circuit breaker is open, skipping tick")
		return
	}

	var res *syncsvc.Resultado
	ocupado := false
	cbErr := cfg.CB.Execute(func() error {
		r, err := cfg.Service.RunCycle(ctx)
		if errors.Is(err, syncsvc.ErrCicloEnCurso) {
			// Un ciclo en vuelo no dice nada de la salud del ERP: el tick
			// se descarta sin contar como falla para el breaker.
			ocupado = true
			return nil
		}
		if err != nil {
			return err
		}
		res = r
		return nil
	})

	if ocupado {
		log.Debug().Msg("sync_cron: ciclo anterior aún en vuelo, tick descartado")
		return
	}
	if cbErr != nil {
		log.Error().Err(cbErr).Msg("sync_cron: ciclo falló")
		alertarFalla(ctx, cfg, cbErr)
		return
	}

	if res != nil && res.OrdenesCreadas > 0 {
		log.Info().Int("ordenes", res.OrdenesCreadas).Msg("sync_cron: ciclo creó órdenes")
	}
}

// alertarFalla encola un email al operador. Best-effort: si no hay
// destinatario configurado o la cola falla, solo se loguea.
func alertarFalla(ctx context.Context, cfg SyncCronConfig, cause error) {
	if cfg.AlertEmail == "" || cfg.Dispatcher == nil {
		return
	}
	job := EmailJobPayload{
		ToEmail: cfg.AlertEmail,
		Subject: "printflow: falló el ciclo de sincronización",
		Body:    fmt.Sprintf("El ciclo de sync contra el ERP falló:\n\n%v\n\nEl watermark no avanzó; el próximo ciclo reintenta el lote completo.", cause),
	}
	if err := cfg.Dispatcher.EnqueueEmail(ctx, job); err != nil {
		log.Warn().Err(err).Msg("sync_cron: no se pudo encolar la alerta")
	}
}
