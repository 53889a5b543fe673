package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"printflow/internal/config"
	"printflow/internal/erp"
	"printflow/internal/filestore"
	"printflow/internal/infra"
	"printflow/internal/notify"
	"printflow/internal/repository"
	"printflow/internal/router"
	syncsvc "printflow/internal/sync"
	"printflow/internal/worker"
)

func main() {
	// Structured logger — dev: pretty, prod: JSON
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── Infrastructure ───────────────────────────────────────────────────────
	erpClient := erp.NewClient(cfg.ERPAPIURL, time.Duration(cfg.ERPTimeoutSeconds)*time.Second)
	erpCB := infra.NewCircuitBreaker(infra.DefaultCBConfig())
	store := filestore.New(cfg.FileStoragePath, cfg.DriveAPIURL)
	mailer := infra.NewMailer(cfg)
	notifier := notify.New(rdb)

	// ── Repositories ─────────────────────────────────────────────────────────
	areaRepo := repository.NewAreaRepository(db)
	ordenRepo := repository.NewOrdenRepository(db)
	configRepo := repository.NewConfigRepository(db)

	// ── Sync service ─────────────────────────────────────────────────────────
	svc := syncsvc.NewService(erpClient, areaRepo, ordenRepo, configRepo, notifier)

	// Worker pool for async tasks (measurement, operator alerts). Handlers
	// are wired here (composition root) so the pool has full access to all
	// infrastructure dependencies.
	dispatcher := worker.NewDispatcher(rdb)
	workerHandlers := &worker.WorkerHandlers{
		Medicion: worker.NewMedicionWorker(ordenRepo, store, notifier),
		Email:    worker.NewEmailWorker(mailer),
	}
	worker.StartWorkerPool(ctx, rdb, workerHandlers, cfg.WorkerPoolSize)

	worker.StartSyncCron(ctx, worker.SyncCronConfig{
		Service:    svc,
		CB:         erpCB,
		Dispatcher: dispatcher,
		AlertEmail: cfg.AlertEmail,
		Interval:   time.Duration(cfg.SyncIntervalMinutes) * time.Minute,
	})

	r := router.New(cfg, db, rdb, erpCB, svc, dispatcher)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("printflow backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
