package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GUSGUS33/crm-merchandising-sub001/internal/config"
	"github.com/GUSGUS33/crm-merchandising-sub001/internal/infra"
	"github.com/GUSGUS33/crm-merchandising-sub001/internal/repository"
	"github.com/GUSGUS33/crm-merchandising-sub001/internal/router"
	"github.com/GUSGUS33/crm-merchandising-sub001/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
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
	if err := infra.RunMigrations(db); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	// Webhook notifier — nil when WEBHOOK_URL is unset; the breaker keeps a
	// downed receiver from slowing workers and request handlers.
	notifier := infra.NewNotifier(cfg.WebhookURL)
	webhookCB := infra.NewCircuitBreaker(infra.DefaultCBConfig())

	// Async pipeline: PDF render + outbound email. Handlers are wired here
	// (composition root) so the pool has full access to infrastructure.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mailer := infra.NewMailer(cfg)
	dispatcher := worker.NewDispatcher(rdb)
	presupuestoRepo := repository.NewPresupuestoRepository(db)
	mensajeRepo := repository.NewMensajeRepository(db)
	clienteRepo := repository.NewClienteRepository(db)

	workerHandlers := &worker.WorkerHandlers{
		PDF:   worker.NewPDFWorker(presupuestoRepo, dispatcher, rdb, cfg.PDFStoragePath),
		Email: worker.NewEmailWorker(mailer, mensajeRepo, clienteRepo, notifier, webhookCB),
	}
	worker.StartWorkerPool(ctx, rdb, workerHandlers, cfg.WorkerPoolSize)
	go worker.StartRetryCron(ctx, rdb, mensajeRepo, dispatcher)

	r := router.New(cfg, db, rdb, notifier, webhookCB, dispatcher)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("CRM backend listening on :%d", cfg.Port)
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
