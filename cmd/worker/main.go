package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/crm-api/config"
	"github.com/jwalitptl/crm-api/internal/repository/postgres"
	noticeService "github.com/jwalitptl/crm-api/internal/service/notice"
	"github.com/jwalitptl/crm-api/internal/worker"
	"github.com/jwalitptl/crm-api/pkg/logger"
	"github.com/jwalitptl/crm-api/pkg/metrics"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	rootLogger := logger.New(&logger.Config{Level: os.Getenv("LOG_LEVEL")})

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	base := postgres.NewBaseRepository(db)
	noticeRepo := postgres.NewNoticeRepository(base)

	m := metrics.NewMetrics("crm", "worker")

	// The sweep only deletes; it never dispatches, so the notice service
	// runs without broker or email.
	noticeSvc := noticeService.NewService(noticeRepo, nil, nil, nil, m, logger.Component(rootLogger, "notice"))

	sweeper := worker.NewNoticeSweepWorker(noticeRepo, noticeSvc, cfg.Worker.SweepInterval, cfg.Worker.RetentionAge, logger.Component(rootLogger, "notice-sweep"))

	setupHealthCheck()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info().Msg("shutting down")
		cancel()
	}()

	log.Info().Dur("interval", cfg.Worker.SweepInterval).Msg("starting notice sweep worker")
	sweeper.Start(ctx)
}

func setupHealthCheck() {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	go func() {
		if err := http.ListenAndServe(":8081", mux); err != nil {
			log.Error().Err(err).Msg("health check server failed")
		}
	}()
}
