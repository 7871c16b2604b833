package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/crm-api/config"
	activityHandler "github.com/jwalitptl/crm-api/internal/handler/activity"
	dealHandler "github.com/jwalitptl/crm-api/internal/handler/deal"
	leadHandler "github.com/jwalitptl/crm-api/internal/handler/lead"
	noticeHandler "github.com/jwalitptl/crm-api/internal/handler/notice"
	reminderHandler "github.com/jwalitptl/crm-api/internal/handler/reminder"
	taskHandler "github.com/jwalitptl/crm-api/internal/handler/task"
	"github.com/jwalitptl/crm-api/internal/email"
	"github.com/jwalitptl/crm-api/internal/middleware"
	"github.com/jwalitptl/crm-api/internal/repository/postgres"
	"github.com/jwalitptl/crm-api/internal/router"
	activityService "github.com/jwalitptl/crm-api/internal/service/activity"
	dealService "github.com/jwalitptl/crm-api/internal/service/deal"
	leadService "github.com/jwalitptl/crm-api/internal/service/lead"
	noticeService "github.com/jwalitptl/crm-api/internal/service/notice"
	reassignmentService "github.com/jwalitptl/crm-api/internal/service/reassignment"
	taskService "github.com/jwalitptl/crm-api/internal/service/task"
	"github.com/jwalitptl/crm-api/pkg/auth"
	"github.com/jwalitptl/crm-api/pkg/logger"
	"github.com/jwalitptl/crm-api/pkg/messaging"
	"github.com/jwalitptl/crm-api/pkg/messaging/redis"
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
	activityRepo := postgres.NewActivityRepository(base)
	leadRepo := postgres.NewLeadRepository(base)
	dealRepo := postgres.NewDealRepository(base)
	taskRepo := postgres.NewTaskRepository(base)
	userRepo := postgres.NewUserRepository(base)

	m := metrics.NewMetrics("crm", "api")

	var broker messaging.Broker
	if cfg.Redis.URL != "" {
		brokerLogger := logger.Component(rootLogger, "redis-broker")
		broker, err = redis.NewRedisBroker(cfg.Redis.ToBrokerConfig(), &brokerLogger)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Redis")
		}
	}

	emailSvc := email.NewService(cfg.SMTP)

	noticeSvc := noticeService.NewService(noticeRepo, userRepo, emailSvc, broker, m, logger.Component(rootLogger, "notice"))
	activitySvc := activityService.NewService(activityRepo, userRepo, dealRepo, taskRepo, noticeSvc, m, logger.Component(rootLogger, "activity"))
	reassignSvc := reassignmentService.NewService(noticeRepo, leadRepo, userRepo, noticeSvc, m, logger.Component(rootLogger, "reassignment"))
	leadSvc := leadService.NewService(leadRepo, userRepo, noticeSvc, activitySvc)
	dealSvc := dealService.NewService(dealRepo, userRepo, noticeSvc, activitySvc)
	taskSvc := taskService.NewService(taskRepo, noticeSvc, activitySvc)

	authMiddleware := middleware.NewAuthMiddleware(auth.NewTokenValidator(cfg.JWT.Secret))

	corsCfg := middleware.DefaultCORSConfig()
	if len(cfg.Security.AllowedOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.Security.AllowedOrigins
	}
	if len(cfg.Security.AllowedMethods) > 0 {
		corsCfg.AllowMethods = cfg.Security.AllowedMethods
	}
	if len(cfg.Security.AllowedHeaders) > 0 {
		corsCfg.AllowHeaders = cfg.Security.AllowedHeaders
	}

	r := router.NewRouter(authMiddleware, router.Config{
		RateLimitEnabled:  cfg.RateLimit.Enabled,
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		Burst:             cfg.RateLimit.Burst,
		CORS:              corsCfg,
	},
		noticeHandler.NewHandler(noticeSvc, reassignSvc),
		activityHandler.NewHandler(activitySvc),
		leadHandler.NewHandler(leadSvc),
		dealHandler.NewHandler(dealSvc),
		taskHandler.NewHandler(taskSvc),
		reminderHandler.NewHandler(dealSvc, taskSvc),
	)
	r.Setup()

	srv := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:        r.Engine(),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server stopped")
}
