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

	"github.com/chronicare/monitor-api/internal/config"
	"github.com/chronicare/monitor-api/internal/email"
	alertHandler "github.com/chronicare/monitor-api/internal/handler/alert"
	authHandler "github.com/chronicare/monitor-api/internal/handler/auth"
	healthHandler "github.com/chronicare/monitor-api/internal/handler/health"
	patientHandler "github.com/chronicare/monitor-api/internal/handler/patient"
	symptomHandler "github.com/chronicare/monitor-api/internal/handler/symptom"
	"github.com/chronicare/monitor-api/internal/middleware"
	"github.com/chronicare/monitor-api/internal/repository/postgres"
	"github.com/chronicare/monitor-api/internal/router"
	alertService "github.com/chronicare/monitor-api/internal/service/alert"
	authService "github.com/chronicare/monitor-api/internal/service/auth"
	patientService "github.com/chronicare/monitor-api/internal/service/patient"
	symptomService "github.com/chronicare/monitor-api/internal/service/symptom"
	"github.com/chronicare/monitor-api/pkg/auth"
	"github.com/chronicare/monitor-api/pkg/logger"
	messagingRedis "github.com/chronicare/monitor-api/pkg/messaging/redis"
	"github.com/chronicare/monitor-api/pkg/metrics"
	"github.com/chronicare/monitor-api/pkg/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	appLogger := logger.NewLogger(&logger.Config{Level: level, Pretty: cfg.Log.Pretty})

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		appLogger.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	userRepo := postgres.NewUserRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	symptomLogRepo := postgres.NewSymptomLogRepository(db)
	alertRepo := postgres.NewAlertRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)
	tokenRepo := postgres.NewTokenRepository(db)

	appMetrics := metrics.NewMetrics("monitor_api")
	jwtSvc := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Expiry)
	emailSvc := email.NewSMTPService(cfg.SMTP, appLogger)

	authSvc := authService.NewService(
		userRepo, patientRepo, tokenRepo,
		jwtSvc, emailSvc, cfg.JWT.ResetExpiry,
		appMetrics, appLogger,
	)
	patientSvc := patientService.NewService(patientRepo, userRepo)
	symptomSvc := symptomService.NewService(symptomLogRepo, patientRepo, outboxRepo, appMetrics, appLogger)
	alertSvc := alertService.NewService(alertRepo, patientRepo, outboxRepo, appMetrics, appLogger)

	authMw := middleware.NewAuthMiddleware(jwtSvc)

	r := router.NewRouter(
		appLogger.Zerolog(),
		authMw,
		authHandler.NewHandler(authSvc),
		patientHandler.NewHandler(patientSvc),
		symptomHandler.NewHandler(symptomSvc),
		alertHandler.NewHandler(alertSvc),
		healthHandler.NewHandler(db),
		router.Config{
			RateLimitRPS:  float64(cfg.Server.RateLimit),
			RateBurst:     cfg.Server.RateBurst,
			CORSConfig:    middleware.DefaultCORSConfig(),
			MetricsPrefix: "monitor_api_http",
		},
	)
	r.Setup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Care-team event fan-out is best effort: the API stays up without the
	// broker, events drain once it returns.
	broker, err := messagingRedis.NewRedisBroker(messagingRedis.Config{URL: cfg.Redis.URL}, appLogger.Zerolog())
	if err != nil {
		appLogger.Error(err, "failed to connect to redis, outbox processing disabled")
	} else {
		defer broker.Close()
		processor := worker.NewOutboxProcessor(
			outboxRepo, broker,
			worker.DefaultOutboxProcessorConfig(),
			appLogger, appMetrics,
		)
		go processor.Start(ctx)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
	}

	go func() {
		appLogger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal(err, "server failed")
		}
	}()

	<-ctx.Done()
	appLogger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error(err, "forced shutdown")
	}
}
