package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"github.com/hebamio/midwife-api/config"
	"github.com/hebamio/midwife-api/internal/email"
	"github.com/hebamio/midwife-api/internal/handler"
	appointmentHandler "github.com/hebamio/midwife-api/internal/handler/appointment"
	authHandler "github.com/hebamio/midwife-api/internal/handler/auth"
	bookingHandler "github.com/hebamio/midwife-api/internal/handler/booking"
	leadHandler "github.com/hebamio/midwife-api/internal/handler/lead"
	midwifeHandler "github.com/hebamio/midwife-api/internal/handler/midwife"
	"github.com/hebamio/midwife-api/internal/middleware"
	"github.com/hebamio/midwife-api/internal/repository/postgres"
	"github.com/hebamio/midwife-api/internal/router"
	appointmentService "github.com/hebamio/midwife-api/internal/service/appointment"
	authService "github.com/hebamio/midwife-api/internal/service/auth"
	bookingService "github.com/hebamio/midwife-api/internal/service/booking"
	leadService "github.com/hebamio/midwife-api/internal/service/lead"
	midwifeService "github.com/hebamio/midwife-api/internal/service/midwife"
	internalWorker "github.com/hebamio/midwife-api/internal/worker"
	"github.com/hebamio/midwife-api/pkg/auth"
	"github.com/hebamio/midwife-api/pkg/logger"
	"github.com/hebamio/midwife-api/pkg/messaging/redis"
	"github.com/hebamio/midwife-api/pkg/metrics"
	"github.com/hebamio/midwife-api/pkg/security"
	"github.com/hebamio/midwife-api/pkg/worker"
)

func main() {
	log := logger.NewLogger(nil)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err, "failed to load configuration")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	m := metrics.NewMetrics("midwife_api")

	// Repositories
	midwifeRepo := postgres.NewMidwifeRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	leadRepo := postgres.NewLeadRepository(db)
	clientRepo := postgres.NewClientRepository(db)
	phoneRepo := postgres.NewPhoneBookingRepository(db)
	userRepo := postgres.NewUserRepository(db)
	tokenRepo := postgres.NewTokenRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)

	// Shared infrastructure
	jwtSvc := auth.NewJWTService(auth.JWTConfig{
		Secret:        cfg.JWT.Secret,
		RefreshSecret: cfg.JWT.RefreshSecret,
		ExpiryHours:   cfg.JWT.ExpiryHours,
		RefreshDays:   cfg.JWT.RefreshDays,
	})
	hasher := security.NewBcryptHasher(0)
	emailSvc := email.NewSMTPService(cfg.SMTP, log)

	// Services
	midwifeSvc := midwifeService.NewService(midwifeRepo, cfg.Booking.TimetableCacheTTL)
	appointmentSvc := appointmentService.NewService(appointmentRepo, clientRepo, midwifeSvc, m)
	leadSvc := leadService.NewService(leadRepo, clientRepo, midwifeSvc)
	bookingSvc := bookingService.NewService(phoneRepo, appointmentRepo, clientRepo, midwifeSvc, emailSvc, m, log, cfg.Booking.StepMinutes)
	authSvc := authService.NewService(userRepo, tokenRepo, midwifeSvc, jwtSvc, hasher, emailSvc, log)

	authMiddleware := middleware.NewAuthMiddleware(jwtSvc)

	corsConfig := middleware.DefaultCORSConfig()
	if len(cfg.CORS.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.CORS.AllowedOrigins
	}
	if len(cfg.CORS.AllowedMethods) > 0 {
		corsConfig.AllowMethods = cfg.CORS.AllowedMethods
	}
	if len(cfg.CORS.AllowedHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.CORS.AllowedHeaders
	}

	// Router
	r := router.NewRouter(
		authMiddleware,
		authHandler.NewHandler(authSvc),
		midwifeHandler.NewHandler(midwifeSvc),
		appointmentHandler.NewHandler(appointmentSvc),
		leadHandler.NewHandler(leadSvc),
		bookingHandler.NewHandler(bookingSvc, midwifeSvc),
		handler.NewHandler(db),
		router.Config{
			RateLimit:     rate.Limit(cfg.RateLimit.RequestsPerSecond),
			RateBurst:     cfg.RateLimit.Burst,
			CORSConfig:    corsConfig,
			MetricsPrefix: "midwife_api_http",
		},
	)
	r.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Outbox processor publishes booking events to Redis.
	broker, err := redis.NewRedisBroker(cfg.Redis.ToBrokerConfig(), log.Zerolog())
	if err != nil {
		log.Fatal(err, "failed to connect to Redis")
	}
	defer broker.Close()

	processor := worker.NewOutboxProcessor(
		outboxRepo,
		broker,
		cfg.Outbox.ToWorkerConfig(),
		log,
		metrics.NewMetrics("outbox_processor"),
	)
	go processor.Start(ctx)

	cleanup := internalWorker.NewOutboxCleanupWorker(outboxRepo, cfg.Outbox.RetentionDays, cfg.Outbox.CleanupInterval, log)
	go cleanup.Start(ctx)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err, "failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal(err, "server forced to shutdown")
	}

	log.Info("server exited")
}
