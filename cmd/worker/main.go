package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/hebamio/midwife-api/config"
	"github.com/hebamio/midwife-api/internal/repository/postgres"
	internalWorker "github.com/hebamio/midwife-api/internal/worker"
	"github.com/hebamio/midwife-api/pkg/logger"
	"github.com/hebamio/midwife-api/pkg/messaging/redis"
	"github.com/hebamio/midwife-api/pkg/metrics"
	"github.com/hebamio/midwife-api/pkg/worker"
)

// The worker binary drains the transactional outbox: it publishes
// pending booking events to Redis and prunes events that were
// processed past the retention window.
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

	broker, err := redis.NewRedisBroker(cfg.Redis.ToBrokerConfig(), log.Zerolog())
	if err != nil {
		log.Fatal(err, "failed to connect to Redis")
	}
	defer broker.Close()

	outboxRepo := postgres.NewOutboxRepository(db)

	processor := worker.NewOutboxProcessor(
		outboxRepo,
		broker,
		cfg.Outbox.ToWorkerConfig(),
		log,
		metrics.NewMetrics("outbox_worker"),
	)

	cleanup := internalWorker.NewOutboxCleanupWorker(outboxRepo, cfg.Outbox.RetentionDays, cfg.Outbox.CleanupInterval, log)

	setupHealthCheck(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("shutting down worker")
		cancel()
	}()

	go cleanup.Start(ctx)
	processor.Start(ctx)
}

func setupHealthCheck(log *logger.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	go func() {
		if err := http.ListenAndServe(":8081", mux); err != nil {
			log.Error(err, "health check server failed")
			os.Exit(1)
		}
	}()
}
