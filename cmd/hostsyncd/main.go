package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"hostsync/internal/command"
	"hostsync/internal/config"
	"hostsync/internal/database"
	"hostsync/internal/dispatch"
	"hostsync/internal/export"
	"hostsync/internal/hostaway"
	"hostsync/internal/httpapi"
	"hostsync/internal/logging"
	"hostsync/internal/metrics"
	"hostsync/internal/notify"
	"hostsync/internal/queue"
	"hostsync/internal/ratelimit"
	"hostsync/internal/service"
	syncsvc "hostsync/internal/sync"
	"hostsync/internal/worker"

	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func(c io.Closer) { _ = c.Close() })(closer)
	}

	if cfg.Monitoring.PrometheusEnabled {
		metrics.Register()
	}

	db, err := database.New(cfg.Database.Path, &logger)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize database")
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	webhookQueue, commandQueue, err := initQueues(ctx, cfg)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize queues")
		return err
	}

	notifier := notify.NewSlack(cfg.Slack, &logger)

	limiter := ratelimit.New(cfg.Hostaway.RateLimitRPS)
	client := hostaway.New(cfg.Hostaway, limiter, &logger)

	reservations := service.NewReservationService(db, notifier, &logger)
	tasks := service.NewTaskService(db, notifier, &logger)
	messages := service.NewMessageService(db, notifier, &logger)

	dispatcher := dispatch.New(tasks, reservations, messages, client, notifier, &logger)

	exporter := export.New(reservations, cfg.Exports.Path, &logger)
	commandHandler := command.NewHandler(notifier, exporter, &logger)

	var wg sync.WaitGroup

	// The queue consumers run on their own context so a shutdown signal does
	// not abort them mid-drain; they exit when their queue is closed.
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	webhookWorker := worker.NewWebhookWorker(webhookQueue, dispatcher, notifier, cfg.Hostaway.AccountID, &logger)
	wg.Add(1)
	go func() {
		defer wg.Done()
		webhookWorker.Start(workerCtx)
	}()

	commandWorker := worker.NewCommandWorker(commandQueue, commandHandler, &logger)
	wg.Add(1)
	go func() {
		defer wg.Done()
		commandWorker.Start(workerCtx)
	}()

	syncService := syncsvc.New(client, reservations, notifier, &logger)
	syncWorker := syncsvc.NewWorker(syncService, cfg.Sync, &logger)
	wg.Add(1)
	go func() {
		defer wg.Done()
		syncWorker.Start(ctx)
	}()

	var apiServer *httpapi.Server
	if cfg.HTTP.Enabled {
		apiServer = httpapi.NewServer(cfg.HTTP, webhookQueue, commandQueue, cfg.Monitoring.PrometheusEnabled, &logger)
		go func() {
			if err := apiServer.Start(); err != nil {
				logger.Error().Err(err).Msg("HTTP server error")
			}
		}()
	}

	logger.Info().Msg("Service started")
	<-ctx.Done()
	logger.Info().Msg("Shutting down...")

	// Stop intake first so no new payloads arrive, then close the queues so
	// the workers drain what is already buffered.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if apiServer != nil {
		if err := apiServer.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("HTTP server shutdown error")
		}
	}
	if err := webhookQueue.Close(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Failed to close webhook queue")
	}
	if err := commandQueue.Close(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Failed to close command queue")
	}

	wg.Wait()
	logger.Info().Msg("Shutdown complete.")
	return nil
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, err
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, err
	}
	logger := baseLogger.With().Str("component", "main").Logger()

	return cfg, logger, closer, nil
}

func initQueues(ctx context.Context, cfg *config.Config) (queue.Queue, queue.Queue, error) {
	if cfg.Queues.Backend == "redis" {
		client, err := queue.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		return queue.NewRedis(client, cfg.Queues.WebhookKey),
			queue.NewRedis(client, cfg.Queues.CommandKey), nil
	}

	return queue.NewMemory(cfg.Queues.Size), queue.NewMemory(cfg.Queues.Size), nil
}
