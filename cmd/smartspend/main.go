package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"smartspend/internal/amqp"
	"smartspend/internal/cache"
	"smartspend/internal/cli"
	"smartspend/internal/config"
	"smartspend/internal/export"
	apphttp "smartspend/internal/http"
	"smartspend/internal/log"
	"smartspend/internal/repository"
	"smartspend/internal/services"
)

func main() {
	cli.LoadEnvFile()
	boot := cli.SetupLogger(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
	cfg := cli.MustLoadConfig(boot)
	logger := cli.SetupLogger(cfg.LogLevel, cfg.LogFormat)

	if err := run(cfg, logger); err != nil {
		logger.Error("Server error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

func run(cfg *config.Config, logger *log.Logger) error {
	store, err := cli.InitStore(context.Background(), logger, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Cleanup(); err != nil {
			logger.Warn("Store close failed", log.FieldError, err)
		}
	}()

	loc := cfg.Location()
	repo := repository.New(store.Store,
		repository.WithLocation(loc),
		repository.WithLogger(logger),
	)

	// Change events are optional; the API works without a broker.
	var events services.EventPublisher
	if cfg.AMQPEnabled() {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without events", log.FieldError, err)
		} else {
			defer client.Close()
			events = client
			logger.Info("Initialized AMQP client", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	sessions := cache.NewLRUCache[services.Session](cfg.SessionCacheSize, cfg.SessionTTL)
	caches := cache.NewManager(logger)
	caches.Register(sessions)

	exports := export.NewRegistry(export.NewCSV(loc), export.NewXLSX(loc))
	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Repo:    repo,
		Entries: services.NewEntryService(repo, events, logger),
		Lists:   services.NewListService(repo),
		Reports: services.NewReportService(repo, sessions, exports, services.ReportOptions{}, logger),
		Ready: func(ctx context.Context) error {
			_, err := repo.CountToday(ctx)
			return err
		},
	}, apphttp.Options{
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Logger:             logger,
	})

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting smartspend server", "port", cfg.Port, "backend", cfg.DataBackend, "amqp_enabled", events != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		caches.StartCleanup(cfg.SessionTTL / 2)
		<-gctx.Done()
		caches.Stop()
		return nil
	})

	err = g.Wait()
	if err != nil {
		// ListenAndServe failed before any signal; nothing else will stop us.
		return err
	}
	cli.WaitForShutdown(ctx, done)
	return nil
}
