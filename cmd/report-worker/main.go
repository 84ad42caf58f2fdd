package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"smartspend/internal/amqp"
	"smartspend/internal/cache"
	"smartspend/internal/cli"
	"smartspend/internal/config"
	"smartspend/internal/export"
	"smartspend/internal/export/sheets"
	"smartspend/internal/log"
	"smartspend/internal/repository"
	"smartspend/internal/services"
	"smartspend/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	boot := cli.SetupLogger(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
	cfg := cli.MustLoadConfig(boot)
	logger := cli.SetupLogger(cfg.LogLevel, cfg.LogFormat).WithComponent(log.ComponentWorker)

	logger.Info("Starting report-worker", "period", cfg.Period(), "interval", cfg.ReportInterval)
	if err := run(cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker failed", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}

func run(cfg *config.Config, logger *log.Logger) error {
	if cfg.DataBackend == "memory" {
		logger.Warn("Memory backend selected: the worker only sees its own empty store, use sqlite to share data with the server")
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	store, err := cli.InitStore(ctx, logger, cfg)
	if err != nil {
		return err
	}
	defer store.Cleanup()

	loc := cfg.Location()
	repo := repository.New(store.Store, repository.WithLocation(loc), repository.WithLogger(logger))
	reports := services.NewReportService(repo, cache.NewLRUCache[services.Session](1, time.Minute), nil, services.ReportOptions{}, logger)

	publishers, err := buildPublishers(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if len(publishers) == 0 {
		return fmt.Errorf("no report destination configured: set GOOGLE_SPREADSHEET_ID or REPORT_OUTPUT_DIR")
	}

	var consumer *amqp.Client
	if cfg.AMQPEnabled() {
		consumer, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Warn("AMQP unavailable - publishing on the interval only", log.FieldError, err)
			consumer = nil
		} else {
			defer consumer.Close()
		}
	} else {
		logger.Info("AMQP disabled - publishing on the interval only")
	}

	w := worker.NewReportWorker(reports, publishers, worker.Config{
		Period: cfg.Period(),
		MinGap: cfg.ReportMinGap,
		Events: consumer != nil,
	}, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return w.Run(gctx, cfg.ReportInterval)
	})
	if consumer != nil {
		g.Go(func() error {
			return consumer.ConsumeExpenseEvents(gctx, w.HandleExpenseEvent)
		})
	}

	err = g.Wait()
	cli.WaitForShutdown(ctx, done)
	return err
}

func buildPublishers(ctx context.Context, cfg *config.Config, logger *log.Logger) ([]export.Publisher, error) {
	var out []export.Publisher
	if cfg.SheetsEnabled() {
		client, err := sheets.New(ctx, sheets.Config{
			SpreadsheetID:      cfg.GoogleSpreadsheetID,
			SheetName:          cfg.GoogleReportSheetName,
			ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
			ServiceAccountFile: cfg.GoogleServiceAccountFile,
			Location:           cfg.Location(),
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("initialize Google Sheets client: %w", err)
		}
		logger.Info("Google Sheets publisher enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID, "sheet", cfg.GoogleReportSheetName)
		out = append(out, client)
	}
	if cfg.ReportOutputDir != "" {
		loc := cfg.Location()
		out = append(out,
			export.NewFilePublisher(cfg.ReportOutputDir, export.NewCSV(loc)),
			export.NewFilePublisher(cfg.ReportOutputDir, export.NewXLSX(loc)),
		)
		logger.Info("File publisher enabled", "dir", cfg.ReportOutputDir)
	}
	return out, nil
}
