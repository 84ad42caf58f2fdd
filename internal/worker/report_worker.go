// Package worker keeps external report destinations up to date.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"smartspend/internal/amqp"
	"smartspend/internal/core"
	"smartspend/internal/export"
	"smartspend/internal/log"
	"smartspend/internal/report"
)

// Computer produces the analytics to publish. *services.ReportService
// satisfies it.
type Computer interface {
	Compute(ctx context.Context, period report.Period, start, end *core.Day) (report.Analytics, error)
}

type Config struct {
	Period report.Period
	// MinGap is the minimum time between two event-triggered publishes.
	// Events inside the gap mark the report dirty for the next tick.
	MinGap time.Duration
	// Events is set when change events are consumed. Ticks then skip a
	// clean report unless the day changed. Without events every tick
	// publishes.
	Events bool
}

// ReportWorker recomputes the report after expense changes and on a
// fixed interval, then pushes it to every publisher.
type ReportWorker struct {
	reports    Computer
	publishers []export.Publisher
	cfg        Config
	logger     *log.Logger
	now        func() time.Time

	mu          sync.Mutex
	dirty       bool
	lastPublish time.Time
}

func NewReportWorker(reports Computer, publishers []export.Publisher, cfg Config, logger *log.Logger) *ReportWorker {
	if logger == nil {
		logger = log.Discard()
	}
	if !cfg.Period.IsValid() {
		cfg.Period = report.Last7Days
	}
	return &ReportWorker{
		reports:    reports,
		publishers: publishers,
		cfg:        cfg,
		logger:     logger.WithComponent(log.ComponentWorker),
		now:        time.Now,
	}
}

// HandleExpenseEvent publishes right away unless the last publish was
// within MinGap. Publisher failures leave the report dirty and are not
// returned, so the message is acked and the next tick retries.
func (w *ReportWorker) HandleExpenseEvent(ctx context.Context, ev amqp.ExpenseEvent) error {
	w.logger.InfoContext(ctx, "Processing expense event", log.FieldExpenseID, ev.ID, log.FieldAction, ev.Action)

	w.mu.Lock()
	w.dirty = true
	due := w.now().Sub(w.lastPublish) >= w.cfg.MinGap
	w.mu.Unlock()

	if !due {
		return nil
	}
	if err := w.PublishReport(ctx); err != nil {
		w.logger.ErrorContext(ctx, "Publish after event failed", log.FieldError, err)
	}
	return nil
}

// PublishReport computes the configured period and fans it out. The dirty
// flag is cleared before computing so changes arriving meanwhile are kept
// for the next tick; a failed publish marks the report dirty again.
func (w *ReportWorker) PublishReport(ctx context.Context) (err error) {
	w.mu.Lock()
	w.dirty = false
	w.mu.Unlock()
	defer func() {
		if err != nil {
			w.mu.Lock()
			w.dirty = true
			w.mu.Unlock()
		}
	}()

	a, err := w.reports.Compute(ctx, w.cfg.Period, nil, nil)
	if err != nil {
		return fmt.Errorf("compute report: %w", err)
	}

	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []error
	)
	for _, p := range w.publishers {
		g.Go(func() error {
			if err := p.Publish(ctx, a); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	if err := errors.Join(errs...); err != nil {
		return err
	}

	w.mu.Lock()
	w.lastPublish = w.now()
	w.mu.Unlock()

	w.logger.InfoContext(ctx, "Report published",
		log.FieldPeriod, a.PeriodLabel,
		log.FieldCount, a.ExpenseCount,
		"publishers", len(w.publishers))
	return nil
}

// Dirty reports whether changes are waiting to be published.
func (w *ReportWorker) Dirty() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.dirty
}

// Run publishes once at startup and then every interval until ctx is done.
func (w *ReportWorker) Run(ctx context.Context, interval time.Duration) error {
	if err := w.PublishReport(ctx); err != nil {
		w.logger.ErrorContext(ctx, "Startup publish failed", log.FieldError, err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

// due reports whether a tick has anything to publish.
func (w *ReportWorker) due() bool {
	if !w.cfg.Events {
		return true
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.dirty {
		return true
	}
	now := w.now()
	return core.DayFromTime(now) != core.DayFromTime(w.lastPublish.In(now.Location()))
}

func (w *ReportWorker) tick(ctx context.Context) {
	if !w.due() {
		w.logger.DebugContext(ctx, "Report unchanged, skipping tick")
		return
	}
	if err := w.PublishReport(ctx); err != nil {
		w.logger.ErrorContext(ctx, "Periodic publish failed", log.FieldError, err)
	}
}
