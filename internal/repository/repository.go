// Package repository maps storage records to domain expenses and gives
// callers distinct not-found errors and a typed snapshot stream.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"smartspend/internal/core"
	"smartspend/internal/log"
	"smartspend/internal/report"
	"smartspend/internal/storage"
)

// ErrNotFound marks update, delete or get calls for an id that no longer exists.
var ErrNotFound = errors.New("expense no longer exists")

// Result is one element of an observed stream: either Data or Err.
type Result[T any] struct {
	Data T
	Err  error
}

func (r Result[T]) OK() bool { return r.Err == nil }

type ExpenseRepository struct {
	store  storage.Store
	loc    *time.Location
	now    func() time.Time
	logger *log.Logger
}

type Option func(*ExpenseRepository)

// WithLocation sets the calendar used for day boundaries.
func WithLocation(loc *time.Location) Option {
	return func(r *ExpenseRepository) { r.loc = loc }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *ExpenseRepository) { r.now = now }
}

func WithLogger(l *log.Logger) Option {
	return func(r *ExpenseRepository) { r.logger = l.WithComponent(log.ComponentRepository) }
}

func New(store storage.Store, opts ...Option) *ExpenseRepository {
	r := &ExpenseRepository{
		store:  store,
		loc:    time.Local,
		now:    time.Now,
		logger: log.New(log.DefaultConfig()).WithComponent(log.ComponentRepository),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Location returns the calendar location used for day boundaries.
func (r *ExpenseRepository) Location() *time.Location { return r.loc }

// Now returns the repository clock in its location.
func (r *ExpenseRepository) Now() time.Time { return r.now().In(r.loc) }

// Today returns the current calendar day.
func (r *ExpenseRepository) Today() core.Day { return core.DayFromTime(r.Now()) }

func (r *ExpenseRepository) Add(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	rec, err := r.store.Add(ctx, ToRecord(e))
	if err != nil {
		return core.Expense{}, r.fail(ctx, log.OpCreate, err)
	}
	out, err := ToDomain(rec)
	if err != nil {
		return core.Expense{}, r.fail(ctx, log.OpCreate, err)
	}
	return out, nil
}

func (r *ExpenseRepository) Update(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	rec, err := r.store.Update(ctx, ToRecord(e))
	if err != nil {
		return core.Expense{}, r.fail(ctx, log.OpUpdate, err)
	}
	return ToDomain(rec)
}

func (r *ExpenseRepository) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, id); err != nil {
		return r.fail(ctx, log.OpDelete, err)
	}
	return nil
}

func (r *ExpenseRepository) Get(ctx context.Context, id string) (core.Expense, error) {
	rec, err := r.store.Get(ctx, id)
	if err != nil {
		return core.Expense{}, r.fail(ctx, log.OpRead, err)
	}
	e, err := ToDomain(rec)
	if err != nil {
		return core.Expense{}, r.fail(ctx, log.OpRead, err)
	}
	return e, nil
}

// All returns every expense, newest first.
func (r *ExpenseRepository) All(ctx context.Context) ([]core.Expense, error) {
	return r.list(ctx, func() ([]storage.Record, error) { return r.store.All(ctx) })
}

// ByRange returns the expenses whose local day falls in rng.
func (r *ExpenseRepository) ByRange(ctx context.Context, rng report.DateRange) ([]core.Expense, error) {
	start, end := r.bounds(rng)
	return r.list(ctx, func() ([]storage.Record, error) { return r.store.ByRange(ctx, start, end) })
}

func (r *ExpenseRepository) ByCategory(ctx context.Context, c core.Category) ([]core.Expense, error) {
	return r.list(ctx, func() ([]storage.Record, error) { return r.store.ByCategory(ctx, string(c)) })
}

func (r *ExpenseRepository) ByRangeAndCategory(ctx context.Context, rng report.DateRange, c core.Category) ([]core.Expense, error) {
	start, end := r.bounds(rng)
	return r.list(ctx, func() ([]storage.Record, error) {
		return r.store.ByRangeAndCategory(ctx, start, end, string(c))
	})
}

// Search matches title or notes. A blank query yields an empty list.
func (r *ExpenseRepository) Search(ctx context.Context, query string) ([]core.Expense, error) {
	return r.list(ctx, func() ([]storage.Record, error) { return r.store.Search(ctx, query) })
}

func (r *ExpenseRepository) CountByRange(ctx context.Context, rng report.DateRange) (int, error) {
	start, end := r.bounds(rng)
	n, err := r.store.CountByRange(ctx, start, end)
	if err != nil {
		return 0, r.fail(ctx, log.OpList, err)
	}
	return n, nil
}

// TotalSpentOn sums the expenses of one local day.
func (r *ExpenseRepository) TotalSpentOn(ctx context.Context, day core.Day) (float64, error) {
	es, err := r.ByRange(ctx, report.DateRange{Start: day, End: day})
	if err != nil {
		return 0, err
	}
	return report.Sum(es), nil
}

func (r *ExpenseRepository) TotalSpentToday(ctx context.Context) (float64, error) {
	return r.TotalSpentOn(ctx, r.Today())
}

func (r *ExpenseRepository) CountToday(ctx context.Context) (int, error) {
	today := r.Today()
	return r.CountByRange(ctx, report.DateRange{Start: today, End: today})
}

// TodaySummary combines today's total and count.
func (r *ExpenseRepository) TodaySummary(ctx context.Context) (core.TodaySummary, error) {
	total, err := r.TotalSpentToday(ctx)
	if err != nil {
		return core.TodaySummary{}, err
	}
	count, err := r.CountToday(ctx)
	if err != nil {
		return core.TodaySummary{}, err
	}
	return core.TodaySummary{TotalAmount: total, ExpenseCount: count}, nil
}

// GroupedByCategory buckets the expenses of rng by category.
func (r *ExpenseRepository) GroupedByCategory(ctx context.Context, rng report.DateRange) (map[core.Category][]core.Expense, error) {
	es, err := r.ByRange(ctx, rng)
	if err != nil {
		return nil, err
	}
	out := map[core.Category][]core.Expense{}
	for _, e := range es {
		out[e.Category] = append(out[e.Category], e)
	}
	return out, nil
}

// WeeklyReport summarizes the seven days ending today.
func (r *ExpenseRepository) WeeklyReport(ctx context.Context) (report.WeeklyReport, error) {
	today := r.Today()
	es, err := r.ByRange(ctx, report.DateRange{Start: today.AddDays(-6), End: today})
	if err != nil {
		return report.WeeklyReport{}, err
	}
	return report.BuildWeekly(es, r.Now(), r.loc), nil
}

// Observe emits the full expense list now and after every store change
// until ctx is done.
func (r *ExpenseRepository) Observe(ctx context.Context) (<-chan Result[[]core.Expense], error) {
	snaps, err := r.store.Subscribe(ctx)
	if err != nil {
		return nil, r.fail(ctx, log.OpList, err)
	}
	out := make(chan Result[[]core.Expense], 1)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case recs, ok := <-snaps:
				if !ok {
					return
				}
				es, skipped := ToDomainList(recs)
				if skipped > 0 {
					r.logger.WarnContext(ctx, "Skipped unmappable records", "skipped", skipped)
				}
				select {
				case out <- Result[[]core.Expense]{Data: es}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func (r *ExpenseRepository) list(ctx context.Context, load func() ([]storage.Record, error)) ([]core.Expense, error) {
	recs, err := load()
	if err != nil {
		return nil, r.fail(ctx, log.OpList, err)
	}
	es, skipped := ToDomainList(recs)
	if skipped > 0 {
		r.logger.WarnContext(ctx, "Skipped unmappable records", "skipped", skipped)
	}
	return es, nil
}

func (r *ExpenseRepository) bounds(rng report.DateRange) (int64, int64) {
	return rng.Start.Start(r.loc).UnixMilli(), rng.End.End(r.loc).UnixMilli()
}

// fail converts storage errors and logs unexpected ones once.
func (r *ExpenseRepository) fail(ctx context.Context, op string, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	r.logger.ErrorContext(ctx, "Repository operation failed", log.FieldOperation, op, log.FieldError, err)
	return fmt.Errorf("%s expense: %w", op, err)
}
