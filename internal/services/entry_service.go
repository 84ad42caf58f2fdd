package services

import (
	"context"
	"fmt"
	"time"

	"smartspend/internal/amqp"
	"smartspend/internal/core"
	"smartspend/internal/log"
	"smartspend/internal/repository"
)

const (
	MsgExpenseAdded     = "Expense added successfully!"
	MsgExpenseAddFailed = "Failed to add expense"
	MsgExpenseUpdated   = "Expense updated successfully!"
	MsgExpenseDeleted   = "Expense deleted"
)

// EntryService validates and stores expenses, then notifies listeners.
type EntryService struct {
	repo       *repository.ExpenseRepository
	events     EventPublisher
	logger     *log.Logger
	structured *log.StructuredLogger
}

// NewEntryService wires the service. events may be nil when no broker is
// configured.
func NewEntryService(repo *repository.ExpenseRepository, events EventPublisher, logger *log.Logger) *EntryService {
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentExpense)
	return &EntryService{
		repo:       repo,
		events:     events,
		logger:     logger,
		structured: log.NewStructuredLogger(logger),
	}
}

// Submit validates the form and stores the new expense stamped with the
// current time. Validation failures come back as *core.ValidationError.
// The returned message belongs to this call only.
func (s *EntryService) Submit(ctx context.Context, form core.EntryForm) (core.Expense, Message, error) {
	e, err := form.ToExpense(s.repo.Now())
	if err != nil {
		return core.Expense{}, Message{}, err
	}
	saved, err := s.repo.Add(ctx, e)
	if err != nil {
		return core.Expense{}, Message{Text: MsgExpenseAddFailed, Error: true}, fmt.Errorf("create expense: %w", core.AsValidationError(err))
	}
	s.structured.LogExpenseCreated(ctx, saved.ID, saved.Title, saved.Amount, string(saved.Category))
	s.publish(ctx, saved.ID, amqp.ActionAdd)
	return saved, Message{Text: MsgExpenseAdded}, nil
}

// Update replaces the editable fields of an existing expense. The id and
// stored timestamp are kept.
func (s *EntryService) Update(ctx context.Context, id string, form core.EntryForm) (core.Expense, Message, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return core.Expense{}, Message{}, err
	}
	e, err := form.ToExpense(time.UnixMilli(existing.Timestamp))
	if err != nil {
		return core.Expense{}, Message{}, err
	}
	e.ID = existing.ID
	saved, err := s.repo.Update(ctx, e)
	if err != nil {
		return core.Expense{}, Message{}, fmt.Errorf("update expense: %w", core.AsValidationError(err))
	}
	s.publish(ctx, saved.ID, amqp.ActionUpdate)
	return saved, Message{Text: MsgExpenseUpdated}, nil
}

func (s *EntryService) Delete(ctx context.Context, id string) (Message, error) {
	if err := s.repo.Delete(ctx, id); err != nil {
		return Message{}, fmt.Errorf("delete expense: %w", err)
	}
	s.publish(ctx, id, amqp.ActionDelete)
	return Message{Text: MsgExpenseDeleted}, nil
}

func (s *EntryService) Get(ctx context.Context, id string) (core.Expense, error) {
	return s.repo.Get(ctx, id)
}

// TodaySummary is the running total shown with the entry form.
func (s *EntryService) TodaySummary(ctx context.Context) (core.TodaySummary, error) {
	return s.repo.TodaySummary(ctx)
}

// publish never fails the caller: the expense is already stored.
func (s *EntryService) publish(ctx context.Context, id string, action amqp.Action) {
	if s.events == nil {
		s.logger.DebugContext(ctx, "AMQP client not available, skipping event", log.FieldExpenseID, id)
		return
	}
	if err := s.events.PublishExpenseEvent(ctx, amqp.NewExpenseEvent(id, action)); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish expense event",
			log.FieldExpenseID, id, log.FieldAction, action, log.FieldError, err)
	}
}
