// Package services holds the state behind the entry, list and report
// workflows and publishes change events after every write.
package services

import (
	"context"

	"smartspend/internal/amqp"
)

// Status is the presentation state of a view.
type Status string

const (
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusEmpty   Status = "empty"
	StatusError   Status = "error"
)

// EventPublisher is satisfied by *amqp.Client.
type EventPublisher interface {
	PublishExpenseEvent(ctx context.Context, ev amqp.ExpenseEvent) error
}

// Message is the outcome notice shown to the user after a write.
type Message struct {
	Text  string `json:"text"`
	Error bool   `json:"error"`
}
