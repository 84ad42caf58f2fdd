// Package storage defines the persisted expense record and the Store port
// implemented by the memory and sqlite backends.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get, Update and Delete for unknown ids.
var ErrNotFound = errors.New("expense not found")

// Record is the flat persisted shape shared by every backend.
type Record struct {
	ID              string  `json:"id"`
	Title           string  `json:"title"`
	Amount          float64 `json:"amount"`
	Category        string  `json:"category"`
	Notes           *string `json:"notes"`
	ReceiptImageURL *string `json:"receiptImageUrl"`
	Timestamp       int64   `json:"timestamp"`
}

// Ports for storage backends.
type (
	Writer interface {
		// Add assigns an id when blank and stores the record.
		Add(ctx context.Context, r Record) (Record, error)
		Update(ctx context.Context, r Record) (Record, error)
		Delete(ctx context.Context, id string) error
		Clear(ctx context.Context) error
	}

	// Reader queries return records newest first. Range bounds are
	// inclusive epoch milliseconds.
	Reader interface {
		Get(ctx context.Context, id string) (Record, error)
		All(ctx context.Context) ([]Record, error)
		ByRange(ctx context.Context, startMs, endMs int64) ([]Record, error)
		ByCategory(ctx context.Context, category string) ([]Record, error)
		ByRangeAndCategory(ctx context.Context, startMs, endMs int64, category string) ([]Record, error)
		Search(ctx context.Context, query string) ([]Record, error)
		CountByRange(ctx context.Context, startMs, endMs int64) (int, error)
	}

	Observer interface {
		// Subscribe delivers the current snapshot and then a full snapshot
		// after every write until ctx is done.
		Subscribe(ctx context.Context) (<-chan []Record, error)
	}

	Store interface {
		Writer
		Reader
		Observer
		Close() error
	}
)

// Clone returns a deep copy of the record.
func (r Record) Clone() Record {
	out := r
	if r.Notes != nil {
		n := *r.Notes
		out.Notes = &n
	}
	if r.ReceiptImageURL != nil {
		u := *r.ReceiptImageURL
		out.ReceiptImageURL = &u
	}
	return out
}

// CloneAll deep copies a slice of records.
func CloneAll(in []Record) []Record {
	out := make([]Record, len(in))
	for i, r := range in {
		out[i] = r.Clone()
	}
	return out
}
