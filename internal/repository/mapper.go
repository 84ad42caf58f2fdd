package repository

import (
	"fmt"

	"smartspend/internal/core"
	"smartspend/internal/storage"
)

// ToRecord converts a domain expense to its persisted shape.
func ToRecord(e core.Expense) storage.Record {
	return storage.Record{
		ID:              e.ID,
		Title:           e.Title,
		Amount:          e.Amount,
		Category:        string(e.Category),
		Notes:           copyString(e.Notes),
		ReceiptImageURL: copyString(e.ReceiptImagePath),
		Timestamp:       e.Timestamp,
	}
}

// ToDomain converts a persisted record. Unknown categories are an error.
func ToDomain(r storage.Record) (core.Expense, error) {
	c, err := core.ParseCategory(r.Category)
	if err != nil {
		return core.Expense{}, fmt.Errorf("record %s category %q: %w", r.ID, r.Category, err)
	}
	return core.Expense{
		ID:               r.ID,
		Title:            r.Title,
		Amount:           r.Amount,
		Category:         c,
		Notes:            copyString(r.Notes),
		ReceiptImagePath: copyString(r.ReceiptImageURL),
		Timestamp:        r.Timestamp,
	}, nil
}

// ToDomainList converts records in order, skipping any that cannot be mapped.
func ToDomainList(records []storage.Record) ([]core.Expense, int) {
	out := make([]core.Expense, 0, len(records))
	skipped := 0
	for _, r := range records {
		e, err := ToDomain(r)
		if err != nil {
			skipped++
			continue
		}
		out = append(out, e)
	}
	return out, skipped
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
