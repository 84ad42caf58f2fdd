package core

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		out  float64
		want error
	}{
		{"1", 1, nil},
		{"12.50", 12.5, nil},
		{"12,50", 12.5, nil},
		{" 99 ", 99, nil},
		{"100000", 100000, nil},
		{"", 0, ErrAmountRequired},
		{"abc", 0, ErrAmountNotNumber},
		{"1.2.3", 0, ErrInvalidDecimal},
		{"-1", 0, ErrInvalidAmount},
		{"0", 0, ErrInvalidAmount},
		{"100000.01", 0, ErrAmountTooLarge},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.want == nil {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %v, got %v (err=%v)", tc.in, tc.out, got, err)
			}
			continue
		}
		if !errors.Is(err, tc.want) {
			t.Fatalf("%q expected %v, got %v", tc.in, tc.want, err)
		}
	}
}

func TestFormatting(t *testing.T) {
	if got := FormatAmount(1234.5); got != "₹1234.50" {
		t.Fatalf("unexpected %q", got)
	}
	if got := FormatPercent(42.456); got != "42.5%" {
		t.Fatalf("unexpected %q", got)
	}
	if got := Round2(0.1 + 0.2); got != 0.3 {
		t.Fatalf("unexpected %v", got)
	}
}

func TestTodaySummaryText(t *testing.T) {
	if got := (TodaySummary{}).Text(); got != "No expenses today" {
		t.Fatalf("unexpected %q", got)
	}
	if got := (TodaySummary{TotalAmount: 50, ExpenseCount: 1}).Text(); got != "₹50.00 spent across 1 expense today" {
		t.Fatalf("unexpected %q", got)
	}
	if got := (TodaySummary{TotalAmount: 90, ExpenseCount: 3}).Average(); got != 30 {
		t.Fatalf("unexpected average %v", got)
	}
}

func TestEntryFormValidate(t *testing.T) {
	good := EntryForm{Title: "Taxi", Amount: "250", Category: "travel"}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	// 100 characters, 200 bytes: both layers count characters.
	multibyte := EntryForm{Title: "Lunch", Amount: "120", Category: "FOOD", Notes: strings.Repeat("é", MaxNotesLength)}
	if err := multibyte.Validate(); err != nil {
		t.Fatalf("multibyte notes at limit: %v", err)
	}
	if _, err := multibyte.ToExpense(time.Now()); err != nil {
		t.Fatalf("multibyte notes at limit: ToExpense: %v", err)
	}

	cases := []struct {
		name  string
		form  EntryForm
		field string
	}{
		{"blank title", EntryForm{Title: "  ", Amount: "1", Category: "FOOD"}, "title"},
		{"short title", EntryForm{Title: "a", Amount: "1", Category: "FOOD"}, "title"},
		{"long title", EntryForm{Title: strings.Repeat("a", 51), Amount: "1", Category: "FOOD"}, "title"},
		{"missing amount", EntryForm{Title: "ok", Category: "FOOD"}, "amount"},
		{"bad amount", EntryForm{Title: "ok", Amount: "x", Category: "FOOD"}, "amount"},
		{"huge amount", EntryForm{Title: "ok", Amount: "200000", Category: "FOOD"}, "amount"},
		{"bad category", EntryForm{Title: "ok", Amount: "1", Category: "PETS"}, "category"},
		{"long notes", EntryForm{Title: "ok", Amount: "1", Category: "FOOD", Notes: strings.Repeat("n", 101)}, "notes"},
		{"long multibyte notes", EntryForm{Title: "ok", Amount: "1", Category: "FOOD", Notes: strings.Repeat("é", 101)}, "notes"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.form.Validate()
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if _, ok := verr.Fields[tc.field]; !ok {
				t.Fatalf("expected error on %s, got %v", tc.field, verr.Fields)
			}
		})
	}
}

func TestAsValidationError(t *testing.T) {
	cases := []struct {
		err   error
		field string
	}{
		{ErrEmptyTitle, "title"},
		{ErrInvalidAmount, "amount"},
		{fmt.Errorf("add: %w", ErrNotesTooLong), "notes"},
		{ErrUnknownCategory, "category"},
	}
	for _, tc := range cases {
		var verr *ValidationError
		if !errors.As(AsValidationError(tc.err), &verr) {
			t.Fatalf("%v: expected ValidationError", tc.err)
		}
		if _, ok := verr.Fields[tc.field]; !ok {
			t.Fatalf("%v: fields = %v", tc.err, verr.Fields)
		}
	}

	other := errors.New("disk full")
	if got := AsValidationError(other); got != other {
		t.Fatalf("unrelated error changed: %v", got)
	}
}
