package core

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	Staff   Category = "STAFF"
	Travel  Category = "TRAVEL"
	Food    Category = "FOOD"
	Utility Category = "UTILITY"

	// DefaultCategory is preselected by the entry form.
	DefaultCategory = Food

	MaxNotesLength = 100
)

type (
	// Category is one of a closed set of expense categories.
	Category string

	Expense struct {
		ID               string   `json:"id"`
		Title            string   `json:"title"`
		Amount           float64  `json:"amount"`
		Category         Category `json:"category"`
		Notes            *string  `json:"notes,omitempty"`
		ReceiptImagePath *string  `json:"receiptImagePath,omitempty"`
		Timestamp        int64    `json:"timestamp"` // epoch milliseconds
	}
)

var (
	ErrEmptyTitle      = errors.New("title cannot be empty")
	ErrInvalidAmount   = errors.New("amount must be greater than 0")
	ErrNotesTooLong    = errors.New("notes cannot exceed 100 characters")
	ErrUnknownCategory = errors.New("unknown expense category")
)

var categories = []Category{Staff, Travel, Food, Utility}

var displayNames = map[Category]string{
	Staff:   "Staff",
	Travel:  "Travel",
	Food:    "Food",
	Utility: "Utility",
}

// Categories returns every category in declaration order.
func Categories() []Category {
	return append([]Category(nil), categories...)
}

// DisplayName returns the human readable name of the category.
func (c Category) DisplayName() string {
	if name, ok := displayNames[c]; ok {
		return name
	}
	return string(c)
}

func (c Category) String() string {
	return string(c)
}

// IsValid reports whether c belongs to the closed category set.
func (c Category) IsValid() bool {
	_, ok := displayNames[c]
	return ok
}

// ParseCategory matches a category by name or display name, ignoring case.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrUnknownCategory
	}
	for _, c := range categories {
		if strings.EqualFold(string(c), s) || strings.EqualFold(c.DisplayName(), s) {
			return c, nil
		}
	}
	return "", ErrUnknownCategory
}

// NewExpense builds a validated expense stamped with now.
// Title is trimmed and blank notes or receipt paths are dropped.
func NewExpense(title string, amount float64, category Category, notes, receiptPath *string, now time.Time) (Expense, error) {
	e := Expense{
		ID:               uuid.NewString(),
		Title:            strings.TrimSpace(title),
		Amount:           amount,
		Category:         category,
		Notes:            trimOptional(notes),
		ReceiptImagePath: trimOptional(receiptPath),
		Timestamp:        now.UnixMilli(),
	}
	if err := e.Validate(); err != nil {
		return Expense{}, err
	}
	return e, nil
}

// Validate checks the stored invariants. Lengths count characters, not bytes.
func (e Expense) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return ErrEmptyTitle
	}
	if !(e.Amount > 0) {
		return ErrInvalidAmount
	}
	if e.Notes != nil && utf8.RuneCountInString(*e.Notes) > MaxNotesLength {
		return ErrNotesTooLong
	}
	if !e.Category.IsValid() {
		return ErrUnknownCategory
	}
	return nil
}

// Time returns the expense instant in loc.
func (e Expense) Time(loc *time.Location) time.Time {
	return time.UnixMilli(e.Timestamp).In(loc)
}

// Day returns the calendar day of the expense in loc.
func (e Expense) Day(loc *time.Location) Day {
	return DayOf(e.Timestamp, loc)
}

// NotesValue returns the notes or an empty string.
func (e Expense) NotesValue() string {
	if e.Notes == nil {
		return ""
	}
	return *e.Notes
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
