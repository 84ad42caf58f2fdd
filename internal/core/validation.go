package core

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	ErrTitleRequired = errors.New("title is required")
	ErrTitleTooShort = errors.New("title must be at least 2 characters")
	ErrTitleTooLong  = errors.New("title must be less than 50 characters")
)

// EntryForm is the raw input of the add-expense workflow.
type EntryForm struct {
	Title       string `validate:"required,min=2,max=50"`
	Amount      string `validate:"required"`
	Category    string `validate:"required,oneof=STAFF TRAVEL FOOD UTILITY"`
	Notes       string `validate:"max=100"`
	ReceiptPath string
}

// ValidationError carries one message per invalid form field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func formValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks every field and returns a *ValidationError listing all
// problems, or nil. Category is compared after upper-casing.
func (f EntryForm) Validate() error {
	normalized := f
	normalized.Title = strings.TrimSpace(f.Title)
	normalized.Category = strings.ToUpper(strings.TrimSpace(f.Category))

	fields := map[string]string{}
	if err := formValidator().Struct(normalized); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			fields[strings.ToLower(fe.Field())] = fieldMessage(fe)
		}
	}
	if _, ok := fields["amount"]; !ok {
		if _, err := ParseAmount(f.Amount); err != nil {
			fields["amount"] = err.Error()
		}
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// ToExpense validates the form and builds the expense it describes.
func (f EntryForm) ToExpense(now time.Time) (Expense, error) {
	if err := f.Validate(); err != nil {
		return Expense{}, err
	}
	amount, _ := ParseAmount(f.Amount)
	category, _ := ParseCategory(f.Category)
	notes, receipt := f.Notes, f.ReceiptPath
	e, err := NewExpense(f.Title, amount, category, &notes, &receipt, now)
	if err != nil {
		return Expense{}, AsValidationError(err)
	}
	return e, nil
}

// AsValidationError turns a domain rule violation into a *ValidationError
// keyed by the offending field. Other errors are returned unchanged.
func AsValidationError(err error) error {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return err
	}
	field := ""
	switch {
	case errors.Is(err, ErrEmptyTitle):
		field = "title"
	case errors.Is(err, ErrInvalidAmount):
		field = "amount"
	case errors.Is(err, ErrNotesTooLong):
		field = "notes"
	case errors.Is(err, ErrUnknownCategory):
		field = "category"
	default:
		return err
	}
	return &ValidationError{Fields: map[string]string{field: err.Error()}}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Field() {
	case "Title":
		switch fe.Tag() {
		case "required":
			return ErrTitleRequired.Error()
		case "min":
			return ErrTitleTooShort.Error()
		case "max":
			return ErrTitleTooLong.Error()
		}
	case "Amount":
		return ErrAmountRequired.Error()
	case "Category":
		return "please select a category"
	case "Notes":
		return ErrNotesTooLong.Error()
	}
	return fe.Tag()
}
