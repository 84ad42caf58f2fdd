package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"smartspend/internal/core"
	"smartspend/internal/report"
	"smartspend/internal/services"
)

// maxBodyBytes bounds every request body the API reads.
const maxBodyBytes = 1 << 20

var errBadRequest = errors.New("malformed request")

// RequestBodyParser reads a body once and exposes its fields whether it was
// sent as JSON or as form-encoded data.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser reads at most maxBodyBytes from r.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if p.err == nil && len(p.body) > maxBodyBytes {
		p.err = fmt.Errorf("%w: body exceeds %d bytes", errBadRequest, maxBodyBytes)
	}
	return p
}

// Parse decodes the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	trimmed := strings.TrimSpace(string(p.body))
	if trimmed == "" {
		p.formData = url.Values{}
		return nil
	}

	if strings.HasPrefix(trimmed, "{") || strings.Contains(p.contentType, "application/json") {
		p.jsonData = make(map[string]any)
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.err = fmt.Errorf("%w: %v", errBadRequest, err)
			return p.err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(trimmed)
	if p.err != nil {
		p.err = fmt.Errorf("%w: %v", errBadRequest, p.err)
	}
	return p.err
}

// Get returns a sanitized string value from the parsed data.
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// sanitizeInput drops control characters other than tab and newlines and
// trims whitespace.
func sanitizeInput(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s))
}

// ParseEntryForm reads the add and edit expense payload.
func ParseEntryForm(r *http.Request) (core.EntryForm, error) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		return core.EntryForm{}, err
	}
	receipt := p.Get("receiptPath")
	if receipt == "" {
		receipt = p.Get("receiptImagePath")
	}
	return core.EntryForm{
		Title:       p.Get("title"),
		Amount:      p.Get("amount"),
		Category:    p.Get("category"),
		Notes:       p.Get("notes"),
		ReceiptPath: receipt,
	}, nil
}

// ParseListQuery reads the list filters from the query string. Unknown
// categories and malformed dates are rejected; sort and group fall back to
// their defaults.
func ParseListQuery(q url.Values) (services.ListQuery, error) {
	lq := services.ListQuery{
		Query: sanitizeInput(q.Get("q")),
		Sort:  report.ParseSortOrder(q.Get("sort")),
		Group: report.ParseGroupingMode(q.Get("group")),
	}
	if v := strings.TrimSpace(q.Get("date")); v != "" {
		d, err := core.ParseDay(v)
		if err != nil {
			return lq, fmt.Errorf("%w: date %q", errBadRequest, v)
		}
		lq.Date = &d
	}
	if v := strings.TrimSpace(q.Get("category")); v != "" {
		c, err := core.ParseCategory(v)
		if err != nil {
			return lq, fmt.Errorf("%w: %q", err, v)
		}
		lq.Category = &c
	}
	return lq, nil
}

// RangeRequest selects a report period; Start and End apply to CUSTOM.
type RangeRequest struct {
	Period report.Period
	Start  *core.Day
	End    *core.Day
}

// ParseRangeRequest reads period, start and end from a body or query.
func ParseRangeRequest(get func(string) string) (RangeRequest, error) {
	var rr RangeRequest
	raw := get("period")
	if raw == "" {
		raw = string(report.Last7Days)
	}
	p, err := report.ParsePeriod(raw)
	if err != nil {
		return rr, err
	}
	rr.Period = p
	for key, dst := range map[string]**core.Day{"start": &rr.Start, "end": &rr.End} {
		v := get(key)
		if v == "" {
			continue
		}
		d, err := core.ParseDay(v)
		if err != nil {
			return rr, fmt.Errorf("%w: %s %q", errBadRequest, key, v)
		}
		*dst = &d
	}
	if p == report.Custom && (rr.Start == nil || rr.End == nil) {
		return rr, fmt.Errorf("%w: custom range needs start and end", errBadRequest)
	}
	if rr.Start != nil && rr.End != nil && rr.Start.After(*rr.End) {
		return rr, services.ErrInvalidRange
	}
	return rr, nil
}
