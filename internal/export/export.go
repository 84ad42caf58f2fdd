// Package export renders a computed report as downloadable files.
package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"smartspend/internal/report"
)

// ExportType is the user-facing export choice.
type ExportType string

const (
	PDF   ExportType = "PDF"
	CSV   ExportType = "CSV"
	Excel ExportType = "EXCEL"
)

var (
	ErrUnknownType = errors.New("unknown export type")
	ErrUnsupported = errors.New("export type not supported")
)

var exportNames = map[ExportType]string{
	PDF:   "PDF Report",
	CSV:   "CSV Data",
	Excel: "Excel Spreadsheet",
}

func (t ExportType) DisplayName() string {
	if n, ok := exportNames[t]; ok {
		return n
	}
	return string(t)
}

// ParseType accepts the type name or a file extension, ignoring case.
func ParseType(s string) (ExportType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pdf":
		return PDF, nil
	case "csv":
		return CSV, nil
	case "excel", "xlsx":
		return Excel, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownType, s)
}

// SuccessMessage is shown once after a report was exported.
func SuccessMessage(t ExportType) string {
	return fmt.Sprintf("Report exported successfully as %s", t.DisplayName())
}

// Exporter writes one file format.
type Exporter interface {
	Type() ExportType
	ContentType() string
	Extension() string
	Write(ctx context.Context, w io.Writer, a report.Analytics) error
}

// Publisher pushes a report to an external destination.
type Publisher interface {
	Name() string
	Publish(ctx context.Context, a report.Analytics) error
}

// Registry resolves exporters by type.
type Registry struct {
	exporters map[ExportType]Exporter
}

func NewRegistry(exporters ...Exporter) *Registry {
	r := &Registry{exporters: make(map[ExportType]Exporter, len(exporters))}
	for _, e := range exporters {
		r.exporters[e.Type()] = e
	}
	return r
}

func (r *Registry) Get(t ExportType) (Exporter, error) {
	if e, ok := r.exporters[t]; ok {
		return e, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, t.DisplayName())
}

// FileName names an export after the report range.
func FileName(a report.Analytics, e Exporter) string {
	return fmt.Sprintf("smartspend-report-%s_%s.%s", a.Range.Start, a.Range.End, e.Extension())
}
