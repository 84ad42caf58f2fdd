package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"smartspend/internal/report"
)

// CSVExporter writes every table into one file, each preceded by its name
// and separated by an empty record.
type CSVExporter struct {
	loc *time.Location
}

func NewCSV(loc *time.Location) *CSVExporter { return &CSVExporter{loc: loc} }

func (*CSVExporter) Type() ExportType    { return CSV }
func (*CSVExporter) ContentType() string { return "text/csv; charset=utf-8" }
func (*CSVExporter) Extension() string   { return "csv" }

func (x *CSVExporter) Write(ctx context.Context, w io.Writer, a report.Analytics) error {
	cw := csv.NewWriter(w)
	for i, t := range Tables(a, x.loc) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if i > 0 {
			if err := cw.Write([]string{}); err != nil {
				return fmt.Errorf("write csv: %w", err)
			}
		}
		if err := cw.Write([]string{t.Name}); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
		if err := cw.Write(t.Header); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
		for _, row := range t.Rows {
			if err := cw.Write(cellStrings(row)); err != nil {
				return fmt.Errorf("write csv: %w", err)
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func cellStrings(row []any) []string {
	out := make([]string, len(row))
	for i, v := range row {
		out[i] = cellString(v)
	}
	return out
}

func cellString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return decimal.NewFromFloat(x).StringFixed(2)
	case int:
		return strconv.Itoa(x)
	default:
		return fmt.Sprint(x)
	}
}
