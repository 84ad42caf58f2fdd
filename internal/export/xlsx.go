package export

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"smartspend/internal/report"
)

// XLSXExporter writes one worksheet per table.
type XLSXExporter struct {
	loc *time.Location
}

func NewXLSX(loc *time.Location) *XLSXExporter { return &XLSXExporter{loc: loc} }

func (*XLSXExporter) Type() ExportType { return Excel }
func (*XLSXExporter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}
func (*XLSXExporter) Extension() string { return "xlsx" }

func (x *XLSXExporter) Write(ctx context.Context, w io.Writer, a report.Analytics) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, t := range Tables(a, x.loc) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if i == 0 {
			if err := f.SetSheetName("Sheet1", t.Name); err != nil {
				return fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(t.Name); err != nil {
			return fmt.Errorf("new sheet %s: %w", t.Name, err)
		}
		if err := writeSheet(f, t); err != nil {
			return err
		}
	}
	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, t Table) error {
	header := make([]any, len(t.Header))
	for i, h := range t.Header {
		header[i] = h
	}
	if err := f.SetSheetRow(t.Name, "A1", &header); err != nil {
		return fmt.Errorf("write %s header: %w", t.Name, err)
	}
	for r, row := range t.Rows {
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		values := row
		if err := f.SetSheetRow(t.Name, cell, &values); err != nil {
			return fmt.Errorf("write %s row %d: %w", t.Name, r+2, err)
		}
	}
	last, _ := excelize.ColumnNumberToName(len(t.Header))
	_ = f.SetColWidth(t.Name, "A", last, 18)
	return nil
}
