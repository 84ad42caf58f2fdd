package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"smartspend/internal/core"
	"smartspend/internal/report"
)

var now = time.Date(2025, 6, 18, 15, 0, 0, 0, time.UTC)

func sampleReport() report.Analytics {
	day := core.NewDay(2025, time.June, 17)
	notes := "with client"
	expenses := []core.Expense{
		{ID: "1", Title: "Lunch", Amount: 250.5, Category: core.Food, Notes: &notes, Timestamp: day.Start(time.UTC).Add(13 * time.Hour).UnixMilli()},
		{ID: "2", Title: "Cab", Amount: 120, Category: core.Travel, Timestamp: day.Start(time.UTC).Add(18 * time.Hour).UnixMilli()},
	}
	return report.Compute(expenses, report.Options{Now: now, Location: time.UTC})
}

func TestParseType(t *testing.T) {
	tests := []struct {
		in      string
		want    ExportType
		wantErr bool
	}{
		{"csv", CSV, false},
		{"XLSX", Excel, false},
		{"excel", Excel, false},
		{"pdf", PDF, false},
		{"doc", "", true},
	}
	for _, tt := range tests {
		got, err := ParseType(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Fatalf("ParseType(%q) = %q, %v", tt.in, got, err)
		}
	}
	if SuccessMessage(Excel) != "Report exported successfully as Excel Spreadsheet" {
		t.Fatalf("unexpected message %q", SuccessMessage(Excel))
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(NewCSV(time.UTC), NewXLSX(time.UTC))
	if _, err := r.Get(CSV); err != nil {
		t.Fatalf("Get(CSV): %v", err)
	}
	if _, err := r.Get(PDF); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("Get(PDF) should be unsupported, got %v", err)
	}
	x, _ := r.Get(Excel)
	if got := FileName(sampleReport(), x); got != "smartspend-report-2025-06-12_2025-06-18.xlsx" {
		t.Fatalf("FileName = %q", got)
	}
}

func TestCSVExport(t *testing.T) {
	var buf bytes.Buffer
	if err := NewCSV(time.UTC).Write(context.Background(), &buf, sampleReport()); err != nil {
		t.Fatalf("Write: %v", err)
	}

	r := csv.NewReader(strings.NewReader(buf.String()))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		t.Fatalf("invalid csv: %v", err)
	}
	if records[0][0] != "Summary" {
		t.Fatalf("first record %v", records[0])
	}

	out := buf.String()
	for _, want := range []string{"Total Spent,370.50", "Food,250.50,1,67.6%", "2025-06-17,13:00,Lunch,Food,250.50,with client,"} {
		if !strings.Contains(out, want) {
			t.Fatalf("csv missing %q:\n%s", want, out)
		}
	}
}

func TestXLSXExport(t *testing.T) {
	var buf bytes.Buffer
	if err := NewXLSX(time.UTC).Write(context.Background(), &buf, sampleReport()); err != nil {
		t.Fatalf("Write: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	want := []string{"Summary", "Daily Totals", "Categories", "Insights", "Recommendations", "Expenses"}
	if strings.Join(sheets, ",") != strings.Join(want, ",") {
		t.Fatalf("sheets = %v", sheets)
	}
	title, err := f.GetCellValue("Expenses", "C3")
	if err != nil || title != "Cab" {
		t.Fatalf("Expenses!C3 = %q, %v", title, err)
	}
	days, err := f.GetRows("Daily Totals")
	if err != nil || len(days) != 8 {
		t.Fatalf("daily rows = %d, %v", len(days), err)
	}
}

func TestExportStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := NewCSV(time.UTC).Write(ctx, &bytes.Buffer{}, sampleReport()); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestFilePublisherReplacesReport(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	p := NewFilePublisher(dir, NewCSV(time.UTC))
	if p.Name() != "file:csv" {
		t.Fatalf("Name() = %q", p.Name())
	}
	for i := 0; i < 2; i++ {
		if err := p.Publish(context.Background(), sampleReport()); err != nil {
			t.Fatalf("Publish: %v", err)
		}
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "smartspend-report-2025-06-12_2025-06-18.csv" {
		t.Fatalf("unexpected files %v", entries)
	}
	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), "Lunch") {
		t.Fatalf("report missing expense rows")
	}
}
