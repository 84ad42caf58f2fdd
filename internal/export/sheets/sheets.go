// Package sheets publishes computed reports to a Google Sheets tab.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"smartspend/internal/export"
	"smartspend/internal/log"
	"smartspend/internal/report"
)

type Config struct {
	SpreadsheetID      string
	SheetName          string
	ServiceAccountJSON string
	ServiceAccountFile string
	Location           *time.Location
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	loc           *time.Location
	logger        *log.Logger
}

var _ export.Publisher = (*Client)(nil)

// New creates a client authenticated with service account credentials
// from cfg. Extra options are appended (endpoint overrides in tests).
func New(ctx context.Context, cfg Config, logger *log.Logger, opts ...goption.ClientOption) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if cfg.SheetName == "" {
		cfg.SheetName = "Report"
	}
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentSheets)

	if len(opts) == 0 {
		creds, err := credentials(cfg)
		if err != nil {
			return nil, err
		}
		opts = []goption.ClientOption{
			goption.WithCredentialsJSON(creds),
			goption.WithScopes(gsheet.SpreadsheetsScope),
		}
	}
	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	logger.InfoContext(ctx, "Google Sheets service created", "sheet", cfg.SheetName)

	return &Client{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		sheetName:     cfg.SheetName,
		loc:           cfg.Location,
		logger:        logger,
	}, nil
}

func credentials(cfg Config) ([]byte, error) {
	switch {
	case strings.TrimSpace(cfg.ServiceAccountJSON) != "":
		return []byte(cfg.ServiceAccountJSON), nil
	case strings.TrimSpace(cfg.ServiceAccountFile) != "":
		b, err := os.ReadFile(cfg.ServiceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	}
	return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
}

func (c *Client) Name() string { return "sheets:" + c.sheetName }

// Publish replaces the tab contents with the report tables.
func (c *Client) Publish(ctx context.Context, a report.Analytics) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	all := fmt.Sprintf("%s!A:Z", c.sheetName)
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, all, &gsheet.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear %s: %w", all, err)
	}

	values := Values(export.Tables(a, c.loc))
	rng := fmt.Sprintf("%s!A1", c.sheetName)
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, &gsheet.ValueRange{Values: values}).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update %s: %w", rng, err)
	}

	c.logger.InfoContext(ctx, "Report published to sheet",
		log.FieldPeriod, a.PeriodLabel,
		"rows", len(values))
	return nil
}

// ReadSummary reads back the summary block of the last published report.
func (c *Client) ReadSummary(ctx context.Context) (Summary, error) {
	if c.svc == nil {
		return Summary{}, errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!A1:B20", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return Summary{}, fmt.Errorf("read %s: %w", rng, err)
	}
	return ParseSummary(resp.Values)
}

// Values flattens tables into sheet rows: name, header, rows and a blank
// separator row between tables.
func Values(tables []export.Table) [][]any {
	var out [][]any
	for i, t := range tables {
		if i > 0 {
			out = append(out, []any{})
		}
		out = append(out, []any{t.Name})
		header := make([]any, len(t.Header))
		for j, h := range t.Header {
			header[j] = h
		}
		out = append(out, header)
		out = append(out, t.Rows...)
	}
	return out
}
