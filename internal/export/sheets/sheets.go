// Package sheets appends stored transactions to a Google Sheets
// spreadsheet using service-account credentials. Export is one-way and
// best effort; SQLite remains the source of truth.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"finboard/internal/config"
	"finboard/internal/core"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// New creates a Sheets client from the export section of the config.
// Credentials come from GOOGLE_CREDENTIALS_JSON or GOOGLE_CREDENTIALS_FILE.
func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	if strings.TrimSpace(cfg.GoogleSpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet ID")
	}

	sheetName := strings.TrimSpace(cfg.GoogleSheetName)
	if sheetName == "" {
		sheetName = "Transactions"
	}

	svc, err := newSheetsService(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: cfg.GoogleSpreadsheetID,
		sheetName:     sheetName,
	}, nil
}

func newSheetsService(ctx context.Context, cfg *config.Config) (*gsheet.Service, error) {
	var opts []goption.ClientOption
	switch {
	case strings.TrimSpace(cfg.GoogleCredentialsJSON) != "":
		opts = append(opts, goption.WithCredentialsJSON([]byte(cfg.GoogleCredentialsJSON)))
	case strings.TrimSpace(cfg.GoogleCredentialsFile) != "":
		opts = append(opts, goption.WithCredentialsFile(cfg.GoogleCredentialsFile))
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_CREDENTIALS_JSON or GOOGLE_CREDENTIALS_FILE)")
	}
	opts = append(opts, goption.WithScopes(gsheet.SpreadsheetsScope))

	service, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// AppendTransaction appends one transaction as a spreadsheet row and
// returns the range the API reports for it.
func (c *Client) AppendTransaction(ctx context.Context, t core.Transaction) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	if err := t.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}

	vr := &gsheet.ValueRange{Values: [][]any{transactionRow(t)}}

	rng := fmt.Sprintf("%s!A:H", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append to sheet %s: %w", c.sheetName, err)
	}

	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		return resp.Updates.UpdatedRange, nil
	}
	return rng, nil
}

func transactionRow(t core.Transaction) []any {
	recurring := ""
	if t.IsRecurring {
		recurring = "yes"
	}
	return []any{
		t.Date,
		t.Merchant,
		t.Amount.Float(),
		t.Category,
		string(t.Type),
		recurring,
		t.Description,
		t.ID,
	}
}
