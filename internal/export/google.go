package export

import (
	"context"
	"errors"
	"fmt"
	"os"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"fintrack/internal/config"
	"fintrack/internal/core"
)

// GoogleClient appends expense rows to one sheet of a spreadsheet.
// Columns: date, owner, category, description, amount (decimal).
type GoogleClient struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

var _ Ledger = (*GoogleClient)(nil)

// NewGoogleClient builds a Sheets client from the service-account
// credentials in the configuration.
func NewGoogleClient(ctx context.Context, cfg *config.Config) (*GoogleClient, error) {
	if cfg.GoogleSpreadsheetID == "" {
		return nil, errors.New("missing spreadsheet id")
	}

	var credentialsJSON []byte
	switch {
	case cfg.GoogleServiceAccountJSON != "":
		credentialsJSON = []byte(cfg.GoogleServiceAccountJSON)
	case cfg.GoogleServiceAccountFile != "":
		data, err := os.ReadFile(cfg.GoogleServiceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = data
	default:
		return nil, errors.New("missing service account credentials")
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &GoogleClient{
		svc:           svc,
		spreadsheetID: cfg.GoogleSpreadsheetID,
		sheetName:     cfg.GoogleSheetName,
	}, nil
}

func (c *GoogleClient) AppendExpense(ctx context.Context, owner string, e core.Expense) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	// Find the next empty row from the sheet's current dimensions.
	rng := fmt.Sprintf("%s!A:A", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("get sheet dimensions for %s: %w", c.sheetName, err)
	}
	nextRow := len(resp.Values) + 1

	dataRange := fmt.Sprintf("%s!A%d:E%d", c.sheetName, nextRow, nextRow)
	vr := &gsheet.ValueRange{Values: [][]any{{
		e.Date.String(),
		owner,
		string(e.Category),
		e.Description,
		e.Amount.Decimal(),
	}}}

	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, dataRange, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("update %s: %w", dataRange, err)
	}

	return dataRange, nil
}
