// Package sheets loads accounts and transactions from a Google
// Spreadsheet, one sheet per collection. It is a read-only data source:
// mutations stay in the engine and reach other backends via the event
// queue.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"kivo/internal/core"
	"kivo/internal/datasource"
)

type Client struct {
	svc               *gsheet.Service
	spreadsheetID     string
	accountsSheet     string
	transactionsSheet string
}

var _ datasource.Source = (*Client)(nil)

// NewFromEnv creates a Sheets client from environment variables.
// Required: GOOGLE_SPREADSHEET_ID plus service account credentials
// (GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS). Sheet names default to "Accounts" and
// "Transactions".
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	accountsSheet := strings.TrimSpace(os.Getenv("GOOGLE_ACCOUNTS_SHEET_NAME"))
	if accountsSheet == "" {
		accountsSheet = "Accounts"
	}
	transactionsSheet := strings.TrimSpace(os.Getenv("GOOGLE_TRANSACTIONS_SHEET_NAME"))
	if transactionsSheet == "" {
		transactionsSheet = "Transactions"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:               svc,
		spreadsheetID:     spreadsheetID,
		accountsSheet:     accountsSheet,
		transactionsSheet: transactionsSheet,
	}, nil
}

// newSheetsService initializes a Sheets Service using Service Account
// credentials.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// LoadAccounts reads the accounts sheet. Rows that cannot be parsed are
// skipped with a warning so one bad row doesn't take the dashboard down.
func (c *Client) LoadAccounts(ctx context.Context) ([]core.Account, error) {
	readRange := fmt.Sprintf("%s!A2:G", c.accountsSheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, readRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read accounts range: %w", err)
	}

	var accounts []core.Account
	for i, row := range resp.Values {
		cells := toStrings(row)
		if isBlank(cells) {
			continue
		}
		account, err := parseAccountRow(cells)
		if err != nil {
			slog.WarnContext(ctx, "Skipping unparseable account row",
				"sheet", c.accountsSheet,
				"row", i+2,
				"error", err)
			continue
		}
		accounts = append(accounts, account)
	}
	return accounts, nil
}

// LoadTransactions reads the transactions sheet, most recent first.
func (c *Client) LoadTransactions(ctx context.Context) ([]core.Transaction, error) {
	readRange := fmt.Sprintf("%s!A2:L", c.transactionsSheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, readRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read transactions range: %w", err)
	}

	var txns []core.Transaction
	for i, row := range resp.Values {
		cells := toStrings(row)
		if isBlank(cells) {
			continue
		}
		txn, err := parseTransactionRow(cells)
		if err != nil {
			slog.WarnContext(ctx, "Skipping unparseable transaction row",
				"sheet", c.transactionsSheet,
				"row", i+2,
				"error", err)
			continue
		}
		txns = append(txns, txn)
	}
	sortTransactions(txns)
	return txns, nil
}
