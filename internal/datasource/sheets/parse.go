package sheets

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"kivo/internal/core"
)

// Accounts sheet columns:
//
//	A id | B name | C type | D color | E icon | F initial balance | G created at
//
// Transactions sheet columns:
//
//	A id | B description | C amount | D type | E category | F account id
//	G date | H created at | I foreign flag | J original amount
//	K original currency | L converted amount
const (
	accID = iota
	accName
	accType
	accColor
	accIcon
	accInitialBalance
	accCreatedAt
)

const (
	txnID = iota
	txnDescription
	txnAmount
	txnType
	txnCategory
	txnAccountID
	txnDate
	txnCreatedAt
	txnForeign
	txnOriginalAmount
	txnOriginalCurrency
	txnConvertedAmount
)

func parseAccountRow(cells []string) (core.Account, error) {
	id := safeGet(cells, accID)
	name := safeGet(cells, accName)
	if id == "" || name == "" {
		return core.Account{}, fmt.Errorf("missing id or name")
	}

	accountType := core.AccountType(safeGet(cells, accType))
	if !accountType.Valid() {
		return core.Account{}, fmt.Errorf("unknown account type %q", safeGet(cells, accType))
	}

	initial, err := parseCents(safeGet(cells, accInitialBalance))
	if err != nil {
		return core.Account{}, fmt.Errorf("initial balance: %w", err)
	}

	createdAt, err := parseDate(safeGet(cells, accCreatedAt))
	if err != nil {
		return core.Account{}, fmt.Errorf("created at: %w", err)
	}

	return core.Account{
		ID:             id,
		Name:           name,
		Type:           accountType,
		Balance:        core.Money{Cents: initial},
		Color:          safeGet(cells, accColor),
		Icon:           safeGet(cells, accIcon),
		InitialBalance: core.Money{Cents: initial},
		CreatedAt:      createdAt,
	}, nil
}

func parseTransactionRow(cells []string) (core.Transaction, error) {
	id := safeGet(cells, txnID)
	description := safeGet(cells, txnDescription)
	if id == "" || description == "" {
		return core.Transaction{}, fmt.Errorf("missing id or description")
	}

	txnTyp := core.TransactionType(safeGet(cells, txnType))
	if !txnTyp.Valid() {
		return core.Transaction{}, fmt.Errorf("unknown transaction type %q", safeGet(cells, txnType))
	}

	amount, err := parseCents(safeGet(cells, txnAmount))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("amount: %w", err)
	}

	date, err := parseDate(safeGet(cells, txnDate))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("date: %w", err)
	}
	createdAt, err := parseDate(safeGet(cells, txnCreatedAt))
	if err != nil {
		createdAt = date
	}

	t := core.Transaction{
		ID:          id,
		Description: description,
		Amount:      core.Money{Cents: amount},
		Type:        txnTyp,
		Category:    core.Category(safeGet(cells, txnCategory)),
		AccountID:   safeGet(cells, txnAccountID),
		Date:        date,
		CreatedAt:   createdAt,
	}

	if parseBool(safeGet(cells, txnForeign)) {
		original, err := parseCents(safeGet(cells, txnOriginalAmount))
		if err != nil {
			return core.Transaction{}, fmt.Errorf("original amount: %w", err)
		}
		converted, err := parseCents(safeGet(cells, txnConvertedAmount))
		if err != nil {
			return core.Transaction{}, fmt.Errorf("converted amount: %w", err)
		}
		t.ForeignCurrency = true
		t.OriginalAmount = core.Money{Cents: original}
		t.OriginalCurrency = core.Currency(strings.ToUpper(safeGet(cells, txnOriginalCurrency)))
		t.ConvertedAmount = core.Money{Cents: converted}
	}

	return t, nil
}

// sortTransactions orders most recent first, matching the engine's
// collection ordering.
func sortTransactions(txns []core.Transaction) {
	sort.SliceStable(txns, func(i, j int) bool {
		if !txns[i].Date.Equal(txns[j].Date) {
			return txns[i].Date.After(txns[j].Date)
		}
		return txns[i].CreatedAt.After(txns[j].CreatedAt)
	})
}

// parseCents accepts the decimal formats of ParseDecimalToCents plus the
// empty and zero cells a spreadsheet naturally contains.
func parseCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "0" || s == "0.00" || s == "0,00" {
		return 0, nil
	}
	return core.ParseDecimalToCents(s)
}

var dateLayouts = []string{time.RFC3339, "2006-01-02", "02/01/2006"}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "1", "sim":
		return true
	}
	return false
}

func toStrings(row []interface{}) []string {
	out := make([]string, len(row))
	for i, v := range row {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func safeGet(cells []string, i int) string {
	if i < 0 || i >= len(cells) {
		return ""
	}
	return cells[i]
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}
