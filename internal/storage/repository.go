// Package storage persists accounts and transactions in SQLite. It serves
// two roles: a durable data source for the finance engine and the write
// target of the sync worker mirroring queued finance events.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"kivo/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// LoadAccounts implements datasource.AccountLoader. Balances come back as
// the initial balance; the engine derives the current one from the
// transaction set.
func (r *SQLiteRepository) LoadAccounts(ctx context.Context) ([]core.Account, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, type, color, icon, initial_balance_cents, created_at
		FROM accounts
		ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []core.Account
	for rows.Next() {
		var (
			a         core.Account
			createdAt string
		)
		if err := rows.Scan(&a.ID, &a.Name, &a.Type, &a.Color, &a.Icon, &a.InitialBalance.Cents, &createdAt); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		if a.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("account %s: %w", a.ID, err)
		}
		a.Balance = a.InitialBalance
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// LoadTransactions implements datasource.TransactionLoader, most recent
// first to match the engine's ordering.
func (r *SQLiteRepository) LoadTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, description, amount_cents, type, category, account_id, date, created_at,
		       is_foreign_currency, original_amount_cents, original_currency, converted_amount_cents
		FROM transactions
		ORDER BY date DESC, created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var txns []core.Transaction
	for rows.Next() {
		var (
			t               core.Transaction
			date, createdAt string
		)
		if err := rows.Scan(
			&t.ID, &t.Description, &t.Amount.Cents, &t.Type, &t.Category, &t.AccountID,
			&date, &createdAt,
			&t.ForeignCurrency, &t.OriginalAmount.Cents, &t.OriginalCurrency, &t.ConvertedAmount.Cents,
		); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		if t.Date, err = parseTime(date); err != nil {
			return nil, fmt.Errorf("transaction %s: %w", t.ID, err)
		}
		if t.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("transaction %s: %w", t.ID, err)
		}
		txns = append(txns, t)
	}
	return txns, rows.Err()
}

// UpsertTransaction writes the full record, replacing any previous version.
// Events can be redelivered or arrive out of order, so upsert semantics
// keep the mirror convergent.
func (r *SQLiteRepository) UpsertTransaction(ctx context.Context, t core.Transaction) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (
			id, description, amount_cents, type, category, account_id, date, created_at,
			is_foreign_currency, original_amount_cents, original_currency, converted_amount_cents
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			description = excluded.description,
			amount_cents = excluded.amount_cents,
			type = excluded.type,
			category = excluded.category,
			account_id = excluded.account_id,
			date = excluded.date,
			is_foreign_currency = excluded.is_foreign_currency,
			original_amount_cents = excluded.original_amount_cents,
			original_currency = excluded.original_currency,
			converted_amount_cents = excluded.converted_amount_cents`,
		t.ID, t.Description, t.Amount.Cents, t.Type, t.Category, t.AccountID,
		formatTime(t.Date), formatTime(t.CreatedAt),
		t.ForeignCurrency, t.OriginalAmount.Cents, t.OriginalCurrency, t.ConvertedAmount.Cents,
	)
	if err != nil {
		return fmt.Errorf("upsert transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", t.ID,
		"description", t.Description,
		"amount_cents", t.EffectiveAmount().Cents)
	return nil
}

// DeleteTransaction removes the record. Unknown ids are not an error: a
// redelivered delete event must stay idempotent.
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		slog.DebugContext(ctx, "Delete for unknown transaction", "id", id)
	}
	return nil
}

// UpsertAccount writes the account record. The derived balance is never
// persisted, only the initial one.
func (r *SQLiteRepository) UpsertAccount(ctx context.Context, a core.Account) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO accounts (id, name, type, color, icon, initial_balance_cents, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			type = excluded.type,
			color = excluded.color,
			icon = excluded.icon,
			initial_balance_cents = excluded.initial_balance_cents`,
		a.ID, a.Name, a.Type, a.Color, a.Icon, a.InitialBalance.Cents, formatTime(a.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("upsert account: %w", err)
	}

	slog.InfoContext(ctx, "Account saved to SQLite", "id", a.ID, "name", a.Name)
	return nil
}

// GetTransaction retrieves a single transaction by id, core.ErrNotFound
// when missing.
func (r *SQLiteRepository) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, description, amount_cents, type, category, account_id, date, created_at,
		       is_foreign_currency, original_amount_cents, original_currency, converted_amount_cents
		FROM transactions
		WHERE id = ?`, id)

	var (
		t               core.Transaction
		date, createdAt string
	)
	err := row.Scan(
		&t.ID, &t.Description, &t.Amount.Cents, &t.Type, &t.Category, &t.AccountID,
		&date, &createdAt,
		&t.ForeignCurrency, &t.OriginalAmount.Cents, &t.OriginalCurrency, &t.ConvertedAmount.Cents,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	if t.Date, err = parseTime(date); err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", t.ID, err)
	}
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", t.ID, err)
	}
	return t, nil
}

// Timestamps are stored as RFC 3339 text so the rows stay readable with the
// sqlite CLI.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}
