// Package memory is the mocked data source: a fixed seed of accounts and
// transactions served from memory behind a simulated fetch latency. It is
// the default backend and the one the original dashboard shipped with.
package memory

import (
	"context"
	"sync"
	"time"

	"kivo/internal/core"
	"kivo/internal/datasource"
)

// DefaultLatency matches the simulated fetch delay of the original client.
const DefaultLatency = 1000 * time.Millisecond

type Store struct {
	mu       sync.Mutex
	latency  time.Duration
	accounts []core.Account
	txns     []core.Transaction
}

// New returns a store seeded with the demo fixture. Seed dates are laid out
// relative to now so the dashboard always has today/this-month activity.
func New(latency time.Duration, now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	accounts, txns := seed(now())
	return &Store{latency: latency, accounts: accounts, txns: txns}
}

// NewWithData returns a store serving the given collections as-is.
func NewWithData(latency time.Duration, accounts []core.Account, txns []core.Transaction) *Store {
	return &Store{latency: latency, accounts: accounts, txns: txns}
}

func (s *Store) LoadAccounts(ctx context.Context) ([]core.Account, error) {
	if err := datasource.Wait(ctx, s.latency); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Account(nil), s.accounts...), nil
}

func (s *Store) LoadTransactions(ctx context.Context) ([]core.Transaction, error) {
	if err := datasource.Wait(ctx, s.latency); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction(nil), s.txns...), nil
}

// seed reproduces the demo data of the original dashboard: two accounts and
// six transactions spread over the last three days, most recent first.
func seed(now time.Time) ([]core.Account, []core.Transaction) {
	day := func(offset int) time.Time { return now.AddDate(0, 0, offset) }

	accounts := []core.Account{
		{
			ID:        "acc-1",
			Name:      "Conta Corrente",
			Type:      core.AccountChecking,
			Color:     "#6366f1",
			Icon:      "🏦",
			CreatedAt: day(-30),
		},
		{
			ID:        "acc-2",
			Name:      "Carteira",
			Type:      core.AccountWallet,
			Color:     "#22c55e",
			Icon:      "👛",
			CreatedAt: day(-30),
		},
	}

	txns := []core.Transaction{
		{ID: "1", Description: "Supermercado Extra", Amount: core.Money{Cents: 23450}, Type: core.Expense, Category: core.CategoryFood, AccountID: "acc-1", Date: day(0), CreatedAt: day(0)},
		{ID: "2", Description: "Salário", Amount: core.Money{Cents: 550000}, Type: core.Income, Category: core.CategorySalary, AccountID: "acc-1", Date: day(0), CreatedAt: day(0)},
		{ID: "3", Description: "Uber", Amount: core.Money{Cents: 2890}, Type: core.Expense, Category: core.CategoryTransport, AccountID: "acc-1", Date: day(0), CreatedAt: day(0)},
		{ID: "4", Description: "Netflix", Amount: core.Money{Cents: 3990}, Type: core.Expense, Category: core.CategoryEntertainment, AccountID: "acc-1", Date: day(-1), CreatedAt: day(-1)},
		{ID: "5", Description: "Freelance", Amount: core.Money{Cents: 120000}, Type: core.Income, Category: core.CategoryOther, AccountID: "acc-2", Date: day(-2), CreatedAt: day(-2)},
		{ID: "6", Description: "Conta de luz", Amount: core.Money{Cents: 14580}, Type: core.Expense, Category: core.CategoryBills, AccountID: "acc-2", Date: day(-3), CreatedAt: day(-3)},
	}

	return accounts, txns
}
