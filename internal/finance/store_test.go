package finance

import (
	"context"
	"errors"
	"testing"
	"time"

	"kivo/internal/core"
)

var storeClock = time.Date(2025, 3, 14, 15, 30, 0, 0, time.UTC)

func fixedNow() time.Time { return storeClock }

func testInput(desc string, cents int64) core.TransactionInput {
	return core.TransactionInput{
		Description: desc,
		Amount:      core.Money{Cents: cents},
		Type:        core.Expense,
		Category:    core.CategoryFood,
		AccountID:   "acc-1",
		Date:        storeClock,
	}
}

func TestTransactionStoreAddPrepends(t *testing.T) {
	s := NewTransactionStore(0, fixedNow)
	ctx := context.Background()

	first, err := s.Add(ctx, testInput("Padaria", 1250))
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	second, err := s.Add(ctx, testInput("Mercado", 8900))
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	if first.ID == "" || second.ID == "" {
		t.Fatal("expected generated ids")
	}
	if first.ID == second.ID {
		t.Fatalf("expected distinct ids, both %q", first.ID)
	}
	if !first.CreatedAt.Equal(storeClock) {
		t.Fatalf("CreatedAt = %v, want %v", first.CreatedAt, storeClock)
	}

	got := s.ListAll()
	if len(got) != 2 {
		t.Fatalf("ListAll() returned %d transactions, want 2", len(got))
	}
	if got[0].ID != second.ID || got[1].ID != first.ID {
		t.Fatalf("expected most recent first, got [%s %s]", got[0].Description, got[1].Description)
	}
}

func TestTransactionStoreUpdatePreservesIdentity(t *testing.T) {
	s := NewTransactionStore(0, fixedNow)
	ctx := context.Background()

	orig, err := s.Add(ctx, testInput("Farmácia", 4500))
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	desc := "Farmácia Droga Raia"
	amount := core.Money{Cents: 4790}
	updated, err := s.Update(ctx, orig.ID, core.TransactionPatch{
		Description: &desc,
		Amount:      &amount,
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if updated.ID != orig.ID {
		t.Fatalf("ID changed: %q -> %q", orig.ID, updated.ID)
	}
	if !updated.CreatedAt.Equal(orig.CreatedAt) {
		t.Fatalf("CreatedAt changed: %v -> %v", orig.CreatedAt, updated.CreatedAt)
	}
	if updated.Description != desc {
		t.Fatalf("Description = %q, want %q", updated.Description, desc)
	}
	if updated.Amount.Cents != 4790 {
		t.Fatalf("Amount = %d, want 4790", updated.Amount.Cents)
	}
	if updated.Category != orig.Category {
		t.Fatalf("unpatched Category changed: %q -> %q", orig.Category, updated.Category)
	}
}

func TestTransactionStoreUpdateUnknownID(t *testing.T) {
	s := NewTransactionStore(0, fixedNow)
	ctx := context.Background()

	if _, err := s.Add(ctx, testInput("Cinema", 3200)); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	before := s.ListAll()

	desc := "nope"
	_, err := s.Update(ctx, "missing", core.TransactionPatch{Description: &desc})
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("Update() error = %v, want ErrNotFound", err)
	}

	after := s.ListAll()
	if len(after) != len(before) || after[0] != before[0] {
		t.Fatal("failed update modified the collection")
	}
}

func TestTransactionStoreRemove(t *testing.T) {
	s := NewTransactionStore(0, fixedNow)
	ctx := context.Background()

	txn, err := s.Add(ctx, testInput("Estacionamento", 1500))
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	if err := s.Remove(ctx, txn.ID); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if got := s.ListAll(); len(got) != 0 {
		t.Fatalf("ListAll() returned %d transactions after removal, want 0", len(got))
	}

	if err := s.Remove(ctx, txn.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("second Remove() error = %v, want ErrNotFound", err)
	}
}

func TestTransactionStoreListByAccount(t *testing.T) {
	s := NewTransactionStore(0, fixedNow)
	ctx := context.Background()

	a := testInput("Mercado", 8900)
	b := testInput("Padaria", 1250)
	b.AccountID = "acc-2"
	c := testInput("Uber", 2890)

	for _, in := range []core.TransactionInput{a, b, c} {
		if _, err := s.Add(ctx, in); err != nil {
			t.Fatalf("Add() error = %v", err)
		}
	}

	got := s.ListByAccount("acc-1")
	if len(got) != 2 {
		t.Fatalf("ListByAccount(acc-1) returned %d transactions, want 2", len(got))
	}
	if got[0].Description != "Uber" || got[1].Description != "Mercado" {
		t.Fatalf("unexpected order: [%s %s]", got[0].Description, got[1].Description)
	}
}

func TestTransactionStoreCancelledContext(t *testing.T) {
	s := NewTransactionStore(time.Second, fixedNow)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.Add(ctx, testInput("Mercado", 8900)); !errors.Is(err, context.Canceled) {
		t.Fatalf("Add() error = %v, want context.Canceled", err)
	}
	if got := s.ListAll(); len(got) != 0 {
		t.Fatal("cancelled Add still mutated the collection")
	}
}

func TestAccountStoreAddAndRecompute(t *testing.T) {
	s := NewAccountStore(0, fixedNow)
	ctx := context.Background()

	acc, err := s.Add(ctx, core.AccountInput{
		Name:           "Poupança",
		Type:           core.AccountSavings,
		Color:          "#f59e0b",
		Icon:           "🐷",
		InitialBalance: core.Money{Cents: 100000},
	})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if acc.Balance.Cents != 100000 {
		t.Fatalf("new account Balance = %d, want the initial balance 100000", acc.Balance.Cents)
	}

	txns := []core.Transaction{
		{ID: "t1", Amount: core.Money{Cents: 50000}, Type: core.Income, AccountID: acc.ID},
		{ID: "t2", Amount: core.Money{Cents: 20000}, Type: core.Expense, AccountID: acc.ID},
		{ID: "t3", Amount: core.Money{Cents: 99999}, Type: core.Expense, AccountID: "someone-else"},
	}
	got := s.Recompute(txns)
	if len(got) != 1 {
		t.Fatalf("Recompute() returned %d accounts, want 1", len(got))
	}
	if got[0].Balance.Cents != 130000 {
		t.Fatalf("Balance = %d, want 130000", got[0].Balance.Cents)
	}

	// Recompute is idempotent: same inputs, same balances.
	again := s.Recompute(txns)
	if again[0].Balance.Cents != 130000 {
		t.Fatalf("second Recompute() Balance = %d, want 130000", again[0].Balance.Cents)
	}
}
