package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"kivo/internal/amqp"
	"kivo/internal/core"
)

type fakeMirror struct {
	txns     map[string]core.Transaction
	accounts map[string]core.Account
	deletes  []string
	fail     error
}

func newFakeMirror() *fakeMirror {
	return &fakeMirror{
		txns:     make(map[string]core.Transaction),
		accounts: make(map[string]core.Account),
	}
}

func (m *fakeMirror) UpsertTransaction(_ context.Context, t core.Transaction) error {
	if m.fail != nil {
		return m.fail
	}
	m.txns[t.ID] = t
	return nil
}

func (m *fakeMirror) DeleteTransaction(_ context.Context, id string) error {
	if m.fail != nil {
		return m.fail
	}
	delete(m.txns, id)
	m.deletes = append(m.deletes, id)
	return nil
}

func (m *fakeMirror) UpsertAccount(_ context.Context, a core.Account) error {
	if m.fail != nil {
		return m.fail
	}
	m.accounts[a.ID] = a
	return nil
}

func sampleTransaction() core.Transaction {
	return core.Transaction{
		ID:          "txn-1",
		Description: "Mercado",
		Amount:      core.Money{Cents: 8900},
		Type:        core.Expense,
		Category:    core.CategoryFood,
		AccountID:   "acc-1",
		Date:        time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC),
	}
}

func TestHandleEventMirrorsTransactionLifecycle(t *testing.T) {
	mirror := newFakeMirror()
	w := NewSyncWorker(mirror)
	ctx := context.Background()

	txn := sampleTransaction()
	if err := w.HandleEvent(ctx, amqp.NewTransactionUpserted(txn)); err != nil {
		t.Fatalf("HandleEvent(upsert) error = %v", err)
	}
	if got, ok := mirror.txns["txn-1"]; !ok || got.Description != "Mercado" {
		t.Fatalf("transaction not mirrored: %+v", mirror.txns)
	}

	if err := w.HandleEvent(ctx, amqp.NewTransactionDeleted("txn-1")); err != nil {
		t.Fatalf("HandleEvent(delete) error = %v", err)
	}
	if _, ok := mirror.txns["txn-1"]; ok {
		t.Fatal("transaction still in mirror after delete")
	}
}

func TestHandleEventMirrorsAccount(t *testing.T) {
	mirror := newFakeMirror()
	w := NewSyncWorker(mirror)

	acc := core.Account{ID: "acc-9", Name: "Poupança", Type: core.AccountSavings}
	if err := w.HandleEvent(context.Background(), amqp.NewAccountUpserted(acc)); err != nil {
		t.Fatalf("HandleEvent(account) error = %v", err)
	}
	if got, ok := mirror.accounts["acc-9"]; !ok || got.Name != "Poupança" {
		t.Fatalf("account not mirrored: %+v", mirror.accounts)
	}
}

func TestHandleEventDedupesRedeliveries(t *testing.T) {
	mirror := newFakeMirror()
	w := NewSyncWorker(mirror)
	ctx := context.Background()

	ev := amqp.NewTransactionDeleted("txn-1")
	if err := w.HandleEvent(ctx, ev); err != nil {
		t.Fatalf("HandleEvent() error = %v", err)
	}
	if err := w.HandleEvent(ctx, ev); err != nil {
		t.Fatalf("redelivered HandleEvent() error = %v", err)
	}
	if len(mirror.deletes) != 1 {
		t.Fatalf("delete applied %d times, want 1", len(mirror.deletes))
	}
}

func TestHandleEventRetriesAfterMirrorFailure(t *testing.T) {
	mirror := newFakeMirror()
	w := NewSyncWorker(mirror)
	ctx := context.Background()

	mirror.fail = errors.New("disk full")
	ev := amqp.NewTransactionUpserted(sampleTransaction())
	if err := w.HandleEvent(ctx, ev); err == nil {
		t.Fatal("expected error from failing mirror")
	}

	// A failed event must not be marked seen, the requeued delivery has to
	// get another chance.
	mirror.fail = nil
	if err := w.HandleEvent(ctx, ev); err != nil {
		t.Fatalf("retried HandleEvent() error = %v", err)
	}
	if _, ok := mirror.txns["txn-1"]; !ok {
		t.Fatal("transaction not mirrored after retry")
	}
}

func TestDedupeCacheExposedForCleanup(t *testing.T) {
	mirror := newFakeMirror()
	w := NewSyncWorker(mirror)
	ctx := context.Background()

	c := w.DedupeCache()
	if c == nil {
		t.Fatal("DedupeCache() returned nil")
	}

	ev := amqp.NewTransactionDeleted("txn-1")
	if err := w.HandleEvent(ctx, ev); err != nil {
		t.Fatalf("HandleEvent() error = %v", err)
	}
	// Fresh entries are inside their TTL, a cleanup pass must keep them so
	// dedupe still holds for a redelivery afterwards.
	if removed := c.CleanExpired(); removed != 0 {
		t.Fatalf("CleanExpired() dropped %d fresh entries", removed)
	}
	if err := w.HandleEvent(ctx, ev); err != nil {
		t.Fatalf("redelivered HandleEvent() error = %v", err)
	}
	if len(mirror.deletes) != 1 {
		t.Fatalf("delete applied %d times, want 1", len(mirror.deletes))
	}
}

func TestHandleEventDropsMalformedEvents(t *testing.T) {
	mirror := newFakeMirror()
	w := NewSyncWorker(mirror)
	ctx := context.Background()

	for _, ev := range []*amqp.Event{
		{EventID: "e1", Kind: amqp.TransactionUpserted},          // missing payload
		{EventID: "e2", Kind: amqp.TransactionDeleted},           // missing id
		{EventID: "e3", Kind: amqp.AccountUpserted},              // missing payload
		{EventID: "e4", Kind: amqp.Kind("transaction_archived")}, // unknown kind
	} {
		if err := w.HandleEvent(ctx, ev); err != nil {
			t.Fatalf("HandleEvent(%s) error = %v, want dropped without error", ev.Kind, err)
		}
	}
	if len(mirror.txns) != 0 || len(mirror.accounts) != 0 || len(mirror.deletes) != 0 {
		t.Fatal("malformed events reached the mirror")
	}
}
