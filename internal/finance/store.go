package finance

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"kivo/internal/core"
	"kivo/internal/datasource"
)

// DefaultMutateLatency matches the simulated write delay of the original
// client.
const DefaultMutateLatency = 500 * time.Millisecond

// TransactionStore holds the canonical ordered transaction collection,
// most recent first. Mutations suspend on a simulated backend latency
// before applying; once the wait completes the mutation is atomic. The
// store does not validate business rules, that is the facade's job.
type TransactionStore struct {
	mu      sync.Mutex
	latency time.Duration
	now     func() time.Time
	items   []core.Transaction
}

func NewTransactionStore(latency time.Duration, now func() time.Time) *TransactionStore {
	if now == nil {
		now = time.Now
	}
	return &TransactionStore{latency: latency, now: now}
}

// Add assigns a fresh id and creation timestamp and prepends the
// transaction to the collection.
func (s *TransactionStore) Add(ctx context.Context, in core.TransactionInput) (core.Transaction, error) {
	if err := datasource.Wait(ctx, s.latency); err != nil {
		return core.Transaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	t := core.Transaction{
		ID:          uuid.NewString(),
		Description: in.Description,
		Amount:      in.Amount,
		Type:        in.Type,
		Category:    in.Category,
		AccountID:   in.AccountID,
		Date:        in.Date,
		CreatedAt:   s.now(),

		ForeignCurrency:  in.ForeignCurrency,
		OriginalAmount:   in.OriginalAmount,
		OriginalCurrency: in.OriginalCurrency,
		ConvertedAmount:  in.ConvertedAmount,
	}
	s.items = append([]core.Transaction{t}, s.items...)
	return t, nil
}

// Update merges the patch into the stored transaction, leaving ID and
// CreatedAt untouched. Returns core.ErrNotFound for unknown ids.
func (s *TransactionStore) Update(ctx context.Context, id string, patch core.TransactionPatch) (core.Transaction, error) {
	if err := datasource.Wait(ctx, s.latency); err != nil {
		return core.Transaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, t := range s.items {
		if t.ID == id {
			merged := patch.ApplyTo(t)
			merged.ID = t.ID
			merged.CreatedAt = t.CreatedAt
			s.items[i] = merged
			return merged, nil
		}
	}
	return core.Transaction{}, core.ErrNotFound
}

// Remove deletes the transaction. A second removal of the same id fails
// with core.ErrNotFound; idempotence is the caller's concern.
func (s *TransactionStore) Remove(ctx context.Context, id string) error {
	if err := datasource.Wait(ctx, s.latency); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, t := range s.items {
		if t.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return core.ErrNotFound
}

// Get returns the transaction with the given id without simulated latency.
func (s *TransactionStore) Get(id string) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.items {
		if t.ID == id {
			return t, nil
		}
	}
	return core.Transaction{}, core.ErrNotFound
}

func (s *TransactionStore) ListAll() []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction(nil), s.items...)
}

// ListByAccount filters by account preserving relative order.
func (s *TransactionStore) ListByAccount(accountID string) []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, 0, len(s.items))
	for _, t := range s.items {
		if t.AccountID == accountID {
			out = append(out, t)
		}
	}
	return out
}

// Replace swaps the whole collection, used when reloading from the data
// source.
func (s *TransactionStore) Replace(txns []core.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append([]core.Transaction(nil), txns...)
}

// AccountStore holds the account collection in insertion order. Balances
// are derived state, written only by Recompute.
type AccountStore struct {
	mu      sync.Mutex
	latency time.Duration
	now     func() time.Time
	items   []core.Account
}

func NewAccountStore(latency time.Duration, now func() time.Time) *AccountStore {
	if now == nil {
		now = time.Now
	}
	return &AccountStore{latency: latency, now: now}
}

// Add appends a new account with a fresh id; the balance starts at the
// initial balance since no transaction references the account yet.
func (s *AccountStore) Add(ctx context.Context, in core.AccountInput) (core.Account, error) {
	if err := datasource.Wait(ctx, s.latency); err != nil {
		return core.Account{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	a := core.Account{
		ID:             uuid.NewString(),
		Name:           in.Name,
		Type:           in.Type,
		Balance:        in.InitialBalance,
		Color:          in.Color,
		Icon:           in.Icon,
		InitialBalance: in.InitialBalance,
		CreatedAt:      s.now(),
	}
	s.items = append(s.items, a)
	return a, nil
}

func (s *AccountStore) List() []core.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Account(nil), s.items...)
}

// Get returns the account with the given id.
func (s *AccountStore) Get(id string) (core.Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.items {
		if a.ID == id {
			return a, true
		}
	}
	return core.Account{}, false
}

// Recompute rebuilds every balance from the transaction set and returns the
// updated collection.
func (s *AccountStore) Recompute(txns []core.Transaction) []core.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = core.RecomputeBalances(s.items, txns)
	return append([]core.Account(nil), s.items...)
}

// Replace swaps the whole collection, used when reloading from the data
// source.
func (s *AccountStore) Replace(accounts []core.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append([]core.Account(nil), accounts...)
}
