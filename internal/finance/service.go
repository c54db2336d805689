// Package finance implements the client-side finance state engine: the
// canonical account and transaction collections, the derived balances and
// summaries, and the facade presentation code talks to.
package finance

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"kivo/internal/amqp"
	"kivo/internal/core"
	"kivo/internal/datasource"
	"kivo/internal/log"
)

// State is the facade load state. Every mutating operation re-enters
// Loading and completes back in Ready.
type State int32

const (
	StateIdle State = iota
	StateLoading
	StateReady
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	}
	return "unknown"
}

// Options tunes a Service. Zero values pick the defaults of the original
// client: 500ms simulated write latency, wall clock, no event publishing.
type Options struct {
	MutateLatency time.Duration
	Now           func() time.Time
	Events        *amqp.Client
	Logger        *log.Logger
}

// Service is the finance facade. It exclusively owns the canonical
// collections; derived state (balances, summary) is fully recomputed after
// every mutation. A single mutex serializes mutating operations, so
// overlapping calls queue in invocation order instead of interleaving
// their read-modify-write of the shared collections.
type Service struct {
	source datasource.Source
	events *amqp.Client
	logger *log.Logger
	now    func() time.Time

	accounts *AccountStore
	txns     *TransactionStore

	mu     sync.Mutex // serializes mutating operations
	state  atomic.Int32
	loaded atomic.Bool

	derivedMu sync.RWMutex
	selected  string // selected account id, "" = all accounts
	summary   core.FinancialSummary
}

// NewService builds an idle facade; call Refetch to perform the initial
// load. Close releases the event publisher, if any.
func NewService(source datasource.Source, opts Options) *Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = log.New(log.DefaultConfig()).WithComponent("finance")
	}
	latency := opts.MutateLatency
	if latency == 0 {
		latency = DefaultMutateLatency
	}

	return &Service{
		source:   source,
		events:   opts.Events,
		logger:   opts.Logger,
		now:      opts.Now,
		accounts: NewAccountStore(latency, opts.Now),
		txns:     NewTransactionStore(latency, opts.Now),
	}
}

func (s *Service) Close() error {
	if s.events != nil {
		return s.events.Close()
	}
	return nil
}

// Refetch reloads both collections from the data source and rebuilds all
// derived state from scratch. On failure the previously known state stays
// fully intact and the error wraps core.ErrDataSource.
func (s *Service) Refetch(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.settle()
	s.state.Store(int32(StateLoading))

	var (
		accounts []core.Account
		txns     []core.Transaction
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		accounts, err = s.source.LoadAccounts(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		txns, err = s.source.LoadTransactions(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.ErrorContext(ctx, "Refetch failed, keeping previous state", "error", err)
		return fmt.Errorf("%w: %v", core.ErrDataSource, err)
	}

	s.accounts.Replace(accounts)
	s.txns.Replace(txns)
	s.recompute()
	s.loaded.Store(true)
	return nil
}

// SelectAccount changes the summary scope to the given account id, or to
// all accounts when the id is empty. No data is fetched; the summary is
// recomputed against the existing transaction set.
func (s *Service) SelectAccount(ctx context.Context, accountID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.settle()
	s.state.Store(int32(StateLoading))

	s.derivedMu.Lock()
	s.selected = accountID
	s.derivedMu.Unlock()
	s.recompute()

	s.logger.InfoContext(ctx, "Account scope changed", "account_id", accountID)
}

// AddAccount creates an account. The new account carries no transactions,
// but derived state is still rebuilt so the all-accounts balance and the
// transaction-derived figures stay consistent by construction.
func (s *Service) AddAccount(ctx context.Context, in core.AccountInput) (core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.settle()

	if err := in.Validate(); err != nil {
		return core.Account{}, err
	}
	s.state.Store(int32(StateLoading))

	account, err := s.accounts.Add(ctx, in)
	if err != nil {
		return core.Account{}, err
	}
	s.recompute()
	s.publish(ctx, amqp.NewAccountUpserted(account))

	s.logger.InfoContext(ctx, "Account created",
		"account_id", account.ID,
		"name", account.Name,
		"type", account.Type)
	return account, nil
}

// AddTransaction records a transaction. Foreign entries missing a converted
// amount are converted here with the rate at time of entry; a code without
// a quote falls back to 1:1 and is logged rather than rejected.
func (s *Service) AddTransaction(ctx context.Context, in core.TransactionInput) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.settle()

	if in.ForeignCurrency && in.ConvertedAmount.Cents == 0 {
		converted, quoted := core.Convert(in.OriginalAmount, in.OriginalCurrency)
		if !quoted {
			s.logger.WarnContext(ctx, "No quote for currency, converting 1:1",
				"currency", in.OriginalCurrency)
		}
		in.ConvertedAmount = converted
		if in.Amount.Cents == 0 {
			in.Amount = converted
		}
	}
	if err := in.Validate(); err != nil {
		return core.Transaction{}, err
	}
	s.state.Store(int32(StateLoading))

	txn, err := s.txns.Add(ctx, in)
	if err != nil {
		return core.Transaction{}, err
	}
	s.recompute()
	s.publish(ctx, amqp.NewTransactionUpserted(txn))

	s.logger.InfoContext(ctx, "Transaction added",
		"transaction_id", txn.ID,
		"type", txn.Type,
		"amount_cents", txn.EffectiveAmount().Cents)
	return txn, nil
}

// UpdateTransaction merges a partial update into the stored transaction.
// The merged result is validated before anything is written, so a bad
// patch leaves the collection untouched.
func (s *Service) UpdateTransaction(ctx context.Context, id string, patch core.TransactionPatch) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.settle()

	existing, err := s.txns.Get(id)
	if err != nil {
		return core.Transaction{}, err
	}
	if err := patch.ApplyTo(existing).Validate(); err != nil {
		return core.Transaction{}, err
	}
	s.state.Store(int32(StateLoading))

	txn, err := s.txns.Update(ctx, id, patch)
	if err != nil {
		return core.Transaction{}, err
	}
	s.recompute()
	s.publish(ctx, amqp.NewTransactionUpserted(txn))

	s.logger.InfoContext(ctx, "Transaction updated", "transaction_id", txn.ID)
	return txn, nil
}

// DeleteTransaction removes a transaction. A missing id fails with
// core.ErrNotFound; with concurrent deleters that can be a benign race and
// is the caller's call to ignore.
func (s *Service) DeleteTransaction(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.settle()
	s.state.Store(int32(StateLoading))

	if err := s.txns.Remove(ctx, id); err != nil {
		return err
	}
	s.recompute()
	s.publish(ctx, amqp.NewTransactionDeleted(id))

	s.logger.InfoContext(ctx, "Transaction deleted", "transaction_id", id)
	return nil
}

// Accounts returns the accounts in insertion order with derived balances.
func (s *Service) Accounts() []core.Account {
	return s.accounts.List()
}

// SelectedAccountID returns the current scope, empty for all accounts.
func (s *Service) SelectedAccountID() string {
	s.derivedMu.RLock()
	defer s.derivedMu.RUnlock()
	return s.selected
}

// SelectedAccount returns the scoped account, if one is selected.
func (s *Service) SelectedAccount() (core.Account, bool) {
	id := s.SelectedAccountID()
	if id == "" {
		return core.Account{}, false
	}
	return s.accounts.Get(id)
}

// Transactions returns the transactions visible in the current scope,
// most recent first.
func (s *Service) Transactions() []core.Transaction {
	id := s.SelectedAccountID()
	if id == "" {
		return s.txns.ListAll()
	}
	return s.txns.ListByAccount(id)
}

// AllTransactions returns every transaction regardless of scope.
func (s *Service) AllTransactions() []core.Transaction {
	return s.txns.ListAll()
}

// Summary returns the last recomputed summary for the current scope.
func (s *Service) Summary() core.FinancialSummary {
	s.derivedMu.RLock()
	defer s.derivedMu.RUnlock()
	return s.summary
}

func (s *Service) State() State {
	return State(s.state.Load())
}

func (s *Service) IsLoading() bool {
	return s.State() == StateLoading
}

// recompute rebuilds every piece of derived state from the canonical
// collections: all account balances and the scoped summary. Called with
// s.mu held after each mutation; never incremental.
func (s *Service) recompute() {
	txns := s.txns.ListAll()
	s.accounts.Recompute(txns)

	s.derivedMu.Lock()
	s.summary = core.Summarize(txns, s.selected, s.now())
	s.derivedMu.Unlock()
}

// settle leaves Loading: Ready once a load has ever succeeded, Idle before
// that. Runs deferred so failed operations also restore a coherent state.
func (s *Service) settle() {
	if s.loaded.Load() {
		s.state.Store(int32(StateReady))
	} else {
		s.state.Store(int32(StateIdle))
	}
}

// publish mirrors a mutation to the event queue, best effort: publishing
// problems are logged and never fail the mutation.
func (s *Service) publish(ctx context.Context, ev *amqp.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, ev); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish finance event",
			"event_id", ev.EventID,
			"kind", ev.Kind,
			"error", err)
	}
}
