// Package datasource defines the ports the finance engine loads its state
// through. Backends are in-memory (mock), SQLite or Google Sheets; the
// engine itself only ever sees Source.
package datasource

import (
	"context"
	"time"

	"kivo/internal/core"
)

type (
	AccountLoader interface {
		LoadAccounts(ctx context.Context) ([]core.Account, error)
	}

	TransactionLoader interface {
		LoadTransactions(ctx context.Context) ([]core.Transaction, error)
	}

	// Source is a complete read-side data source.
	Source interface {
		AccountLoader
		TransactionLoader
	}
)

// Wait blocks for a simulated backend latency, honouring cancellation. A
// zero or negative duration returns immediately.
func Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
