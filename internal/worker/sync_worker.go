// Package worker mirrors queued finance events into the durable SQLite
// store so the dashboard state survives restarts.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"kivo/internal/amqp"
	"kivo/internal/cache"
	"kivo/internal/core"
)

// Mirror is the slice of the storage layer the worker writes to.
type Mirror interface {
	UpsertTransaction(ctx context.Context, t core.Transaction) error
	DeleteTransaction(ctx context.Context, id string) error
	UpsertAccount(ctx context.Context, a core.Account) error
}

// SyncWorker applies finance events to the mirror. Event ids of applied
// events are remembered in an LRU so broker redeliveries become no-ops.
type SyncWorker struct {
	mirror Mirror
	seen   *cache.LRUCache[struct{}]
}

const (
	dedupeCacheSize = 10000
	dedupeCacheTTL  = 24 * time.Hour
)

func NewSyncWorker(mirror Mirror) *SyncWorker {
	return &SyncWorker{
		mirror: mirror,
		seen:   cache.NewLRUCache[struct{}](dedupeCacheSize, dedupeCacheTTL),
	}
}

// DedupeCache exposes the seen-event cache so the host binary can put it
// on a cleanup rotation.
func (w *SyncWorker) DedupeCache() cache.Cleaner {
	return w.seen
}

// HandleEvent applies one event to the mirror. Returning an error makes
// the consumer requeue the delivery, so only transient failures bubble up;
// malformed or unknown events are dropped with a log line.
func (w *SyncWorker) HandleEvent(ctx context.Context, ev *amqp.Event) error {
	if ev.EventID != "" {
		if _, dup := w.seen.Get(ev.EventID); dup {
			slog.DebugContext(ctx, "Skipping already processed event",
				"event_id", ev.EventID,
				"kind", ev.Kind)
			return nil
		}
	}

	switch ev.Kind {
	case amqp.TransactionUpserted:
		if ev.Transaction == nil {
			slog.ErrorContext(ctx, "Upsert event without transaction payload",
				"event_id", ev.EventID)
			return nil
		}
		if err := w.mirror.UpsertTransaction(ctx, *ev.Transaction); err != nil {
			return fmt.Errorf("mirror transaction upsert: %w", err)
		}

	case amqp.TransactionDeleted:
		if ev.TransactionID == "" {
			slog.ErrorContext(ctx, "Delete event without transaction id",
				"event_id", ev.EventID)
			return nil
		}
		if err := w.mirror.DeleteTransaction(ctx, ev.TransactionID); err != nil {
			return fmt.Errorf("mirror transaction delete: %w", err)
		}

	case amqp.AccountUpserted:
		if ev.Account == nil {
			slog.ErrorContext(ctx, "Upsert event without account payload",
				"event_id", ev.EventID)
			return nil
		}
		if err := w.mirror.UpsertAccount(ctx, *ev.Account); err != nil {
			return fmt.Errorf("mirror account upsert: %w", err)
		}

	default:
		slog.WarnContext(ctx, "Unknown event kind, dropping",
			"event_id", ev.EventID,
			"kind", ev.Kind)
		return nil
	}

	if ev.EventID != "" {
		w.seen.Set(ev.EventID, struct{}{})
	}

	slog.InfoContext(ctx, "Event mirrored",
		"event_id", ev.EventID,
		"kind", ev.Kind)
	return nil
}
