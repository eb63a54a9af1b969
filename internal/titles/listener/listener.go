// Package listener tracks a live record stream from the ledger and
// dispatches each produced record to a callback. It runs on its own
// goroutine; a listener failure never affects request handling.
package listener

import (
	"context"
	"log/slog"
	"time"

	"landgate/internal/ledger"
)

// Callback handles one produced record.
type Callback func(ctx context.Context, env ledger.Envelope)

// Listener subscribes to one entity stream and reacts per update batch.
type Listener struct {
	client  ledger.Client
	entity  ledger.EntityType
	logger  *slog.Logger
	handle  Callback
	backoff time.Duration
}

// Option configures a Listener.
type Option func(*Listener)

// WithBackoff overrides the delay between resubscribe attempts.
func WithBackoff(d time.Duration) Option {
	return func(l *Listener) { l.backoff = d }
}

// New creates a Listener for the given entity stream.
func New(client ledger.Client, entity ledger.EntityType, handle Callback, logger *slog.Logger, opts ...Option) *Listener {
	l := &Listener{
		client:  client,
		entity:  entity,
		logger:  logger,
		handle:  handle,
		backoff: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run subscribes and processes update batches until ctx is cancelled.
// Subscription failures are logged and retried after a backoff.
func (l *Listener) Run(ctx context.Context) error {
	for {
		if err := l.track(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			l.logger.Error("ledger subscription lost, retrying",
				"entity", string(l.entity),
				"error", err.Error(),
			)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(l.backoff):
		}
	}
}

func (l *Listener) track(ctx context.Context) error {
	snapshot, updates, err := l.client.Subscribe(ctx, l.entity)
	if err != nil {
		return err
	}
	l.logger.Info("tracking ledger records",
		"entity", string(l.entity),
		"snapshot_size", len(snapshot),
	)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case batch, ok := <-updates:
			if !ok {
				return nil
			}
			if len(batch) == 0 {
				l.logger.Warn("empty update batch", "entity", string(l.entity))
				continue
			}
			for _, env := range batch {
				l.handle(ctx, env)
			}
		}
	}
}
