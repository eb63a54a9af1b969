// Package store adapts the ledger client into typed record streams. One
// parametrized fetch covers every entity type: query the unconsumed set
// visible to our identity, decode each payload, filter client-side, and
// keep the vault's descending storage-index order. The vault has no
// server-side key filter, so predicates always run over the full set.
package store

import (
	"context"
	"encoding/json"
	"log/slog"

	"landgate/internal/ledger"
	"landgate/internal/titles/metrics"
	"landgate/internal/titles/models"
	dErrors "landgate/pkg/domain-errors"
)

// Store wraps a ledger client handle with logging and metrics.
type Store struct {
	client  ledger.Client
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures a Store.
type Option func(*Store)

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithMetrics attaches domain metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

// New creates a Store over the given ledger client.
func New(client ledger.Client, opts ...Option) *Store {
	s := &Store{client: client, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Client exposes the underlying ledger handle for write-path calls.
func (s *Store) Client() ledger.Client { return s.client }

// Fetch returns every unconsumed record of one entity type, decoded and
// paired with its recorded instant, in descending storage-index order.
// A nil keep predicate keeps everything. Transport faults propagate.
func Fetch[T models.Keyed](ctx context.Context, s *Store, entity ledger.EntityType, keep func(models.Versioned[T]) bool) ([]models.Versioned[T], error) {
	envelopes, err := s.client.QueryUnconsumed(ctx, entity)
	s.metrics.ObserveQuery(string(entity), err)
	if err != nil {
		return nil, err
	}

	out := make([]models.Versioned[T], 0, len(envelopes))
	for _, env := range envelopes {
		var record T
		if err := json.Unmarshal(env.Payload, &record); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "decode "+string(entity)+" record")
		}
		v := models.Versioned[T]{Record: record, RecordedAt: env.RecordedAt}
		if keep != nil && !keep(v) {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

// FetchByTitle narrows Fetch to one title number.
func FetchByTitle[T models.Keyed](ctx context.Context, s *Store, entity ledger.EntityType, titleNumber string) ([]models.Versioned[T], error) {
	return Fetch(ctx, s, entity, func(v models.Versioned[T]) bool {
		return v.Record.Key() == titleNumber
	})
}

// GroupBy partitions records by the index function, preserving each
// group's input order.
func GroupBy[T any](records []models.Versioned[T], index func(models.Versioned[T]) string) map[string][]models.Versioned[T] {
	groups := make(map[string][]models.Versioned[T])
	for _, v := range records {
		key := index(v)
		groups[key] = append(groups[key], v)
	}
	return groups
}

// GroupByTitle partitions records by title number.
func GroupByTitle[T models.Keyed](records []models.Versioned[T]) map[string][]models.Versioned[T] {
	return GroupBy(records, func(v models.Versioned[T]) string { return v.Record.Key() })
}

// First returns a pointer to the head of a group (the unconsumed record
// with the highest storage index), or nil for an empty group.
func First[T any](records []models.Versioned[T]) *models.Versioned[T] {
	if len(records) == 0 {
		return nil
	}
	return &records[0]
}
