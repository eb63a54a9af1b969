package ledger

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	dErrors "landgate/pkg/domain-errors"
)

type memRecord struct {
	env          Envelope
	participants map[string]struct{}
	consumed     bool
}

// Memory is an in-memory ledger used by tests and local development. It
// reproduces the vault contract the gateway depends on: unconsumed
// filtering, participant visibility, and descending storage-index
// ordering.
type Memory struct {
	mu        sync.RWMutex
	identity  Party
	peers     []Party
	nextIndex uint64
	records   []*memRecord
	subs      map[EntityType][]chan []Envelope

	// SubmitFn, when set, observes workflow actions.
	SubmitFn func(ctx context.Context, action Action) error
}

// NewMemory creates an empty in-memory ledger acting as the given identity.
func NewMemory(identity Party) *Memory {
	return &Memory{
		identity: identity,
		subs:     make(map[EntityType][]chan []Envelope),
	}
}

// SetPeers configures the participants NetworkPeers reports.
func (m *Memory) SetPeers(peers ...Party) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.peers = peers
}

// Append stores a new record version and returns its storage index.
// With no participants listed the record is visible to everyone.
func (m *Memory) Append(entity EntityType, payload any, recordedAt *time.Time, participants ...string) (uint64, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return 0, err
	}

	m.mu.Lock()
	m.nextIndex++
	rec := &memRecord{
		env: Envelope{
			Entity:     entity,
			RefIndex:   m.nextIndex,
			RecordedAt: recordedAt,
			Payload:    raw,
		},
		participants: make(map[string]struct{}, len(participants)),
	}
	for _, p := range participants {
		rec.participants[p] = struct{}{}
	}
	m.records = append(m.records, rec)
	subs := append([]chan []Envelope(nil), m.subs[entity]...)
	env := rec.env
	m.mu.Unlock()

	for _, sub := range subs {
		select {
		case sub <- []Envelope{env}:
		default:
			// Inbox full or subscriber on its way out; the record stays
			// queryable, so a slow subscriber resyncs via the snapshot.
		}
	}
	return env.RefIndex, nil
}

// Consume marks a record version as superseded.
func (m *Memory) Consume(refIndex uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range m.records {
		if rec.env.RefIndex == refIndex {
			rec.consumed = true
			return
		}
	}
}

func (m *Memory) visible(rec *memRecord) bool {
	if rec.consumed {
		return false
	}
	if len(rec.participants) == 0 {
		return true
	}
	_, ok := rec.participants[m.identity.Name]
	return ok
}

// QueryUnconsumed implements Client.
func (m *Memory) QueryUnconsumed(ctx context.Context, entity EntityType) ([]Envelope, error) {
	if err := ctx.Err(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "ledger query cancelled")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Envelope
	for _, rec := range m.records {
		if rec.env.Entity == entity && m.visible(rec) {
			out = append(out, rec.env)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RefIndex > out[j].RefIndex })
	return out, nil
}

// SubmitAction implements Client.
func (m *Memory) SubmitAction(ctx context.Context, action Action) error {
	if m.SubmitFn != nil {
		return m.SubmitFn(ctx, action)
	}
	return nil
}

// Subscribe implements Client.
func (m *Memory) Subscribe(ctx context.Context, entity EntityType) ([]Envelope, <-chan []Envelope, error) {
	snapshot, err := m.QueryUnconsumed(ctx, entity)
	if err != nil {
		return nil, nil, err
	}

	inbox := make(chan []Envelope, 16)
	m.mu.Lock()
	m.subs[entity] = append(m.subs[entity], inbox)
	m.mu.Unlock()

	updates := make(chan []Envelope)
	go func() {
		defer close(updates)
		defer m.removeSub(entity, inbox)
		for {
			select {
			case <-ctx.Done():
				return
			case batch := <-inbox:
				select {
				case updates <- batch:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return snapshot, updates, nil
}

// removeSub drops a cancelled subscriber so Append stops delivering to it.
func (m *Memory) removeSub(entity EntityType, inbox chan []Envelope) {
	m.mu.Lock()
	defer m.mu.Unlock()
	subs := m.subs[entity]
	for i, sub := range subs {
		if sub == inbox {
			m.subs[entity] = append(subs[:i], subs[i+1:]...)
			return
		}
	}
}

// NodeIdentity implements Client.
func (m *Memory) NodeIdentity(ctx context.Context) (Party, error) {
	return m.identity, nil
}

// NetworkPeers implements Client.
func (m *Memory) NetworkPeers(ctx context.Context) ([]Party, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Party(nil), m.peers...), nil
}
