package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMemory() *Memory {
	return NewMemory(Party{Organisation: "HMLR", Name: "O=HMLR,L=Plymouth,C=GB"})
}

func TestMemoryQueryUnconsumed(t *testing.T) {
	m := newTestMemory()
	now := time.Now().UTC()

	first, err := m.Append(EntityLandTitle, map[string]string{"title_number": "T-ONE"}, &now)
	require.NoError(t, err)
	second, err := m.Append(EntityLandTitle, map[string]string{"title_number": "T-TWO"}, &now)
	require.NoError(t, err)
	_, err = m.Append(EntityPayment, map[string]string{"title_number": "T-ONE"}, &now)
	require.NoError(t, err)

	envs, err := m.QueryUnconsumed(context.Background(), EntityLandTitle)
	require.NoError(t, err)
	require.Len(t, envs, 2)
	// Latest version first.
	assert.Equal(t, second, envs[0].RefIndex)
	assert.Equal(t, first, envs[1].RefIndex)

	m.Consume(second)
	envs, err = m.QueryUnconsumed(context.Background(), EntityLandTitle)
	require.NoError(t, err)
	require.Len(t, envs, 1)
	assert.Equal(t, first, envs[0].RefIndex)
}

func TestMemoryParticipantVisibility(t *testing.T) {
	m := newTestMemory()
	now := time.Now().UTC()

	_, err := m.Append(EntityPayment, map[string]string{"for": "everyone"}, &now)
	require.NoError(t, err)
	_, err = m.Append(EntityPayment, map[string]string{"for": "us"}, &now, "O=HMLR,L=Plymouth,C=GB")
	require.NoError(t, err)
	_, err = m.Append(EntityPayment, map[string]string{"for": "someone else"}, &now, "O=Lender Bank,L=Leeds,C=GB")
	require.NoError(t, err)

	envs, err := m.QueryUnconsumed(context.Background(), EntityPayment)
	require.NoError(t, err)
	assert.Len(t, envs, 2)
}

func TestMemoryQueryCancelledContext(t *testing.T) {
	m := newTestMemory()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.QueryUnconsumed(ctx, EntityLandTitle)
	require.Error(t, err)
}

func TestMemorySubscribe(t *testing.T) {
	m := newTestMemory()
	now := time.Now().UTC()
	_, err := m.Append(EntityLandTitle, map[string]string{"title_number": "T-ONE"}, &now)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	snapshot, updates, err := m.Subscribe(ctx, EntityLandTitle)
	require.NoError(t, err)
	require.Len(t, snapshot, 1)

	idx, err := m.Append(EntityLandTitle, map[string]string{"title_number": "T-TWO"}, &now)
	require.NoError(t, err)

	select {
	case batch := <-updates:
		require.Len(t, batch, 1)
		assert.Equal(t, idx, batch[0].RefIndex)
	case <-time.After(time.Second):
		t.Fatal("no update delivered")
	}

	// Other entities do not leak into the stream.
	_, err = m.Append(EntityPayment, map[string]string{"title_number": "T-TWO"}, &now)
	require.NoError(t, err)
	select {
	case batch := <-updates:
		t.Fatalf("unexpected update: %+v", batch)
	case <-time.After(50 * time.Millisecond):
	}

	cancel()
	select {
	case _, ok := <-updates:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("stream not closed after cancel")
	}
}

func TestMemoryAppendAfterSubscriberGone(t *testing.T) {
	m := newTestMemory()
	ctx, cancel := context.WithCancel(context.Background())

	_, updates, err := m.Subscribe(ctx, EntityLandTitle)
	require.NoError(t, err)

	cancel()
	select {
	case _, ok := <-updates:
		require.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("stream not closed after cancel")
	}

	// A cancelled subscriber must not back-pressure producers, however
	// many records follow.
	now := time.Now().UTC()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 64; i++ {
			if _, err := m.Append(EntityLandTitle, map[string]int{"seq": i}, &now); err != nil {
				return
			}
		}
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("append blocked on a gone subscriber")
	}

	envs, err := m.QueryUnconsumed(context.Background(), EntityLandTitle)
	require.NoError(t, err)
	assert.Len(t, envs, 64)
}

func TestMemoryIdentityAndPeers(t *testing.T) {
	m := newTestMemory()
	m.SetPeers(
		Party{Organisation: "HMLR", Name: "O=HMLR,L=Plymouth,C=GB"},
		Party{Organisation: "Conveyancer A", Name: "O=Conveyancer A,L=London,C=GB"},
	)

	me, err := m.NodeIdentity(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "HMLR", me.Organisation)

	peers, err := m.NetworkPeers(context.Background())
	require.NoError(t, err)
	assert.Len(t, peers, 2)
}
