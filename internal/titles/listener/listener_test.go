package listener

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"landgate/internal/ledger"
	"landgate/internal/titles/models"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestListenerDispatchesUpdates(t *testing.T) {
	vault := ledger.NewMemory(ledger.Party{Organisation: "HMLR", Name: "O=HMLR,L=Plymouth,C=GB"})

	var mu sync.Mutex
	var seen []uint64
	done := make(chan struct{})

	l := New(vault, ledger.EntityPayment, func(_ context.Context, env ledger.Envelope) {
		mu.Lock()
		seen = append(seen, env.RefIndex)
		mu.Unlock()
		select {
		case done <- struct{}{}:
		default:
		}
	}, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = l.Run(ctx) }()

	// Give the listener a moment to subscribe before producing.
	time.Sleep(20 * time.Millisecond)

	now := time.Now().UTC()
	idx, err := vault.Append(ledger.EntityPayment, models.PaymentRecord{
		TitleNumber: "ZQV888999",
		LinearID:    "payment-1",
		Status:      "request_for_payment",
	}, &now)
	require.NoError(t, err)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("callback never fired")
	}

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seen, 1)
	assert.Equal(t, idx, seen[0])
}

func TestListenerStopsOnCancel(t *testing.T) {
	vault := ledger.NewMemory(ledger.Party{Organisation: "HMLR", Name: "O=HMLR,L=Plymouth,C=GB"})
	l := New(vault, ledger.EntityLandTitle, func(context.Context, ledger.Envelope) {}, quietLogger(), WithBackoff(time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- l.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("listener did not stop")
	}
}
