package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeReloadEvent(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr bool
	}{
		{"valid", `{"instance_id":"a","generation":3,"samples":10,"reloaded_at":"2026-01-02T03:04:05Z"}`, false},
		{"missing instance", `{"generation":3}`, true},
		{"not json", `reload!`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := DecodeReloadEvent([]byte(tt.data))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "a", ev.InstanceID)
			assert.Equal(t, uint64(3), ev.Generation)
		})
	}
}

func TestPublishSubscribeReload(t *testing.T) {
	q := newMemoryQueue()
	defer func() { _ = q.Close() }()

	var (
		mu       sync.Mutex
		received []ReloadEvent
	)
	err := SubscribeReload(q, "availability.reloaded", func(ev ReloadEvent) error {
		mu.Lock()
		defer mu.Unlock()
		received = append(received, ev)
		return nil
	})
	require.NoError(t, err)

	// malformed messages are skipped, not fatal
	require.NoError(t, q.Publish(context.Background(), "availability.reloaded", []byte("garbage")))

	sent := ReloadEvent{
		InstanceID: "instance-1",
		Generation: 2,
		Samples:    8640,
		First:      time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Last:       time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
		ReloadedAt: time.Date(2026, 1, 2, 0, 5, 0, 0, time.UTC),
	}
	require.NoError(t, PublishReload(context.Background(), q, "availability.reloaded", sent))

	waitFor(t, time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(received) == 1
	})
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, sent.InstanceID, received[0].InstanceID)
	assert.Equal(t, sent.Samples, received[0].Samples)
	assert.True(t, sent.First.Equal(received[0].First))
}
