package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sarenasr/Rappi-Dashboard/internal/logging"
)

// ReloadEvent announces that an instance swapped in a new dataset
type ReloadEvent struct {
	InstanceID string    `json:"instance_id"`
	Generation uint64    `json:"generation"`
	Samples    int       `json:"samples"`
	First      time.Time `json:"first,omitempty"`
	Last       time.Time `json:"last,omitempty"`
	ReloadedAt time.Time `json:"reloaded_at"`
}

// DecodeReloadEvent parses a ReloadEvent. Events without an instance id are
// rejected since receivers could not tell their own events apart.
func DecodeReloadEvent(data []byte) (ReloadEvent, error) {
	var ev ReloadEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return ReloadEvent{}, fmt.Errorf("decode reload event: %w", err)
	}
	if ev.InstanceID == "" {
		return ReloadEvent{}, fmt.Errorf("decode reload event: missing instance_id")
	}
	return ev, nil
}

// PublishReload encodes ev and publishes it on subject
func PublishReload(ctx context.Context, p Publisher, subject string, ev ReloadEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode reload event: %w", err)
	}
	return p.Publish(ctx, subject, data)
}

// SubscribeReload decodes every message on subject and passes it to handler.
// Malformed messages are logged and acknowledged so they are not redelivered.
func SubscribeReload(s Subscriber, subject string, handler func(ReloadEvent) error) error {
	return s.Subscribe(subject, func(data []byte) error {
		ev, err := DecodeReloadEvent(data)
		if err != nil {
			logging.Warn("Dropping malformed reload event", "subject", subject, "error", err)
			return nil
		}
		return handler(ev)
	})
}
