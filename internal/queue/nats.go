package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

// NATSConfig represents NATS JetStream configuration
type NATSConfig struct {
	URL      string // NATS URL (e.g., nats://localhost:4222)
	Username string // Optional authentication
	Password string // Optional authentication
}

// natsStreamMaxAge bounds how long announcements are retained. Subscribers
// only ever read new messages, so retention is for inspection only.
const natsStreamMaxAge = time.Hour

// NATSQueue implements Queue using NATS JetStream. Every subscription is an
// ephemeral consumer delivering only new messages, so each instance
// receives every announcement made while it is subscribed.
type NATSQueue struct {
	conn          *nats.Conn
	js            nats.JetStreamContext
	streams       map[string]bool
	subscriptions map[string]*nats.Subscription
	mu            sync.Mutex
}

// newNATSQueue creates a new NATS queue instance with JetStream enabled
func newNATSQueue(cfg NATSConfig) (*NATSQueue, error) {
	opts := []nats.Option{nats.Name("availmon")}
	if cfg.Username != "" {
		opts = append(opts, nats.UserInfo(cfg.Username, cfg.Password))
	}

	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	q, err := newNATSQueueWithConn(conn)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return q, nil
}

// newNATSQueueWithConn creates a new NATS queue instance with existing connection
func newNATSQueueWithConn(conn *nats.Conn) (*NATSQueue, error) {
	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	return &NATSQueue{
		conn:          conn,
		js:            js,
		streams:       make(map[string]bool),
		subscriptions: make(map[string]*nats.Subscription),
	}, nil
}

// ensureStream creates the stream backing subject if it does not exist.
// Callers hold q.mu.
func (q *NATSQueue) ensureStream(subject string) error {
	if q.streams[subject] {
		return nil
	}

	name := "availmon-" + sanitizeStreamName(subject)
	_, err := q.js.StreamInfo(name)
	if errors.Is(err, nats.ErrStreamNotFound) {
		_, err = q.js.AddStream(&nats.StreamConfig{
			Name:     name,
			Subjects: []string{subject},
			Storage:  nats.MemoryStorage,
			MaxAge:   natsStreamMaxAge,
		})
	}
	if err != nil {
		return fmt.Errorf("failed to prepare stream for subject %s: %w", subject, err)
	}

	q.streams[subject] = true
	return nil
}

// Publish publishes a message and waits for the JetStream acknowledgement
func (q *NATSQueue) Publish(ctx context.Context, subject string, data []byte) error {
	q.mu.Lock()
	err := q.ensureStream(subject)
	q.mu.Unlock()
	if err != nil {
		return err
	}

	if _, err := q.js.Publish(subject, data, nats.Context(ctx)); err != nil {
		return fmt.Errorf("failed to publish to subject %s: %w", subject, err)
	}
	return nil
}

// Subscribe subscribes to a subject with an ephemeral JetStream consumer
func (q *NATSQueue) Subscribe(subject string, handler MessageHandler) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, exists := q.subscriptions[subject]; exists {
		return fmt.Errorf("already subscribed to subject: %s", subject)
	}

	if err := q.ensureStream(subject); err != nil {
		return err
	}

	sub, err := q.js.Subscribe(subject, func(msg *nats.Msg) {
		if err := handler(msg.Data); err != nil {
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.DeliverNew(),            // Announcements made before subscribing are stale
		nats.ManualAck(),             // Require explicit ACK
		nats.AckWait(30*time.Second), // Redeliver after 30s if not acked
		nats.MaxDeliver(3),           // Max 3 delivery attempts
	)
	if err != nil {
		return fmt.Errorf("failed to subscribe to subject %s: %w", subject, err)
	}

	q.subscriptions[subject] = sub
	return nil
}

// Unsubscribe unsubscribes from a subject
func (q *NATSQueue) Unsubscribe(subject string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	sub, exists := q.subscriptions[subject]
	if !exists {
		return fmt.Errorf("not subscribed to subject: %s", subject)
	}

	if err := sub.Unsubscribe(); err != nil {
		return fmt.Errorf("failed to unsubscribe from subject %s: %w", subject, err)
	}

	delete(q.subscriptions, subject)
	return nil
}

// Close closes the NATS connection and all subscriptions
func (q *NATSQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for subject, sub := range q.subscriptions {
		_ = sub.Unsubscribe()
		delete(q.subscriptions, subject)
	}

	q.conn.Close()
	return nil
}

// sanitizeStreamName replaces characters not allowed in stream names.
// Names can only contain: A-Z, a-z, 0-9, dash (-) and underscore (_)
func sanitizeStreamName(subject string) string {
	result := []byte(subject)
	for i, c := range result {
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			result[i] = '_'
		}
	}
	return string(result)
}
