package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/sarenasr/Rappi-Dashboard/internal/utils"
)

// KafkaConfig represents Apache Kafka configuration
type KafkaConfig struct {
	Brokers      []string      // Kafka broker addresses
	GroupID      string        // Consumer group ID, unique per instance
	BatchTimeout time.Duration // Producer flush delay (default: 10ms)
	MaxRetries   int           // Max write and commit attempts (default: 3)
	RetryBackoff time.Duration // Backoff between commit retries (default: 100ms)
}

// KafkaQueue implements Queue using Apache Kafka. Subjects map to topics.
type KafkaQueue struct {
	config        KafkaConfig
	writers       map[string]*kafka.Writer
	readers       map[string]*kafka.Reader
	subscriptions map[string]context.CancelFunc
	mu            sync.Mutex
}

// newKafkaQueue creates a new Kafka queue instance
func newKafkaQueue(cfg KafkaConfig) (*KafkaQueue, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers not configured")
	}

	if cfg.GroupID == "" {
		cfg.GroupID = "availmon"
	}
	if cfg.BatchTimeout == 0 {
		cfg.BatchTimeout = 10 * time.Millisecond
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = utils.DefaultMaxRetries
	}
	if cfg.RetryBackoff == 0 {
		cfg.RetryBackoff = utils.DefaultRetryBackoff
	}

	return &KafkaQueue{
		config:        cfg,
		writers:       make(map[string]*kafka.Writer),
		readers:       make(map[string]*kafka.Reader),
		subscriptions: make(map[string]context.CancelFunc),
	}, nil
}

// writer returns the topic's writer, creating it on first use
func (q *KafkaQueue) writer(topic string) *kafka.Writer {
	q.mu.Lock()
	defer q.mu.Unlock()

	if w, exists := q.writers[topic]; exists {
		return w
	}

	w := &kafka.Writer{
		Addr:                   kafka.TCP(q.config.Brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		BatchTimeout:           q.config.BatchTimeout,
		RequiredAcks:           kafka.RequireOne,
		MaxAttempts:            q.config.MaxRetries,
		AllowAutoTopicCreation: true,
	}
	q.writers[topic] = w
	return w
}

// Publish publishes a message to a Kafka topic
func (q *KafkaQueue) Publish(ctx context.Context, subject string, data []byte) error {
	msg := kafka.Message{Value: data, Time: time.Now()}
	if err := q.writer(subject).WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish to kafka topic %s: %w", subject, err)
	}
	return nil
}

// Subscribe joins this instance's group on the topic, starting from the
// newest offset when the group is new
func (q *KafkaQueue) Subscribe(subject string, handler MessageHandler) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, exists := q.subscriptions[subject]; exists {
		return fmt.Errorf("already subscribed to topic: %s", subject)
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        q.config.Brokers,
		GroupID:        q.config.GroupID,
		Topic:          subject,
		StartOffset:    kafka.LastOffset,
		MinBytes:       1,
		MaxBytes:       1e6,
		MaxWait:        time.Second,
		CommitInterval: 0, // commits are synchronous, after handling
	})

	ctx, cancel := context.WithCancel(context.Background())
	q.readers[subject] = reader
	q.subscriptions[subject] = cancel

	go q.consume(ctx, reader, handler)

	return nil
}

// consume reads messages in a loop. A message is committed only once its
// handler succeeded.
func (q *KafkaQueue) consume(ctx context.Context, reader *kafka.Reader, handler MessageHandler) {
	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			continue
		}

		if err := handler(msg.Value); err != nil {
			continue
		}

		for i := 0; i < q.config.MaxRetries; i++ {
			if err := reader.CommitMessages(ctx, msg); err == nil {
				break
			}
			if ctx.Err() != nil {
				return
			}
			time.Sleep(q.config.RetryBackoff)
		}
	}
}

// Unsubscribe unsubscribes from a Kafka topic
func (q *KafkaQueue) Unsubscribe(subject string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	cancel, exists := q.subscriptions[subject]
	if !exists {
		return fmt.Errorf("not subscribed to topic: %s", subject)
	}

	cancel()
	if reader, ok := q.readers[subject]; ok {
		_ = reader.Close()
		delete(q.readers, subject)
	}
	delete(q.subscriptions, subject)
	return nil
}

// Close closes all Kafka readers and writers
func (q *KafkaQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	var lastErr error
	for subject, cancel := range q.subscriptions {
		cancel()
		if reader, ok := q.readers[subject]; ok {
			if err := reader.Close(); err != nil {
				lastErr = err
			}
		}
		delete(q.subscriptions, subject)
		delete(q.readers, subject)
	}

	for topic, w := range q.writers {
		if err := w.Close(); err != nil {
			lastErr = err
		}
		delete(q.writers, topic)
	}

	return lastErr
}
