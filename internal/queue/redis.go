package queue

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sarenasr/Rappi-Dashboard/internal/logging"
)

// redisStreamMaxLen caps each stream; older announcements are trimmed
const redisStreamMaxLen = 1000

// RedisConfig represents Redis Streams configuration
type RedisConfig struct {
	URL      string // Redis URL (e.g., redis://localhost:6379)
	Password string // Optional password
	DB       int    // Database number (default: 0)
	Stream   string // Stream prefix (default: "availmon")
	Consumer string // Consumer name, also naming its group (default: hostname)
}

// RedisQueue implements Queue using Redis Streams. Each consumer reads
// through its own group so that every instance sees every message.
type RedisQueue struct {
	client        *redis.Client
	config        RedisConfig
	subscriptions map[string]context.CancelFunc
	mu            sync.Mutex
	wg            sync.WaitGroup
}

// newRedisQueue creates a new Redis Streams queue instance
func newRedisQueue(cfg RedisConfig) (*RedisQueue, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		opts = &redis.Options{
			Addr:     cfg.URL,
			Password: cfg.Password,
			DB:       cfg.DB,
		}
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if cfg.Stream == "" {
		cfg.Stream = "availmon"
	}
	if cfg.Consumer == "" {
		hostname, _ := os.Hostname()
		if hostname == "" {
			hostname = "consumer-1"
		}
		cfg.Consumer = hostname
	}

	return &RedisQueue{
		client:        client,
		config:        cfg,
		subscriptions: make(map[string]context.CancelFunc),
	}, nil
}

// streamName converts a subject to a Redis stream name
func (q *RedisQueue) streamName(subject string) string {
	return q.config.Stream + ":" + subject
}

// groupName is the consumer group private to this instance
func (q *RedisQueue) groupName() string {
	return q.config.Stream + "-" + q.config.Consumer
}

// Publish appends a message to the subject's stream
func (q *RedisQueue) Publish(ctx context.Context, subject string, data []byte) error {
	stream := q.streamName(subject)

	err := q.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		MaxLen: redisStreamMaxLen,
		Approx: true,
		ID:     "*",
		Values: map[string]interface{}{"data": data},
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to publish to Redis stream %s: %w", stream, err)
	}
	return nil
}

// Subscribe creates this instance's group at the stream's tail and reads
// new messages in the background
func (q *RedisQueue) Subscribe(subject string, handler MessageHandler) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, exists := q.subscriptions[subject]; exists {
		return fmt.Errorf("already subscribed to subject: %s", subject)
	}

	stream := q.streamName(subject)
	ctx, cancel := context.WithCancel(context.Background())

	err := q.client.XGroupCreateMkStream(ctx, stream, q.groupName(), "$").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		cancel()
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		q.readStream(ctx, stream, handler)
	}()

	q.subscriptions[subject] = cancel
	return nil
}

// readStream continuously reads messages from a Redis stream
func (q *RedisQueue) readStream(ctx context.Context, stream string, handler MessageHandler) {
	group := q.groupName()
	for ctx.Err() == nil {
		streams, err := q.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    group,
			Consumer: q.config.Consumer,
			Streams:  []string{stream, ">"},
			Count:    16,
			Block:    5 * time.Second,
		}).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || ctx.Err() != nil {
				continue
			}
			logging.Warn("Redis stream read failed", "stream", stream, "error", err)
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
			continue
		}

		for _, s := range streams {
			for _, msg := range s.Messages {
				data, ok := msg.Values["data"].(string)
				if ok {
					if err := handler([]byte(data)); err != nil {
						// not acknowledged; stays pending for this group
						continue
					}
				}
				q.client.XAck(ctx, stream, group, msg.ID)
			}
		}
	}
}

// Unsubscribe unsubscribes from a subject
func (q *RedisQueue) Unsubscribe(subject string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	cancel, exists := q.subscriptions[subject]
	if !exists {
		return fmt.Errorf("not subscribed to subject: %s", subject)
	}

	cancel()
	delete(q.subscriptions, subject)
	return nil
}

// Close stops the readers, removes this instance's groups and closes the
// connection
func (q *RedisQueue) Close() error {
	q.mu.Lock()
	subjects := make([]string, 0, len(q.subscriptions))
	for subject, cancel := range q.subscriptions {
		cancel()
		subjects = append(subjects, subject)
		delete(q.subscriptions, subject)
	}
	q.mu.Unlock()

	q.wg.Wait()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for _, subject := range subjects {
		q.client.XGroupDestroy(ctx, q.streamName(subject), q.groupName())
	}

	return q.client.Close()
}
