package utils

import "time"

// =============================================================================
// Timeout Constants
// =============================================================================

const (
	// DefaultRequestTimeout is the default timeout for HTTP requests
	DefaultRequestTimeout = 30 * time.Second

	// ReloadTimeout bounds one dataset reload, from reading the file to
	// publishing the reload event
	ReloadTimeout = 2 * time.Minute

	// PublishTimeout bounds publishing a single event on the queue
	PublishTimeout = 5 * time.Second

	// ShutdownTimeout is how long the server waits for in-flight requests
	ShutdownTimeout = 10 * time.Second
)

// =============================================================================
// Retry and Backoff Constants
// =============================================================================

const (
	// DefaultMaxRetries is the default number of retry attempts
	DefaultMaxRetries = 3

	// DefaultRetryBackoff is the default backoff duration between retries
	DefaultRetryBackoff = 100 * time.Millisecond
)

// =============================================================================
// Cache Constants
// =============================================================================

// CacheType represents the type of view cache
type CacheType string

const (
	// CacheTypeMemory keeps views in process (default)
	CacheTypeMemory CacheType = "memory"

	// CacheTypeRedis shares views between instances through Redis
	CacheTypeRedis CacheType = "redis"

	// CacheTypeNone disables caching
	CacheTypeNone CacheType = "none"
)

const (
	// DefaultCacheEntries bounds the in-memory view cache
	DefaultCacheEntries = 512
)

// =============================================================================
// Queue Type Constants
// =============================================================================

// QueueType represents the type of message queue
type QueueType string

const (
	// QueueTypeNATS represents NATS JetStream queue
	QueueTypeNATS QueueType = "nats"

	// QueueTypeRedis represents Redis Streams queue
	QueueTypeRedis QueueType = "redis"

	// QueueTypeKafka represents Apache Kafka queue
	QueueTypeKafka QueueType = "kafka"

	// QueueTypeMemory represents in-memory queue (default, single instance)
	QueueTypeMemory QueueType = "memory"

	// QueueTypeNone disables reload events
	QueueTypeNone QueueType = "none"
)

// ReloadSubject is the default subject dataset reloads are announced on
const ReloadSubject = "availability.reloaded"
