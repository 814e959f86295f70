package queue

import (
	"fmt"
	"strings"

	"github.com/sarenasr/Rappi-Dashboard/internal/config"
	"github.com/sarenasr/Rappi-Dashboard/internal/utils"
)

// NewQueue creates a new Queue instance based on configuration. Memory is
// the default. instanceID names this instance's consumer group on backends
// that have them, so each instance receives every message.
func NewQueue(cfg config.QueueConfig, instanceID string) (Queue, error) {
	queueType := utils.QueueType(strings.ToLower(cfg.Type))
	if queueType == "" {
		queueType = utils.QueueTypeMemory
	}

	switch queueType {
	case utils.QueueTypeNATS:
		return newNATSQueue(NATSConfig{
			URL:      cfg.URL,
			Username: cfg.Username,
			Password: cfg.Password,
		})

	case utils.QueueTypeRedis:
		return newRedisQueue(RedisConfig{
			URL:      cfg.URL,
			Password: cfg.Password,
			DB:       cfg.RedisDB,
			Stream:   cfg.RedisStream,
			Consumer: instanceID,
		})

	case utils.QueueTypeKafka:
		return newKafkaQueue(KafkaConfig{
			Brokers: cfg.KafkaBrokers,
			GroupID: "availmon-" + instanceID,
		})

	case utils.QueueTypeMemory:
		return newMemoryQueue(), nil

	case utils.QueueTypeNone:
		return nil, nil

	default:
		return nil, fmt.Errorf("unsupported queue type: %s (supported: memory, nats, redis, kafka, none)", queueType)
	}
}
