// Package sink is the write-only observability channel shared by the REST
// server and the workers: every event is mirrored to stderr and appended to
// the Redis "logging" list as "{node}.{component}.{level}:{message}".
package sink

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	logChannel = "logging"

	levelInfo  = "info"
	levelDebug = "debug"

	pushTimeout = 2 * time.Second
)

// Sink emits fire-and-forget log events. Redis failures are swallowed:
// logging must never break the pipeline.
type Sink struct {
	redis     *redis.Client
	component string
	node      string
}

// New creates a sink for one component ("rest" or "worker"). A nil Redis
// client degrades to stderr-only output.
func New(redisClient *redis.Client, component string) *Sink {
	node, err := os.Hostname()
	if err != nil {
		node = "unknown"
	}
	return &Sink{
		redis:     redisClient,
		component: component,
		node:      node,
	}
}

func (s *Sink) Info(message string) {
	log.Printf("INFO: %s", message)
	s.push(levelInfo, message)
}

func (s *Sink) Debug(message string) {
	log.Printf("DEBUG: %s", message)
	s.push(levelDebug, message)
}

func (s *Sink) push(level, message string) {
	if s.redis == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), pushTimeout)
	defer cancel()
	entry := s.node + "." + s.component + "." + level + ":" + message
	if err := s.redis.LPush(ctx, logChannel, entry).Err(); err != nil {
		log.Printf("Redis logging error: %v", err)
	}
}
