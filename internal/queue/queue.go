// Package queue implements the durable hand-off between the submission
// service and the worker pool: a single Redis list carrying serialized job
// envelopes, FIFO per producer, at-least-once delivery.
package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/stemsplitter/api/internal/model"
)

// WorkChannel is the Redis list jobs are handed off on.
const WorkChannel = "toWorker"

// ErrUnavailable wraps any transport failure talking to the backing store.
// A failed Enqueue means the job was NOT queued.
var ErrUnavailable = errors.New("queue unavailable")

// Queue is a durable FIFO channel of JobEnvelopes backed by a Redis list.
// Safe for concurrent use from multiple producers and consumers; BLPOP
// guarantees an envelope is delivered to exactly one blocked consumer.
type Queue struct {
	redis *redis.Client
}

func New(redisClient *redis.Client) *Queue {
	return &Queue{redis: redisClient}
}

// Enqueue appends an envelope to the tail of the work channel.
func (q *Queue) Enqueue(ctx context.Context, env *model.JobEnvelope) error {
	data, err := env.Encode()
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}
	if err := q.redis.RPush(ctx, WorkChannel, data).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// DequeueBlocking removes and returns the head envelope, blocking until one
// is available or timeout elapses. timeout 0 blocks indefinitely. A nil
// envelope with a nil error means the timeout expired with nothing queued.
// An envelope that cannot be parsed is returned as an error together with
// nil; it has already been removed from the list.
func (q *Queue) DequeueBlocking(ctx context.Context, timeout time.Duration) (*model.JobEnvelope, error) {
	res, err := q.redis.BLPop(ctx, timeout, WorkChannel).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	// BLPop returns [key, value].
	if len(res) != 2 {
		return nil, fmt.Errorf("unexpected blpop reply of length %d", len(res))
	}
	env, err := model.DecodeEnvelope([]byte(res[1]))
	if err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	return env, nil
}

// PeekAll returns the raw serialized entries currently queued, oldest first,
// without removing anything. Callers decide how to treat entries that fail
// to parse.
func (q *Queue) PeekAll(ctx context.Context) ([]string, error) {
	entries, err := q.redis.LRange(ctx, WorkChannel, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return entries, nil
}

// Len reports the number of pending envelopes.
func (q *Queue) Len(ctx context.Context) (int64, error) {
	n, err := q.redis.LLen(ctx, WorkChannel).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return n, nil
}
