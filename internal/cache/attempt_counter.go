// Package cache holds the server-authoritative attempt counters. Counts
// live in Redis so that two concurrent starts for the same (exam, student)
// pair cannot both observe a value below the limit: INCR is atomic and the
// incremented value is what gets checked.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// AttemptCounter tracks how many attempts a student has used on an exam.
type AttemptCounter interface {
	// Count returns the attempts used so far.
	Count(ctx context.Context, examID, studentID string) (int, error)
	// Increment atomically bumps the counter and returns the new value. The
	// ttl bounds how long a counter outlives the exam's expiry.
	Increment(ctx context.Context, examID, studentID string, ttl time.Duration) (int, error)
}

type redisAttemptCounter struct {
	client *redis.Client
	logger *slog.Logger
}

func NewRedisAttemptCounter(client *redis.Client, logger *slog.Logger) AttemptCounter {
	return &redisAttemptCounter{client: client, logger: logger}
}

func attemptKey(examID, studentID string) string {
	return fmt.Sprintf("exam:%s:attempts:%s", examID, studentID)
}

func (c *redisAttemptCounter) Count(ctx context.Context, examID, studentID string) (int, error) {
	count, err := c.client.Get(ctx, attemptKey(examID, studentID)).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read attempt counter: %w", err)
	}
	return count, nil
}

func (c *redisAttemptCounter) Increment(ctx context.Context, examID, studentID string, ttl time.Duration) (int, error) {
	key := attemptKey(examID, studentID)

	count, err := c.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment attempt counter: %w", err)
	}
	if ttl > 0 {
		if err := c.client.Expire(ctx, key, ttl).Err(); err != nil {
			c.logger.Warn("failed to set attempt counter ttl", "key", key, "error", err)
		}
	}

	return int(count), nil
}

// MemoryAttemptCounter is an in-process counter for tests and single-node
// development runs.
type MemoryAttemptCounter struct {
	mu     sync.Mutex
	counts map[string]int
}

func NewMemoryAttemptCounter() *MemoryAttemptCounter {
	return &MemoryAttemptCounter{counts: make(map[string]int)}
}

func (c *MemoryAttemptCounter) Count(ctx context.Context, examID, studentID string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[attemptKey(examID, studentID)], nil
}

func (c *MemoryAttemptCounter) Increment(ctx context.Context, examID, studentID string, _ time.Duration) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := attemptKey(examID, studentID)
	c.counts[key]++
	return c.counts[key], nil
}
