package tasks

import (
	"context"       // Context for Redis operations
	"encoding/json" // Job payload encoding
	"errors"        // Sentinel comparison
	"time"          // Enqueue timestamps and poll timeouts

	"github.com/google/uuid"       // Job identifiers
	"github.com/redis/go-redis/v9" // Redis client
)

// Job names understood by the worker
const (
	JobHunterWelcome               = "hunter-welcome"                // args: hunter id
	JobGuildCreation               = "guild-creation"                // args: guild id
	JobGuildInvite                 = "guild-invite"                  // args: hunter id, guild id
	JobRaidNotification            = "raid-notification"             // args: raid id
	JobRaidInvite                  = "raid-invite"                   // args: raid id, hunter id
	JobRaidParticipantNotification = "raid-participant-notification" // args: raid id, hunter id
)

// DefaultQueueKey is the Redis list jobs are pushed to
const DefaultQueueKey = "tasks:default"

// Job is a unit of background work. Args only ever carry entity ids.
type Job struct {
	ID         string    `json:"id"`          // Handle returned to the enqueuer
	Name       string    `json:"name"`        // One of the Job* names
	Args       []uint    `json:"args"`        // Entity ids
	Attempts   int       `json:"attempts"`    // Failed deliveries so far
	EnqueuedAt time.Time `json:"enqueued_at"` // First enqueue time
}

// Enqueuer hands jobs to the worker pool without waiting for them to run
type Enqueuer interface {
	Enqueue(ctx context.Context, name string, args ...uint) (string, error)
}

// Source feeds jobs to a Worker
type Source interface {
	Dequeue(ctx context.Context, timeout time.Duration) (*Job, error) // Next job or nil on timeout
	Requeue(ctx context.Context, job Job) error                       // Put a failed job back
}

// RedisQueue is a FIFO job queue on a Redis list
type RedisQueue struct {
	rdb *redis.Client // Redis client
	key string        // List key
}

// NewRedisQueue creates a queue on the given list key
func NewRedisQueue(rdb *redis.Client, key string) *RedisQueue {
	if key == "" {
		key = DefaultQueueKey // Shared default list
	}
	return &RedisQueue{rdb: rdb, key: key}
}

// Enqueue pushes a new job and returns its id
func (q *RedisQueue) Enqueue(ctx context.Context, name string, args ...uint) (string, error) {
	job := Job{
		ID:         uuid.NewString(), // Unique handle
		Name:       name,             // Job name
		Args:       args,             // Entity ids
		EnqueuedAt: time.Now().UTC(), // Enqueue time
	}
	if err := q.push(ctx, job); err != nil {
		return "", err // Redis unavailable
	}
	return job.ID, nil
}

// Requeue pushes a job back after a failed attempt
func (q *RedisQueue) Requeue(ctx context.Context, job Job) error {
	return q.push(ctx, job) // Keeps the attempt count
}

// Dequeue blocks up to timeout for the oldest job. It returns nil, nil when the wait times out.
func (q *RedisQueue) Dequeue(ctx context.Context, timeout time.Duration) (*Job, error) {
	res, err := q.rdb.BRPop(ctx, timeout, q.key).Result() // Pop the oldest entry
	if errors.Is(err, redis.Nil) {
		return nil, nil // Timed out with nothing queued
	}
	if err != nil {
		return nil, err // Redis or context error
	}
	var job Job
	if err := json.Unmarshal([]byte(res[1]), &job); err != nil { // res is [key, value]
		return nil, err
	}
	return &job, nil // Job ready to run
}

// Len reports the number of waiting jobs
func (q *RedisQueue) Len(ctx context.Context) (int64, error) {
	return q.rdb.LLen(ctx, q.key).Result() // Count list entries
}

func (q *RedisQueue) push(ctx context.Context, job Job) error {
	b, err := json.Marshal(job) // Encode payload
	if err != nil {
		return err
	}
	return q.rdb.LPush(ctx, q.key, b).Err() // Newest at the head, BRPOP takes the tail
}
