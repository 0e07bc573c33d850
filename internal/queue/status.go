package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrStatusNotFound is returned for job IDs with no recorded status
var ErrStatusNotFound = errors.New("job status not found")

// State is a job's position in its lifecycle
type State string

const (
	StateProcessing State = "processing"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
)

var states = []State{StateProcessing, StateCompleted, StateFailed}

// Status is the last known state of a job
type Status struct {
	ID        string    `json:"id"`
	State     State     `json:"state"`
	Lines     int       `json:"lines"`
	Records   int       `json:"records"`
	Dropped   int       `json:"dropped"`
	Geometry  bool      `json:"geometry"`
	Error     string    `json:"error,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StatusStore records job progress
type StatusStore interface {
	Update(ctx context.Context, s Status) error
	Get(ctx context.Context, id string) (*Status, error)
}

// RedisStatus keeps job status in Redis: a hash of status documents, one set
// of job IDs per state, and an events channel carrying every update
type RedisStatus struct {
	client *redis.Client
	prefix string
}

// NewRedisStatus creates a store under the key prefix, DefaultQueue when
// empty. The connection is made on first use.
func NewRedisStatus(redisURL, prefix string) (*RedisStatus, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	if prefix == "" {
		prefix = DefaultQueue
	}
	return &RedisStatus{client: redis.NewClient(opt), prefix: prefix}, nil
}

func (r *RedisStatus) statusKey() string       { return r.prefix + ":status" }
func (r *RedisStatus) eventsKey() string       { return r.prefix + ":events" }
func (r *RedisStatus) stateKey(s State) string { return fmt.Sprintf("%s:%s", r.prefix, s) }

// Update stores s and publishes it
func (r *RedisStatus) Update(ctx context.Context, s Status) error {
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = time.Now().UTC()
	}
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode status: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, r.statusKey(), s.ID, data)
		for _, state := range states {
			if state != s.State {
				pipe.SRem(ctx, r.stateKey(state), s.ID)
			}
		}
		pipe.SAdd(ctx, r.stateKey(s.State), s.ID)
		pipe.Publish(ctx, r.eventsKey(), data)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to update status of %s: %w", s.ID, err)
	}
	return nil
}

// Get returns the status of a job
func (r *RedisStatus) Get(ctx context.Context, id string) (*Status, error) {
	data, err := r.client.HGet(ctx, r.statusKey(), id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", ErrStatusNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read status of %s: %w", id, err)
	}

	var s Status
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to decode status of %s: %w", id, err)
	}
	return &s, nil
}

// Counts returns the number of jobs in each state
func (r *RedisStatus) Counts(ctx context.Context) (map[State]int64, error) {
	counts := make(map[State]int64, len(states))
	for _, state := range states {
		n, err := r.client.SCard(ctx, r.stateKey(state)).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to count %s jobs: %w", state, err)
		}
		counts[state] = n
	}
	return counts, nil
}

// Close closes the Redis connection
func (r *RedisStatus) Close() error {
	return r.client.Close()
}
