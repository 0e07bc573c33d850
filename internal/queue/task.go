// Package queue runs reconstruction jobs through a Redis backed asynq queue
// so a batch of bulletin pages can be processed by several workers.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/gardar/ocrtable/pkg/tabulate"
)

const (
	// TypeReconstruct is the task type of a tabulate.Job
	TypeReconstruct = "layout:reconstruct"

	// DefaultQueue is the queue jobs are enqueued on
	DefaultQueue = "ocrtable"

	// DefaultMaxRetry bounds retries of jobs that failed for a transient reason
	DefaultMaxRetry = 3

	// DefaultRetention keeps completed task results inspectable
	DefaultRetention = 24 * time.Hour
)

// NewTask encodes a job as a task. A job without an ID gets a random one,
// which also becomes the task ID.
func NewTask(job tabulate.Job, opts ...asynq.Option) (*asynq.Task, error) {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if err := job.Validate(); err != nil {
		return nil, fmt.Errorf("invalid job: %w", err)
	}

	payload, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("failed to encode job: %w", err)
	}

	options := []asynq.Option{
		asynq.TaskID(job.ID),
		asynq.MaxRetry(DefaultMaxRetry),
		asynq.Retention(DefaultRetention),
	}
	return asynq.NewTask(TypeReconstruct, payload, append(options, opts...)...), nil
}

// Client enqueues jobs
type Client struct {
	client *asynq.Client
	queue  string
}

// NewClient connects to the Redis instance at redisURL. An empty queue uses
// DefaultQueue.
func NewClient(redisURL, queue string) (*Client, error) {
	opt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	if queue == "" {
		queue = DefaultQueue
	}
	return &Client{client: asynq.NewClient(opt), queue: queue}, nil
}

// Enqueue submits a job. Enqueueing a job ID that is already queued fails
// with asynq.ErrTaskIDConflict.
func (c *Client) Enqueue(ctx context.Context, job tabulate.Job, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	task, err := NewTask(job, asynq.Queue(c.queue))
	if err != nil {
		return nil, err
	}
	info, err := c.client.EnqueueContext(ctx, task, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to enqueue job: %w", err)
	}
	return info, nil
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.client.Close()
}
