package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/gardar/ocrtable/internal/logging"
	"github.com/gardar/ocrtable/pkg/layout"
	"github.com/gardar/ocrtable/pkg/tabulate"
)

// DefaultTimeout bounds a single job, including any Document AI call
const DefaultTimeout = 5 * time.Minute

// JobRunner executes one job
type JobRunner interface {
	Run(ctx context.Context, job tabulate.Job) (*tabulate.Output, error)
}

// Handler processes TypeReconstruct tasks
type Handler struct {
	Runner  JobRunner
	Status  StatusStore // Optional
	Logger  *logging.Logger
	Timeout time.Duration // DefaultTimeout when zero
}

// ProcessTask implements asynq.Handler. Payloads that cannot be decoded and
// configuration errors are not retried.
func (h *Handler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	start := time.Now()
	log := h.logger()

	var job tabulate.Job
	if err := json.Unmarshal(t.Payload(), &job); err != nil {
		log.Error("undecodable job payload", "type", t.Type(), "error", err)
		return fmt.Errorf("failed to decode job: %v: %w", err, asynq.SkipRetry)
	}
	if job.ID == "" {
		if w := t.ResultWriter(); w != nil {
			job.ID = w.TaskID()
		}
	}
	if err := job.Validate(); err != nil {
		log.Error("invalid job", "job", job.ID, "error", err)
		h.update(ctx, Status{ID: job.ID, State: StateFailed, Error: err.Error()})
		return fmt.Errorf("invalid job %s: %v: %w", job.ID, err, asynq.SkipRetry)
	}

	log.Info("processing job", "job", job.ID, "jurisdiction", job.Jurisdiction, "source", job.Source, "input", job.Input)
	h.update(ctx, Status{ID: job.ID, State: StateProcessing})

	timeout := h.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	out, err := h.Runner.Run(runCtx, job)
	duration := time.Since(start)
	if err != nil {
		log.Error("job failed", "job", job.ID, "duration", duration, "error", err)
		h.update(ctx, Status{ID: job.ID, State: StateFailed, Error: err.Error()})

		var cfgErr *layout.ConfigurationError
		if errors.As(err, &cfgErr) {
			return fmt.Errorf("job %s: %w: %w", job.ID, err, asynq.SkipRetry)
		}
		return fmt.Errorf("job %s: %w", job.ID, err)
	}

	status := Status{
		ID:       job.ID,
		State:    StateCompleted,
		Lines:    len(out.Lines),
		Records:  len(out.Records),
		Dropped:  out.Dropped,
		Geometry: out.Geometry,
	}
	h.update(ctx, status)

	if w := t.ResultWriter(); w != nil {
		if data, err := json.Marshal(out); err == nil {
			if _, err := w.Write(data); err != nil {
				log.Warn("failed to write task result", "job", job.ID, "error", err)
			}
		}
	}

	log.Info("job completed", "job", job.ID, "duration", duration, "lines", status.Lines, "records", status.Records)
	return nil
}

func (h *Handler) update(ctx context.Context, s Status) {
	if h.Status == nil || s.ID == "" {
		return
	}
	if err := h.Status.Update(ctx, s); err != nil {
		h.logger().Warn("failed to update job status", "job", s.ID, "state", s.State, "error", err)
	}
}

func (h *Handler) logger() *logging.Logger {
	if h.Logger == nil {
		return logging.Discard()
	}
	return h.Logger
}
