package queue

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/hibiken/asynq"

	"github.com/gardar/ocrtable/internal/logging"
)

// ServerConfig holds worker settings
type ServerConfig struct {
	RedisURL    string
	Queue       string // DefaultQueue when empty
	Concurrency int    // Jobs processed at once, 1 when zero
	Logger      *logging.Logger
}

// Server consumes jobs from the queue
type Server struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	logger *logging.Logger
	queue  string
}

// NewServer creates a worker for cfg.Queue
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.RedisURL == "" {
		return nil, fmt.Errorf("RedisURL is required")
	}
	opt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	if cfg.Queue == "" {
		cfg.Queue = DefaultQueue
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewLogger("queue")
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: cfg.Concurrency,
		Queues: map[string]int{
			cfg.Queue: 10,
			"default": 1,
		},
		RetryDelayFunc: retryDelay,
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			logger.Error("task failed", "type", task.Type(), "error", err)
		}),
		Logger: asynqLogger{logger.With("asynq")},
	})

	return &Server{
		server: server,
		mux:    asynq.NewServeMux(),
		logger: logger,
		queue:  cfg.Queue,
	}, nil
}

// Run processes TypeReconstruct tasks with h until ctx is cancelled, then
// waits for running jobs to finish
func (s *Server) Run(ctx context.Context, h asynq.Handler) error {
	s.mux.Handle(TypeReconstruct, h)

	s.logger.Info("starting worker", "queue", s.queue)
	if err := s.server.Start(s.mux); err != nil {
		return fmt.Errorf("failed to start worker: %w", err)
	}

	<-ctx.Done()
	s.logger.Info("stopping worker", "queue", s.queue)
	s.server.Shutdown()
	return nil
}

// retryDelay backs off exponentially from 5s, capped at one minute
func retryDelay(n int, err error, task *asynq.Task) time.Duration {
	delay := time.Duration(5*(1<<uint(n))) * time.Second
	if delay > time.Minute || delay <= 0 {
		delay = time.Minute
	}
	return delay
}

// asynqLogger routes asynq's own logging through the component logger
type asynqLogger struct {
	l *logging.Logger
}

func (a asynqLogger) Debug(args ...interface{}) { a.l.Debug(fmt.Sprint(args...)) }
func (a asynqLogger) Info(args ...interface{})  { a.l.Info(fmt.Sprint(args...)) }
func (a asynqLogger) Warn(args ...interface{})  { a.l.Warn(fmt.Sprint(args...)) }
func (a asynqLogger) Error(args ...interface{}) { a.l.Error(fmt.Sprint(args...)) }

func (a asynqLogger) Fatal(args ...interface{}) {
	a.l.Error(fmt.Sprint(args...))
	os.Exit(1)
}
