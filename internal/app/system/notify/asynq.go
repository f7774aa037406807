// internal/app/system/notify/asynq.go
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// NoteCreatedTaskType is the queue task name for note-creation notifications.
const NoteCreatedTaskType = "notes:note_created"

// AsynqDispatcher enqueues events onto a Redis-backed asynq queue. Used
// when delivery should survive process restarts or be handled by a separate
// worker deployment.
type AsynqDispatcher struct {
	client *asynq.Client
	log    *zap.Logger
}

// NewAsynqDispatcher constructs a dispatcher from a Redis URI.
func NewAsynqDispatcher(redisURL string, logger *zap.Logger) (*AsynqDispatcher, error) {
	opt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, fmt.Errorf("notify: parse redis url: %w", err)
	}
	return &AsynqDispatcher{
		client: asynq.NewClient(opt),
		log:    logger,
	}, nil
}

// Dispatch enqueues the event. An enqueue failure is returned so the caller
// can log it; it must not fail the note-creating operation.
func (d *AsynqDispatcher) Dispatch(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("notify: marshal event: %w", err)
	}
	task := asynq.NewTask(NoteCreatedTaskType, payload)
	_, err = d.client.EnqueueContext(ctx, task, asynq.MaxRetry(3), asynq.Queue("notify"))
	return err
}

// Close releases the underlying queue client.
func (d *AsynqDispatcher) Close() error {
	return d.client.Close()
}

// RunAsynqWorker starts an asynq server consuming the notify queue and
// blocks until the context is canceled. Handler errors trigger asynq's
// retry policy up to the MaxRetry set at enqueue time.
func RunAsynqWorker(ctx context.Context, redisURL string, handler Handler, logger *zap.Logger) error {
	opt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return fmt.Errorf("notify: parse redis url: %w", err)
	}

	srv := asynq.NewServer(opt, asynq.Config{
		Concurrency: 4,
		Queues:      map[string]int{"notify": 1},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			logger.Warn("notify task failed", zap.String("type", task.Type()), zap.Error(err))
		}),
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(NoteCreatedTaskType, func(ctx context.Context, t *asynq.Task) error {
		var ev Event
		if err := json.Unmarshal(t.Payload(), &ev); err != nil {
			// Malformed payload: retrying cannot help.
			return fmt.Errorf("notify: unmarshal event: %w", err)
		}
		return handler(ctx, ev)
	})

	if err := srv.Start(mux); err != nil {
		return err
	}
	<-ctx.Done()
	srv.Shutdown()
	return nil
}
