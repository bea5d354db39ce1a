package celery

import (
	"context"
	"time"

	"github.com/celeryq/gocelery/internal/base"
)

// Result is a handle to a task's eventual outcome, identified by the
// task ID ApplyAsync generated.
type Result struct {
	client *Client
	taskID string
}

// TaskID returns the UUID this result is correlated with.
func (r *Result) TaskID() string { return r.taskID }

// Get awaits the task's result, racing against timeout when > 0 (0 waits
// indefinitely, bounded only by ctx).
func (r *Result) Get(ctx context.Context, timeout time.Duration) (base.ResultMessage, error) {
	const op = "celery.Result.Get"
	msg, err := r.client.backend.Get(ctx, r.taskID, timeout)
	if err != nil {
		return base.ResultMessage{}, wrapOp(op, err)
	}
	return msg, nil
}

// Forget discards any stored result for this task, if the backend holds
// one.
func (r *Result) Forget(ctx context.Context) error {
	const op = "celery.Result.Forget"
	_, err := r.client.backend.Delete(ctx, r.taskID)
	if err != nil {
		return wrapOp(op, err)
	}
	return nil
}
