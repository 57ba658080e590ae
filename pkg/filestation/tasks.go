package filestation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fivetwenty-io/dsm/internal/constants"
	"github.com/fivetwenty-io/dsm/pkg/dsm"
)

// Static errors for err113 compliance.
var (
	ErrTaskFailed = errors.New("task failed")
)

// Poll defaults.
const (
	DefaultPollInterval = constants.DefaultPollInterval
	DefaultPollTimeout  = constants.DefaultTaskPollTimeout
)

// WaitOption configures how a background task is polled.
type WaitOption func(*waitOptions)

type waitOptions struct {
	interval time.Duration
	timeout  time.Duration
	progress func(progress float64)
}

// WithPollInterval sets the delay between status requests.
func WithPollInterval(interval time.Duration) WaitOption {
	return func(o *waitOptions) {
		if interval > 0 {
			o.interval = interval
		}
	}
}

// WithPollTimeout bounds the whole wait.
func WithPollTimeout(timeout time.Duration) WaitOption {
	return func(o *waitOptions) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}

// WithProgress is called with the progress reported by every status.
func WithProgress(fn func(progress float64)) WaitOption {
	return func(o *waitOptions) {
		o.progress = fn
	}
}

// WaitCopyMove polls a copy or move task until it finishes. A task that
// finished with per-item errors fails with ErrTaskFailed.
func WaitCopyMove(ctx context.Context, client dsm.Client, taskID string, opts ...WaitOption) (*CopyMoveStatus, error) {
	return poll(ctx, client, CopyMoveStatusRequest(taskID), opts, func(status *CopyMoveStatus) (bool, float64, []dsm.ErrorDetail) {
		return status.Finished, status.Progress, status.Errors
	})
}

// WaitDelete polls a delete task until it finishes. A task that finished
// with per-item errors fails with ErrTaskFailed.
func WaitDelete(ctx context.Context, client dsm.Client, taskID string, opts ...WaitOption) (*DeleteStatus, error) {
	return poll(ctx, client, DeleteStatusRequest(taskID), opts, func(status *DeleteStatus) (bool, float64, []dsm.ErrorDetail) {
		return status.Finished, status.Progress, status.Errors
	})
}

type inspectFunc[T any] func(status *T) (finished bool, progress float64, details []dsm.ErrorDetail)

func poll[T any](ctx context.Context, client dsm.Client, req *dsm.Request[T], opts []WaitOption, inspect inspectFunc[T]) (*T, error) {
	options := waitOptions{
		interval: DefaultPollInterval,
		timeout:  DefaultPollTimeout,
	}

	for _, opt := range opts {
		opt(&options)
	}

	pollCtx, cancel := context.WithTimeout(ctx, options.timeout)
	defer cancel()

	ticker := time.NewTicker(options.interval)
	defer ticker.Stop()

	var last *T

	for {
		status, err := dsm.Get(pollCtx, client, req)
		if err != nil {
			if last != nil && pollCtx.Err() != nil {
				// Return the last known state on timeout
				return last, fmt.Errorf("timeout waiting for task to complete: %w", pollCtx.Err())
			}

			return nil, fmt.Errorf("getting task status: %w", err)
		}

		last = status

		finished, progress, details := inspect(status)

		if options.progress != nil {
			options.progress(progress)
		}

		if finished {
			if len(details) > 0 {
				return status, fmt.Errorf("%w: %s", ErrTaskFailed, formatTaskErrors(details))
			}

			return status, nil
		}

		select {
		case <-pollCtx.Done():
			return status, fmt.Errorf("timeout waiting for task to complete: %w", pollCtx.Err())
		case <-ticker.C:
		}
	}
}

func formatTaskErrors(details []dsm.ErrorDetail) string {
	if len(details) == 1 {
		return details[0].String()
	}

	var builder strings.Builder

	builder.WriteString("multiple errors:")

	for i, detail := range details {
		fmt.Fprintf(&builder, "\n  %d. %s", i+1, detail)
	}

	return builder.String()
}
