package job

import (
	"context"
	"sync"
)

// Run is the handle of an accepted submission. Callers normally poll
// Controller.Status; Run lets in-process callers wait instead.
type Run struct {
	id   string
	done chan struct{}
	once sync.Once
	// cancel is released when the run finishes. Nothing cancels a run early.
	cancel context.CancelFunc
}

func newRun(id string, cancel context.CancelFunc) *Run {
	return &Run{id: id, done: make(chan struct{}), cancel: cancel}
}

// ID returns the run id reported in Status.RunID.
func (r *Run) ID() string { return r.id }

// Done is closed once the job reached a terminal state.
func (r *Run) Done() <-chan struct{} { return r.done }

// Wait blocks until the run finishes or ctx is done.
func (r *Run) Wait(ctx context.Context) error {
	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Run) finish() {
	r.once.Do(func() {
		if r.cancel != nil {
			r.cancel()
		}
		close(r.done)
	})
}
