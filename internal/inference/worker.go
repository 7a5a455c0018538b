// Package inference provides the classification and sentence-similarity
// engines backing the routing decision engine.
//
// Each engine wraps exactly one long-lived model instance. The model is owned
// by a dedicated worker goroutine and served through a request queue, so the
// serialization point is explicit: one inference executes at a time per model,
// and callers of the other model are unaffected. Submission and the wait for
// a result both honor context cancellation; an in-flight inference cannot be
// interrupted, but a canceled caller detaches and the orphaned result is
// discarded by the worker.
package inference

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// ErrEngineClosed is returned when submitting to a closed engine.
var ErrEngineClosed = errors.New("inference engine closed")

type job struct {
	run  func() (any, error)
	done chan jobResult
}

type jobResult struct {
	value any
	err   error
}

// worker owns one model instance. All jobs execute on its goroutine,
// one at a time, in submission order.
type worker struct {
	name   string
	jobs   chan job
	quit   chan struct{}
	logger *zap.Logger
}

func newWorker(name string, queueSize int, logger *zap.Logger) *worker {
	if queueSize <= 0 {
		queueSize = 64
	}
	w := &worker{
		name:   name,
		jobs:   make(chan job, queueSize),
		quit:   make(chan struct{}),
		logger: logger,
	}
	go w.loop()
	return w
}

func (w *worker) loop() {
	for {
		select {
		case <-w.quit:
			return
		case j := <-w.jobs:
			value, err := j.run()
			// done is buffered: a caller that gave up never blocks the worker.
			j.done <- jobResult{value: value, err: err}
		}
	}
}

// submit enqueues run and waits for its result. The context governs both the
// time spent queued and the wait for completion.
func (w *worker) submit(ctx context.Context, run func() (any, error)) (any, error) {
	j := job{run: run, done: make(chan jobResult, 1)}

	select {
	case w.jobs <- j:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-w.quit:
		return nil, ErrEngineClosed
	}

	select {
	case res := <-j.done:
		return res.value, res.err
	case <-ctx.Done():
		w.logger.Debug("inference caller canceled with work in flight",
			zap.String("worker", w.name))
		return nil, ctx.Err()
	case <-w.quit:
		return nil, ErrEngineClosed
	}
}

// close stops the worker. Queued jobs that have not started are dropped;
// their callers unblock with ErrEngineClosed.
func (w *worker) close() {
	close(w.quit)
}
