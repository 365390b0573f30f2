package jobs

import (
	"context"
	"log"
	"sync"
	"time"
)

// JobProcessor drains whatever work is pending when called
type JobProcessor interface {
	ProcessJobs(ctx context.Context) error
}

// Worker runs a JobProcessor on a fixed interval. Trigger wakes it early, so
// a freshly queued export does not wait for the next tick.
type Worker struct {
	name         string
	processor    JobProcessor
	pollInterval time.Duration
	wake         chan struct{}
	stopChan     chan struct{}
	doneChan     chan struct{}
	stopOnce     sync.Once
}

// NewWorker creates a worker named name for log output
func NewWorker(name string, processor JobProcessor, pollInterval time.Duration) *Worker {
	return &Worker{
		name:         name,
		processor:    processor,
		pollInterval: pollInterval,
		wake:         make(chan struct{}, 1),
		stopChan:     make(chan struct{}),
		doneChan:     make(chan struct{}),
	}
}

// Start drains pending work once, then polls until ctx is cancelled or Stop
// is called. It blocks; run it in its own goroutine.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()
	defer close(w.doneChan)

	log.Printf("%s started, polling every %v", w.name, w.pollInterval)
	w.run(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Printf("%s stopped: context cancelled", w.name)
			return
		case <-w.stopChan:
			log.Printf("%s stopped", w.name)
			return
		case <-w.wake:
			w.run(ctx)
		case <-ticker.C:
			w.run(ctx)
		}
	}
}

// Trigger requests an immediate pass. It never blocks; triggers that arrive
// while a pass is already queued are coalesced.
func (w *Worker) Trigger() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// Stop signals the loop and waits for the current pass to finish. Calling it
// more than once is safe.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() { close(w.stopChan) })
	<-w.doneChan
}

func (w *Worker) run(ctx context.Context) {
	if err := w.processor.ProcessJobs(ctx); err != nil {
		log.Printf("%s: %v", w.name, err)
	}
}
