package pool

import (
	"github.com/apex/log"
	"github.com/cockroachdb/errors"
)

// ErrQueueSaturated is returned by Submit when the queue has no room.
// Callers are expected to surface this as backpressure rather than wait.
var ErrQueueSaturated = errors.New("Work queue is saturated")

// WorkerPool bounds how many separation runs execute at once. Tasks
// queue up to queueDepth beyond the running ones; past that Submit
// rejects immediately so a saturated pool never blocks the caller.
type WorkerPool struct {
	tasks chan func()
}

func NewWorkerPool(numWorkers int, queueDepth int) WorkerPool {
	if numWorkers < 1 {
		panic("Worker pool needs at least one worker")
	}

	workerPool := WorkerPool{
		tasks: make(chan func(), queueDepth),
	}

	for i := 0; i < numWorkers; i++ {
		go workerPool.work()
	}

	log.WithFields(log.Fields{
		"numWorkers": numWorkers,
		"queueDepth": queueDepth,
	}).Info("Started worker pool")

	return workerPool
}

func (w WorkerPool) work() {
	for task := range w.tasks {
		task()
	}
}

func (w WorkerPool) Submit(task func()) error {
	select {
	case w.tasks <- task:
		return nil
	default:
		return errors.Wrap(ErrQueueSaturated, "Failed to submit task")
	}
}

// Close stops the workers once queued tasks drain. Submitting after
// Close panics - only call it on the way out of the process.
func (w WorkerPool) Close() {
	close(w.tasks)
}
