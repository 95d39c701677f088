package pool_test

import (
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/veedubyou/stem-split-be/src/server/internal/separation/pool"
)

var _ = Describe("WorkerPool", func() {
	It("panics without at least one worker", func() {
		Expect(func() {
			pool.NewWorkerPool(0, 5)
		}).To(Panic())
	})

	It("runs every submitted task", func() {
		workerPool := pool.NewWorkerPool(3, 10)
		defer workerPool.Close()

		counter := atomic.Int64{}
		wg := sync.WaitGroup{}

		for i := 0; i < 10; i++ {
			wg.Add(1)
			err := workerPool.Submit(func() {
				defer wg.Done()
				counter.Add(1)
			})
			Expect(err).NotTo(HaveOccurred())
		}

		wg.Wait()
		Expect(counter.Load()).To(BeEquivalentTo(10))
	})

	It("runs no more tasks at once than it has workers", func() {
		workerPool := pool.NewWorkerPool(2, 10)
		defer workerPool.Close()

		running := atomic.Int64{}
		maxRunning := atomic.Int64{}
		release := make(chan struct{})
		wg := sync.WaitGroup{}

		for i := 0; i < 6; i++ {
			wg.Add(1)
			err := workerPool.Submit(func() {
				defer wg.Done()

				now := running.Add(1)
				defer running.Add(-1)

				for {
					max := maxRunning.Load()
					if now <= max || maxRunning.CompareAndSwap(max, now) {
						break
					}
				}

				<-release
			})
			Expect(err).NotTo(HaveOccurred())
		}

		close(release)
		wg.Wait()

		Expect(maxRunning.Load()).To(BeNumerically("<=", 2))
	})

	Describe("Saturation", func() {
		It("rejects immediately once workers and queue are full", func() {
			workerPool := pool.NewWorkerPool(1, 1)
			defer workerPool.Close()

			started := make(chan struct{})
			release := make(chan struct{})
			defer close(release)

			// occupies the single worker
			err := workerPool.Submit(func() {
				close(started)
				<-release
			})
			Expect(err).NotTo(HaveOccurred())
			<-started

			// occupies the single queue slot
			err = workerPool.Submit(func() {})
			Expect(err).NotTo(HaveOccurred())

			err = workerPool.Submit(func() {})
			Expect(err).To(HaveOccurred())
			Expect(errors.Is(err, pool.ErrQueueSaturated)).To(BeTrue())
		})
	})
})
