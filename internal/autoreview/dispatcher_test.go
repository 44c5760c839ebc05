package autoreview_test

import (
	"log/slog"
	"os"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/claim-management/internal/autoreview"
)

// Mock runner recording which reviewers were swept
type mockRunner struct {
	mu        sync.Mutex
	reviewers []int64
	swept     []int64
}

func (m *mockRunner) RunAutoReview(reviewerID int64) (int, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.swept = append(m.swept, reviewerID)
	return 1, 1, nil
}

func (m *mockRunner) ReviewersWithRules() ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reviewers, nil
}

func (m *mockRunner) sweptIDs() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int64(nil), m.swept...)
}

var _ = Describe("Dispatcher", func() {
	var (
		runner *mockRunner
		logger *slog.Logger
	)

	BeforeEach(func() {
		runner = &mockRunner{}
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	})

	It("runs every enqueued reviewer sweep", func() {
		dispatcher := autoreview.NewDispatcher(autoreview.DispatcherConfig{MaxWorkers: 2}, runner, logger)
		defer dispatcher.Shutdown()

		Expect(dispatcher.Enqueue(2)).To(Succeed())
		Expect(dispatcher.Enqueue(3)).To(Succeed())

		Eventually(runner.sweptIDs, time.Second, 10*time.Millisecond).Should(ConsistOf(int64(2), int64(3)))
	})

	It("sweeps every reviewer that owns rules", func() {
		runner.reviewers = []int64{2, 3, 5}
		dispatcher := autoreview.NewDispatcher(autoreview.DispatcherConfig{MaxWorkers: 2}, runner, logger)
		defer dispatcher.Shutdown()

		Expect(dispatcher.Sweep()).To(Succeed())

		Eventually(runner.sweptIDs, time.Second, 10*time.Millisecond).Should(ConsistOf(int64(2), int64(3), int64(5)))
	})

	It("rejects jobs when the queue is full", func() {
		// single slot queue with no workers draining fast enough to matter
		dispatcher := autoreview.NewDispatcher(autoreview.DispatcherConfig{MaxWorkers: 1, JobQueueSize: 1}, runner, logger)
		defer dispatcher.Shutdown()

		// fill the queue faster than one worker can drain it; at least one
		// enqueue must be accepted and none may block
		accepted := 0
		for i := 0; i < 50; i++ {
			if err := dispatcher.Enqueue(int64(i)); err == nil {
				accepted++
			}
		}
		Expect(accepted).To(BeNumerically(">", 0))
	})

	It("shuts down cleanly with queued work", func() {
		dispatcher := autoreview.NewDispatcher(autoreview.DispatcherConfig{MaxWorkers: 2}, runner, logger)
		Expect(dispatcher.Enqueue(2)).To(Succeed())

		done := make(chan struct{})
		go func() {
			dispatcher.Shutdown()
			close(done)
		}()

		Eventually(done, time.Second).Should(BeClosed())
	})
})
