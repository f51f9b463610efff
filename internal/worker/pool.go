package worker

import (
	"context"
	"sync"

	"github.com/stemsplitter/api/internal/queue"
	"github.com/stemsplitter/api/internal/separator"
	"github.com/stemsplitter/api/internal/sink"
	"github.com/stemsplitter/api/internal/storage"
)

// Pool runs N independent workers against the same queue and store. Workers
// share no in-memory state; the queue's atomic pop is the only coordination.
type Pool struct {
	workers []*Worker
}

func NewPool(n int, q *queue.Queue, store storage.ArtifactStore, sep separator.Separator, log *sink.Sink, stagingRoot, outputBucket string) *Pool {
	if n < 1 {
		n = 1
	}
	workers := make([]*Worker, n)
	for i := range workers {
		workers[i] = New(q, store, sep, log, stagingRoot, outputBucket)
	}
	return &Pool{workers: workers}
}

// Run blocks until ctx is cancelled and every worker has drained its current
// job.
func (p *Pool) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for _, w := range p.workers {
		wg.Add(1)
		go func(w *Worker) {
			defer wg.Done()
			w.Run(ctx)
		}(w)
	}
	wg.Wait()
}
