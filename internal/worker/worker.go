// Package worker pulls job envelopes off the durable queue, runs the
// separation step and publishes the resulting stems. Each worker owns its
// jobs end to end: a dequeued envelope is run to completion, success or
// failure, and a failure only ever terminates that one job.
package worker

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/stemsplitter/api/internal/model"
	"github.com/stemsplitter/api/internal/queue"
	"github.com/stemsplitter/api/internal/separator"
	"github.com/stemsplitter/api/internal/sink"
	"github.com/stemsplitter/api/internal/storage"
)

const (
	// dequeueTimeout bounds each blocking pop so the loop can notice
	// context cancellation between jobs. The pop itself blocks server-side;
	// this is not a poll.
	dequeueTimeout = 5 * time.Second

	// retryDelay backs off the loop when the queue itself is unreachable.
	retryDelay = 3 * time.Second
)

// Worker runs the per-job lifecycle: wait, receive, stage, process, publish.
type Worker struct {
	id           string
	queue        *queue.Queue
	store        storage.ArtifactStore
	sep          separator.Separator
	log          *sink.Sink
	stagingRoot  string // empty means the OS temp dir
	outputBucket string
}

func New(q *queue.Queue, store storage.ArtifactStore, sep separator.Separator, log *sink.Sink, stagingRoot, outputBucket string) *Worker {
	return &Worker{
		id:           uuid.New().String()[:8],
		queue:        q,
		store:        store,
		sep:          sep,
		log:          log,
		stagingRoot:  stagingRoot,
		outputBucket: outputBucket,
	}
}

// Run blocks on the queue until ctx is cancelled. Errors never escape the
// loop; a bad envelope or a failed job is logged and the next one is taken.
func (w *Worker) Run(ctx context.Context) {
	w.log.Info(fmt.Sprintf("Worker %s starting", w.id))
	for {
		select {
		case <-ctx.Done():
			w.log.Info(fmt.Sprintf("Worker %s shutting down", w.id))
			return
		default:
		}

		env, err := w.queue.DequeueBlocking(ctx, dequeueTimeout)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			w.log.Debug(fmt.Sprintf("Worker %s dequeue error: %v", w.id, err))
			if errors.Is(err, queue.ErrUnavailable) {
				time.Sleep(retryDelay)
			}
			continue
		}
		if env == nil {
			// Timeout with nothing queued; go back to waiting.
			continue
		}

		w.log.Info(fmt.Sprintf("Received job: %s", env.SongHash))
		w.process(ctx, env)
	}
}

// process runs one envelope through staging, separation and publication.
// The staging area is removed on every exit path.
func (w *Worker) process(ctx context.Context, env *model.JobEnvelope) {
	defer func() {
		if r := recover(); r != nil {
			w.log.Debug(fmt.Sprintf("Job %s panicked: %v", env.SongHash, r))
		}
	}()

	raw, err := base64.StdEncoding.DecodeString(env.MP3)
	if err != nil || len(raw) == 0 {
		w.log.Debug(fmt.Sprintf("Job %s failed: undecodable payload: %v", env.SongHash, err))
		return
	}

	dir, err := w.stage(env.SongHash, raw)
	if err != nil {
		w.log.Debug(fmt.Sprintf("Job %s failed: staging: %v", env.SongHash, err))
		return
	}
	defer os.RemoveAll(dir)

	inputPath := filepath.Join(dir, env.SongHash+".mp3")
	outputDir := filepath.Join(dir, "output")

	w.log.Info(fmt.Sprintf("Processing job %s", env.SongHash))
	out, err := w.sep.Separate(ctx, inputPath, outputDir)
	if err != nil {
		w.log.Debug(fmt.Sprintf("Job %s failed: separation: %v: %s", env.SongHash, err, out))
		return
	}

	published := w.publish(ctx, env.SongHash, outputDir)
	w.log.Info(fmt.Sprintf("Job %s completed, %d stems published", env.SongHash, published))
}

// stage creates the job's exclusive working area and materializes the input
// file into it. Namespacing by job id plus the unique temp suffix keeps
// concurrent workers from ever colliding.
func (w *Worker) stage(songHash string, raw []byte) (string, error) {
	dir, err := os.MkdirTemp(w.stagingRoot, "separate-"+songHash+"-")
	if err != nil {
		return "", err
	}
	inputPath := filepath.Join(dir, songHash+".mp3")
	if err := os.WriteFile(inputPath, raw, 0o644); err != nil {
		os.RemoveAll(dir)
		return "", err
	}
	return dir, nil
}

// publish uploads each stem the separator actually produced. A missing stem
// is skipped; a failed upload is logged and the remaining stems still go out.
// Returns the number of stems uploaded.
func (w *Worker) publish(ctx context.Context, songHash, outputDir string) int {
	published := 0
	for _, stem := range model.AllStems {
		path := w.sep.StemPath(outputDir, songHash, stem)
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				w.log.Debug(fmt.Sprintf("Job %s: reading stem %s: %v", songHash, stem, err))
			}
			continue
		}
		key := model.ArtifactKey(songHash, stem)
		if err := w.store.Put(ctx, w.outputBucket, key, data); err != nil {
			w.log.Debug(fmt.Sprintf("Job %s: uploading stem %s: %v", songHash, stem, err))
			continue
		}
		published++
	}
	return published
}
