package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/stemsplitter/api/internal/identity"
	"github.com/stemsplitter/api/internal/model"
	"github.com/stemsplitter/api/internal/queue"
	"github.com/stemsplitter/api/internal/sink"
	"github.com/stemsplitter/api/internal/storage"
)

// ErrValidation marks bad client input: empty, undecodable or oversized
// payloads. Never retried.
var ErrValidation = errors.New("invalid payload")

// ErrStorageNotConfigured is returned by track fetches when no artifact
// store was wired in.
var ErrStorageNotConfigured = errors.New("object storage not configured")

const enqueuedReason = "Song enqueued for separation"

// unknownID stands in for queue entries that cannot be parsed when listing.
const unknownID = "unknown"

// SubmissionService accepts separation requests, derives job identity and
// hands envelopes to the durable queue. It performs no deduplication:
// submitting the same payload twice yields two entries with the same id.
type SubmissionService struct {
	queue        *queue.Queue
	store        storage.ArtifactStore // nil until storage is integrated
	outputBucket string
	maxPayload   int
	log          *sink.Sink
}

func NewSubmissionService(q *queue.Queue, store storage.ArtifactStore, outputBucket string, maxPayload int, log *sink.Sink) *SubmissionService {
	return &SubmissionService{
		queue:        q,
		store:        store,
		outputBucket: outputBucket,
		maxPayload:   maxPayload,
		log:          log,
	}
}

// Submit validates and enqueues one separation job.
func (s *SubmissionService) Submit(ctx context.Context, req *model.SeparateRequest) (*model.SeparateResponse, error) {
	raw, err := base64.StdEncoding.DecodeString(req.MP3)
	if err != nil {
		return nil, fmt.Errorf("%w: mp3 is not valid base64", ErrValidation)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: mp3 payload is empty", ErrValidation)
	}
	if s.maxPayload > 0 && len(raw) > s.maxPayload {
		return nil, fmt.Errorf("%w: mp3 payload exceeds %d bytes", ErrValidation, s.maxPayload)
	}

	hash := identity.Hash(raw)
	s.log.Info(fmt.Sprintf("Received separation request for song %s", hash))

	env := &model.JobEnvelope{
		SongHash: hash,
		MP3:      base64.StdEncoding.EncodeToString(raw),
		Callback: req.Callback,
	}
	if err := s.queue.Enqueue(ctx, env); err != nil {
		return nil, err
	}

	s.log.Info(fmt.Sprintf("Job %s queued to worker", hash))

	return &model.SeparateResponse{
		Hash:   hash,
		Reason: enqueuedReason,
	}, nil
}

// ListQueued returns the ids of pending jobs in enqueue order. A malformed
// entry contributes the "unknown" sentinel instead of aborting the listing.
func (s *SubmissionService) ListQueued(ctx context.Context) ([]string, error) {
	entries, err := s.queue.PeekAll(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		env, err := model.DecodeEnvelope([]byte(entry))
		if err != nil || env.SongHash == "" {
			ids = append(ids, unknownID)
			continue
		}
		ids = append(ids, env.SongHash)
	}

	s.log.Info(fmt.Sprintf("Queue status requested: %d items", len(ids)))
	return ids, nil
}

// GetTrack fetches one published stem from the artifact store.
func (s *SubmissionService) GetTrack(ctx context.Context, songHash string, stem model.Stem) ([]byte, error) {
	s.log.Info(fmt.Sprintf("Track download requested: %s/%s", songHash, stem))
	if s.store == nil {
		return nil, ErrStorageNotConfigured
	}
	return s.store.Get(ctx, s.outputBucket, model.ArtifactKey(songHash, stem))
}

// Remove is a placeholder: it acknowledges the request without deleting
// anything. Real artifact deletion is future work.
func (s *SubmissionService) Remove(songHash string) *model.RemoveResponse {
	s.log.Info(fmt.Sprintf("Track removal requested: %s", songHash))
	return &model.RemoveResponse{
		Message: fmt.Sprintf("Track %s removal queued", songHash),
	}
}
