package e2e

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/stemsplitter/api/internal/handler"
	"github.com/stemsplitter/api/internal/queue"
	"github.com/stemsplitter/api/internal/service"
	"github.com/stemsplitter/api/internal/sink"
	"github.com/stemsplitter/api/internal/storage"
)

// testApp holds all components needed for testing
type testApp struct {
	app   *fiber.App
	redis *redis.Client
	queue *queue.Queue
}

// setupApp creates a Fiber app wired like cmd/server/main.go, against a
// local Redis on DB 15. Tests are skipped when Redis is not reachable.
// store may be nil to exercise the storage-unconfigured paths.
func setupApp(t *testing.T, store storage.ArtifactStore) *testApp {
	t.Helper()

	redisClient := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15, // use DB 15 for tests to avoid collision
	})
	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		t.Skipf("redis not available: %v", err)
	}
	redisClient.Del(ctx, queue.WorkChannel, "logging")
	t.Cleanup(func() {
		redisClient.Del(context.Background(), queue.WorkChannel, "logging")
		redisClient.Close()
	})

	validate := validator.New()
	restSink := sink.New(redisClient, "rest")
	jobQueue := queue.New(redisClient)
	submissionService := service.NewSubmissionService(jobQueue, store, "output", 10*1024*1024, restSink)
	separateHandler := handler.NewSeparateHandler(submissionService, validate)

	app := fiber.New()
	app.Get("/", separateHandler.Banner)

	api := app.Group("/apiv1")
	api.Post("/separate", separateHandler.Separate)
	api.Get("/queue", separateHandler.Queue)
	api.Get("/track/:songhash/:track", separateHandler.Track)
	api.Get("/remove/:songhash", separateHandler.Remove)

	return &testApp{app: app, redis: redisClient, queue: jobQueue}
}

// doRequest is a helper to perform HTTP requests against the test app.
func doRequest(app *fiber.App, method, path string, body string) (*http.Response, error) {
	var bodyReader io.Reader
	if body != "" {
		bodyReader = strings.NewReader(body)
	}

	req, err := http.NewRequest(method, path, bodyReader)
	if err != nil {
		return nil, err
	}

	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	return app.Test(req, -1)
}

// memStore is an in-memory ArtifactStore for tests.
type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{objects: make(map[string][]byte)}
}

func (m *memStore) Put(_ context.Context, bucket, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[bucket+"/"+key] = data
	return nil
}

func (m *memStore) Get(_ context.Context, bucket, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[bucket+"/"+key]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", storage.ErrNotFound, bucket, key)
	}
	return data, nil
}

func (m *memStore) Exists(_ context.Context, bucket, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[bucket+"/"+key]
	return ok, nil
}

func (m *memStore) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}
