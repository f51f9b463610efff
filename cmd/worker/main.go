package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/stemsplitter/api/internal/config"
	"github.com/stemsplitter/api/internal/queue"
	"github.com/stemsplitter/api/internal/separator"
	"github.com/stemsplitter/api/internal/sink"
	"github.com/stemsplitter/api/internal/storage"
	"github.com/stemsplitter/api/internal/worker"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("Warning: Redis not available: %v", err)
	}

	// Initialize MinIO artifact store
	store, err := storage.NewMinioStore(&cfg.Minio)
	if err != nil {
		log.Fatalf("Failed to init MinIO: %v", err)
	}
	if err := store.EnsureBuckets(ctx, cfg.Minio.QueueBucket, cfg.Minio.OutputBucket); err != nil {
		log.Printf("Warning: bucket provisioning failed: %v", err)
	}

	workerSink := sink.New(redisClient, "worker")
	jobQueue := queue.New(redisClient)
	sep := separator.NewDemucsCLI(cfg.Separator.Binary, cfg.Separator.Model)

	pool := worker.NewPool(
		cfg.Worker.Concurrency,
		jobQueue,
		store,
		sep,
		workerSink,
		cfg.Worker.StagingDir,
		cfg.Minio.OutputBucket,
	)

	// Graceful shutdown: let in-flight jobs finish, stop taking new ones.
	runCtx, cancel := context.WithCancel(ctx)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		workerSink.Info("Worker shutting down")
		cancel()
	}()

	workerSink.Info("Worker starting")
	pool.Run(runCtx)
}
