package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"

	"github.com/stemsplitter/api/internal/config"
	"github.com/stemsplitter/api/internal/handler"
	"github.com/stemsplitter/api/internal/queue"
	"github.com/stemsplitter/api/internal/service"
	"github.com/stemsplitter/api/internal/sink"
	"github.com/stemsplitter/api/internal/storage"
	"github.com/stemsplitter/api/pkg/response"
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

	// Test Redis connection
	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("Warning: Redis not available: %v", err)
	}

	// Initialize MinIO artifact store. The track endpoints fall back to 501
	// when storage cannot be reached at startup.
	var store storage.ArtifactStore
	minioStore, err := storage.NewMinioStore(&cfg.Minio)
	if err != nil {
		log.Printf("Warning: MinIO not available: %v", err)
	} else {
		if err := minioStore.EnsureBuckets(ctx, cfg.Minio.QueueBucket, cfg.Minio.OutputBucket); err != nil {
			log.Printf("Warning: bucket provisioning failed: %v", err)
		}
		store = minioStore
	}

	// Initialize validator
	validate := validator.New()

	// Observability sink
	restSink := sink.New(redisClient, "rest")

	// Initialize services
	jobQueue := queue.New(redisClient)
	submissionService := service.NewSubmissionService(jobQueue, store, cfg.Minio.OutputBucket, cfg.Server.MaxPayloadBytes, restSink)

	// Initialize handlers
	separateHandler := handler.NewSeparateHandler(submissionService, validate)

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		BodyLimit:    cfg.Server.MaxPayloadBytes + cfg.Server.MaxPayloadBytes/2, // base64 overhead
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	// Routes
	app.Get("/", separateHandler.Banner)

	api := app.Group("/apiv1")
	api.Post("/separate", separateHandler.Separate)
	api.Get("/queue", separateHandler.Queue)
	api.Get("/track/:songhash/:track", separateHandler.Track)
	api.Get("/remove/:songhash", separateHandler.Remove)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("Shutting down server...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	// Start server
	restSink.Info("REST Server starting")
	addr := ":" + cfg.Server.Port
	if err := app.Listen(addr); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return response.Error(c, code, message)
}
