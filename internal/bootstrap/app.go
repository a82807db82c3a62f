package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/panjf2000/ants/v2"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"studydeck/internal/ai"
	"studydeck/internal/app"
	"studydeck/internal/cache"
	"studydeck/internal/chunker"
	"studydeck/internal/config"
	"studydeck/internal/ingestion"
	"studydeck/internal/pkg/workpool"
	rabbitmqClient "studydeck/internal/platform/rabbitmq"
	redisClient "studydeck/internal/platform/redis"
	"studydeck/internal/repository"
	"studydeck/internal/retrieval"
	"studydeck/internal/worker"
)

type App struct {
	Config *config.Config
	Logger *slog.Logger
	DB     *gorm.DB
	Redis  *redis.Client
	MQConn *amqp.Connection
	Pool   *ants.Pool
	Store  *repository.Store

	Pipeline  *ingestion.Pipeline
	Retriever *retrieval.Retriever
	Limiter   *cache.WindowCounter

	Sessions   *app.SessionService
	Ingest     *app.IngestService
	Flashcards *app.FlashcardService

	usagePublisher *rabbitmqClient.UsagePublisher
	usageWorker    *worker.UsageMeterWorker

	StartedAt time.Time
}

// New wires every dependency of the HTTP server. Redis and RabbitMQ are
// optional: an empty address disables the flashcard cache and rate limiter,
// an empty URL disables usage metering.
func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}
	logger := NewLogger(cfg.App.Env, cfg.App.LogLevel)
	slog.SetDefault(logger)

	a := &App{Config: cfg, Logger: logger, StartedAt: time.Now()}
	if err := a.init(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) init(ctx context.Context) error {
	cfg := a.Config

	db, err := OpenDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	a.DB = db
	a.Store = repository.NewStore(db)

	pool, err := workpool.New(cfg.Ingest.PoolSize)
	if err != nil {
		return err
	}
	a.Pool = pool

	var flashcardCache app.FlashcardCache
	if cfg.Redis.Addr != "" {
		rdb, err := redisClient.New(ctx, redisClient.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err != nil {
			return err
		}
		a.Redis = rdb
		flashcardCache = cache.NewFlashcardCache(rdb, cfg.FlashcardTTL())
		a.Limiter = cache.NewWindowCounter(rdb)
	}

	var usage app.UsagePublisher
	if cfg.RabbitMQ.URL != "" {
		conn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL, cfg.RabbitMQ.UsageQueue)
		if err != nil {
			return err
		}
		a.MQConn = conn
		a.usagePublisher = rabbitmqClient.NewUsagePublisher(conn, cfg.RabbitMQ.UsageQueue)
		usage = a.usagePublisher

		a.usageWorker = worker.NewUsageMeterWorker(conn, a.Store, cfg.RabbitMQ.UsageQueue, a.Logger)
		if err := a.usageWorker.Start(ctx); err != nil {
			return fmt.Errorf("start usage worker failed: %w", err)
		}
	}

	embedder, generator := NewAI(cfg, a.Logger)
	a.Pipeline = NewPipeline(cfg, a.Store, embedder, pool, a.Logger)
	a.Retriever = retrieval.New(a.Store,
		retrieval.WithDefaultTopK(cfg.Retrieval.DefaultTopK),
		retrieval.WithLogger(a.Logger))

	a.Sessions = app.NewSessionService(a.Store, flashcardCache, a.Logger)
	a.Ingest = app.NewIngestService(a.Pipeline)
	a.Flashcards = app.NewFlashcardService(app.FlashcardDeps{
		Embedder:  embedder,
		Retriever: a.Retriever,
		Generator: generator,
		Store:     a.Store,
		Cache:     flashcardCache,
		Usage:     usage,
		Pool:      pool,
		Logger:    a.Logger,
	}, app.FlashcardConfig{
		DefaultCount:     cfg.Generation.NFlashcards,
		MaxContextTokens: cfg.Generation.MaxContextTokens,
	})
	return nil
}

// NewAI builds the embedder and generator against the configured
// OpenAI-compatible provider.
func NewAI(cfg *config.Config, logger *slog.Logger) (*ai.Embedder, *ai.Generator) {
	client := ai.NewOpenAICompatibleClient(ai.ClientConfig{
		BaseURL: cfg.LLM.BaseURL,
		APIKey:  cfg.LLM.APIKey,
		Timeout: cfg.LLMTimeout(),
	})
	embedder := ai.NewEmbedder(client, ai.EmbeddingConfig{
		Model:      cfg.LLM.EmbeddingModel,
		Dimensions: cfg.LLM.EmbeddingDim,
		BatchSize:  cfg.LLM.EmbeddingBatch,
	})
	generator := ai.NewGenerator(client, ai.ChatConfig{
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
	}, logger)
	return embedder, generator
}

func NewPipeline(cfg *config.Config, store ingestion.Store, embedder ingestion.Embedder, pool *ants.Pool, logger *slog.Logger) *ingestion.Pipeline {
	return ingestion.New(store, embedder,
		ingestion.WithChunker(chunker.New(cfg.Ingest.ChunkSize, cfg.Ingest.ChunkOverlap)),
		ingestion.WithDimension(cfg.LLM.EmbeddingDim),
		ingestion.WithPool(pool),
		ingestion.WithLogger(logger))
}

func (a *App) Close() error {
	var errs []error
	if a.usageWorker != nil {
		a.usageWorker.Close()
	}
	if a.usagePublisher != nil {
		if err := a.usagePublisher.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.Pool != nil {
		a.Pool.Release()
	}
	if err := closeDatabase(a.DB); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
