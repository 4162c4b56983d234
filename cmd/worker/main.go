package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/mansoorceksport/filevault/internal/config"
	"github.com/mansoorceksport/filevault/internal/domain"
	"github.com/mansoorceksport/filevault/internal/repository"
	"github.com/mansoorceksport/filevault/internal/storage"
	"github.com/mansoorceksport/filevault/internal/worker"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	log.Info().Msg("starting filevault worker...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mongoClient := storage.NewMongoClient(cfg.MongoDB)
	if err := mongoClient.Connect(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("error disconnecting from MongoDB")
		}
	}()
	log.Info().Msg("MongoDB connected")

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       0,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	log.Info().Msg("Redis connected")

	contentStore, err := newContentStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize content store")
	}

	db := mongoClient.Database()
	userRepo := repository.NewMongoUserRepository(db)
	fileRepo := repository.NewMongoFileRepository(db)

	fileQueue := repository.NewRedisQueue(redisClient, domain.FileQueue, cfg.Worker.MaxAttempts)
	userQueue := repository.NewRedisQueue(redisClient, domain.UserQueue, cfg.Worker.MaxAttempts)

	// Put back anything a previous worker left on the processing lists.
	for name, q := range map[string]*repository.RedisQueue{
		domain.FileQueue: fileQueue,
		domain.UserQueue: userQueue,
	} {
		n, err := q.Recover(ctx)
		if err != nil {
			log.Fatal().Err(err).Str("queue", name).Msg("failed to recover in-flight jobs")
		}
		if n > 0 {
			log.Info().Str("queue", name).Int("jobs", n).Msg("recovered in-flight jobs")
		}
	}

	thumbnailPool := worker.NewPool(
		domain.FileQueue,
		fileQueue,
		worker.NewThumbnailProcessor(fileRepo, contentStore),
		cfg.Worker.Concurrency,
	)
	welcomePool := worker.NewPool(
		domain.UserQueue,
		userQueue,
		worker.NewWelcomeProcessor(userRepo),
		1,
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return thumbnailPool.Run(ctx) })
	g.Go(func() error { return welcomePool.Run(ctx) })

	log.Info().Int("concurrency", cfg.Worker.Concurrency).Msg("worker pools running")
	if err := g.Wait(); err != nil && err != context.Canceled {
		log.Fatal().Err(err).Msg("worker stopped")
	}
	log.Info().Msg("worker shut down")
}

func newContentStore(ctx context.Context, cfg *config.Config) (domain.ContentStore, error) {
	if cfg.Storage.Backend == "s3" {
		return repository.NewS3ContentStore(ctx, cfg.S3)
	}
	return repository.NewDiskContentStore(cfg.Storage.FolderPath)
}
