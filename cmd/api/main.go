package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mansoorceksport/filevault/internal/config"
	"github.com/mansoorceksport/filevault/internal/domain"
	"github.com/mansoorceksport/filevault/internal/repository"
	"github.com/mansoorceksport/filevault/internal/server"
	"github.com/mansoorceksport/filevault/internal/storage"
	"github.com/mansoorceksport/filevault/internal/telemetry"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/contrib/instrumentation/go.mongodb.org/mongo-driver/mongo/otelmongo"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	log.Info().Msg("starting filevault API...")

	ctx := context.Background()

	otelProvider, err := telemetry.Initialize(ctx, telemetry.Config{
		ServiceName:    cfg.OTEL.ServiceName,
		ServiceVersion: cfg.OTEL.ServiceVersion,
		Environment:    cfg.OTEL.Environment,
		OTLPEndpoint:   cfg.OTEL.Endpoint,
		Enabled:        cfg.OTEL.Enabled,
	})
	if err != nil {
		log.Warn().Err(err).Msg("failed to initialize OpenTelemetry")
	}
	if otelProvider != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			otelProvider.Shutdown(shutdownCtx)
		}()
	}

	// Connect to MongoDB through the explicit connector
	var mongoOpts []func(*options.ClientOptions)
	if cfg.OTEL.Enabled {
		mongoOpts = append(mongoOpts, func(o *options.ClientOptions) {
			o.SetMonitor(otelmongo.NewMonitor())
		})
	}
	mongoClient := storage.NewMongoClient(cfg.MongoDB, mongoOpts...)
	if err := mongoClient.Connect(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("error disconnecting from MongoDB")
		}
	}()
	log.Info().Msg("MongoDB connected")

	// Connect to Redis
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

	app := server.NewApp(server.AppDependencies{
		Config:       cfg,
		Mongo:        mongoClient,
		RedisClient:  redisClient,
		ContentStore: contentStore,
	})

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		log.Info().Msg("shutting down gracefully...")
		app.Shutdown()
	}()

	log.Info().Str("port", cfg.Server.Port).Msg("server starting")
	if err := app.Listen(":" + cfg.Server.Port); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
}

func newContentStore(ctx context.Context, cfg *config.Config) (domain.ContentStore, error) {
	if cfg.Storage.Backend == "s3" {
		return repository.NewS3ContentStore(ctx, cfg.S3)
	}
	return repository.NewDiskContentStore(cfg.Storage.FolderPath)
}
