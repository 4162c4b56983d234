package tests

import (
	"context"
	"log"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/mansoorceksport/filevault/internal/config"
	"github.com/mansoorceksport/filevault/internal/storage"
	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
)

// SetupTestMongo spins up a fresh MongoDB container and returns a connected
// client along with a cleanup function.
func SetupTestMongo(t *testing.T) (*storage.MongoClient, func()) {
	ctx := context.Background()

	mongodbContainer, err := mongodb.Run(ctx, "mongo:latest")
	if err != nil {
		t.Fatalf("failed to start container: %s", err)
	}

	endpoint, err := mongodbContainer.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("failed to get connection string: %s", err)
	}

	client := storage.NewMongoClient(config.MongoDBConfig{
		URI:             endpoint,
		Database:        "files_manager_test",
		ConnectAttempts: 3,
		ConnectBackoff:  time.Second,
	})
	if err := client.Connect(ctx); err != nil {
		t.Fatalf("failed to connect to mongo: %v", err)
	}

	return client, func() {
		if err := client.Disconnect(ctx); err != nil {
			log.Printf("failed to disconnect mongo: %v", err)
		}
		if err := mongodbContainer.Terminate(ctx); err != nil {
			log.Printf("failed to terminate container: %v", err)
		}
	}
}

// SetupTestRedis starts an in-process Redis and returns a client for it.
func SetupTestRedis(t *testing.T) *redis.Client {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

// TestConfig returns a config with sane defaults for in-process tests.
func TestConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Server.MaxUploadSizeMB = 10
	cfg.Worker.Concurrency = 2
	cfg.Worker.MaxAttempts = 3
	return cfg
}
