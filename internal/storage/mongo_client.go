package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mansoorceksport/filevault/internal/config"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConnState is the connector's lifecycle state.
type ConnState int

const (
	StateDisconnected ConnState = iota
	StateConnecting
	StateConnected
)

func (s ConnState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// MongoClient wraps the driver client with an explicit connect lifecycle:
// Connect is idempotent and retries with backoff up to a configured number
// of attempts. The connector is constructed once per process and injected
// into the repositories.
type MongoClient struct {
	cfg  config.MongoDBConfig
	opts []func(*options.ClientOptions)

	mu     sync.Mutex
	state  ConnState
	client *mongo.Client
}

// NewMongoClient creates a connector in the disconnected state. Extra
// option hooks (e.g. a command monitor) are applied before dialing.
func NewMongoClient(cfg config.MongoDBConfig, opts ...func(*options.ClientOptions)) *MongoClient {
	return &MongoClient{
		cfg:   cfg,
		opts:  opts,
		state: StateDisconnected,
	}
}

// Connect dials and pings the server, retrying with linear backoff until
// the attempt budget runs out. Calling Connect on a connected client is a
// no-op.
func (c *MongoClient) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateConnected {
		return nil
	}
	c.state = StateConnecting

	attempts := c.cfg.ConnectAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		client, err := c.dial(ctx)
		if err == nil {
			c.client = client
			c.state = StateConnected
			return nil
		}
		lastErr = err
		log.Warn().Err(err).Int("attempt", attempt).Int("max_attempts", attempts).Msg("mongodb connect failed")

		if attempt < attempts {
			select {
			case <-ctx.Done():
				c.state = StateDisconnected
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * c.cfg.ConnectBackoff):
			}
		}
	}

	c.state = StateDisconnected
	return fmt.Errorf("failed to connect to mongodb after %d attempts: %w", attempts, lastErr)
}

func (c *MongoClient) dial(ctx context.Context) (*mongo.Client, error) {
	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	clientOpts := options.Client().ApplyURI(c.cfg.URI)
	for _, opt := range c.opts {
		opt(clientOpts)
	}

	client, err := mongo.Connect(dialCtx, clientOpts)
	if err != nil {
		return nil, err
	}
	if err := client.Ping(dialCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}

// Database returns a handle on the configured database. Connect must have
// succeeded first.
func (c *MongoClient) Database() *mongo.Database {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client == nil {
		return nil
	}
	return c.client.Database(c.cfg.Database)
}

// State reports the connector state.
func (c *MongoClient) State() ConnState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// IsAlive pings the server.
func (c *MongoClient) IsAlive(ctx context.Context) bool {
	c.mu.Lock()
	client := c.client
	c.mu.Unlock()

	if client == nil {
		return false
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return client.Ping(pingCtx, nil) == nil
}

// Disconnect tears the connection down and returns to the disconnected
// state.
func (c *MongoClient) Disconnect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client == nil {
		return nil
	}
	err := c.client.Disconnect(ctx)
	c.client = nil
	c.state = StateDisconnected
	return err
}
