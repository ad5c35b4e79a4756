package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jcallaghan/sessionlink/internal/model"
	"github.com/jcallaghan/sessionlink/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Store = (*Storage)(nil)

// Last-used email operations

func (s *Storage) SaveLastEmail(ctx context.Context, email string) error {
	return s.client.Set(ctx, lastEmailKey(), email, 0).Err()
}

func (s *Storage) GetLastEmail(ctx context.Context) (string, error) {
	email, err := s.client.Get(ctx, lastEmailKey()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", model.ErrEmailNotFound
		}
		return "", err
	}
	return email, nil
}

// Host token operations

func (s *Storage) SaveHostToken(ctx context.Context, host, token string) error {
	return s.client.Set(ctx, hostTokenKey(host), token, s.cfg.HostTokenTTL).Err()
}

func (s *Storage) GetHostToken(ctx context.Context, host string) (string, error) {
	token, err := s.client.Get(ctx, hostTokenKey(host)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", model.ErrHostTokenNotFound
		}
		return "", err
	}
	return token, nil
}

func (s *Storage) DeleteHostToken(ctx context.Context, host string) error {
	return s.client.Del(ctx, hostTokenKey(host)).Err()
}
