package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pitabwire/podenv/loader"
	"github.com/pitabwire/podenv/props"
)

// Options contains configuration for the Redis source.
type Options struct {
	URI    string
	Prefix string
}

// Source reads property tables stored as Redis hashes under Prefix+props.Key.
type Source struct {
	client *redis.Client
	prefix string
}

var _ loader.Source = (*Source)(nil)

const connectionTimeout = 5 * time.Second

// New connects to Redis and verifies the connection.
func New(ctx context.Context, opts Options) (*Source, error) {
	redisOpts, err := redis.ParseURL(opts.URI)
	if err != nil {
		return nil, fmt.Errorf("invalid redis uri: %w", err)
	}

	client := redis.NewClient(redisOpts)

	pingCtx, cancel := context.WithTimeout(ctx, connectionTimeout)
	defer cancel()

	if err = client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &Source{client: client, prefix: opts.Prefix}, nil
}

// HashKey returns the Redis key holding a module resource.
func (s *Source) HashKey(module, resourcePath string) string {
	return s.prefix + props.Key(module, resourcePath)
}

// Fetch loads the hash for a module resource. Redis drops empty hashes, so an
// empty reply means the table does not exist.
func (s *Source) Fetch(ctx context.Context, module, resourcePath string) (map[string]string, error) {
	values, err := s.client.HGetAll(ctx, s.HashKey(module, resourcePath)).Result()
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, loader.ErrNotFound
	}
	return values, nil
}

// Store writes values as the table for a module resource, replacing any previous one.
func (s *Source) Store(ctx context.Context, module, resourcePath string, values map[string]string) error {
	key := s.HashKey(module, resourcePath)

	pairs := make([]string, 0, 2*len(values))
	for field, value := range values {
		pairs = append(pairs, field, value)
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		if len(pairs) > 0 {
			pipe.HSet(ctx, key, pairs)
		}
		return nil
	})
	return err
}

// Close closes the Redis connection.
func (s *Source) Close() error {
	return s.client.Close()
}
