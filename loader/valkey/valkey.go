package valkey

import (
	"context"
	"strings"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/pitabwire/podenv/loader"
	"github.com/pitabwire/podenv/props"
)

// Options contains configuration for the Valkey source.
type Options struct {
	URI    string
	Prefix string
}

// Source reads property tables stored as Valkey hashes under Prefix+props.Key.
type Source struct {
	client valkey.Client
	prefix string
}

var _ loader.Source = (*Source)(nil)

const connectionTimeout = 5 * time.Second

// New connects to Valkey and verifies the connection.
// Both valkey:// and redis:// URIs are accepted.
func New(ctx context.Context, opts Options) (*Source, error) {
	uri := opts.URI
	if rest, ok := strings.CutPrefix(uri, "valkey://"); ok {
		uri = "redis://" + rest
	}

	valkeyOpts, err := valkey.ParseURL(uri)
	if err != nil {
		return nil, err
	}

	client, err := valkey.NewClient(valkeyOpts)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectionTimeout)
	defer cancel()

	if pingErr := client.Do(pingCtx, client.B().Ping().Build()).Error(); pingErr != nil {
		client.Close()
		return nil, pingErr
	}

	return &Source{client: client, prefix: opts.Prefix}, nil
}

// HashKey returns the Valkey key holding a module resource.
func (s *Source) HashKey(module, resourcePath string) string {
	return s.prefix + props.Key(module, resourcePath)
}

// Fetch loads the hash for a module resource; an empty reply means no table.
func (s *Source) Fetch(ctx context.Context, module, resourcePath string) (map[string]string, error) {
	cmd := s.client.B().Hgetall().Key(s.HashKey(module, resourcePath)).Build()

	values, err := s.client.Do(ctx, cmd).AsStrMap()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, loader.ErrNotFound
		}
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

	cmds := valkey.Commands{s.client.B().Multi().Build(), s.client.B().Del().Key(key).Build()}
	if len(values) > 0 {
		hset := s.client.B().Hset().Key(key).FieldValue()
		for field, value := range values {
			hset = hset.FieldValue(field, value)
		}
		cmds = append(cmds, hset.Build())
	}
	cmds = append(cmds, s.client.B().Exec().Build())

	for _, resp := range s.client.DoMulti(ctx, cmds...) {
		if err := resp.Error(); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the Valkey connection.
func (s *Source) Close() error {
	s.client.Close()
	return nil
}
