package podenv

import (
	"context"
	"io"
	"net/url"

	"github.com/pitabwire/podenv/config"
	"github.com/pitabwire/podenv/loader"
	"github.com/pitabwire/podenv/loader/redis"
	"github.com/pitabwire/podenv/loader/valkey"
)

// WithPropsLoader sets the collaborator that keeps property tables populated.
func WithPropsLoader(l PropsLoader) Option {
	return func(_ context.Context, env *Environment) {
		env.loader = l
	}
}

// WithPropsSource fills property tables from src on a background worker pool.
// Pool sizing comes from the configuration when it carries one.
func WithPropsSource(src loader.Source) Option {
	return func(ctx context.Context, env *Environment) {
		opts := []loader.Option{loader.WithLogger(env.logger)}
		if cfg, ok := env.configuration.(config.ConfigurationProps); ok {
			opts = append(opts,
				loader.WithWorkers(cfg.GetRefreshWorkers()),
				loader.WithExpiryDuration(cfg.GetRefreshExpiryDuration()),
				loader.WithRetryDelay(cfg.GetRefreshRetryDelay()))
		}

		ldr, err := loader.New(ctx, src, opts...)
		if err != nil {
			env.logger.WithError(err).Error("could not create property loader")
			return
		}

		env.loader = ldr
		env.AddCleanupMethod(func(_ context.Context) {
			ldr.Close()
		})
		if closer, ok := src.(io.Closer); ok {
			env.AddCleanupMethod(func(ctx context.Context) {
				if closeErr := closer.Close(); closeErr != nil {
					env.Log(ctx).WithError(closeErr).Warn("could not close property source")
				}
			})
		}
	}
}

// WithPropsSourceURI connects the property source named by uri:
// redis:// and rediss:// use go-redis, valkey:// uses valkey-go, and an empty
// uri or mem:// leaves tables to be filled by the program itself.
func WithPropsSourceURI(uri string) Option {
	return func(ctx context.Context, env *Environment) {
		if uri == "" {
			return
		}

		parsed, err := url.Parse(uri)
		if err != nil {
			env.logger.WithError(err).Error("invalid property source uri")
			return
		}

		prefix := ""
		if cfg, ok := env.configuration.(config.ConfigurationProps); ok {
			prefix = cfg.GetPropsKeyPrefix()
		}

		var src loader.Source
		switch parsed.Scheme {
		case "mem":
			return
		case "redis", "rediss":
			src, err = redis.New(ctx, redis.Options{URI: uri, Prefix: prefix})
		case "valkey":
			src, err = valkey.New(ctx, valkey.Options{URI: uri, Prefix: prefix})
		default:
			env.logger.WithField("scheme", parsed.Scheme).Error("unsupported property source")
			return
		}
		if err != nil {
			env.logger.WithError(err).WithField("scheme", parsed.Scheme).Error("could not connect property source")
			return
		}

		WithPropsSource(src)(ctx, env)
	}
}
