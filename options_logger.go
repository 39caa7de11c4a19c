package podenv

import (
	"context"

	"github.com/pitabwire/util"

	"github.com/pitabwire/podenv/config"
)

// WithLogger Option that builds the environment logger from the configuration.
func WithLogger(opts ...util.Option) Option {
	return func(ctx context.Context, env *Environment) {
		if env.configuration != nil {
			cfg, ok := env.configuration.(config.ConfigurationLogLevel)
			if ok {
				logLevel, err := util.ParseLevel(cfg.LoggingLevel())
				if err == nil {
					opts = append(opts, util.WithLogLevel(logLevel))
				}
				opts = append(opts,
					util.WithLogTimeFormat(cfg.LoggingTimeFormat()),
					util.WithLogNoColor(!cfg.LoggingColored()))
				if cfg.LoggingShowStackTrace() {
					opts = append(opts, util.WithLogStackTrace())
				}
			}
		}

		env.logger = util.NewLogger(ctx, opts...).WithField("user", env.user)
	}
}
