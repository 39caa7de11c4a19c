package podenv

import (
	"context"

	"github.com/pitabwire/podenv/config"
	"github.com/pitabwire/podenv/locale"
)

// WithConfig Option that sets the configuration object and applies the parts
// of it the environment understands: identity, locale, logging and the
// property source.
func WithConfig(cfg any) Option {
	return func(ctx context.Context, env *Environment) {
		env.configuration = cfg

		if idCfg, ok := cfg.(config.ConfigurationIdentity); ok {
			env.user = idCfg.ProcessUser()
			env.homeDir = idCfg.HomeDirectory()
			env.workDir = idCfg.WorkDirectory()
			env.tempDir = idCfg.TempDirectory()
		}

		WithLogger()(ctx, env)

		if locCfg, ok := cfg.(config.ConfigurationLocale); ok {
			l, err := locale.Parse(locCfg.DefaultLocale())
			if err != nil {
				env.logger.WithError(err).WithField("locale", locCfg.DefaultLocale()).
					Warn("invalid default locale, keeping current")
			} else {
				locale.SetCurrent(l)
			}
			locale.SetTestMode(locCfg.LocaleTestModeEnabled())
		}

		if propsCfg, ok := cfg.(config.ConfigurationProps); ok {
			WithPropsSourceURI(propsCfg.GetPropsSourceURI())(ctx, env)
		}
	}
}

// Configuration returns the configuration object supplied with WithConfig.
func (e *Environment) Configuration() any {
	return e.configuration
}
