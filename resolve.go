package podenv

import (
	"context"
	"time"

	"github.com/pitabwire/podenv/locale"
	"github.com/pitabwire/podenv/props"
)

const (
	// ConfigPropsPath is the resource holding a module's configuration.
	ConfigPropsPath = "config.props"
	// ConfigMaxAge is how old a configuration table may get before a reload.
	ConfigMaxAge = time.Minute
)

// Props returns the property table for a module resource, creating an empty
// one on first access. The same table is returned on every call; maxAge is
// passed on to the loader, if any, which refreshes the table in place.
func (e *Environment) Props(module, resourcePath string, maxAge time.Duration) *props.Table {
	table := e.propsCache.Get(props.Key(module, resourcePath))
	if e.loader != nil {
		e.loader.Notify(module, resourcePath, table, maxAge)
	}
	return table
}

// PropsLoader returns the loader attached to the environment, nil if none.
func (e *Environment) PropsLoader() PropsLoader {
	return e.loader
}

// LookupConfig reports the configuration value for key in module.
func (e *Environment) LookupConfig(module, key string) (string, bool) {
	return e.Props(module, ConfigPropsPath, ConfigMaxAge).Get(key)
}

// Config returns the configuration value for key in module, or def when the
// key is missing. A present empty value is returned as is.
func (e *Environment) Config(module, key, def string) string {
	if v, ok := e.LookupConfig(module, key); ok {
		return v
	}
	return def
}

type localeOptions struct {
	def    locale.Default
	locale *locale.Locale
}

// LocaleOption tunes a single Locale lookup.
type LocaleOption func(*localeOptions)

// WithDefault returns def instead of "module::key" when no tier has the key.
func WithDefault(def string) LocaleOption {
	return func(o *localeOptions) {
		o.def = locale.Some(def)
	}
}

// WithLocale resolves against l instead of the current locale.
func WithLocale(l locale.Locale) LocaleOption {
	return func(o *localeOptions) {
		o.locale = &l
	}
}

// WithContextLocale resolves against the locale carried by ctx.
func WithContextLocale(ctx context.Context) LocaleOption {
	return WithLocale(locale.FromContext(ctx))
}

// Locale returns the localized string for key in module. Lookups walk the
// full locale, its language and English before falling back to the default
// or to "module::key".
func (e *Environment) Locale(module, key string, opts ...LocaleOption) string {
	o := &localeOptions{def: locale.None}
	for _, opt := range opts {
		opt(o)
	}
	return e.resolver.Resolve(module, key, o.def, o.locale)
}
