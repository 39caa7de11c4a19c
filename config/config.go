package config

import (
	"context"
	"time"

	"github.com/caarlos0/env/v11"
)

type contextKey string

func (c contextKey) String() string {
	return "podenv/config/" + string(c)
}

const (
	ctxKeyConfiguration = contextKey("configurationKey")

	// UnknownUser is reported when the host does not name the process owner.
	UnknownUser = "unknown"

	defaultRefreshExpiry = time.Second
	defaultRetryDelay    = 5 * time.Second
)

// ToContext adds configuration to the current supplied context.
func ToContext(ctx context.Context, config any) context.Context {
	return context.WithValue(ctx, ctxKeyConfiguration, config)
}

// FromContext extracts configuration from the supplied context if any exist.
func FromContext[T any](ctx context.Context) T {
	if cfg, ok := ctx.Value(ctxKeyConfiguration).(T); ok {
		return cfg
	}
	var zero T
	return zero
}

// FromEnv convenience method to process configs.
func FromEnv[T any]() (T, error) {
	return env.ParseAs[T]()
}

// FillEnv convenience method to fill a config object with environment data.
func FillEnv(v any) error {
	return env.Parse(v)
}

type ConfigurationDefault struct {
	LogLevel          string `envDefault:"info"                      env:"LOG_LEVEL"            yaml:"log_level"`
	LogTimeFormat     string `envDefault:"2006-01-02T15:04:05Z07:00" env:"LOG_TIME_FORMAT"      yaml:"log_time_format"`
	LogColored        bool   `envDefault:"true"                      env:"LOG_COLORED"          yaml:"log_colored"`
	LogShowStackTrace bool   `envDefault:"false"                     env:"LOG_SHOW_STACK_TRACE" yaml:"log_show_stack_trace"`

	User    string `envDefault:"unknown" env:"PODENV_USER" yaml:"user"`
	HomeDir string `envDefault:""        env:"HOME"        yaml:"home_dir"`
	WorkDir string `envDefault:""        env:"PWD"         yaml:"work_dir"`
	TempDir string `envDefault:"/tmp"    env:"TMPDIR"      yaml:"temp_dir"`

	LocaleValue    string `envDefault:"en"    env:"LOCALE"           yaml:"locale"`
	LocaleTestMode bool   `envDefault:"false" env:"LOCALE_TEST_MODE" yaml:"locale_test_mode"`

	PropsSourceURI string `envDefault:"mem://" env:"PROPS_SOURCE_URI" yaml:"props_source_uri"`
	PropsKeyPrefix string `envDefault:"props:" env:"PROPS_KEY_PREFIX" yaml:"props_key_prefix"`

	RefreshWorkers        int    `envDefault:"4"  env:"PROPS_REFRESH_WORKERS"         yaml:"props_refresh_workers"`
	RefreshExpiryDuration string `envDefault:"1s" env:"PROPS_REFRESH_EXPIRY_DURATION" yaml:"props_refresh_expiry_duration"`
	RefreshRetryDelay     string `envDefault:"5s" env:"PROPS_REFRESH_RETRY_DELAY"     yaml:"props_refresh_retry_delay"`
}

type ConfigurationLogLevel interface {
	LoggingLevel() string
	LoggingTimeFormat() string
	LoggingShowStackTrace() bool
	LoggingColored() bool
	LoggingLevelIsDebug() bool
}

var _ ConfigurationLogLevel = new(ConfigurationDefault)

func (c *ConfigurationDefault) LoggingLevel() string {
	return c.LogLevel
}

func (c *ConfigurationDefault) LoggingTimeFormat() string {
	return c.LogTimeFormat
}

func (c *ConfigurationDefault) LoggingColored() bool {
	return c.LogColored
}

func (c *ConfigurationDefault) LoggingShowStackTrace() bool {
	return c.LogShowStackTrace
}

func (c *ConfigurationDefault) LoggingLevelIsDebug() bool {
	return c.LoggingLevel() == "debug" || c.LoggingLevel() == "trace"
}

// ConfigurationIdentity describes the process owner and its directories.
// The values are taken as supplied; nothing here resolves paths.
type ConfigurationIdentity interface {
	ProcessUser() string
	HomeDirectory() string
	WorkDirectory() string
	TempDirectory() string
}

var _ ConfigurationIdentity = new(ConfigurationDefault)

func (c *ConfigurationDefault) ProcessUser() string {
	if c.User == "" {
		return UnknownUser
	}
	return c.User
}

func (c *ConfigurationDefault) HomeDirectory() string {
	return c.HomeDir
}

func (c *ConfigurationDefault) WorkDirectory() string {
	return c.WorkDir
}

func (c *ConfigurationDefault) TempDirectory() string {
	return c.TempDir
}

type ConfigurationLocale interface {
	DefaultLocale() string
	LocaleTestModeEnabled() bool
}

var _ ConfigurationLocale = new(ConfigurationDefault)

func (c *ConfigurationDefault) DefaultLocale() string {
	if c.LocaleValue == "" {
		return "en"
	}
	return c.LocaleValue
}

func (c *ConfigurationDefault) LocaleTestModeEnabled() bool {
	return c.LocaleTestMode
}

type ConfigurationProps interface {
	GetPropsSourceURI() string
	GetPropsKeyPrefix() string
	GetRefreshWorkers() int
	GetRefreshExpiryDuration() time.Duration
	GetRefreshRetryDelay() time.Duration
}

var _ ConfigurationProps = new(ConfigurationDefault)

func (c *ConfigurationDefault) GetPropsSourceURI() string {
	return c.PropsSourceURI
}

func (c *ConfigurationDefault) GetPropsKeyPrefix() string {
	return c.PropsKeyPrefix
}

func (c *ConfigurationDefault) GetRefreshWorkers() int {
	if c.RefreshWorkers <= 0 {
		return 1
	}
	return c.RefreshWorkers
}

func (c *ConfigurationDefault) GetRefreshExpiryDuration() time.Duration {
	if c.RefreshExpiryDuration != "" {
		duration, err := time.ParseDuration(c.RefreshExpiryDuration)
		if err == nil {
			return duration
		}
	}

	return defaultRefreshExpiry
}

// GetRefreshRetryDelay is how long a table whose fetch failed is left alone
// before the next attempt.
func (c *ConfigurationDefault) GetRefreshRetryDelay() time.Duration {
	if c.RefreshRetryDelay != "" {
		duration, err := time.ParseDuration(c.RefreshRetryDelay)
		if err == nil && duration >= 0 {
			return duration
		}
	}

	return defaultRetryDelay
}
