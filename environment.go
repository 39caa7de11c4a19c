package podenv

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pitabwire/util"

	"github.com/pitabwire/podenv/config"
	"github.com/pitabwire/podenv/locale"
	"github.com/pitabwire/podenv/props"
	"github.com/pitabwire/podenv/vars"
)

type contextKey string

func (c contextKey) String() string {
	return "podenv/" + string(c)
}

const ctxKeyEnvironment = contextKey("environmentKey")

var (
	// ErrShapeMismatch is returned when a bootstrap setter receives a value
	// that is not the expected mapping type.
	ErrShapeMismatch = errors.New("invalid type")
	// ErrNotCaseInsensitive is returned by SetVars for maps that compare keys by case.
	ErrNotCaseInsensitive = errors.New("map must be case insensitive")
)

// PropsLoader keeps property tables populated. Notify must not block; loaders
// refresh the table in place whenever it is stale for maxAge.
type PropsLoader interface {
	Notify(module, resourcePath string, table *props.Table, maxAge time.Duration)
}

// Environment holds process identity and resolves configuration and localized
// values for modules. An instance lives for the lifetime of the process.
type Environment struct {
	args  []string
	vars  atomic.Pointer[vars.Store]
	index atomic.Pointer[vars.Index]

	propsCache *props.Cache
	resolver   *locale.Resolver
	loader     PropsLoader

	user    string
	homeDir string
	workDir string
	tempDir string
	out     *Out

	varsSource    func() map[string]string
	configuration any
	logger        *util.LogEntry

	cleanupMu sync.Mutex
	cleanup   []func(ctx context.Context)
}

type Option func(ctx context.Context, env *Environment)

//nolint:gochecknoglobals // process wide singleton
var (
	currentOnce sync.Once
	current     *Environment
)

// Current returns the process wide environment, built from the process
// variables and the configuration they carry on first use. Building it
// connects the configured property source, so the first call may wait on
// the network; call it during startup to keep that off request paths.
func Current() *Environment {
	currentOnce.Do(func() {
		ctx := context.Background()

		cfg, err := config.FromEnv[config.ConfigurationDefault]()
		if err != nil {
			util.Log(ctx).WithError(err).Warn("could not parse environment configuration, using defaults")
		}

		_, current = NewEnvironment(ctx, WithConfig(&cfg))
	})
	return current
}

// NewEnvironment creates a standalone environment with the supplied options.
// The returned context carries the environment and its logger.
func NewEnvironment(ctx context.Context, opts ...Option) (context.Context, *Environment) {
	env := &Environment{
		args:       []string{},
		propsCache: props.NewCache(),
		user:       config.UnknownUser,
		out:        NewOut(os.Stdout),
		varsSource: osVars,
		logger:     util.Log(ctx),
	}
	env.resolver = locale.NewResolver(env)
	env.index.Store(vars.EmptyIndex())

	for _, opt := range opts {
		opt(ctx, env)
	}

	// Seeded once, after options had a chance to replace the source.
	env.vars.Store(vars.FromMap(env.varsSource()))

	ctx = ToContext(ctx, env)
	ctx = util.ContextWithLogger(ctx, env.logger)
	return ctx, env
}

func osVars() map[string]string {
	m := map[string]string{}
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if ok && k != "" {
			m[k] = v
		}
	}
	return m
}

// ToContext pushes an environment into the supplied context.
func ToContext(ctx context.Context, env *Environment) context.Context {
	return context.WithValue(ctx, ctxKeyEnvironment, env)
}

// FromContext returns the environment carried by ctx, or Current when none is.
func FromContext(ctx context.Context) *Environment {
	if env, ok := ctx.Value(ctxKeyEnvironment).(*Environment); ok {
		return env
	}
	return Current()
}

// SetIndex replaces the index. It is meant for bootstrap, before the
// environment is shared with other goroutines. Accepted values are
// map[string][]string and *vars.Index.
func (e *Environment) SetIndex(index any) error {
	switch v := index.(type) {
	case map[string][]string:
		e.index.Store(vars.NewIndex(v))
	case *vars.Index:
		if v == nil {
			return fmt.Errorf("%w: nil index", ErrShapeMismatch)
		}
		e.index.Store(v)
	default:
		return fmt.Errorf("%w: index must map string to []string, got %T", ErrShapeMismatch, index)
	}
	return nil
}

// SetVars replaces the variables. It is meant for bootstrap, before the
// environment is shared with other goroutines. Accepted values are
// *vars.Store and *vars.Builder, which is frozen on publish; a plain
// map[string]string is refused because its keys are case sensitive.
func (e *Environment) SetVars(variables any) error {
	switch v := variables.(type) {
	case *vars.Store:
		if v == nil {
			return fmt.Errorf("%w: nil vars", ErrShapeMismatch)
		}
		e.vars.Store(v)
	case *vars.Builder:
		if v == nil {
			return fmt.Errorf("%w: nil vars", ErrShapeMismatch)
		}
		store, err := v.Freeze()
		if err != nil {
			return err
		}
		e.vars.Store(store)
	case map[string]string:
		return ErrNotCaseInsensitive
	default:
		return fmt.Errorf("%w: vars must map string to string, got %T", ErrShapeMismatch, variables)
	}
	return nil
}

// Runtime names the platform hosting the environment.
func (e *Environment) Runtime() string {
	return "go"
}

// Args returns a copy of the program arguments.
func (e *Environment) Args() []string {
	return append(make([]string, 0, len(e.args)), e.args...)
}

func (e *Environment) Vars() *vars.Store {
	return e.vars.Load()
}

// Var looks a variable up ignoring case.
func (e *Environment) Var(name string) (string, bool) {
	return e.Vars().Get(name)
}

// Index returns the entries recorded for key, never nil.
func (e *Environment) Index(key string) []string {
	return e.index.Load().Get(key)
}

func (e *Environment) Out() *Out {
	return e.out
}

func (e *Environment) User() string {
	return e.user
}

func (e *Environment) HomeDir() string {
	return e.homeDir
}

func (e *Environment) WorkDir() string {
	return e.workDir
}

func (e *Environment) TempDir() string {
	return e.tempDir
}

// Path is the resource search path: the working directory alone.
func (e *Environment) Path() []string {
	return []string{e.workDir}
}

// Diagnostics is a hook for runtime diagnostics and is empty here.
func (e *Environment) Diagnostics() map[string]any {
	return map[string]any{}
}

// Log returns the environment logger bound to ctx.
func (e *Environment) Log(ctx context.Context) *util.LogEntry {
	return e.logger.WithContext(ctx)
}

// AddCleanupMethod registers f to run on Close.
func (e *Environment) AddCleanupMethod(f func(ctx context.Context)) {
	e.cleanupMu.Lock()
	defer e.cleanupMu.Unlock()
	e.cleanup = append(e.cleanup, f)
}

// Close releases loaders and sources in reverse registration order.
func (e *Environment) Close(ctx context.Context) {
	e.cleanupMu.Lock()
	cleanup := e.cleanup
	e.cleanup = nil
	e.cleanupMu.Unlock()

	for i := len(cleanup) - 1; i >= 0; i-- {
		cleanup[i](ctx)
	}
}
