package podenv

import (
	"context"
	"io"
	"maps"
)

// WithArgs sets the program arguments.
func WithArgs(args ...string) Option {
	return func(_ context.Context, env *Environment) {
		env.args = append(make([]string, 0, len(args)), args...)
	}
}

// WithVarsSource replaces the bootstrap variable source, os.Environ by default.
// The source is read once when the environment is built.
func WithVarsSource(source func() map[string]string) Option {
	return func(_ context.Context, env *Environment) {
		env.varsSource = source
	}
}

// WithVars seeds the variables from a fixed map.
func WithVars(m map[string]string) Option {
	m = maps.Clone(m)
	return WithVarsSource(func() map[string]string {
		return m
	})
}

// WithOut redirects the output sink.
func WithOut(w io.Writer) Option {
	return func(_ context.Context, env *Environment) {
		env.out = NewOut(w)
	}
}

func WithUser(user string) Option {
	return func(_ context.Context, env *Environment) {
		env.user = user
	}
}

// WithDirs sets the home, working and temporary directories as given.
func WithDirs(home, work, temp string) Option {
	return func(_ context.Context, env *Environment) {
		env.homeDir = home
		env.workDir = work
		env.tempDir = temp
	}
}
