package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/pitabwire/podenv"
	"github.com/pitabwire/podenv/locale"
	"github.com/pitabwire/podenv/version"
)

const (
	argModule  = 0
	argKey     = 1
	argsLookup = 2
)

var errUsage = errors.New("invalid arguments")

//nolint:gochecknoglobals // replaced in tests
var environment = podenv.Current

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one command and returns the process exit code. The
// environment, and the property source it connects, is only built for
// commands that resolve values.
func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		usage(stderr)
		return 1
	}

	command := args[0]
	switch command {
	case "help", "-h", "--help":
		usage(stdout)
		return 0
	case "version":
		cmdVersion(stdout)
		return 0
	case "vars", "config", "locale":
	default:
		_, _ = fmt.Fprintf(stderr, "unknown command: %q\n", command)
		usage(stderr)
		return 1
	}

	env := environment()
	ctx := podenv.ToContext(context.Background(), env)
	defer env.Close(ctx)

	var err error
	switch command {
	case "vars":
		err = cmdVars(env)
	case "config":
		err = cmdConfig(ctx, env, args[1:])
	case "locale":
		err = cmdLocale(ctx, env, args[1:])
	}

	if err != nil {
		_, _ = fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func usage(w io.Writer) {
	_, _ = fmt.Fprintln(w, "podenv <command> [args]")
	_, _ = fmt.Fprintln(w, "")
	_, _ = fmt.Fprintln(w, "Commands:")
	_, _ = fmt.Fprintln(w, "  vars")
	_, _ = fmt.Fprintln(w, "  config <module> <key> [--default VALUE] [--wait]")
	_, _ = fmt.Fprintln(w, "  locale <module> <key> [--locale TAG] [--default VALUE] [--wait]")
	_, _ = fmt.Fprintln(w, "  version")
}

func cmdVars(env *podenv.Environment) error {
	store := env.Vars()
	for _, k := range store.Keys() {
		env.Out().Printf("%s=%s\n", k, store.GetOr(k, ""))
	}
	return nil
}

// settler is met by loaders that can report when the refreshes scheduled by
// a first lookup have finished.
type settler interface {
	Wait()
}

func cmdConfig(ctx context.Context, env *podenv.Environment, args []string) error {
	fs := pflag.NewFlagSet("config", pflag.ContinueOnError)
	def := fs.String("default", "", "value printed when the key is missing")
	wait := fs.Bool("wait", true, "wait for the property source before answering")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < argsLookup {
		return fmt.Errorf("%w: config needs <module> <key>", errUsage)
	}

	module, key := fs.Arg(argModule), fs.Arg(argKey)
	if *wait {
		env.Props(module, podenv.ConfigPropsPath, podenv.ConfigMaxAge)
		awaitLoader(ctx, env)
	}

	env.Out().Println(env.Config(module, key, *def))
	return nil
}

func cmdLocale(ctx context.Context, env *podenv.Environment, args []string) error {
	fs := pflag.NewFlagSet("locale", pflag.ContinueOnError)
	tag := fs.String("locale", "", "locale to resolve against, the current locale when empty")
	def := fs.String("default", "", "value printed when no tier has the key")
	wait := fs.Bool("wait", true, "wait for the property source before answering")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < argsLookup {
		return fmt.Errorf("%w: locale needs <module> <key>", errUsage)
	}

	var opts []podenv.LocaleOption
	if *tag != "" {
		l, err := locale.Parse(*tag)
		if err != nil {
			return fmt.Errorf("invalid locale %q: %w", *tag, err)
		}
		opts = append(opts, podenv.WithLocale(l))
	}
	if fs.Changed("default") {
		opts = append(opts, podenv.WithDefault(*def))
	}

	module, key := fs.Arg(argModule), fs.Arg(argKey)
	if *wait {
		env.Locale(module, key, opts...)
		awaitLoader(ctx, env)
	}

	env.Out().Println(env.Locale(module, key, opts...))
	return nil
}

func awaitLoader(ctx context.Context, env *podenv.Environment) {
	if s, ok := env.PropsLoader().(settler); ok {
		s.Wait()
		return
	}
	env.Log(ctx).Debug("no property loader configured")
}

func cmdVersion(w io.Writer) {
	_, _ = fmt.Fprintf(w, "podenv %s (%s) built %s from %s\n",
		version.Version, version.Commit, version.Date, version.Repository)
}
