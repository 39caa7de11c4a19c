package locale

import (
	"strings"
	"sync/atomic"
	"time"

	"github.com/pitabwire/podenv/props"
)

// SysModule is exempt from test mode so the runtime's own strings still render.
const SysModule = "sys"

//nolint:gochecknoglobals // keys that keep resolving in test mode
var testModeExempt = []string{".browser", ".icon", ".accelerator"}

//nolint:gochecknoglobals // process wide switch
var testMode atomic.Bool

// SetTestMode toggles test mode. While on, Resolve answers "module::key" for
// every non exempt lookup so call sites can be checked against real keys.
func SetTestMode(on bool) {
	testMode.Store(on)
}

func TestMode() bool {
	return testMode.Load()
}

// Default is an optional explicit default for Resolve.
type Default struct {
	value string
	set   bool
}

// None asks Resolve for the synthesized "module::key" fallback.
//
//nolint:gochecknoglobals // zero value marker
var None = Default{}

// Some supplies an explicit default, which may be any string including "".
func Some(value string) Default {
	return Default{value: value, set: true}
}

// Get returns the default and whether one was supplied.
func (d Default) Get() (string, bool) {
	return d.value, d.set
}

// PropsSource hands out property tables for a module's resources.
type PropsSource interface {
	Props(module, resourcePath string, maxAge time.Duration) *props.Table
}

// Resolver looks localized strings up through the full locale, language and
// English tiers before falling back.
type Resolver struct {
	source PropsSource
}

func NewResolver(source PropsSource) *Resolver {
	return &Resolver{source: source}
}

// Synthesize builds the fallback answer for a key nobody defines.
func Synthesize(module, key string) string {
	return module + "::" + key
}

// Resolve returns the string for key in module. A nil loc means Current().
func (r *Resolver) Resolve(module, key string, def Default, loc *Locale) string {
	if TestMode() && module != SysModule && !exemptFromTestMode(key) {
		return Synthesize(module, key)
	}

	l := Current()
	if loc != nil && !loc.IsZero() {
		l = *loc
	}

	for _, path := range tierPaths(l) {
		if v, ok := r.source.Props(module, path, props.MaxAge).Get(key); ok {
			return v
		}
	}

	if v, ok := def.Get(); ok {
		return v
	}
	return Synthesize(module, key)
}

// tierPaths lists the resources consulted for l, most specific first.
// The first two coincide when l has no region.
func tierPaths(l Locale) []string {
	return []string{l.FullPropsPath(), l.LangPropsPath(), EnPropsPath}
}

func exemptFromTestMode(key string) bool {
	for _, suffix := range testModeExempt {
		if strings.HasSuffix(key, suffix) {
			return true
		}
	}
	return false
}
