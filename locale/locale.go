package locale

import (
	"context"
	"sync/atomic"

	"golang.org/x/text/language"

	"github.com/pitabwire/podenv/internal/common"
)

const (
	// FallbackLang is the last tier consulted before synthesizing a value.
	FallbackLang = "en"
	// EnPropsPath is the resource holding the fallback language strings.
	EnPropsPath = "locale/" + FallbackLang + ".props"
)

const ctxKeyLocale = common.ContextKey("localeKey")

// Locale identifies a language with an optional region, e.g. "en" or "fr-CA".
type Locale struct {
	tag       language.Tag
	str       string
	lang      string
	hasRegion bool
}

// Parse reads a BCP 47 tag.
func Parse(s string) (Locale, error) {
	tag, err := language.Parse(s)
	if err != nil {
		return Locale{}, err
	}
	return fromTag(tag), nil
}

// MustParse is like Parse but panics on malformed input.
func MustParse(s string) Locale {
	l, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return l
}

func fromTag(tag language.Tag) Locale {
	base, _ := tag.Base()
	_, conf := tag.Region()
	return Locale{
		tag:       tag,
		str:       tag.String(),
		lang:      base.String(),
		hasRegion: conf == language.Exact,
	}
}

func (l Locale) String() string {
	return l.str
}

// Tag exposes the underlying language tag.
func (l Locale) Tag() language.Tag {
	return l.tag
}

// Lang returns the language subtag, "fr" for "fr-CA".
func (l Locale) Lang() string {
	return l.lang
}

func (l Locale) HasRegion() bool {
	return l.hasRegion
}

func (l Locale) IsZero() bool {
	return l.str == ""
}

// FullPropsPath is the resource holding strings for the complete locale.
func (l Locale) FullPropsPath() string {
	return "locale/" + l.str + ".props"
}

// LangPropsPath is the resource holding strings for the language alone.
// It equals FullPropsPath when the locale has no region.
func (l Locale) LangPropsPath() string {
	return "locale/" + l.lang + ".props"
}

//nolint:gochecknoglobals // process wide ambient locale
var current atomic.Pointer[Locale]

// Current returns the process wide locale, "en" until SetCurrent is called.
func Current() Locale {
	if l := current.Load(); l != nil {
		return *l
	}
	return fromTag(language.English)
}

// SetCurrent replaces the process wide locale.
func SetCurrent(l Locale) {
	current.Store(&l)
}

// ToContext adds a request scoped locale to the supplied context.
func ToContext(ctx context.Context, l Locale) context.Context {
	return context.WithValue(ctx, ctxKeyLocale, l)
}

// FromContext extracts the request scoped locale, falling back to Current.
func FromContext(ctx context.Context) Locale {
	if l, ok := ctx.Value(ctxKeyLocale).(Locale); ok {
		return l
	}
	return Current()
}
