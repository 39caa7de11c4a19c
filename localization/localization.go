package localization

import (
	"context"
	"net/http"
	"strings"

	"golang.org/x/text/language"
	"google.golang.org/grpc/metadata"

	"github.com/pitabwire/podenv/locale"
)

const acceptLanguage = "accept-language"

// FromTags returns the first tag that forms a usable locale.
func FromTags(tags []language.Tag) (locale.Locale, bool) {
	for _, tag := range tags {
		if tag == language.Und {
			continue
		}
		l, err := locale.Parse(tag.String())
		if err == nil {
			return l, true
		}
	}
	return locale.Locale{}, false
}

// FromAcceptLanguage picks the highest weighted locale of an Accept-Language value.
func FromAcceptLanguage(header string) (locale.Locale, bool) {
	if strings.TrimSpace(header) == "" {
		return locale.Locale{}, false
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil {
		return locale.Locale{}, false
	}
	return FromTags(tags)
}

// ExtractLocaleFromHTTPRequest prefers an explicit lang form value over the
// Accept-Language header.
func ExtractLocaleFromHTTPRequest(req *http.Request) (locale.Locale, bool) {
	if lang := req.FormValue("lang"); lang != "" {
		if l, err := locale.Parse(lang); err == nil {
			return l, true
		}
	}
	return FromAcceptLanguage(req.Header.Get(acceptLanguage))
}

// ExtractLocaleFromGrpcRequest reads the accept-language metadata of an incoming call.
func ExtractLocaleFromGrpcRequest(ctx context.Context) (locale.Locale, bool) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return locale.Locale{}, false
	}

	header := md.Get(acceptLanguage)
	if len(header) == 0 {
		return locale.Locale{}, false
	}
	return FromAcceptLanguage(strings.Join(header, ","))
}
