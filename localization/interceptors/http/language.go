package http

import (
	"net/http"

	"github.com/pitabwire/podenv/locale"
	"github.com/pitabwire/podenv/localization"
)

// LanguageHTTPMiddleware is an HTTP middleware that extracts the request locale and sets it in the context.
func LanguageHTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if l, ok := localization.ExtractLocaleFromHTTPRequest(r); ok {
			r = r.WithContext(locale.ToContext(r.Context(), l))
		}

		next.ServeHTTP(w, r)
	})
}
