package middleware

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// ReporterCookie holds the name the user registered with.
const ReporterCookie = "reporter"

type contextKey string

const reporterKey contextKey = "reporter"

// Identity places the registered reporter name, if any, in the request context.
// Nothing is rejected: the name is only attached to submitted cases. The
// cookie holds the query-escaped name.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(ReporterCookie)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		name, err := url.QueryUnescape(cookie.Value)
		if err != nil || strings.TrimSpace(name) == "" {
			next.ServeHTTP(w, r)
			return
		}

		ctx := WithReporter(r.Context(), name)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// WithReporter returns a copy of ctx carrying the reporter name.
func WithReporter(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, reporterKey, name)
}

// Reporter returns the reporter name from ctx, "" when unknown.
func Reporter(ctx context.Context) string {
	name, _ := ctx.Value(reporterKey).(string)
	return name
}
