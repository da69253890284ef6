// Package middleware provides net/http middleware for the choice group server.
//
// Every middleware has the shape func(http.Handler) http.Handler and plugs
// into chi routers directly:
//
//	r := chi.NewRouter()
//	r.Use(middleware.OpenTelemetry())
//	r.Use(metrics.Handler)
//	r.With(middleware.RequireJWT(secret, logger)).Put("/groups/{name}/value", h)
//
// # OpenTelemetry
//
// OpenTelemetry starts a server span per request using the global tracer
// provider. Handlers reach the span through trace.SpanFromContext(r.Context()).
//
// # Prometheus
//
// NewMetrics registers request counters and a duration histogram labelled by
// chi route pattern, so /groups/{name} is one series no matter the name.
// Metrics are registered on the registry passed with WithRegistry; nothing
// is global.
//
// # Authentication
//
// RequireJWT accepts HS256 bearer tokens signed with a shared secret and
// stores the subject on the request context. IssueToken mints such tokens
// for the CLI and tests.
package middleware
