package middleware_test

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/choicegroup/pkg/middleware"
)

func serve(h http.Handler, method, target string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestMetrics_LabelsByRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := middleware.NewMetrics(middleware.WithRegistry(reg))

	r := chi.NewRouter()
	r.Use(m.Handler)
	r.Get("/groups/{name}", func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "name") == "missing" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("ok"))
	})

	serve(r, "GET", "/groups/gender", nil)
	serve(r, "GET", "/groups/sports", nil)
	serve(r, "GET", "/groups/missing", nil)

	expected := `
# HELP choicegroup_http_requests_total Total number of HTTP requests handled
# TYPE choicegroup_http_requests_total counter
choicegroup_http_requests_total{code="200",method="GET",route="/groups/{name}"} 2
choicegroup_http_requests_total{code="404",method="GET",route="/groups/{name}"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "choicegroup_http_requests_total"))

	n, err := testutil.GatherAndCount(reg, "choicegroup_http_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMetrics_OptionsAndStreams(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := middleware.NewMetrics(
		middleware.WithRegistry(reg),
		middleware.WithNamespace("app"),
		middleware.WithSubsystem("api"),
		middleware.WithConstLabels(prometheus.Labels{"env": "test"}),
		middleware.WithBuckets([]float64{0.1, 1}),
	)
	m.StreamOpened()
	m.StreamOpened()
	m.StreamClosed()

	expected := `
# HELP app_api_websocket_connections Number of open WebSocket change streams
# TYPE app_api_websocket_connections gauge
app_api_websocket_connections{env="test"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "app_api_websocket_connections"))
}

func TestMetrics_UnmatchedRoute(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := middleware.NewMetrics(middleware.WithRegistry(reg))
	serve(m.Handler(http.NotFoundHandler()), "GET", "/nowhere", nil)

	expected := `
# HELP choicegroup_http_requests_total Total number of HTTP requests handled
# TYPE choicegroup_http_requests_total counter
choicegroup_http_requests_total{code="404",method="GET",route="unmatched"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "choicegroup_http_requests_total"))
}

func newTracer() (*tracetest.SpanRecorder, trace.TracerProvider) {
	sr := tracetest.NewSpanRecorder()
	return sr, sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
}

func TestOpenTelemetry_SpanPerRequest(t *testing.T) {
	sr, tp := newTracer()

	var inHandler trace.SpanContext
	r := chi.NewRouter()
	r.Use(middleware.OpenTelemetry(
		middleware.WithTracerProvider(tp),
		middleware.WithAttributeExtractor(func(*http.Request) []attribute.KeyValue {
			return []attribute.KeyValue{attribute.String("test.attr", "ok")}
		}),
	))
	r.Get("/groups/{name}", func(w http.ResponseWriter, r *http.Request) {
		inHandler = trace.SpanContextFromContext(r.Context())
	})
	r.Get("/boom", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	serve(r, "GET", "/groups/gender", nil)
	serve(r, "GET", "/boom", nil)

	spans := sr.Ended()
	require.Len(t, spans, 2)

	ok := spans[0]
	assert.Equal(t, "GET /groups/{name}", ok.Name())
	assert.Equal(t, trace.SpanKindServer, ok.SpanKind())
	assert.Equal(t, codes.Ok, ok.Status().Code)
	assert.True(t, inHandler.IsValid())
	assert.Equal(t, ok.SpanContext().SpanID(), inHandler.SpanID())
	assert.Contains(t, ok.Attributes(), attribute.String("test.attr", "ok"))
	assert.Contains(t, ok.Attributes(), attribute.Int("http.response.status_code", 200))

	failed := spans[1]
	assert.Equal(t, codes.Error, failed.Status().Code)
}

func TestOpenTelemetry_FilterSkipsTracing(t *testing.T) {
	sr, tp := newTracer()
	h := middleware.OpenTelemetry(
		middleware.WithTracerProvider(tp),
		middleware.WithTracerName("test"),
		middleware.WithFilter(func(r *http.Request) bool { return r.URL.Path != "/healthz" }),
	)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	serve(h, "GET", "/healthz", nil)
	assert.Empty(t, sr.Ended())
}

func TestRequireJWT(t *testing.T) {
	secret := []byte("s3cret")
	var subject string
	h := middleware.RequireJWT(secret, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject = middleware.Subject(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	token, err := middleware.IssueToken(secret, "editor", time.Minute)
	require.NoError(t, err)

	rec := serve(h, "PUT", "/groups/gender/value", http.Header{"Authorization": {"Bearer " + token}})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "editor", subject)

	rec = serve(h, "PUT", "/groups/gender/value", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing bearer token")

	other, err := middleware.IssueToken([]byte("other"), "editor", time.Minute)
	require.NoError(t, err)
	rec = serve(h, "PUT", "/groups/gender/value", http.Header{"Authorization": {"Bearer " + other}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("WWW-Authenticate"))
}

func TestRequireJWT_EmptySecretDisablesCheck(t *testing.T) {
	h := middleware.RequireJWT(nil, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	assert.Equal(t, http.StatusNoContent, serve(h, "PUT", "/", nil).Code)
}

func TestValidateToken(t *testing.T) {
	secret := []byte("s3cret")

	expired, err := middleware.IssueToken(secret, "editor", -time.Minute)
	require.NoError(t, err)
	_, err = middleware.ValidateToken(secret, expired)
	assert.ErrorIs(t, err, middleware.ErrInvalidToken)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "x"}).SignedString(secret)
	require.NoError(t, err)
	_, err = middleware.ValidateToken(secret, noExpiry)
	assert.ErrorIs(t, err, middleware.ErrInvalidToken)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "x",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = middleware.ValidateToken(secret, unsigned)
	assert.ErrorIs(t, err, middleware.ErrInvalidToken)

	good, err := middleware.IssueToken(secret, "editor", time.Minute)
	require.NoError(t, err)
	claims, err := middleware.ValidateToken(secret, good)
	require.NoError(t, err)
	assert.Equal(t, "editor", claims.Subject)
	assert.NotEmpty(t, claims.ID)
}

func TestLoggerAndRecover(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	h := middleware.Logger(logger)(middleware.Recover(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("kaboom")
	})))

	rec := serve(h, "POST", "/submit", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	out := buf.String()
	assert.Contains(t, out, `"msg":"handler panic"`)
	assert.Contains(t, out, `"panic":"kaboom"`)
	assert.Contains(t, out, `"msg":"http request"`)
	assert.Contains(t, out, `"status":500`)
	assert.Contains(t, out, `"level":"ERROR"`)
}
