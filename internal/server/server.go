package server

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/vango-dev/choicegroup/internal/catalog"
	"github.com/vango-dev/choicegroup/internal/config"
	"github.com/vango-dev/choicegroup/internal/errors"
	"github.com/vango-dev/choicegroup/pkg/dispatch"
	"github.com/vango-dev/choicegroup/pkg/middleware"
)

// Server serves one catalog.
type Server struct {
	cfg      *config.Config
	cat      *catalog.Catalog
	res      *Resources
	hub      *dispatch.Hub
	registry *prometheus.Registry
	metrics  *middleware.Metrics
	tracer   trace.TracerProvider
	logger   *slog.Logger
	router   chi.Router

	unsubscribe func()
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithRegistry sets the Prometheus registry served at /metrics. Defaults
// to a fresh registry with the Go and process collectors.
func WithRegistry(r *prometheus.Registry) Option {
	return func(s *Server) { s.registry = r }
}

// WithResources adds the dispatchers and sinks opened by Open.
func WithResources(res *Resources) Option {
	return func(s *Server) { s.res = res }
}

// WithTracerProvider sets the provider for request spans. Defaults to the
// global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Server) { s.tracer = tp }
}

// New wires cat to the HTTP API. Close releases the hub and resources.
func New(cfg *config.Config, cat *catalog.Catalog, opts ...Option) *Server {
	s := &Server{
		cfg:    cfg,
		cat:    cat,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.res == nil {
		s.res = &Resources{}
	}
	if s.registry == nil {
		s.registry = prometheus.NewRegistry()
		s.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	s.metrics = middleware.NewMetrics(middleware.WithRegistry(s.registry))

	if cfg.Dispatch.WebSocket {
		s.hub = dispatch.NewHub(func(c *dispatch.HubConfig) {
			c.Logger = s.logger
			c.OnConnect = func(string) { s.metrics.StreamOpened() }
			c.OnDisconnect = func(string) { s.metrics.StreamClosed() }
		})
	}

	dm := dispatch.NewMetrics(dispatch.WithRegistry(s.registry))
	var fanout dispatch.Multi
	if s.hub != nil {
		fanout = append(fanout, dm.Instrument("websocket", s.hub))
	}
	for _, nd := range s.res.Dispatchers {
		fanout = append(fanout, dm.Instrument(nd.Name, nd.Dispatcher))
	}
	if len(fanout) > 0 {
		bridge := dispatch.NewBridge(fanout, dispatch.WithBridgeLogger(s.logger))
		s.unsubscribe = cat.Subscribe(bridge)
	}

	s.router = s.routes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// Registry returns the metrics registry.
func (s *Server) Registry() *prometheus.Registry { return s.registry }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.Recover(s.logger))
	otelOpts := []middleware.OTelOption{
		middleware.WithFilter(func(r *http.Request) bool { return r.URL.Path != "/metrics" }),
	}
	if s.tracer != nil {
		otelOpts = append(otelOpts, middleware.WithTracerProvider(s.tracer))
	}
	r.Use(middleware.OpenTelemetry(otelOpts...))
	r.Use(s.metrics.Handler)
	r.Use(middleware.Logger(s.logger))

	auth := middleware.RequireJWT([]byte(s.cfg.Server.JWTSecret), s.logger)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	r.Route("/groups", func(r chi.Router) {
		r.Get("/", s.handleListGroups)
		r.Route("/{name}", func(r chi.Router) {
			r.Get("/", s.handleGetGroup)
			if s.hub != nil {
				r.Get("/ws", s.handleWS)
			}
			r.Group(func(r chi.Router) {
				r.Use(auth)
				r.Put("/value", s.handleSetValue)
				r.Put("/members/{index}", s.handleSetMember)
				r.Post("/members/{index}/click", s.handleClickMember)
				r.Post("/open", s.handleOpen)
				r.Post("/close", s.handleClose)
				r.Post("/keys", s.handleKey)
			})
		})
	})

	r.Route("/submissions", func(r chi.Router) {
		r.With(auth).Post("/", s.handleSubmit)
		r.Get("/{id}", s.handleGetSubmission)
	})
	return r
}

// Run listens on the configured address until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Address())
	if err != nil {
		return errors.New("E401").Wrap(err).WithSuggestionf("is %s already in use?", s.cfg.Address())
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// within server.shutdownTimeout. It closes ln.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("server starting", "address", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			return errors.New("E401").Wrap(err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		s.logger.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout())
		defer cancel()
		if s.hub != nil {
			s.hub.Close()
		}
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return errors.New("E401").Wrap(err)
		}
		s.logger.Info("server shutdown complete")
		return nil
	})
	return g.Wait()
}

// Close detaches the dispatchers and releases the hub and resources.
func (s *Server) Close() error {
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
	if s.hub != nil {
		s.hub.Close()
	}
	return s.res.Close()
}
