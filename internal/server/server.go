// Package server exposes the layout, gutter and tiling operations over HTTP.
//
// Routes:
//
//	GET  /healthz
//	GET  /v1/grid/layout?count=N&width=W&height=H
//	GET  /v1/gutter/{inset|outset}?width=W&height=H
//	POST /v1/split?chunk=C&gutter=G&...   (body: image bytes)
//
// Failures are JSON bodies {"error": ..., "code": ...}. Input errors map to
// 400, missing files to 404, everything else to 500.
package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/boardtex/pkg/cache"
	"github.com/matzehuels/boardtex/pkg/errors"
	"github.com/matzehuels/boardtex/pkg/observability"
)

// DefaultMaxUploadBytes bounds POST bodies when Options leaves it unset.
const DefaultMaxUploadBytes = 256 << 20

// Options configures a Server.
type Options struct {
	Cache          cache.Cache
	Keyer          cache.Keyer
	Logger         *log.Logger
	MaxUploadBytes int64
	Concurrency    int
	TTL            time.Duration
}

// Server serves the HTTP API.
type Server struct {
	cache    cache.Cache
	keyer    cache.Keyer
	logger   *log.Logger
	maxBytes int64
	workers  int
	ttl      time.Duration
}

// New creates a server. Nil fields fall back to a NullCache, the default
// keyer and log.Default().
func New(opts Options) *Server {
	s := &Server{
		cache:    opts.Cache,
		keyer:    opts.Keyer,
		logger:   opts.Logger,
		maxBytes: opts.MaxUploadBytes,
		workers:  opts.Concurrency,
		ttl:      opts.TTL,
	}
	if s.cache == nil {
		s.cache = cache.NewNullCache()
	}
	if s.keyer == nil {
		s.keyer = cache.NewDefaultKeyer()
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	if s.maxBytes <= 0 {
		s.maxBytes = DefaultMaxUploadBytes
	}
	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", s.health)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/grid/layout", s.gridLayout)
		r.Get("/gutter/{mode}", s.gutter)
		r.Post("/split", s.split)
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string, readTimeout, writeTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// observe logs each request and reports it to the server hooks.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		hooks := observability.Server()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		d := time.Since(start)
		hooks.OnResponse(r.Context(), r.Method, route, status, d)
		s.logger.Debug("request",
			"method", r.Method,
			"route", route,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", d,
			"request_id", middleware.GetReqID(r.Context()))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// statusFor maps an error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.IsNotFound(err):
		return http.StatusNotFound
	case errors.IsClientError(err):
		return http.StatusBadRequest
	case stderrors.Is(err, context.Canceled):
		return 499
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "route", r.URL.Path, "err", err)
	}
	writeJSON(w, status, errorBody{Error: errors.UserMessage(err), Code: string(errors.GetCode(err))})
}
