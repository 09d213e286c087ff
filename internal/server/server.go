// Package server implements the HTTP surface of svgtrace.
//
// The server exposes the conversion pipeline over a small JSON API plus an
// embedded single-page UI: batch multipart conversion, live preview,
// URL/data-URI conversion, preset introspection, and download of retained
// output SVGs.
package server

import (
	"context"
	_ "embed"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mkoeppen/svgtrace/pkg/cache"
	"github.com/mkoeppen/svgtrace/pkg/convert"
	"github.com/mkoeppen/svgtrace/pkg/source"
	"github.com/mkoeppen/svgtrace/pkg/trace"
)

//go:embed static/index.html
var indexHTML []byte

// shutdownTimeout bounds graceful shutdown once the context is cancelled.
const shutdownTimeout = 10 * time.Second

// Server wires the conversion pipeline to an HTTP API.
type Server struct {
	cfg       Config
	converter *convert.Converter
	resCache  cache.Cache
	logger    *log.Logger
	router    chi.Router
}

// New builds a Server from the given configuration.
// ctx is used only for the initial Redis connection check.
func New(ctx context.Context, cfg Config, logger *log.Logger) (*Server, error) {
	if logger == nil {
		logger = log.Default()
	}

	acquirerOpts := []source.Option{source.WithLogger(logger)}
	if cfg.DownloadTimeoutSec > 0 {
		acquirerOpts = append(acquirerOpts, source.WithHTTPClient(&http.Client{
			Timeout: time.Duration(cfg.DownloadTimeoutSec) * time.Second,
		}))
	}
	acquirer, err := source.NewAcquirer(cfg.UploadDir, acquirerOpts...)
	if err != nil {
		return nil, err
	}

	resCache, err := newCache(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	converter, err := convert.New(
		trace.NewExecEngine(cfg.EngineBinary),
		acquirer,
		cfg.OutputDir,
		convert.WithCache(resCache),
		convert.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:       cfg,
		converter: converter,
		resCache:  resCache,
		logger:    logger,
	}
	s.router = s.routes()
	return s, nil
}

// newCache selects the result cache backend: Redis when configured, a file
// cache under the output directory otherwise.
func newCache(ctx context.Context, cfg Config, logger *log.Logger) (cache.Cache, error) {
	if cfg.Redis.Addr != "" {
		c, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, err
		}
		logger.Info("using redis result cache", "addr", cfg.Redis.Addr)
		return c, nil
	}
	return cache.NewFileCache(cfg.OutputDir + "/.cache")
}

// Handler returns the server's HTTP handler, exposed for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// routes builds the chi router with the standard middleware stack.
func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/presets", s.handlePresets)
		r.Post("/convert", s.handleConvert)
		r.Post("/convert/url", s.handleConvertURL)
		r.Post("/preview", s.handlePreview)
		r.Get("/download/{filename}", s.handleDownload)
	})

	return r
}

// Run starts the server and blocks until ctx is cancelled or the listener
// fails, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.Addr,
		Handler: s.router,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		_ = s.resCache.Close()
		return err
	}
}

// logRequests logs one line per request with status and duration.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).Round(time.Millisecond),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
