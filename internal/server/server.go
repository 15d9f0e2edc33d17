// Package server exposes a filter library over HTTP.
//
// Routes:
//
//	GET  /healthz                   liveness
//	GET  /metrics                   Prometheus metrics, when configured
//	POST /oto/FilterService.List    list the loaded filters
//	POST /oto/FilterService.Apply   apply a filter to the tree
//
// The FilterService endpoints take and return JSON. Errors are returned
// as {"error": "..."} with a 4xx or 5xx status.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pacedotdev/oto/otohttp"
	"golang.org/x/sync/errgroup"

	"github.com/ezachrisen/kin"
	"github.com/ezachrisen/kin/genealogy"
)

// Config holds what the server needs.
type Config struct {
	Library *Library
	DB      *genealogy.MemDB

	// Metrics serves /metrics. The route is omitted when nil.
	Metrics http.Handler

	// Parallel is the number of workers used to apply a filter. Default: 1
	Parallel int

	// Watch reloads the library when the filter files change.
	Watch bool

	Logger *slog.Logger
}

// Server is the HTTP front end of a filter library.
type Server struct {
	cfg     Config
	service FilterService
	router  chi.Router
	logger  *slog.Logger
}

// New builds the router for the server.
func New(cfg Config) *Server {
	if cfg.Parallel < 1 {
		cfg.Parallel = 1
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		cfg:    cfg,
		logger: cfg.Logger,
		service: &filterService{
			lib:      cfg.Library,
			db:       cfg.DB,
			parallel: cfg.Parallel,
		},
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}

	oto := otohttp.NewServer()
	oto.OnErr = s.onErr
	registerFilterService(oto, s.service)
	r.Handle("/oto/*", oto)

	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Serve listens on addr and blocks until ctx is canceled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    addr,
		Handler: s,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.cfg.Watch {
		eg.Go(func() error {
			return s.cfg.Library.Watch(egctx)
		})
	}

	eg.Go(func() error {
		s.logger.Info("listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Debug("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

func (s *Server) onErr(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
	} else {
		s.logger.Debug("bad request", "path", r.URL.Path, "error", err)
	}
	body := struct {
		Error string `json:"error"`
	}{err.Error()}
	if err := otohttp.Encode(w, r, status, body); err != nil {
		s.logger.Error("encoding error response", "error", err)
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrUnknownFilter), errors.Is(err, genealogy.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, kin.ErrLoop), errors.Is(err, kin.ErrFilterRecursion):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errDecode):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

var errDecode = errors.New("malformed request")

type filterServiceServer struct {
	server  *otohttp.Server
	service FilterService
}

func registerFilterService(server *otohttp.Server, service FilterService) {
	h := &filterServiceServer{server: server, service: service}
	server.Register("FilterService", "List", h.handleList)
	server.Register("FilterService", "Apply", h.handleApply)
}

func (s *filterServiceServer) handleList(w http.ResponseWriter, r *http.Request) {
	var request ListRequest
	if err := otohttp.Decode(r, &request); err != nil {
		s.server.OnErr(w, r, fmt.Errorf("%w: %v", errDecode, err))
		return
	}
	response, err := s.service.List(r.Context(), request)
	if err != nil {
		s.server.OnErr(w, r, err)
		return
	}
	if err := otohttp.Encode(w, r, http.StatusOK, response); err != nil {
		s.server.OnErr(w, r, err)
		return
	}
}

func (s *filterServiceServer) handleApply(w http.ResponseWriter, r *http.Request) {
	var request ApplyRequest
	if err := otohttp.Decode(r, &request); err != nil {
		s.server.OnErr(w, r, fmt.Errorf("%w: %v", errDecode, err))
		return
	}
	response, err := s.service.Apply(r.Context(), request)
	if err != nil {
		s.server.OnErr(w, r, err)
		return
	}
	if err := otohttp.Encode(w, r, http.StatusOK, response); err != nil {
		s.server.OnErr(w, r, err)
		return
	}
}
