// Package api serves the read-only query surface over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bitfsorg/propshare-go/chain"
	"github.com/bitfsorg/propshare-go/ledger"
	"github.com/bitfsorg/propshare-go/storage"
	"github.com/bitfsorg/propshare-go/store"
)

const (
	defaultEventLimit = 100
	maxEventLimit     = 1000
)

// Server answers queries against committed world state and the property projection.
type Server struct {
	world *chain.World
	props store.PropertyStore
	docs  storage.Store
	dep   chain.Deployment
	log   *slog.Logger
}

// New returns a server for the deployment dep.
func New(world *chain.World, props store.PropertyStore, docs storage.Store, dep chain.Deployment, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{world: world, props: props, docs: docs, dep: dep, log: log}
}

// Router builds the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/registry", s.getRegistry)
	r.Get("/approvals/{address}", s.getApproval)
	r.Route("/properties", func(r chi.Router) {
		r.Get("/", s.listProperties)
		r.Get("/{asset}", s.getProperty)
	})
	r.Get("/documents/{hash}", s.getDocument)
	r.Get("/tokens/{token}/holders", s.getHolders)
	r.Get("/rounds/{id}", s.getRound)
	r.Get("/rounds/{id}/claimable/{holder}", s.getClaimable)
	r.Get("/events", s.listEvents)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Router(), ReadHeaderTimeout: 10 * time.Second}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.log.Info("api listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the ledger taxonomy onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ledger.ErrNotFound),
		errors.Is(err, store.ErrPropertyNotFound),
		errors.Is(err, storage.ErrNotFound),
		errors.Is(err, ledger.ErrUninitializedDependency):
		status = http.StatusNotFound
	case errors.Is(err, ledger.ErrInvalidArgument),
		errors.Is(err, ledger.ErrInterfaceMismatch):
		status = http.StatusBadRequest
	}
	writeJSON(w, status, errorBody{Error: err.Error()})
}

func addressParam(r *http.Request, name string) (ledger.Address, error) {
	return ledger.ParseAddress(chi.URLParam(r, name))
}

func uintParam(r *http.Request, name string) (uint64, error) {
	v, err := strconv.ParseUint(chi.URLParam(r, name), 10, 64)
	if err != nil {
		return 0, errors.Join(ledger.ErrInvalidArgument, err)
	}
	return v, nil
}
