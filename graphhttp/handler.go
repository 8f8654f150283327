// Package graphhttp serves a built container's dependency graph and health
// probes over HTTP.
package graphhttp

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/danpasecinic/kiln"
)

const defaultProbeTimeout = 5 * time.Second

type Option func(*config)

type config struct {
	logger       *slog.Logger
	probeTimeout time.Duration
	middleware   []func(http.Handler) http.Handler
}

func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}

// WithProbeTimeout bounds each /healthz and /readyz request.
func WithProbeTimeout(d time.Duration) Option {
	return func(cfg *config) {
		cfg.probeTimeout = d
	}
}

func WithMiddleware(mw ...func(http.Handler) http.Handler) Option {
	return func(cfg *config) {
		cfg.middleware = append(cfg.middleware, mw...)
	}
}

// Handler exposes a container on these routes:
//
//	GET /graph        JSON export
//	GET /graph.dot    Graphviz DOT
//	GET /graph.txt    text rendering
//	GET /nodes/{id}   one node with its dependents
//	GET /healthz      liveness probe
//	GET /readyz       readiness probe
type Handler struct {
	mux       chi.Router
	container *kiln.Container
	cfg       *config
}

func NewHandler(c *kiln.Container, opts ...Option) *Handler {
	cfg := &config{
		logger:       slog.Default(),
		probeTimeout: defaultProbeTimeout,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	h := &Handler{
		mux:       chi.NewRouter(),
		container: c,
		cfg:       cfg,
	}

	h.mux.Use(middleware.Recoverer)
	h.mux.Use(cfg.middleware...)

	h.mux.Get("/graph", h.graphJSON)
	h.mux.Get("/graph.dot", h.graphDOT)
	h.mux.Get("/graph.txt", h.graphText)
	h.mux.Get("/nodes/*", h.node)
	h.mux.Get("/healthz", h.probe(c.Health))
	h.mux.Get("/readyz", h.probe(c.Readiness))

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) graphJSON(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, h.container.Export())
}

func (h *Handler) graphDOT(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
	h.container.FprintGraphDOT(w)
}

func (h *Handler) graphText(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	h.container.FprintGraph(w)
}

type nodeResponse struct {
	kiln.NodeExport
	Dependents []string `json:"dependents"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// node serves /nodes/{id}. Ids may contain slashes, so the route uses a
// wildcard and ids may be path-escaped.
func (h *Handler) node(w http.ResponseWriter, r *http.Request) {
	id, err := url.PathUnescape(chi.URLParam(r, "*"))
	if err != nil || id == "" {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid node id"})
		return
	}

	export, ok := h.container.Export().Lookup(id)
	if !ok {
		h.writeJSON(w, http.StatusNotFound, errorResponse{Error: "no node " + id})
		return
	}

	resp := nodeResponse{NodeExport: export, Dependents: []string{}}
	for _, dep := range h.container.Dependents(kiln.Name(id)) {
		resp.Dependents = append(resp.Dependents, dep.ID)
	}
	h.writeJSON(w, http.StatusOK, resp)
}

type checkResponse struct {
	Name      string            `json:"name"`
	Status    kiln.HealthStatus `json:"status"`
	Error     string            `json:"error,omitempty"`
	LatencyMS float64           `json:"latency_ms"`
}

type probeResponse struct {
	Status kiln.HealthStatus `json:"status"`
	Checks []checkResponse   `json:"checks"`
}

func (h *Handler) probe(run func(context.Context) []kiln.HealthReport) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), h.cfg.probeTimeout)
		defer cancel()

		resp := probeResponse{Status: kiln.HealthStatusUp, Checks: []checkResponse{}}
		for _, report := range run(ctx) {
			check := checkResponse{
				Name:      report.Name,
				Status:    report.Status,
				LatencyMS: float64(report.Latency.Microseconds()) / 1000,
			}
			if report.Error != nil {
				check.Error = report.Error.Error()
			}
			if report.Status == kiln.HealthStatusDown {
				resp.Status = kiln.HealthStatusDown
			}
			resp.Checks = append(resp.Checks, check)
		}

		status := http.StatusOK
		if resp.Status == kiln.HealthStatusDown {
			status = http.StatusServiceUnavailable
		}
		h.writeJSON(w, status, resp)
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.cfg.logger.Error("failed to encode response", "error", err)
	}
}
