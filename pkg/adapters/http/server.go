package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/aretw0/docflows/internal/logging"
	"github.com/aretw0/docflows/internal/presentation/graph"
	"github.com/aretw0/docflows/pkg/domain"
	"github.com/aretw0/docflows/pkg/loader"
	"github.com/aretw0/docflows/pkg/registry"
	"github.com/aretw0/docflows/pkg/report"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Engine defines what the API needs from the workflow engine.
type Engine interface {
	Workflows() []string
	Workflow(name string) (*domain.Definition, error)
	NewReport(workflow, title string, opts ...report.Option) (*report.Report, error)
}

// Server serves the report API.
type Server struct {
	Engine  Engine
	Reports *registry.Registry

	logger   *slog.Logger
	gatherer prometheus.Gatherer
}

// Option configures the Server.
type Option func(*Server)

// WithRegistry shares a report registry with other adapters.
func WithRegistry(reg *registry.Registry) Option {
	return func(s *Server) {
		s.Reports = reg
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics exposes g on GET /metrics.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine Engine, opts ...Option) http.Handler {
	s := &Server{
		Engine:  engine,
		Reports: registry.NewRegistry(),
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/health", s.GetHealth)
	r.Route("/workflows", func(r chi.Router) {
		r.Get("/", s.ListWorkflows)
		r.Get("/{name}", s.GetWorkflow)
		r.Get("/{name}/graph", s.GetWorkflowGraph)
	})
	r.Route("/reports", func(r chi.Router) {
		r.Post("/", s.CreateReport)
		r.Get("/", s.ListReports)
		r.Get("/{id}", s.GetReport)
		r.Patch("/{id}", s.UpdateReport)
		r.Delete("/{id}", s.DeleteReport)
		r.Post("/{id}/transitions/{transition}", s.FireTransition)
	})
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("HTTP request", "method", r.Method, "path", r.URL.Path, "status", ww.Status())
	})
}

// WorkflowResponse describes a loaded workflow.
type WorkflowResponse struct {
	Name string `json:"name"`
	loader.WorkflowSpec
	Unreachable []string `json:"unreachable,omitempty"`
}

// ReportResponse is a registered report.
type ReportResponse struct {
	ID string `json:"id"`
	report.View
}

// CreateReportRequest is the body of POST /reports.
type CreateReportRequest struct {
	Workflow   string         `json:"workflow"`
	Title      string         `json:"title"`
	Content    *string        `json:"content,omitempty"`
	Keywords   []string       `json:"keywords,omitempty"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// FireRequest is the optional body of POST /reports/{id}/transitions/{transition}.
type FireRequest struct {
	Actor string `json:"actor,omitempty"`
	User  string `json:"user,omitempty"`
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListWorkflows handles the GET /workflows request.
func (s *Server) ListWorkflows(w http.ResponseWriter, r *http.Request) {
	out := []WorkflowResponse{}
	for _, name := range s.Engine.Workflows() {
		def, err := s.Engine.Workflow(name)
		if err != nil {
			continue
		}
		out = append(out, workflowResponse(def))
	}
	writeJSON(w, http.StatusOK, out)
}

// GetWorkflow handles the GET /workflows/{name} request.
func (s *Server) GetWorkflow(w http.ResponseWriter, r *http.Request) {
	def, err := s.Engine.Workflow(chi.URLParam(r, "name"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, workflowResponse(def))
}

// GetWorkflowGraph handles the GET /workflows/{name}/graph request.
// With ?report=<id> the report's current and visited states are highlighted.
func (s *Server) GetWorkflowGraph(w http.ResponseWriter, r *http.Request) {
	def, err := s.Engine.Workflow(chi.URLParam(r, "name"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	var overlay *graph.Overlay
	if id := r.URL.Query().Get("report"); id != "" {
		rep, err := s.Reports.Get(id)
		if err != nil {
			s.writeError(w, err)
			return
		}
		if rep.Definition() == def {
			overlay = graph.OverlayFromHistory(def, rep.State().Name, rep.History())
		}
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(graph.GenerateMermaid(def, overlay)))
}

// CreateReport handles the POST /reports request.
func (s *Server) CreateReport(w http.ResponseWriter, r *http.Request) {
	var body CreateReportRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("CreateReport: Invalid request body", "err", err)
		return
	}
	if body.Workflow == "" {
		http.Error(w, "workflow is required", http.StatusBadRequest)
		return
	}

	var opts []report.Option
	if body.Content != nil {
		opts = append(opts, report.WithContent(*body.Content))
	}
	if body.Keywords != nil {
		opts = append(opts, report.WithKeywords(body.Keywords...))
	}
	for k, v := range body.Attributes {
		opts = append(opts, report.WithAttribute(k, v))
	}

	rep, err := s.Engine.NewReport(body.Workflow, body.Title, opts...)
	if err != nil {
		s.writeError(w, err)
		return
	}
	id := s.Reports.Register(rep)
	s.logger.Info("Report created", "id", id, "workflow", body.Workflow)

	w.Header().Set("Location", "/reports/"+id)
	writeJSON(w, http.StatusCreated, ReportResponse{ID: id, View: rep.Snapshot()})
}

// ListReports handles the GET /reports request.
func (s *Server) ListReports(w http.ResponseWriter, r *http.Request) {
	out := []ReportResponse{}
	for _, e := range s.Reports.List() {
		out = append(out, ReportResponse{ID: e.ID, View: e.Report.Snapshot()})
	}
	writeJSON(w, http.StatusOK, out)
}

// GetReport handles the GET /reports/{id} request.
func (s *Server) GetReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rep, err := s.Reports.Get(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ReportResponse{ID: id, View: rep.Snapshot()})
}

// UpdateReport handles the PATCH /reports/{id} request.
func (s *Server) UpdateReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rep, err := s.Reports.Get(id)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var patch report.Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("UpdateReport: Invalid request body", "err", err)
		return
	}
	rep.Apply(patch)
	writeJSON(w, http.StatusOK, ReportResponse{ID: id, View: rep.Snapshot()})
}

// DeleteReport handles the DELETE /reports/{id} request.
func (s *Server) DeleteReport(w http.ResponseWriter, r *http.Request) {
	if err := s.Reports.Delete(chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// FireTransition handles the POST /reports/{id}/transitions/{transition} request.
func (s *Server) FireTransition(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rep, err := s.Reports.Get(id)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var body FireRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("FireTransition: Invalid request body", "err", err)
		return
	}

	var opts []report.CallOption
	if body.User != "" {
		opts = append(opts, report.WithUser(body.User))
	}
	if err := rep.Fire(r.Context(), chi.URLParam(r, "transition"), body.Actor, opts...); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ReportResponse{ID: id, View: rep.Snapshot()})
}

func workflowResponse(def *domain.Definition) WorkflowResponse {
	return WorkflowResponse{
		Name:         def.Name(),
		WorkflowSpec: loader.FromDefinition(def),
		Unreachable:  def.Unreachable(),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
