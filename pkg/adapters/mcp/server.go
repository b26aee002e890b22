package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/docflows/internal/logging"
	"github.com/aretw0/docflows/pkg/domain"
	"github.com/aretw0/docflows/pkg/registry"
	"github.com/aretw0/docflows/pkg/report"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const workflowsURI = "docflows://workflows"

// Engine defines what the MCP server needs from the workflow engine.
type Engine interface {
	Workflows() []string
	Workflow(name string) (*domain.Definition, error)
	NewReport(workflow, title string, opts ...report.Option) (*report.Report, error)
}

// Server wraps the engine and exposes reports and their transitions as MCP tools.
type Server struct {
	engine    Engine
	reports   *registry.Registry
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithRegistry shares a report registry with other adapters.
func WithRegistry(reg *registry.Registry) Option {
	return func(s *Server) {
		s.reports = reg
	}
}

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine, version string, opts ...Option) *Server {
	s := &Server{
		engine:    engine,
		reports:   registry.NewRegistry(),
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("docflows-mcp", version),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the MCP server over SSE on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WorkflowSummary describes a loaded workflow.
type WorkflowSummary struct {
	Name        string   `json:"name"`
	Initial     string   `json:"initial_state"`
	States      []string `json:"states"`
	Transitions []string `json:"transitions"`
}

// WorkflowList is the result of list_workflows.
type WorkflowList struct {
	Workflows []WorkflowSummary `json:"workflows"`
}

// ReportResult is the result of every report tool.
type ReportResult struct {
	ID     string      `json:"id" jsonschema_description:"The report id"`
	Report report.View `json:"report" jsonschema_description:"The report after the call"`
}

// CreateReportArgs are the arguments of create_report.
type CreateReportArgs struct {
	Workflow   string         `json:"workflow"`
	Title      string         `json:"title"`
	Content    *string        `json:"content,omitempty"`
	Keywords   []string       `json:"keywords,omitempty"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// ReportArgs identify a report.
type ReportArgs struct {
	ID string `json:"id"`
}

// UpdateReportArgs are the arguments of update_report.
type UpdateReportArgs struct {
	ID string `json:"id"`
	report.Patch
}

// FireTransitionArgs are the arguments of fire_transition.
type FireTransitionArgs struct {
	ID         string `json:"id"`
	Transition string `json:"transition"`
	Actor      string `json:"actor,omitempty"`
	User       string `json:"user,omitempty"`
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_workflows",
		mcp.WithDescription("List the loaded workflows with their states and transitions."),
		mcp.WithOutputSchema[WorkflowList](),
	), mcp.NewStructuredToolHandler(s.handleListWorkflows))

	s.mcpServer.AddTool(mcp.NewTool("create_report",
		mcp.WithDescription("Create a report in the initial state of a workflow."),
		mcp.WithString("workflow", mcp.Required(), mcp.Description("Workflow name")),
		mcp.WithString("title", mcp.Required(), mcp.Description("Report title")),
		mcp.WithString("content", mcp.Description("Report content")),
		mcp.WithArray("keywords", mcp.Description("Report keywords"), mcp.Items(map[string]any{"type": "string"})),
		mcp.WithObject("attributes", mcp.Description("Free-form attributes visible to checks as doc.<key>")),
		mcp.WithOutputSchema[ReportResult](),
	), mcp.NewStructuredToolHandler(s.handleCreateReport))

	s.mcpServer.AddTool(mcp.NewTool("get_report",
		mcp.WithDescription("Get a report, its state, history and available transitions."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Report id")),
		mcp.WithOutputSchema[ReportResult](),
	), mcp.NewStructuredToolHandler(s.handleGetReport))

	s.mcpServer.AddTool(mcp.NewTool("update_report",
		mcp.WithDescription("Update the title, content, keywords or attributes of a report."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Report id")),
		mcp.WithString("title", mcp.Description("New title")),
		mcp.WithString("content", mcp.Description("New content")),
		mcp.WithBoolean("clear_content", mcp.Description("Remove the content")),
		mcp.WithArray("keywords", mcp.Description("New keywords"), mcp.Items(map[string]any{"type": "string"})),
		mcp.WithObject("attributes", mcp.Description("Attributes to set")),
		mcp.WithOutputSchema[ReportResult](),
	), mcp.NewStructuredToolHandler(s.handleUpdateReport))

	s.mcpServer.AddTool(mcp.NewTool("fire_transition",
		mcp.WithDescription("Fire a transition on a report. Fails if the transition is not available or a check fails."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Report id")),
		mcp.WithString("transition", mcp.Required(), mcp.Description("Transition name")),
		mcp.WithString("actor", mcp.Description("Who performs the transition")),
		mcp.WithString("user", mcp.Description("Recorded instead of actor when set")),
		mcp.WithOutputSchema[ReportResult](),
	), mcp.NewStructuredToolHandler(s.handleFireTransition))
}

func (s *Server) handleListWorkflows(ctx context.Context, request mcp.CallToolRequest, _ map[string]any) (WorkflowList, error) {
	return WorkflowList{Workflows: s.summaries()}, nil
}

func (s *Server) handleCreateReport(ctx context.Context, request mcp.CallToolRequest, args CreateReportArgs) (ReportResult, error) {
	if args.Workflow == "" {
		return ReportResult{}, errors.New("workflow is required")
	}

	var opts []report.Option
	if args.Content != nil {
		opts = append(opts, report.WithContent(*args.Content))
	}
	if args.Keywords != nil {
		opts = append(opts, report.WithKeywords(args.Keywords...))
	}
	for k, v := range args.Attributes {
		opts = append(opts, report.WithAttribute(k, v))
	}

	rep, err := s.engine.NewReport(args.Workflow, args.Title, opts...)
	if err != nil {
		return ReportResult{}, err
	}
	id := s.reports.Register(rep)
	s.logger.Info("Report created", "id", id, "workflow", args.Workflow)
	return ReportResult{ID: id, Report: rep.Snapshot()}, nil
}

func (s *Server) handleGetReport(ctx context.Context, request mcp.CallToolRequest, args ReportArgs) (ReportResult, error) {
	rep, err := s.reports.Get(args.ID)
	if err != nil {
		return ReportResult{}, err
	}
	return ReportResult{ID: args.ID, Report: rep.Snapshot()}, nil
}

func (s *Server) handleUpdateReport(ctx context.Context, request mcp.CallToolRequest, args UpdateReportArgs) (ReportResult, error) {
	rep, err := s.reports.Get(args.ID)
	if err != nil {
		return ReportResult{}, err
	}
	rep.Apply(args.Patch)
	return ReportResult{ID: args.ID, Report: rep.Snapshot()}, nil
}

func (s *Server) handleFireTransition(ctx context.Context, request mcp.CallToolRequest, args FireTransitionArgs) (ReportResult, error) {
	rep, err := s.reports.Get(args.ID)
	if err != nil {
		return ReportResult{}, err
	}

	var opts []report.CallOption
	if args.User != "" {
		opts = append(opts, report.WithUser(args.User))
	}
	if err := rep.Fire(ctx, args.Transition, args.Actor, opts...); err != nil {
		s.logger.Debug("MCP fire_transition refused", "id", args.ID, "transition", args.Transition, "err", err)
		return ReportResult{}, err
	}
	return ReportResult{ID: args.ID, Report: rep.Snapshot()}, nil
}

func (s *Server) summaries() []WorkflowSummary {
	out := []WorkflowSummary{}
	for _, name := range s.engine.Workflows() {
		def, err := s.engine.Workflow(name)
		if err != nil {
			continue
		}
		sum := WorkflowSummary{Name: name, Initial: def.InitialState().Name}
		for _, st := range def.States() {
			sum.States = append(sum.States, st.Name)
		}
		for _, t := range def.Transitions() {
			sum.Transitions = append(sum.Transitions, t.Name)
		}
		out = append(out, sum)
	}
	return out
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(workflowsURI, "Loaded Workflows",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(WorkflowList{Workflows: s.summaries()})
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      workflowsURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
