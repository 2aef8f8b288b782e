// Package api provides the HTTP surface for the diagram authoring
// runtime: the chat orchestration endpoint, session/diagram/plan reads,
// the ingestion queue, and the MCP discovery/execute endpoints (§6).
//
// Grounded on pkg/api/server.go: same Echo v5 server struct, same
// NewServer-plus-Set*-plus-ValidateWiring dependency-injection pattern,
// so wiring gaps fail at startup instead of as a 503 on first request.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	echo "github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"

	"github.com/diagramaut/diagramaut/pkg/config"
	"github.com/diagramaut/diagramaut/pkg/database"
	"github.com/diagramaut/diagramaut/pkg/events"
	"github.com/diagramaut/diagramaut/pkg/ingest"
	"github.com/diagramaut/diagramaut/pkg/irstore"
	"github.com/diagramaut/diagramaut/pkg/mcpreg"
	"github.com/diagramaut/diagramaut/pkg/orchestrator"
	"github.com/diagramaut/diagramaut/pkg/queue"
	"github.com/diagramaut/diagramaut/pkg/render"
	"github.com/diagramaut/diagramaut/pkg/route"
	"github.com/diagramaut/diagramaut/pkg/services"
	"github.com/diagramaut/diagramaut/pkg/version"
)

// Server is the HTTP API server.
type Server struct {
	echo       *echo.Echo
	httpServer *http.Server

	cfg         *config.Config
	dbClient    *database.Client
	connManager *events.ConnectionManager
	planQueue   *queue.WorkerPool
	ingestQueue *ingest.WorkerPool

	sessionSvc      *services.SessionService
	planSvc         *services.PlanService
	ingestionSvc    *services.IngestionService
	stylingAuditSvc *services.StylingAuditService
	irStore         *irstore.Store

	orch     *orchestrator.Orchestrator // nil until set
	registry *mcpreg.Registry           // nil until set
	router   *route.Router              // nil if render endpoint unconfigured
	renderer *render.Adapter            // nil if render endpoint unconfigured
}

// NewServer creates a new API server with Echo v5 and registers every
// route that doesn't depend on a Set*-injected collaborator.
func NewServer(
	cfg *config.Config,
	dbClient *database.Client,
	connManager *events.ConnectionManager,
	planQueue *queue.WorkerPool,
	ingestQueue *ingest.WorkerPool,
	sessionSvc *services.SessionService,
	planSvc *services.PlanService,
	ingestionSvc *services.IngestionService,
	stylingAuditSvc *services.StylingAuditService,
	irStore *irstore.Store,
) *Server {
	e := echo.New()

	s := &Server{
		echo:            e,
		cfg:             cfg,
		dbClient:        dbClient,
		connManager:     connManager,
		planQueue:       planQueue,
		ingestQueue:     ingestQueue,
		sessionSvc:      sessionSvc,
		planSvc:         planSvc,
		ingestionSvc:    ingestionSvc,
		stylingAuditSvc: stylingAuditSvc,
		irStore:         irStore,
	}

	s.setupRoutes()
	return s
}

// SetOrchestrator sets the Orchestrator that drives POST /api/chat.
func (s *Server) SetOrchestrator(o *orchestrator.Orchestrator) {
	s.orch = o
}

// SetRegistry sets the MCP Registry backing /mcp/discover and /mcp/execute.
func (s *Server) SetRegistry(r *mcpreg.Registry) {
	s.registry = r
}

// SetRenderer wires the Renderer Router and Adapter backing
// GET /api/diagram/render. Both or neither — a Router with no Adapter
// (or vice versa) can never render anything.
func (s *Server) SetRenderer(router *route.Router, adapter *render.Adapter) {
	s.router = router
	s.renderer = adapter
}

// ValidateWiring checks that every required Set*-injected collaborator
// has been wired, so a missing dependency fails at startup rather than
// as a request-time 503. Call after every Set* call and before
// Start/StartWithListener.
func (s *Server) ValidateWiring() error {
	var errs []error
	if s.orch == nil {
		errs = append(errs, fmt.Errorf("orchestrator not set (call SetOrchestrator)"))
	}
	if s.registry == nil {
		errs = append(errs, fmt.Errorf("registry not set (call SetRegistry)"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("server wiring incomplete: %w", errors.Join(errs...))
	}
	return nil
}

// setupRoutes registers every route. Routes depending on a Set*-injected
// collaborator guard against it being nil (ValidateWiring is what should
// actually prevent that in production, but handlers stay defensive so a
// partially-wired server degrades to 503 instead of a panic).
func (s *Server) setupRoutes() {
	s.echo.Use(middleware.BodyLimit(2 * 1024 * 1024))

	s.echo.GET("/health", s.healthHandler)

	v1 := s.echo.Group("/api")
	v1.POST("/chat", s.chatHandler)
	v1.POST("/sessions", s.createSessionHandler)
	v1.GET("/sessions/:id", s.getSessionHandler)
	v1.POST("/sessions/:id/ingest", s.sessionIngestHandler)
	v1.POST("/ingest", s.createIngestJobHandler)
	v1.GET("/ingest/:job_id", s.getIngestJobHandler)
	v1.GET("/diagram/render", s.renderDiagramHandler)
	v1.POST("/feedback", s.feedbackHandler)
	v1.GET("/ir/:image_id/history", s.irHistoryHandler)
	v1.GET("/diagrams/:id/styling/audit", s.stylingAuditListHandler)
	v1.GET("/diagrams/:id/styling/audit/:audit_id", s.stylingAuditGetHandler)
	v1.GET("/plans/:id", s.getPlanHandler)

	s.echo.POST("/mcp/discover", s.mcpDiscoverHandler)
	s.echo.POST("/mcp/execute", s.mcpExecuteHandler)

	s.echo.GET("/ws", s.wsHandler)
}

// Start starts the HTTP server on the given address and blocks until the
// server stops.
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{Addr: addr, Handler: s.echo}
	return s.httpServer.ListenAndServe()
}

// StartWithListener starts the HTTP server on a pre-created listener.
// Used by test infrastructure to serve on a random OS-assigned port.
func (s *Server) StartWithListener(ln net.Listener) error {
	s.httpServer = &http.Server{Handler: s.echo}
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// healthHandler handles GET /health.
func (s *Server) healthHandler(c *echo.Context) error {
	reqCtx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	dbHealth, err := database.Health(reqCtx, s.dbClient.DB())
	stats := s.cfg.Stats()
	resp := &HealthResponse{
		Status:  "healthy",
		Version: version.Full(),
		Configuration: ConfigurationStats{
			Renderers:    stats.Renderers,
			Routes:       stats.Routes,
			LLMProviders: stats.LLMProviders,
		},
	}
	if err != nil {
		resp.Status = "unhealthy"
		return c.JSON(http.StatusServiceUnavailable, resp)
	}
	resp.Database = &healthDatabaseResponse{Status: dbHealth.Status, OpenConnections: dbHealth.OpenConnections}

	if s.planQueue != nil {
		resp.PlanQueue = s.planQueue.Health()
	}

	return c.JSON(http.StatusOK, resp)
}
