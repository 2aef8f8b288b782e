// Command diagramaut runs the diagram authoring runtime: the HTTP/WebSocket
// API, the plan execution worker pool, and the ingestion job worker pool.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/diagramaut/diagramaut/pkg/api"
	"github.com/diagramaut/diagramaut/pkg/config"
	"github.com/diagramaut/diagramaut/pkg/database"
	"github.com/diagramaut/diagramaut/pkg/events"
	"github.com/diagramaut/diagramaut/pkg/ingest"
	"github.com/diagramaut/diagramaut/pkg/irstore"
	"github.com/diagramaut/diagramaut/pkg/llmclient"
	"github.com/diagramaut/diagramaut/pkg/mcpreg"
	"github.com/diagramaut/diagramaut/pkg/mcptools"
	"github.com/diagramaut/diagramaut/pkg/orchestrator"
	"github.com/diagramaut/diagramaut/pkg/planner"
	"github.com/diagramaut/diagramaut/pkg/queue"
	"github.com/diagramaut/diagramaut/pkg/render"
	"github.com/diagramaut/diagramaut/pkg/route"
	"github.com/diagramaut/diagramaut/pkg/services"
	"github.com/diagramaut/diagramaut/pkg/session"
	"github.com/diagramaut/diagramaut/pkg/styling"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "diagramaut: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	configDir := getEnv("CONFIG_DIR", "./deploy/config")
	cfg, err := config.Initialize(ctx, configDir)
	if err != nil {
		return fmt.Errorf("initializing configuration: %w", err)
	}
	slog.Info("configuration loaded", "config_dir", configDir,
		"renderers", cfg.Stats().Renderers, "routes", cfg.Stats().Routes, "llm_providers", cfg.Stats().LLMProviders)

	dbConfig, err := database.LoadConfigFromEnv()
	if err != nil {
		return fmt.Errorf("loading database config: %w", err)
	}
	dbClient, err := database.NewClient(ctx, dbConfig)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			slog.Error("closing database client", "error", err)
		}
	}()
	slog.Info("connected to postgres", "host", dbConfig.Host, "database", dbConfig.Database)

	podID := getEnv("POD_ID", uuid.NewString())

	if err := queue.CleanupStartupOrphans(ctx, dbClient.Client, podID); err != nil {
		slog.Warn("startup orphan cleanup failed", "error", err)
	}

	// Services
	sessionSvc := services.NewSessionService(dbClient.Client)
	messageSvc := services.NewMessageService(dbClient.Client)
	planSvc := services.NewPlanService(dbClient.Client)
	ingestionSvc := services.NewIngestionService(dbClient.Client)
	stylingAuditSvc := services.NewStylingAuditService(dbClient.Client)
	eventSvc := services.NewEventService(dbClient.Client)
	irStore := irstore.New(dbClient.Client)
	sessions := session.NewManager()

	// LLM worker (single sidecar process backing both the Planner and the
	// Styling Agent, per §4.7/§4.10's "one external collaborator").
	llmAddr := getEnv("LLM_WORKER_ADDR", "localhost:50051")
	llmClient, err := llmclient.NewGRPCClient(llmAddr)
	if err != nil {
		return fmt.Errorf("creating LLM client: %w", err)
	}
	defer func() {
		if err := llmClient.Close(); err != nil {
			slog.Error("closing LLM client", "error", err)
		}
	}()

	planHandler := planner.New(llmClient)
	stylingAgent := styling.New(llmClient)

	// Events: Postgres LISTEN/NOTIFY fan-out to WebSocket clients.
	connManager := events.NewConnectionManager(events.NewEventServiceAdapter(eventSvc), 10*time.Second)
	publisher := events.NewEventPublisher(dbClient.DB())
	notifyListener := events.NewNotifyListener(postgresConnString(dbConfig), connManager)
	connManager.SetListener(notifyListener)
	if err := notifyListener.Start(ctx); err != nil {
		return fmt.Errorf("starting event listener: %w", err)
	}
	defer notifyListener.Stop(context.Background())

	// MCP Registry: every in-process tool a plan step can dispatch to.
	registry := mcpreg.NewRegistry()

	// Renderer Router/Adapter: optional, only wired when renderer backends
	// are actually installed on this host (mmdc/structurizr-cli/plantuml).
	var router *route.Router
	var renderer *render.Adapter
	if getEnv("RENDERING_ENABLED", "true") == "true" {
		router = route.NewRouter(cfg.RouteRegistry, cfg.RendererRegistry)
		renderer = render.NewAdapter(rendererConfigs(cfg), 4, 4)
	}

	if err := mcptools.Register(registry, mcptools.Deps{
		IRStore:         irStore,
		Router:          router,
		Renderer:        renderer,
		StylingAgent:    stylingAgent,
		StylingAuditSvc: stylingAuditSvc,
		IngestionSvc:    ingestionSvc,
	}); err != nil {
		return fmt.Errorf("registering mcp tools: %w", err)
	}

	// Plan execution worker pool.
	planExecutor := queue.NewRealPlanExecutor(dbClient.Client, registry)
	planQueue := queue.NewWorkerPool(podID, dbClient.Client, queueConfigFrom(cfg.PlanQueue), planExecutor)
	if err := planQueue.Start(ctx); err != nil {
		return fmt.Errorf("starting plan worker pool: %w", err)
	}
	defer planQueue.Stop()

	// Ingestion worker pool.
	ingestQueue := ingest.NewWorkerPool(podID, dbClient.Client, ingestConfigFrom(cfg.IngestQueue))
	ingestQueue.Start(ctx)
	defer ingestQueue.Stop()

	orch := orchestrator.New(
		dbClient.Client,
		sessions,
		sessionSvc,
		messageSvc,
		planSvc,
		planHandler,
		registry,
		irStore,
		publisher,
	)

	server := api.NewServer(cfg, dbClient, connManager, planQueue, ingestQueue,
		sessionSvc, planSvc, ingestionSvc, stylingAuditSvc, irStore)
	server.SetOrchestrator(orch)
	server.SetRegistry(registry)
	if router != nil && renderer != nil {
		server.SetRenderer(router, renderer)
	}
	if err := server.ValidateWiring(); err != nil {
		return fmt.Errorf("server wiring: %w", err)
	}

	addr := ":" + getEnv("HTTP_PORT", "8080")
	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", addr)
		if err := server.Start(addr); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown", "error", err)
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func postgresConnString(cfg database.Config) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database, cfg.SSLMode)
}

func rendererConfigs(cfg *config.Config) map[render.RendererID]render.Config {
	all := cfg.RendererRegistry.GetAll()
	out := make(map[render.RendererID]render.Config, len(all))
	for id, rc := range all {
		timeout := rc.Timeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		out[render.RendererID(id)] = render.Config{
			Command: rc.Command,
			Args:    rc.Args,
			Timeout: timeout,
		}
	}
	return out
}

func queueConfigFrom(qc *config.QueueConfig) *queue.Config {
	return &queue.Config{
		WorkerCount:             qc.WorkerCount,
		MaxConcurrentPlans:      qc.MaxConcurrent,
		PlanTimeout:             qc.Timeout,
		PollInterval:            qc.PollInterval,
		PollIntervalJitter:      qc.PollIntervalJitter,
		HeartbeatInterval:       qc.HeartbeatInterval,
		OrphanDetectionInterval: qc.OrphanDetectionInterval,
		OrphanThreshold:         qc.OrphanThreshold,
	}
}

func ingestConfigFrom(qc *config.QueueConfig) *ingest.Config {
	return &ingest.Config{
		WorkerCount:             qc.WorkerCount,
		MaxConcurrentJobs:       qc.MaxConcurrent,
		JobTimeout:              qc.Timeout,
		PollInterval:            qc.PollInterval,
		PollIntervalJitter:      qc.PollIntervalJitter,
		HeartbeatInterval:       qc.HeartbeatInterval,
		OrphanDetectionInterval: qc.OrphanDetectionInterval,
		OrphanThreshold:         qc.OrphanThreshold,
		CloneDir:                getEnv("INGEST_CLONE_DIR", os.TempDir()),
	}
}
