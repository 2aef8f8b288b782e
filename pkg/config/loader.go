package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

// DiagramautYAMLConfig represents the complete diagramaut.yaml file
// structure, grounded on pkg/config/loader.go's TarsyYAMLConfig.
type DiagramautYAMLConfig struct {
	Renderers   map[string]RendererConfig `yaml:"renderers"`
	Routes      map[string]RouteConfig    `yaml:"routes"`
	PlanQueue   *QueueConfig              `yaml:"plan_queue"`
	IngestQueue *QueueConfig              `yaml:"ingest_queue"`
}

// LLMProvidersYAMLConfig represents the complete llm-providers.yaml file
// structure.
type LLMProvidersYAMLConfig struct {
	LLMProviders map[string]LLMProviderConfig `yaml:"llm_providers"`
}

// Initialize loads, validates, and returns ready-to-use configuration.
// This is the primary entry point for configuration loading.
func Initialize(ctx context.Context, configDir string) (*Config, error) {
	log := slog.With("config_dir", configDir)
	log.Info("Initializing configuration")

	cfg, err := load(ctx, configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	stats := cfg.Stats()
	log.Info("Configuration initialized successfully",
		"renderers", stats.Renderers,
		"routes", stats.Routes,
		"llm_providers", stats.LLMProviders)

	return cfg, nil
}

func load(_ context.Context, configDir string) (*Config, error) {
	loader := &configLoader{configDir: configDir}

	diagramautConfig, err := loader.loadDiagramautYAML()
	if err != nil {
		return nil, NewLoadError("diagramaut.yaml", err)
	}

	llmProviders, err := loader.loadLLMProvidersYAML()
	if err != nil {
		return nil, NewLoadError("llm-providers.yaml", err)
	}

	builtin := GetBuiltinConfig()

	renderers := mergeRenderers(builtin.Renderers, diagramautConfig.Renderers)
	routes := mergeRoutes(builtin.Routes, diagramautConfig.Routes)
	providers := mergeLLMProviders(map[string]LLMProviderConfig{}, llmProviders)

	planQueue := DefaultPlanQueueConfig()
	if diagramautConfig.PlanQueue != nil {
		if err := mergo.Merge(planQueue, diagramautConfig.PlanQueue, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("failed to merge plan_queue config: %w", err)
		}
	}

	ingestQueue := DefaultIngestQueueConfig()
	if diagramautConfig.IngestQueue != nil {
		if err := mergo.Merge(ingestQueue, diagramautConfig.IngestQueue, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("failed to merge ingest_queue config: %w", err)
		}
	}

	return &Config{
		configDir:           configDir,
		RendererRegistry:    NewRendererRegistry(renderers),
		RouteRegistry:       NewRouteRegistry(routes),
		LLMProviderRegistry: NewLLMProviderRegistry(providers),
		PlanQueue:           planQueue,
		IngestQueue:         ingestQueue,
	}, nil
}

func validateConfig(cfg *Config) error {
	for id, r := range cfg.RendererRegistry.GetAll() {
		if r.Command == "" {
			return NewValidationError("renderer", id, "command", ErrMissingRequiredField)
		}
	}
	for id, r := range cfg.RouteRegistry.GetAll() {
		if r.Renderer == "" {
			return NewValidationError("route", id, "renderer", ErrMissingRequiredField)
		}
		if !cfg.RendererRegistry.has(r.Renderer) {
			return NewValidationError("route", id, "renderer", fmt.Errorf("%w: %s", ErrRendererNotFound, r.Renderer))
		}
	}
	return nil
}

type configLoader struct {
	configDir string
}

func (l *configLoader) loadYAML(filename string, target any) error {
	path := filepath.Join(l.configDir, filename)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return err
	}

	data = ExpandEnv(data)

	if err := yaml.Unmarshal(data, target); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}

	return nil
}

func (l *configLoader) loadDiagramautYAML() (*DiagramautYAMLConfig, error) {
	cfg := &DiagramautYAMLConfig{
		Renderers: make(map[string]RendererConfig),
		Routes:    make(map[string]RouteConfig),
	}
	if err := l.loadYAML("diagramaut.yaml", cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (l *configLoader) loadLLMProvidersYAML() (map[string]LLMProviderConfig, error) {
	cfg := LLMProvidersYAMLConfig{LLMProviders: make(map[string]LLMProviderConfig)}
	if err := l.loadYAML("llm-providers.yaml", &cfg); err != nil {
		return nil, err
	}
	return cfg.LLMProviders, nil
}
