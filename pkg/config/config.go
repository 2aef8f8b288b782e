package config

// Config is the umbrella configuration object returned by Initialize
// and threaded through the runtime. Grounded on pkg/config/config.go.
type Config struct {
	configDir string

	RendererRegistry    *RendererRegistry
	RouteRegistry       *RouteRegistry
	LLMProviderRegistry *LLMProviderRegistry

	PlanQueue   *QueueConfig
	IngestQueue *QueueConfig
}

// ConfigDir returns the configuration directory path.
func (c *Config) ConfigDir() string {
	return c.configDir
}

// ConfigStats contains statistics about loaded configuration.
type ConfigStats struct {
	Renderers    int
	Routes       int
	LLMProviders int
}

// Stats returns configuration statistics for logging.
func (c *Config) Stats() ConfigStats {
	return ConfigStats{
		Renderers:    c.RendererRegistry.Len(),
		Routes:       len(c.RouteRegistry.GetAll()),
		LLMProviders: c.LLMProviderRegistry.Len(),
	}
}

// GetRenderer retrieves a renderer configuration by ID.
func (c *Config) GetRenderer(id string) (*RendererConfig, error) {
	return c.RendererRegistry.Get(id)
}

// GetRendererForDiagramType resolves the renderer ID configured for a
// diagram type via the route registry.
func (c *Config) GetRendererForDiagramType(diagramType string) (string, error) {
	return c.RouteRegistry.RendererForDiagramType(diagramType)
}

// GetLLMProvider retrieves an LLM provider configuration by name.
func (c *Config) GetLLMProvider(name string) (*LLMProviderConfig, error) {
	return c.LLMProviderRegistry.Get(name)
}
