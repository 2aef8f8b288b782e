package config

// BuiltinConfig holds the configuration shipped with the binary — the
// renderer backends and routes every deployment needs regardless of
// what operators add in diagramaut.yaml. Grounded on
// pkg/config/builtin.go's GetBuiltinConfig, which plays the same role
// for agents/chains/mcp_servers.
type BuiltinConfig struct {
	Renderers map[string]RendererConfig
	Routes    map[string]RouteConfig
}

// GetBuiltinConfig returns the built-in renderer backends this runtime
// always knows about, before any user YAML is merged in.
func GetBuiltinConfig() *BuiltinConfig {
	return &BuiltinConfig{
		Renderers: map[string]RendererConfig{
			"mermaid": {
				Command: "mmdc",
				Args:    []string{"--input", "-", "--output", "-", "--outputFormat", "svg"},
			},
			"structurizr": {
				Command: "structurizr-cli",
				Args:    []string{"export", "-workspace", "-", "-format", "svg"},
			},
			"plantuml": {
				Command: "plantuml",
				Args:    []string{"-tsvg", "-pipe"},
			},
		},
		Routes: map[string]RouteConfig{
			"c4-structural": {
				DiagramTypes: []string{"context", "container", "component"},
				Renderer:     "structurizr",
			},
			"sequence": {
				DiagramTypes: []string{"sequence"},
				Renderer:     "mermaid",
			},
			"flow": {
				DiagramTypes: []string{"flow"},
				Renderer:     "mermaid",
			},
			"story": {
				DiagramTypes: []string{"story"},
				Renderer:     "plantuml",
			},
		},
	}
}
