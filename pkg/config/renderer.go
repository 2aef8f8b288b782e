package config

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// RendererConfig describes how to invoke one containerized renderer
// backend (§4.6). Mirrors the teacher's MCPServerConfig transport shape —
// a renderer backend is, from the config layer's point of view, just
// another externally-invoked process.
type RendererConfig struct {
	Command string        `yaml:"command" validate:"required"`
	Args    []string      `yaml:"args,omitempty"`
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// RendererRegistry stores renderer backend configurations in memory with
// thread-safe access, grounded on pkg/config/mcp.go's MCPServerRegistry.
type RendererRegistry struct {
	renderers map[string]*RendererConfig
	mu        sync.RWMutex
}

// NewRendererRegistry creates a new renderer registry.
func NewRendererRegistry(renderers map[string]*RendererConfig) *RendererRegistry {
	copied := make(map[string]*RendererConfig, len(renderers))
	for k, v := range renderers {
		copied[k] = v
	}
	return &RendererRegistry{renderers: copied}
}

// Get retrieves a renderer configuration by ID.
func (r *RendererRegistry) Get(id string) (*RendererConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cfg, exists := r.renderers[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrRendererNotFound, id)
	}
	return cfg, nil
}

// GetAll returns all renderer configurations.
func (r *RendererRegistry) GetAll() map[string]*RendererConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string]*RendererConfig, len(r.renderers))
	for k, v := range r.renderers {
		result[k] = v
	}
	return result
}

// Len returns the number of renderers in the registry.
func (r *RendererRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.renderers)
}

// has reports whether a renderer ID is registered.
func (r *RendererRegistry) has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.renderers[id]
	return ok
}

// RouteConfig maps one or more diagram types to the renderer that
// handles them by default — grounded on pkg/config/chain.go's
// ChainConfig.AlertTypes deterministic lookup.
type RouteConfig struct {
	DiagramTypes []string `yaml:"diagram_types" validate:"required,min=1"`
	Renderer     string   `yaml:"renderer" validate:"required"`
}

// RouteRegistry stores renderer route configurations, grounded on
// pkg/config/chain.go's ChainRegistry.
type RouteRegistry struct {
	routes map[string]*RouteConfig
	mu     sync.RWMutex
}

// NewRouteRegistry creates a new route registry.
func NewRouteRegistry(routes map[string]*RouteConfig) *RouteRegistry {
	copied := make(map[string]*RouteConfig, len(routes))
	for k, v := range routes {
		copied[k] = v
	}
	return &RouteRegistry{routes: copied}
}

// Get retrieves a route configuration by ID.
func (r *RouteRegistry) Get(routeID string) (*RouteConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	route, exists := r.routes[routeID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrRouteNotFound, routeID)
	}
	return route, nil
}

// RendererForDiagramType returns the renderer ID configured to handle the
// given diagram type, mirroring ChainRegistry.GetByAlertType's
// first-match-wins scan, taking routes in route-ID order.
func (r *RouteRegistry) RendererForDiagramType(diagramType string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.routes))
	for id := range r.routes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		route := r.routes[id]
		for _, dt := range route.DiagramTypes {
			if dt == diagramType {
				return route.Renderer, nil
			}
		}
	}
	return "", fmt.Errorf("%w for diagram type: %s", ErrRouteNotFound, diagramType)
}

// GetAll returns all route configurations.
func (r *RouteRegistry) GetAll() map[string]*RouteConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string]*RouteConfig, len(r.routes))
	for k, v := range r.routes {
		result[k] = v
	}
	return result
}
