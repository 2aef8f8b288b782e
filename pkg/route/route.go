// Package route implements the Renderer Router (§4.12): resolving which
// renderer backend handles a given diagram type.
//
// Grounded on pkg/config/chain.go's ChainRegistry.GetByAlertType: a
// deterministic lookup-with-fallback table, here re-typed from raw YAML
// strings (pkg/config.RouteRegistry) onto the domain's own ir.DiagramType
// and render.RendererID types so callers never pass a bare string past
// this package's boundary.
package route

import (
	"fmt"

	"github.com/diagramaut/diagramaut/pkg/apierr"
	"github.com/diagramaut/diagramaut/pkg/config"
	"github.com/diagramaut/diagramaut/pkg/ir"
	"github.com/diagramaut/diagramaut/pkg/render"
)

// Router resolves a diagram type to the renderer that should render it.
type Router struct {
	routes    *config.RouteRegistry
	renderers *config.RendererRegistry
}

// NewRouter builds a Router bound to the route and renderer registries
// loaded from configuration.
func NewRouter(routes *config.RouteRegistry, renderers *config.RendererRegistry) *Router {
	return &Router{routes: routes, renderers: renderers}
}

// Resolve returns the renderer ID configured to handle diagramType,
// honoring an explicit override when the caller supplies one (§4.12:
// "table plus override handling"). A diagram type with no route falls
// back to PlantUML when a plantuml renderer is configured.
func (r *Router) Resolve(diagramType ir.DiagramType, override render.RendererID) (render.RendererID, error) {
	if override != "" {
		if _, err := r.renderers.Get(string(override)); err != nil {
			return "", apierr.New(apierr.UnsupportedFeature, fmt.Sprintf("override renderer %q is not configured", override))
		}
		return override, nil
	}

	rendererID, err := r.routes.RendererForDiagramType(string(diagramType))
	if err != nil {
		if _, ferr := r.renderers.Get(string(render.RendererPlantUML)); ferr == nil {
			return render.RendererPlantUML, nil
		}
		return "", apierr.New(apierr.UnsupportedFeature, fmt.Sprintf("no renderer route for diagram type %q", diagramType))
	}
	return render.RendererID(rendererID), nil
}
