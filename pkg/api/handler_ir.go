package api

import (
	"encoding/json"
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/diagramaut/diagramaut/ent"
	"github.com/diagramaut/diagramaut/pkg/irstore"
	"github.com/diagramaut/diagramaut/pkg/patch"
	"github.com/diagramaut/diagramaut/pkg/render"
	"github.com/diagramaut/diagramaut/pkg/translate"
)

// feedbackHandler handles POST /api/feedback: translates a UI action
// into a single Patch Engine operation applied against the diagram's
// current latest IR, then commits the result through the IR Store.
// block_id addresses the node/edge the action targets, matching §8 seed
// scenario 2's {diagram_id, block_id:"api", action:"edit_text", ...}.
func (s *Server) feedbackHandler(c *echo.Context) error {
	var req FeedbackRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.DiagramID == "" || req.Action == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "diagram_id and action are required")
	}

	ctx := c.Request().Context()

	latestRow, err := s.irStore.Latest(ctx, req.DiagramID)
	if err != nil {
		return mapServiceError(err)
	}
	parent, err := irstore.ToIR(latestRow)
	if err != nil {
		return mapServiceError(err)
	}

	op := patch.Operation{
		Op: patch.Op(req.Action),
		Args: patch.Args{
			NodeID:     req.BlockID,
			EdgeID:     req.BlockID,
			Text:       stringField(req.Payload, "text"),
			Annotation: stringField(req.Payload, "annotation"),
		},
	}

	updated, _, err := patch.Apply(parent, []patch.Operation{op})
	if err != nil {
		return mapServiceError(err)
	}

	committed, err := s.irStore.Put(ctx, updated)
	if err != nil {
		return mapServiceError(err)
	}

	irMap, err := irRowToMap(committed)
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(http.StatusOK, &FeedbackResponse{
		Status:  "ok",
		ImageID: committed.DiagramID,
		IR:      irMap,
	})
}

// irHistoryHandler handles GET /api/ir/{image_id}/history.
func (s *Server) irHistoryHandler(c *echo.Context) error {
	diagramID := c.Param("image_id")
	rows, err := s.irStore.History(c.Request().Context(), diagramID)
	if err != nil {
		return mapServiceError(err)
	}

	entries := make([]IRHistoryEntry, len(rows))
	for i, row := range rows {
		entries[i] = IRHistoryEntry{
			Version:       row.Version,
			ParentVersion: row.ParentVersion,
			Status:        string(row.Status),
			CreatedAt:     row.CreatedAt.Format(timeLayout),
		}
	}
	return c.JSON(http.StatusOK, entries)
}

// renderDiagramHandler handles GET /api/diagram/render. Resolves the
// renderer for the diagram's type (honoring an explicit ?format=
// override), translates the latest IR into that renderer's dialect, and
// invokes the Renderer Adapter.
func (s *Server) renderDiagramHandler(c *echo.Context) error {
	if s.router == nil || s.renderer == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "rendering is not configured")
	}

	imageID := c.QueryParam("image_id")
	if imageID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "image_id is required")
	}

	ctx := c.Request().Context()
	row, err := s.irStore.Latest(ctx, imageID)
	if err != nil {
		return mapServiceError(err)
	}
	doc, err := irstore.ToIR(row)
	if err != nil {
		return mapServiceError(err)
	}

	override := render.RendererID(c.QueryParam("format"))
	rendererID, err := s.router.Resolve(doc.DiagramType, override)
	if err != nil {
		return mapServiceError(err)
	}

	dialectText, err := translate.Translate(doc, translate.Dialect(rendererID))
	if err != nil {
		return mapServiceError(err)
	}

	result, err := s.renderer.Render(ctx, rendererID, dialectText)
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(http.StatusOK, &RenderResponse{SVG: result.SVG})
}

func stringField(payload map[string]interface{}, key string) string {
	if payload == nil {
		return ""
	}
	v, _ := payload[key].(string)
	return v
}

// irRowToMap renders a persisted IR version as the plain JSON object the
// Unified Response Envelope and FeedbackResponse embed under "ir"/"state",
// rather than exposing ent's row type across the wire.
func irRowToMap(row *ent.DiagramIRVersion) (map[string]interface{}, error) {
	doc, err := irstore.ToIR(row)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var out map[string]interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
