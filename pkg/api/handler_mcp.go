package api

import (
	"net/http"

	echo "github.com/labstack/echo/v5"
)

// mcpDiscoverHandler handles POST /mcp/discover: the full tool catalog,
// mirroring what the Orchestrator hands the Planner as available_tools
// (§4.9).
func (s *Server) mcpDiscoverHandler(c *echo.Context) error {
	if s.registry == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "mcp registry is not available")
	}
	return c.JSON(http.StatusOK, &ToolCatalogResponse{Tools: s.registry.ToolIDs()})
}

// mcpExecuteHandler handles POST /mcp/execute: an ad-hoc tool invocation
// outside any plan, for debugging/manual testing. planID is passed as
// "" since there is no plan step to attribute this call to.
func (s *Server) mcpExecuteHandler(c *echo.Context) error {
	if s.registry == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "mcp registry is not available")
	}

	var req ExecuteToolRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.ToolID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "tool_id is required")
	}

	envelope, err := s.registry.Execute(c.Request().Context(), req.ToolID, req.Args, "")
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, envelope)
}
