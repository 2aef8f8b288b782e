package api

import (
	"net/http"

	echo "github.com/labstack/echo/v5"
)

// chatHandler handles POST /api/chat, the sole orchestration endpoint
// (§6). Creates a session if none is supplied, then runs the turn
// synchronously through the Orchestrator and returns a 200 with a
// Unified Response Envelope body for every expected failure mode (§7); a
// malformed request, a missing orchestrator, or an infrastructure error
// from the Orchestrator still ends in an HTTP error.
func (s *Server) chatHandler(c *echo.Context) error {
	if s.orch == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "chat orchestration is not available")
	}

	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Message == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "message is required")
	}

	ctx := c.Request().Context()

	sessionID := req.SessionID
	if sessionID == "" {
		created, err := s.sessionSvc.CreateSession(ctx)
		if err != nil {
			return mapServiceError(err)
		}
		sessionID = created.ID
	}

	envelope, err := s.orch.HandleChatMessage(ctx, sessionID, req.Message)
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(http.StatusOK, envelope)
}
