package api

import (
	"net/http"

	echo "github.com/labstack/echo/v5"
)

// createSessionHandler handles POST /api/sessions.
func (s *Server) createSessionHandler(c *echo.Context) error {
	created, err := s.sessionSvc.CreateSession(c.Request().Context())
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusCreated, &CreateSessionResponse{SessionID: created.ID})
}

// getSessionHandler handles GET /api/sessions/:id, returning the
// session with its message log (§6: "session with messages, images,
// plans, diagrams" — plans/diagrams are reached via their own
// GET /api/plans/{id} and GET /api/ir/{image_id}/history endpoints
// rather than embedded here, keeping this payload bounded).
func (s *Server) getSessionHandler(c *echo.Context) error {
	id := c.Param("id")
	row, err := s.sessionSvc.GetSession(c.Request().Context(), id, true)
	if err != nil {
		return mapServiceError(err)
	}

	messages := make([]MessageResponse, len(row.Edges.Messages))
	for i, m := range row.Edges.Messages {
		messages[i] = messageToResponse(m)
	}

	return c.JSON(http.StatusOK, &SessionResponse{
		SessionID:       row.ID,
		ActiveDiagramID: row.ActiveDiagramID,
		CreatedAt:       row.CreatedAt.Format(timeLayout),
		UpdatedAt:       row.UpdatedAt.Format(timeLayout),
		Messages:        messages,
	})
}
