package api

import (
	"net/http"

	echo "github.com/labstack/echo/v5"
)

// stylingAuditListHandler handles GET /api/diagrams/{id}/styling/audit:
// every Styling Agent run recorded against a diagram, oldest first.
func (s *Server) stylingAuditListHandler(c *echo.Context) error {
	diagramID := c.Param("id")
	rows, err := s.stylingAuditSvc.ListForDiagram(c.Request().Context(), diagramID)
	if err != nil {
		return mapServiceError(err)
	}

	resp := make([]StylingAuditResponse, len(rows))
	for i, row := range rows {
		resp[i] = stylingAuditToResponse(row)
	}
	return c.JSON(http.StatusOK, resp)
}

// stylingAuditGetHandler handles GET /api/diagrams/{id}/styling/audit/{audit_id}.
func (s *Server) stylingAuditGetHandler(c *echo.Context) error {
	auditID := c.Param("audit_id")
	row, err := s.stylingAuditSvc.Get(c.Request().Context(), auditID)
	if err != nil {
		return mapServiceError(err)
	}
	resp := stylingAuditToResponse(row)
	return c.JSON(http.StatusOK, &resp)
}
