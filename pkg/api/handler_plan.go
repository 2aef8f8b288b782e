package api

import (
	"net/http"

	echo "github.com/labstack/echo/v5"
)

// getPlanHandler handles GET /api/plans/{id}: the plan record plus every
// step execution recorded against it so far, for the debugging/audit
// surface rather than the chat turn itself (which only ever sees the
// Unified Response Envelope).
func (s *Server) getPlanHandler(c *echo.Context) error {
	planID := c.Param("id")
	ctx := c.Request().Context()

	record, err := s.planSvc.GetPlanRecord(ctx, planID)
	if err != nil {
		return mapServiceError(err)
	}
	executions, err := s.planSvc.GetPlanExecutions(ctx, planID)
	if err != nil {
		return mapServiceError(err)
	}

	execResponses := make([]PlanExecutionResponse, len(executions))
	for i, e := range executions {
		errMsg := ""
		if e.ErrorMessage != nil {
			errMsg = *e.ErrorMessage
		}
		execResponses[i] = PlanExecutionResponse{
			StepIndex:    e.StepIndex,
			ToolID:       e.ToolID,
			Status:       string(e.Status),
			DurationMs:   e.DurationMs,
			ErrorMessage: errMsg,
		}
	}

	return c.JSON(http.StatusOK, &PlanResponse{
		PlanID:     record.ID,
		SessionID:  record.SessionID,
		Intent:     record.Intent,
		Status:     string(record.Status),
		Steps:      record.PlanJSON,
		Executions: execResponses,
	})
}
