package api

import (
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/diagramaut/diagramaut/ent/ingestionjob"
)

// createIngestJobHandler handles POST /api/ingest: enqueues a repo for
// background ingestion (§4.11). The job starts in "queued" status;
// pkg/ingest.WorkerPool claims it asynchronously.
func (s *Server) createIngestJobHandler(c *echo.Context) error {
	var req IngestRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	job, err := s.ingestionSvc.CreateJob(c.Request().Context(), req.RepoURL)
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(http.StatusAccepted, &IngestResponse{
		JobID:  job.ID,
		Status: string(job.Status),
	})
}

// getIngestJobHandler handles GET /api/ingest/{job_id}: polls for
// completion (§6, §8 seed scenario 5's "polling yields processing, then
// complete").
func (s *Server) getIngestJobHandler(c *echo.Context) error {
	jobID := c.Param("job_id")
	job, err := s.ingestionSvc.GetJob(c.Request().Context(), jobID)
	if err != nil {
		return mapServiceError(err)
	}

	resp := &IngestResponse{JobID: job.ID, Status: string(job.Status)}
	if job.Status == ingestionjob.StatusComplete {
		resp.Result = job.Result
	}
	if job.ErrorMessage != nil {
		resp.Error = *job.ErrorMessage
	}

	return c.JSON(http.StatusOK, resp)
}

// sessionIngestHandler handles POST /api/sessions/{id}/ingest: the
// multipart variant of ingestion, scoped to a chat session rather than
// the standalone /api/ingest endpoint. Only the github_url form is
// implemented — text/files[] ingestion would need its own staging path
// into pkg/ingest.Clone, which no example in this module's pack offers a
// grounding source for, so a request without github_url is rejected with
// 400 Bad Request rather than guessed at.
func (s *Server) sessionIngestHandler(c *echo.Context) error {
	sessionID := c.Param("id")
	if _, err := s.sessionSvc.GetSession(c.Request().Context(), sessionID, false); err != nil {
		return mapServiceError(err)
	}

	githubURL := c.FormValue("github_url")
	if githubURL == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "github_url is required (text/files[] ingestion is not supported)")
	}

	job, err := s.ingestionSvc.CreateJob(c.Request().Context(), githubURL)
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(http.StatusAccepted, &IngestResponse{JobID: job.ID, Status: string(job.Status)})
}
