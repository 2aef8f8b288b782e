package api

import (
	"errors"
	"log/slog"
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/diagramaut/diagramaut/pkg/apierr"
	"github.com/diagramaut/diagramaut/pkg/services"
)

// mapServiceError maps a services-layer or apierr error to an HTTP
// response. Grounded on pkg/api/errors.go's mapServiceError, extended
// with an apierr.Kind branch since most of this module's failures come
// back as *apierr.Error rather than a services sentinel.
func mapServiceError(err error) *echo.HTTPError {
	if apiErr, ok := apierr.As(err); ok {
		return mapAPIErrKind(apiErr)
	}

	var validErr *services.ValidationError
	if errors.As(err, &validErr) {
		return echo.NewHTTPError(http.StatusBadRequest, validErr.Error())
	}
	if errors.Is(err, services.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "resource not found")
	}
	if errors.Is(err, services.ErrAlreadyExists) {
		return echo.NewHTTPError(http.StatusConflict, "resource already exists")
	}

	slog.Error("unexpected service error", "error", err)
	return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
}

// mapAPIErrKind maps one apierr.Kind to its HTTP status, per §7's
// propagation policy: most kinds are client-caused (400/404/409), a few
// are genuinely server-side (502/504, and 500 for an unknown kind).
func mapAPIErrKind(e *apierr.Error) *echo.HTTPError {
	switch e.Kind {
	case apierr.NotFound:
		return echo.NewHTTPError(http.StatusNotFound, e.Message)
	case apierr.StaleParent, apierr.StaleCache:
		return echo.NewHTTPError(http.StatusConflict, e.Message)
	case apierr.ValidationFailed, apierr.PatchPathForbidden, apierr.UnsafeInput, apierr.UnsupportedFeature, apierr.PlanInvalid:
		return echo.NewHTTPError(http.StatusBadRequest, e.Message)
	case apierr.LLMTimeout:
		return echo.NewHTTPError(http.StatusGatewayTimeout, e.Message)
	case apierr.RenderFailed, apierr.IngestFailed, apierr.UpstreamFailed, apierr.SkippedDueToUpstream:
		return echo.NewHTTPError(http.StatusBadGateway, e.Message)
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, e.Message)
	}
}
