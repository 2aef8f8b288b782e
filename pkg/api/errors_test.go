package api

import (
	"fmt"
	"net/http"
	"testing"

	echo "github.com/labstack/echo/v5"
	"github.com/stretchr/testify/assert"

	"github.com/diagramaut/diagramaut/pkg/apierr"
	"github.com/diagramaut/diagramaut/pkg/services"
)

func TestMapServiceError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		expectCode int
		expectMsg  string
	}{
		{
			name:       "validation error maps to 400",
			err:        services.NewValidationError("name", "missing field"),
			expectCode: http.StatusBadRequest,
			expectMsg:  "missing field",
		},
		{
			name:       "not found maps to 404",
			err:        fmt.Errorf("wrapped: %w", services.ErrNotFound),
			expectCode: http.StatusNotFound,
			expectMsg:  "resource not found",
		},
		{
			name:       "already exists maps to 409",
			err:        fmt.Errorf("wrapped: %w", services.ErrAlreadyExists),
			expectCode: http.StatusConflict,
			expectMsg:  "resource already exists",
		},
		{
			name:       "unknown error maps to 500",
			err:        fmt.Errorf("something unexpected happened"),
			expectCode: http.StatusInternalServerError,
			expectMsg:  "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			he := mapServiceError(tt.err)
			assert.IsType(t, &echo.HTTPError{}, he)
			assert.Equal(t, tt.expectCode, he.Code)
			assert.Contains(t, he.Error(), tt.expectMsg)
		})
	}
}

func TestMapAPIErrKind(t *testing.T) {
	tests := []struct {
		kind       apierr.Kind
		expectCode int
	}{
		{apierr.NotFound, http.StatusNotFound},
		{apierr.StaleParent, http.StatusConflict},
		{apierr.StaleCache, http.StatusConflict},
		{apierr.ValidationFailed, http.StatusBadRequest},
		{apierr.PatchPathForbidden, http.StatusBadRequest},
		{apierr.UnsafeInput, http.StatusBadRequest},
		{apierr.UnsupportedFeature, http.StatusBadRequest},
		{apierr.PlanInvalid, http.StatusBadRequest},
		{apierr.LLMTimeout, http.StatusGatewayTimeout},
		{apierr.RenderFailed, http.StatusBadGateway},
		{apierr.IngestFailed, http.StatusBadGateway},
		{apierr.UpstreamFailed, http.StatusBadGateway},
		{apierr.SkippedDueToUpstream, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			err := apierr.New(tt.kind, "boom")
			he := mapServiceError(err)
			assert.Equal(t, tt.expectCode, he.Code)
			assert.Contains(t, he.Error(), "boom")
		})
	}
}

func TestMapServiceError_UnknownAPIErrKindDefaultsTo500(t *testing.T) {
	err := apierr.New(apierr.Kind("SOMETHING_NEW"), "boom")
	he := mapServiceError(err)
	assert.Equal(t, http.StatusInternalServerError, he.Code)
}
