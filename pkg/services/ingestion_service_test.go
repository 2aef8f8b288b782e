package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateJob_RequiresRepoURL(t *testing.T) {
	svc := NewIngestionService(nil)
	_, err := svc.CreateJob(context.Background(), "")
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}
