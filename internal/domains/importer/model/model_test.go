package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	for _, valid := range []string{"products", "stock", "users"} {
		kind, err := ParseKind(valid)
		require.NoError(t, err)
		assert.Equal(t, ImportKind(valid), kind)
	}

	_, err := ParseKind("invoices")
	assert.Error(t, err)

	_, err = ParseKind("")
	assert.Error(t, err)
}

func TestStatusTerminal(t *testing.T) {
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusProcessing.Terminal())
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusFailed.Terminal())
	assert.True(t, StatusCancelled.Terminal())
}

func TestCanCancel(t *testing.T) {
	job := &ImportJob{Status: StatusPending}
	assert.True(t, job.CanCancel())

	job.Status = StatusProcessing
	assert.True(t, job.CanCancel())

	for _, terminal := range []JobStatus{StatusCompleted, StatusFailed, StatusCancelled} {
		job.Status = terminal
		assert.False(t, job.CanCancel(), "status %s", terminal)
	}
}

func TestCanRetry(t *testing.T) {
	job := &ImportJob{Status: StatusFailed}
	assert.True(t, job.CanRetry())

	job.Status = StatusCancelled
	assert.True(t, job.CanRetry())

	for _, status := range []JobStatus{StatusPending, StatusProcessing, StatusCompleted} {
		job.Status = status
		assert.False(t, job.CanRetry(), "status %s", status)
	}
}

func TestRowError(t *testing.T) {
	err := NewRowError("SKU ya existe")
	assert.Equal(t, "SKU ya existe", err.Error())
	assert.True(t, IsRowError(err))

	assert.False(t, IsRowError(assert.AnError))
	assert.False(t, IsRowError(nil))
}
