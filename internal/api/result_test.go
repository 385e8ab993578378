package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResultStates(t *testing.T) {
	loading := Loading[int]()
	assert.True(t, loading.IsLoading())
	assert.False(t, loading.IsSuccess())
	assert.False(t, loading.IsError())

	ok := Ok(42)
	assert.True(t, ok.IsSuccess())
	assert.Equal(t, 42, ok.Value())
	assert.Empty(t, ok.Message())

	okMsg := OkMsg("payload", "Created successfully")
	assert.True(t, okMsg.IsSuccess())
	assert.Equal(t, "Created successfully", okMsg.Message())

	err := Err[string]("Invalid credentials")
	assert.True(t, err.IsError())
	assert.Equal(t, "Invalid credentials", err.Message())
}

func TestErrEmptyMessageFallsBack(t *testing.T) {
	err := Err[int]("")
	assert.True(t, err.IsError())
	assert.Equal(t, "Unknown error", err.Message())
}

func TestErrf(t *testing.T) {
	err := Errf[int]("status %d", 503)
	assert.True(t, err.IsError())
	assert.Equal(t, "status 503", err.Message())
}
