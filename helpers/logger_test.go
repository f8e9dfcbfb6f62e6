package helpers

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "error.log")

	logger := NewLogger(tmpFile)
	logger.LogError("https://shop.example.com/", errors.New("fetch failed"))
	logger.LogError("rates", errors.New("no snapshot"))

	data, err := os.ReadFile(tmpFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[https://shop.example.com/] fetch failed")
	assert.Contains(t, string(data), "[rates] no snapshot")

	// Info messages go to the structured logger, not the file
	logger.LogInfo("Test info message: %s", "hello")
	after, err := os.ReadFile(tmpFile)
	require.NoError(t, err)
	assert.Equal(t, data, after)
}

func TestLoggerWithoutFile(t *testing.T) {
	logger := NewLogger("")
	assert.NotPanics(t, func() {
		logger.LogError("worker", errors.New("boom"))
	})
}
