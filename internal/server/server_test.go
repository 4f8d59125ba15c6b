package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clipz-ai/config"
	"clipz-ai/internal/service"
	"clipz-ai/internal/taskrunner"
)

func TestStartJobsMemoryBackend(t *testing.T) {
	jobs, stop, err := startJobs(&service.Service{}, config.Queue{Backend: config.QueueBackendMemory, Concurrency: 1, QueueSize: 4})
	require.NoError(t, err)
	defer stop()

	_, ok := jobs.(*taskrunner.Runner)
	assert.True(t, ok)
}

func TestStartJobsDefaultsToMemory(t *testing.T) {
	jobs, stop, err := startJobs(&service.Service{}, config.Queue{})
	require.NoError(t, err)
	defer stop()
	assert.NotNil(t, jobs)
}

func TestStartJobsUnknownBackend(t *testing.T) {
	_, _, err := startJobs(&service.Service{}, config.Queue{Backend: "kafka"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kafka")
}

func TestNewEngineServesHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := newEngine(&service.Service{})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
