package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/raphaelgruber/recipescape-go/internal/api"
	"github.com/raphaelgruber/recipescape-go/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnvelope(t *testing.T, w http.ResponseWriter, status int, resp api.APIResponse) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(resp))
}

func TestClient_StartImport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/imports", r.URL.Path)

		var req api.ImportRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "/data/cookies", req.Path)
		assert.True(t, req.Recursive)

		writeEnvelope(t, w, http.StatusAccepted, api.APIResponse{
			Success: true,
			Data: service.JobSnapshot{
				ID:        "abc12345",
				Type:      "import",
				Status:    service.JobStatusPending,
				Total:     3,
				StartedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
			},
		})
	}))
	defer srv.Close()

	job, err := New(srv.URL).StartImport(context.Background(), api.ImportRequest{Path: "/data/cookies", Recursive: true})
	require.NoError(t, err)
	assert.Equal(t, "abc12345", job.ID)
	assert.Equal(t, 3, job.Total)
	assert.Equal(t, service.JobStatusPending, job.Status)
}

func TestClient_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(t, w, http.StatusNotFound, api.APIResponse{
			Error: &api.APIError{Code: api.CodeNotFound, Message: "job not found"},
		})
	}))
	defer srv.Close()

	_, err := New(srv.URL).GetJob(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "job not found")
}

func TestClient_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(t, w, http.StatusInternalServerError, api.APIResponse{
			Error: &api.APIError{Code: api.CodeInternal, Message: "internal server error"},
		})
	}))
	defer srv.Close()

	_, err := New(srv.URL).ListJobs(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "internal server error")
}

func TestClient_NonJSONResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	err := New(srv.URL + "/").Health(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestNew_Defaults(t *testing.T) {
	t.Setenv("RECIPESCAPE_SERVER_URL", "")
	t.Setenv("RECIPESCAPE_CLIENT_TIMEOUT", "5s")

	c := New("")
	assert.Equal(t, "http://localhost:8484", c.baseURL)
	assert.Equal(t, 5*time.Second, c.httpClient.Timeout)
}
