// Package client provides an HTTP client for the recipescape server API.
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/raphaelgruber/recipescape-go/internal/api"
	"github.com/raphaelgruber/recipescape-go/internal/metrics"
	"github.com/raphaelgruber/recipescape-go/internal/service"
)

// ErrNotFound is returned when the server answers 404.
var ErrNotFound = service.ErrNotFound

// Client talks to a running recipescape-server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a new client.
// If baseURL is empty, uses RECIPESCAPE_SERVER_URL or defaults to localhost:8484.
// Timeout can be configured via RECIPESCAPE_CLIENT_TIMEOUT (default 30s).
func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = os.Getenv("RECIPESCAPE_SERVER_URL")
	}
	if baseURL == "" {
		baseURL = "http://localhost:8484"
	}

	timeout := 30 * time.Second
	if t := os.Getenv("RECIPESCAPE_CLIENT_TIMEOUT"); t != "" {
		if d, err := time.ParseDuration(t); err == nil {
			timeout = d
		}
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// envelope mirrors api.APIResponse with a lazily decoded payload.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *api.APIError   `json:"error"`
}

// Do sends a request to path and decodes the response data into result.
func (c *Client) Do(ctx context.Context, method, path string, body, result any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("server error: %s - %s", resp.Status, string(raw))
	}

	if !env.Success || resp.StatusCode >= 400 {
		msg := resp.Status
		if env.Error != nil {
			msg = env.Error.Message
		}
		if resp.StatusCode == http.StatusNotFound {
			return fmt.Errorf("%s: %w", msg, ErrNotFound)
		}
		return fmt.Errorf("server error: %s", msg)
	}

	if result != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, result); err != nil {
			return fmt.Errorf("unmarshal data: %w", err)
		}
	}
	return nil
}

// Health checks that the server is reachable.
func (c *Client) Health(ctx context.Context) error {
	return c.Do(ctx, http.MethodGet, "/health", nil, nil)
}

// Stats returns the server's runtime statistics.
func (c *Client) Stats(ctx context.Context) (*metrics.Snapshot, error) {
	var snap metrics.Snapshot
	if err := c.Do(ctx, http.MethodGet, "/api/v1/stats", nil, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// StartImport asks the server to import a directory it can read.
func (c *Client) StartImport(ctx context.Context, req api.ImportRequest) (*service.JobSnapshot, error) {
	var job service.JobSnapshot
	if err := c.Do(ctx, http.MethodPost, "/api/v1/imports", req, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// ListJobs returns all import jobs known to the server.
func (c *Client) ListJobs(ctx context.Context) ([]service.JobSnapshot, error) {
	var jobs []service.JobSnapshot
	if err := c.Do(ctx, http.MethodGet, "/api/v1/imports", nil, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

// GetJob returns a single import job.
func (c *Client) GetJob(ctx context.Context, id string) (*service.JobSnapshot, error) {
	var job service.JobSnapshot
	if err := c.Do(ctx, http.MethodGet, "/api/v1/imports/"+url.PathEscape(id), nil, &job); err != nil {
		return nil, err
	}
	return &job, nil
}
