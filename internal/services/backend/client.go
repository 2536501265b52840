package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"reverie/internal/config"
	"reverie/internal/scenes"
	"reverie/internal/services"
)

const userAgent = "Reverie-Go/0.1.0"

// HTTPDoer describes the HTTP client used by the backend client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// APIError is returned for non-2xx responses.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	// Detail is the server's explanation, empty when the body carried none.
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("backend %s %s returned %d: %s", e.Method, e.Path, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("backend %s %s returned %d", e.Method, e.Path, e.StatusCode)
}

// ServerDetail satisfies scenes.DetailError.
func (e *APIError) ServerDetail() string { return e.Detail }

// Unwrap classifies API errors as transport failures.
func (e *APIError) Unwrap() error { return services.ErrTransport }

// Client is a configured backend API client.
type Client struct {
	baseURL string
	token   string
	client  HTTPDoer
	newID   func() string
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default *http.Client.
func WithHTTPClient(doer HTTPDoer) Option {
	return func(c *Client) {
		if doer != nil {
			c.client = doer
		}
	}
}

// WithRequestIDFunc overrides how X-Request-ID values are generated.
func WithRequestIDFunc(fn func() string) Option {
	return func(c *Client) {
		if fn != nil {
			c.newID = fn
		}
	}
}

// NewClient builds a Client from configuration.
func NewClient(cfg *config.Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "backend", "new client", "config is nil", nil)
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.Backend.BaseURL), "/")
	if baseURL == "" {
		return nil, services.Wrap(services.ErrConfiguration, "backend", "new client", "backend.base_url not configured", nil)
	}
	timeout := cfg.BackendTimeout()
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	c := &Client{
		baseURL: baseURL,
		token:   strings.TrimSpace(cfg.Backend.APIToken),
		client:  &http.Client{Timeout: timeout},
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the normalized API root.
func (c *Client) BaseURL() string { return c.baseURL }

type compileRequest struct {
	Scenes []scenes.CompileScene `json:"scenes"`
}

// CompileStory submits scenes in order and returns the compiled video URL.
func (c *Client) CompileStory(ctx context.Context, submitted []scenes.CompileScene) (scenes.CompileResult, error) {
	body := compileRequest{Scenes: make([]scenes.CompileScene, 0, len(submitted))}
	for _, scene := range submitted {
		if scene.MediaType == "" {
			scene.MediaType = scenes.MediaVideo
		}
		body.Scenes = append(body.Scenes, scene)
	}

	var result scenes.CompileResult
	if err := c.doJSONRequest(ctx, http.MethodPost, "/compile-story", body, &result); err != nil {
		return scenes.CompileResult{}, err
	}
	if strings.TrimSpace(result.VideoURL) == "" {
		return scenes.CompileResult{}, services.Wrap(services.ErrTransport, "backend", "compile-story", "response missing video_url", nil)
	}
	return result, nil
}

// HealthCheck reports whether the backend answers at all. Any status below 500
// counts as reachable since the health route may not exist on every build.
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "backend", "health", "build request", err)
	}
	req.Header.Set("User-Agent", userAgent)
	resp, err := c.client.Do(req)
	if err != nil {
		return services.Wrap(services.ErrTransport, "backend", "health", "request failed", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode >= http.StatusInternalServerError {
		return &APIError{Method: http.MethodGet, Path: "/health", StatusCode: resp.StatusCode}
	}
	return nil
}

func (c *Client) doJSONRequest(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "backend", strings.TrimPrefix(path, "/"), "build request", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	requestID, ok := services.RequestIDFromContext(ctx)
	if !ok {
		requestID = c.newID()
	}
	req.Header.Set("X-Request-ID", requestID)

	resp, err := c.client.Do(req)
	if err != nil {
		return services.Wrap(services.ErrTransport, "backend", strings.TrimPrefix(path, "/"), "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 16<<10))
		return &APIError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Detail:     parseDetail(bodyBytes),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return services.Wrap(services.ErrTransport, "backend", strings.TrimPrefix(path, "/"), "decode response", err)
	}
	return nil
}

// parseDetail extracts the "detail" field of an error body. Validation
// failures arrive as a list of objects with a "msg" field; those messages are
// joined. Other shapes are re-encoded as compact JSON.
func parseDetail(body []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return ""
	}

	var text string
	if err := json.Unmarshal(envelope.Detail, &text); err == nil {
		return strings.TrimSpace(text)
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(envelope.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, item := range items {
			if msg := strings.TrimSpace(item.Msg); msg != "" {
				msgs = append(msgs, msg)
			}
		}
		if len(msgs) > 0 {
			return strings.Join(msgs, "; ")
		}
	}

	if bytes.Equal(bytes.TrimSpace(envelope.Detail), []byte("null")) {
		return ""
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, envelope.Detail); err != nil {
		return ""
	}
	return compact.String()
}

// IsAPIError reports whether err carries an HTTP status from the backend.
func IsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
