package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RenderAPIEndpoint is the default Render REST API base URL.
const RenderAPIEndpoint = "https://api.render.com/v1"

// DefaultTimeout bounds every request made by a Client built with NewClient.
const DefaultTimeout = 30 * time.Second

// MaxExcerpt is the number of characters of a response body kept for diagnostics.
const MaxExcerpt = 100

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 64 << 10

// authTransport is an http.RoundTripper that injects a bearer Authorization header.
type authTransport struct {
	apiKey  string
	wrapped http.RoundTripper
}

// RoundTrip implements http.RoundTripper. It clones the request before modifying
// headers, as required by the RoundTripper contract.
func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("Authorization", "Bearer "+t.apiKey)
	return t.wrapped.RoundTrip(req)
}

// Response is the outcome of a single call that reached the server.
type Response struct {
	StatusCode int
	// Body holds the trimmed response body, truncated to MaxExcerpt characters.
	Body string
	// RequestID is the X-Request-Id sent with the request.
	RequestID string
}

// Client talks to the environment variable endpoints of the Render API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides DefaultTimeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithLogger sets the logger used for per-request debug output.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// NewClient creates a new authenticated client for the Render API.
// If endpoint is empty, RenderAPIEndpoint is used.
func NewClient(apiKey string, endpoint string, opts ...Option) *Client {
	httpClient := &http.Client{
		Timeout: DefaultTimeout,
		Transport: &authTransport{
			apiKey:  apiKey,
			wrapped: http.DefaultTransport,
		},
	}
	return newClient(httpClient, endpoint, opts)
}

// NewClientWithHTTPClient creates a new client using the provided http.Client.
// No Authorization header is added; the caller's transport is responsible for
// it. If endpoint is empty, RenderAPIEndpoint is used.
func NewClientWithHTTPClient(httpClient *http.Client, endpoint string, opts ...Option) *Client {
	return newClient(httpClient, endpoint, opts)
}

func newClient(httpClient *http.Client, endpoint string, opts []Option) *Client {
	if endpoint == "" {
		endpoint = RenderAPIEndpoint
	}
	c := &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(endpoint, "/"),
		userAgent:  "renderenv",
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type createEnvVarRequest struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type updateEnvVarRequest struct {
	Value string `json:"value"`
}

// CreateEnvVar issues POST /services/{serviceID}/env-vars. Any status code is
// returned as a Response; err is non-nil only when no response was obtained.
func (c *Client) CreateEnvVar(ctx context.Context, serviceID, key, value string) (*Response, error) {
	u := c.envVarsURL(serviceID)
	resp, err := c.do(ctx, http.MethodPost, u, createEnvVarRequest{Key: key, Value: value})
	if err != nil {
		return nil, fmt.Errorf("creating env var %s: %w", key, err)
	}
	return resp, nil
}

// UpdateEnvVar issues PUT /services/{serviceID}/env-vars/{key}.
func (c *Client) UpdateEnvVar(ctx context.Context, serviceID, key, value string) (*Response, error) {
	u := c.envVarsURL(serviceID) + "/" + url.PathEscape(key)
	resp, err := c.do(ctx, http.MethodPut, u, updateEnvVarRequest{Value: value})
	if err != nil {
		return nil, fmt.Errorf("updating env var %s: %w", key, err)
	}
	return resp, nil
}

func (c *Client) envVarsURL(serviceID string) string {
	return c.baseURL + "/services/" + url.PathEscape(serviceID) + "/env-vars"
}

func (c *Client) do(ctx context.Context, method, u string, payload any) (*Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-Id", requestID)

	start := time.Now()
	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.DebugContext(ctx, "request failed",
			"method", method, "url", u, "request_id", requestID, "error", err)
		return nil, err
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(httpResp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	c.logger.DebugContext(ctx, "request completed",
		"method", method, "url", u, "request_id", requestID,
		"status", httpResp.StatusCode, "duration", time.Since(start))

	return &Response{
		StatusCode: httpResp.StatusCode,
		Body:       Excerpt(string(raw)),
		RequestID:  requestID,
	}, nil
}

// Excerpt trims s and truncates it to MaxExcerpt characters.
func Excerpt(s string) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= MaxExcerpt {
		return s
	}
	return string(runes[:MaxExcerpt])
}
