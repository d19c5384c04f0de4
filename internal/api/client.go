// Package api is the HTTP client for the test-case backend.
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

	"github.com/nikbrunner/tcm/internal/model"
)

// Client talks to the test-case REST backend.
// Every method issues exactly one request and never retries.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option is a function that configures the Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a client for the backend at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, ErrNoBaseURL
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("parse server URL: %w", err)
	}

	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the backend URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// List fetches every test case together with the file structure.
func (c *Client) List(ctx context.Context) (*model.Snapshot, error) {
	var resp listResponse
	if err := c.do(ctx, http.MethodGet, "/api/test-cases", nil, &resp); err != nil {
		return nil, err
	}

	snap := &model.Snapshot{
		Entries:   resp.TestCases,
		Structure: resp.FileStructure,
	}
	if snap.Entries == nil {
		snap.Entries = []model.Entry{}
	}
	if snap.Structure == nil {
		snap.Structure = model.FileStructure{}
	}
	return snap, nil
}

// Search returns the entries matching query.
func (c *Client) Search(ctx context.Context, query string) ([]model.Entry, error) {
	var resp searchResponse
	path := "/api/test-cases/search?q=" + url.QueryEscape(query)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Results == nil {
		return []model.Entry{}, nil
	}
	return resp.Results, nil
}

// Get fetches one test case with its file path.
func (c *Client) Get(ctx context.Context, id string) (*model.Entry, error) {
	var resp entryResponse
	if err := c.do(ctx, http.MethodGet, testCasePath(id, ""), nil, &resp); err != nil {
		return nil, err
	}
	return &resp.TestCase, nil
}

// Create submits a new test case. The backend assigns its ID and file.
func (c *Client) Create(ctx context.Context, tc model.TestCase) (*model.TestCase, error) {
	return c.CreateIn(ctx, tc, "")
}

// CreateIn submits a new test case into filePath. An empty path lets the
// backend pick its default file.
func (c *Client) CreateIn(ctx context.Context, tc model.TestCase, filePath string) (*model.TestCase, error) {
	tc.ID = ""
	var resp testCaseResponse
	body := createRequest{TestCase: tc, FilePath: filePath}
	if err := c.do(ctx, http.MethodPost, "/api/test-case", body, &resp); err != nil {
		return nil, err
	}
	return &resp.TestCase, nil
}

// Update replaces the test case with the given ID.
func (c *Client) Update(ctx context.Context, id string, tc model.TestCase) (*model.TestCase, error) {
	var resp testCaseResponse
	if err := c.do(ctx, http.MethodPut, testCasePath(id, ""), tc, &resp); err != nil {
		return nil, err
	}
	return &resp.TestCase, nil
}

// Delete removes the test case with the given ID.
func (c *Client) Delete(ctx context.Context, id string) error {
	var resp envelope
	return c.do(ctx, http.MethodDelete, testCasePath(id, ""), nil, &resp)
}

// Duplicate copies the test case and returns the copy.
func (c *Client) Duplicate(ctx context.Context, id string) (*model.TestCase, error) {
	var resp testCaseResponse
	if err := c.do(ctx, http.MethodPost, testCasePath(id, "duplicate"), nil, &resp); err != nil {
		return nil, err
	}
	return &resp.TestCase, nil
}

// Move relocates the test case to filePath.
func (c *Client) Move(ctx context.Context, id, filePath string) error {
	var resp envelope
	return c.do(ctx, http.MethodPut, testCasePath(id, "move"), moveRequest{FilePath: filePath}, &resp)
}

// ReorderSteps replaces the step list wholesale and returns the stored test case.
func (c *Client) ReorderSteps(ctx context.Context, id string, steps []model.Step) (*model.TestCase, error) {
	if steps == nil {
		steps = []model.Step{}
	}
	var resp testCaseResponse
	if err := c.do(ctx, http.MethodPut, testCasePath(id, "reorder-steps"), reorderRequest{Steps: steps}, &resp); err != nil {
		return nil, err
	}
	return &resp.TestCase, nil
}

// CreateDirectory creates a folder under the backend's root.
func (c *Client) CreateDirectory(ctx context.Context, name string) error {
	var resp envelope
	return c.do(ctx, http.MethodPost, "/api/directories", directoryRequest{Name: name}, &resp)
}

func testCasePath(id, action string) string {
	p := "/api/test-case/" + url.PathEscape(id)
	if action != "" {
		p += "/" + action
	}
	return p
}

// do sends one request and decodes the envelope into out.
// out must embed envelope.
func (c *Client) do(ctx context.Context, method, path string, body any, out envelopeHolder) error {
	op := method + " " + path

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	requestID := model.NewRequestID()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("request failed", "op", op, "request_id", requestID, "err", err)
		return &NetworkError{Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Warn("read response failed", "op", op, "request_id", requestID, "err", err)
		return &NetworkError{Op: op, Err: err}
	}

	c.logger.Info("request",
		"op", op,
		"status", resp.StatusCode,
		"duration", time.Since(start),
		"request_id", requestID,
	)

	if err := json.Unmarshal(data, out); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return &ServerError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return &NetworkError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}

	env := out.env()
	if !env.Success || resp.StatusCode >= http.StatusBadRequest {
		c.logger.Warn("server error", "op", op, "status", resp.StatusCode, "error", env.Error, "request_id", requestID)
		return &ServerError{StatusCode: resp.StatusCode, Message: env.Error}
	}
	return nil
}

// envelopeHolder exposes the embedded envelope of a response type.
type envelopeHolder interface {
	env() *envelope
}

func (e *envelope) env() *envelope { return e }
