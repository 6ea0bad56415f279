// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/jeranaias/lorebook-tui/internal/model"
)

// Configuration constants for the backend client.
const (
	// DefaultBaseURL is the development backend address.
	DefaultBaseURL = "http://localhost:3001"

	// DefaultTimeout is the default timeout for API requests.
	DefaultTimeout = 30 * time.Second

	// maxRetries is the number of attempts for idempotent requests.
	maxRetries = 3

	// retryBaseDelay is the base delay for exponential backoff.
	retryBaseDelay = 500 * time.Millisecond

	// MaxResponseSize is the maximum allowed response body size.
	// SECURITY: Response size limit prevents memory exhaustion.
	MaxResponseSize = 10 * 1024 * 1024

	// sessionCookie is the cookie name carrying the session credential.
	sessionCookie = "connect.sid"

	// queryRatePerSec throttles notebook queries so a held-down Enter key
	// cannot flood the backend's answer pipeline.
	queryRatePerSec = 1
	queryBurst      = 3

	// defaultQueryTimeout caps a notebook query when the caller's context
	// has no deadline of its own. Answer generation routinely outlives
	// the client timeout that bounds every other request.
	defaultQueryTimeout = 2 * time.Minute
)

// sharedHTTPClient is used for all backend requests.
// PERFORMANCE: Connection pooling reduces TCP handshake overhead.
var sharedHTTPClient = &http.Client{
	Transport: &http.Transport{
		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	},
	Timeout: DefaultTimeout,
}

// =============================================================================
// CLIENT
// =============================================================================

// Client is the typed client for the Lorebook backend.
//
// The session credential is an opaque token held by the client object and
// sent as a cookie on every request; it is never exposed through the API
// surface or duplicated elsewhere.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client

	// queryClient has no client-level timeout; QueryNotebook is bounded
	// by its context so long answers are not cut off at the general
	// request timeout.
	queryClient *http.Client

	userAgent    string
	queryLimiter *rate.Limiter
}

// NewClient creates a client for the given base URL. An empty baseURL
// falls back to the development default.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		httpClient:   sharedHTTPClient,
		queryClient:  &http.Client{Transport: sharedHTTPClient.Transport},
		userAgent:    "lorebook/0.1.0",
		queryLimiter: rate.NewLimiter(rate.Limit(queryRatePerSec), queryBurst),
	}
}

// WithToken sets the session token used for credentialed requests.
func (c *Client) WithToken(token string) *Client {
	c.token = strings.TrimSpace(token)
	return c
}

// WithTimeout sets the request timeout for everything except notebook
// queries, which answer on their own schedule and are bounded by context
// instead. The client switches to a private http.Client so the shared
// pool's timeout is left alone.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	c.httpClient = &http.Client{
		Transport: sharedHTTPClient.Transport,
		Timeout:   timeout,
	}
	return c
}

// SetToken replaces the session token after a login or logout.
func (c *Client) SetToken(token string) {
	c.token = strings.TrimSpace(token)
}

// HasToken reports whether a session token is present. A present token is
// not necessarily valid; ProbeSession decides that.
func (c *Client) HasToken() bool {
	return c.token != ""
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// LoginURL returns the OAuth entry point. Beginning a login is a browser
// hand-off: the caller opens this URL and the backend completes the
// redirect dance with the identity provider.
func (c *Client) LoginURL() string {
	return c.baseURL + "/auth/google"
}

// =============================================================================
// REQUEST PLUMBING
// =============================================================================

// setHeaders sets the common headers, including the session cookie.
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if c.token != "" {
		req.AddCookie(&http.Cookie{Name: sessionCookie, Value: c.token})
	}
}

// logRequest logs an API request without exposing sensitive data.
// Never log headers (session cookie) or bodies (document content).
func logRequest(req *http.Request) {
	log.Printf("api: %s %s", req.Method, req.URL.Path)
}

// logResponse logs only the status and duration, never the body.
func logResponse(resp *http.Response, duration time.Duration) {
	log.Printf("api: %d %s (%v)", resp.StatusCode, resp.Request.URL.Path, duration)
}

// readResponse reads the response body with a size limit.
func readResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) == MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}
	return body, nil
}

// errorMessage extracts the backend's error message from a response body,
// falling back to the raw body for unstructured errors.
func errorMessage(body []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}

// do performs a single request and decodes a 2xx JSON response into out
// (out may be nil for operations with no interesting response body).
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	return c.doWith(ctx, c.httpClient, method, path, body, contentType, out)
}

func (c *Client) doWith(ctx context.Context, hc *http.Client, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	logRequest(req)
	start := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	logResponse(resp, time.Since(start))

	data, err := readResponse(resp)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp.StatusCode, errorMessage(data))
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}

// getWithRetry performs an idempotent GET with exponential backoff on
// retryable failures. Mutating operations never go through this path;
// retry policy for those belongs to the caller.
func (c *Client) getWithRetry(ctx context.Context, path string, out any) error {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryBaseDelay * time.Duration(1<<uint(attempt-1))):
			}
		}

		err := c.do(ctx, http.MethodGet, path, nil, "", out)
		if err == nil {
			return nil
		}
		if !IsRetryable(err) {
			return err
		}
		lastErr = err
	}
	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// =============================================================================
// SESSION OPERATIONS
// =============================================================================

// ProbeSession checks whether the held credential names an authenticated
// user. A nil error with a profile means authenticated; ErrUnauthorized
// means the credential is absent or stale.
func (c *Client) ProbeSession(ctx context.Context) (*model.UserProfile, error) {
	var profile model.UserProfile
	if err := c.getWithRetry(ctx, "/auth/me", &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// EndSession invalidates the server-side session. The caller is expected
// to discard its local state regardless of the outcome.
func (c *Client) EndSession(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, "", nil)
}

// Health reports whether the backend answers its health endpoint.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, "", nil)
}

// =============================================================================
// NOTEBOOK OPERATIONS
// =============================================================================

// ListNotebooks returns all notebooks owned by the session user.
func (c *Client) ListNotebooks(ctx context.Context) ([]model.Notebook, error) {
	var notebooks []model.Notebook
	if err := c.getWithRetry(ctx, "/api/notebooks", &notebooks); err != nil {
		return nil, err
	}
	return notebooks, nil
}

// CreateNotebook creates a notebook and returns the server's record.
// Not retried automatically: a duplicate retry would create a duplicate
// notebook.
func (c *Client) CreateNotebook(ctx context.Context, name, description string) (*model.Notebook, error) {
	payload, err := json.Marshal(map[string]string{
		"name":        name,
		"description": description,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	var notebook model.Notebook
	if err := c.do(ctx, http.MethodPost, "/api/notebooks", bytes.NewReader(payload), "application/json", &notebook); err != nil {
		return nil, err
	}
	return &notebook, nil
}

// DeleteNotebook deletes a notebook and its server-side documents.
func (c *Client) DeleteNotebook(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/notebooks/"+id, nil, "", nil)
}

// =============================================================================
// DOCUMENT OPERATIONS
// =============================================================================

// ListDocuments returns the authoritative document list for a notebook.
func (c *Client) ListDocuments(ctx context.Context, notebookID string) ([]model.Document, error) {
	var docs []model.Document
	if err := c.getWithRetry(ctx, "/api/documents/"+notebookID, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// UploadDocument uploads one file as a multipart form (field "document").
// Not retried automatically: the backend offers no way to deduplicate a
// replayed upload.
func (c *Client) UploadDocument(ctx context.Context, notebookID string, content []byte, fileName, mimeType string) (*model.Document, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(map[string][]string)
	header["Content-Disposition"] = []string{
		fmt.Sprintf(`form-data; name="document"; filename=%q`, fileName),
	}
	if mimeType != "" {
		header["Content-Type"] = []string{mimeType}
	}
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("failed to create form part: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return nil, fmt.Errorf("failed to write form part: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize form: %w", err)
	}

	var doc model.Document
	err = c.do(ctx, http.MethodPost, "/api/documents/"+notebookID+"/upload",
		&buf, writer.FormDataContentType(), &doc)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// =============================================================================
// QUERY OPERATIONS
// =============================================================================

// QueryResult is the backend's answer to a notebook question.
type QueryResult struct {
	Answer          string         `json:"answer"`
	SourceDocuments []model.Source `json:"sourceDocuments,omitempty"`
}

// QueryNotebook asks a question against a notebook's documents. Calls are
// rate limited client-side; Wait blocks (or fails with the context) until
// a slot is available.
func (c *Client) QueryNotebook(ctx context.Context, notebookID, question string) (*QueryResult, error) {
	if err := c.queryLimiter.Wait(ctx); err != nil {
		return nil, err
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultQueryTimeout)
		defer cancel()
	}

	payload, err := json.Marshal(map[string]string{"query": question})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	var result QueryResult
	err = c.doWith(ctx, c.queryClient, http.MethodPost, "/api/documents/"+notebookID+"/query",
		bytes.NewReader(payload), "application/json", &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}
