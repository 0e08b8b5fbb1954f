package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
)

// ErrSessionExpired marks a request rejected with HTTP 401. By the time the
// caller sees it the local session has already been cleared; the only
// recovery is a fresh login.
var ErrSessionExpired = errors.New("session expired")

// HTTPError is any non-2xx response other than 401. Message carries the
// server's error body when one could be decoded.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: http %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api: http %d", e.StatusCode)
}

// TokenSource supplies the current bearer token, or "" when the user is not
// logged in. It must never fail; storage errors are treated as "no token".
type TokenSource func(ctx context.Context) string

// UnauthorizedHook is invoked once per 401 response, before the request
// fails with ErrSessionExpired. It is expected to clear local session state.
type UnauthorizedHook func(ctx context.Context)

// Client wraps an *http.Client with the Altura API conventions: a fixed base
// URL, JSON headers, bearer-token injection, and forced logout on 401.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	tokenSource    TokenSource
	onUnauthorized UnauthorizedHook
	logger         *log.Logger
	debug          bool
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.httpClient = h
	}
}

func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) {
		c.tokenSource = ts
	}
}

func WithUnauthorizedHook(h UnauthorizedHook) Option {
	return func(c *Client) {
		c.onUnauthorized = h
	}
}

// WithDebug enables request/response diagnostic logging on the given logger.
// The Authorization header is redacted in diagnostics.
func WithDebug(logger *log.Logger) Option {
	return func(c *Client) {
		c.logger = logger
		c.debug = true
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		logger:     log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Header is a caller-supplied header override, merged after the client's own
// headers. An empty Value removes the header entirely.
type Header struct {
	Key   string
	Value string
}

func (c *Client) Get(ctx context.Context, endpoint string, out any, headers ...Header) error {
	return c.request(ctx, http.MethodGet, endpoint, nil, out, headers)
}

func (c *Client) Post(ctx context.Context, endpoint string, body, out any, headers ...Header) error {
	return c.request(ctx, http.MethodPost, endpoint, body, out, headers)
}

func (c *Client) Put(ctx context.Context, endpoint string, body, out any, headers ...Header) error {
	return c.request(ctx, http.MethodPut, endpoint, body, out, headers)
}

func (c *Client) Delete(ctx context.Context, endpoint string, out any, headers ...Header) error {
	return c.request(ctx, http.MethodDelete, endpoint, nil, out, headers)
}

// Download fetches endpoint with the bearer header only and returns the raw
// response body. Used for generated receipts, which are PDF, not JSON.
func (c *Client) Download(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("api: build request: %w", err)
	}
	if tok := c.token(ctx); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	c.logRequest(req)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api: %s %s: %w", req.Method, req.URL, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("api: read response: %w", err)
	}
	c.logResponse(resp, nil)

	if err := c.checkStatus(ctx, resp.StatusCode, raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func (c *Client) request(ctx context.Context, method, endpoint string, body, out any, headers []Header) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api: encode body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return fmt.Errorf("api: build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if tok := c.token(ctx); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	// Caller headers win, including the ability to blank one out so the
	// transport can pick its own (multipart boundaries rely on this).
	for _, h := range headers {
		if h.Value == "" {
			req.Header.Del(h.Key)
			continue
		}
		req.Header.Set(h.Key, h.Value)
	}

	c.logRequest(req)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("api: %s %s: %w", method, req.URL, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("api: read response: %w", err)
	}
	c.logResponse(resp, raw)

	if err := c.checkStatus(ctx, resp.StatusCode, raw); err != nil {
		return err
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("api: decode response: %w", err)
	}
	return nil
}

func (c *Client) checkStatus(ctx context.Context, status int, raw []byte) error {
	if status == http.StatusUnauthorized {
		if c.onUnauthorized != nil {
			c.onUnauthorized(ctx)
		}
		return fmt.Errorf("api: http 401: %w", ErrSessionExpired)
	}
	if status < 200 || status > 299 {
		return &HTTPError{StatusCode: status, Message: serverMessage(raw)}
	}
	return nil
}

func (c *Client) token(ctx context.Context) string {
	if c.tokenSource == nil {
		return ""
	}
	return c.tokenSource(ctx)
}

// serverMessage best-effort extracts an error string from a response body of
// the form {"message": ...} or {"error": ...}. Bodies that are not JSON
// yield "".
func serverMessage(raw []byte) string {
	var envelope struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return ""
	}
	if envelope.Message != "" {
		return envelope.Message
	}
	return envelope.Error
}

func (c *Client) logRequest(req *http.Request) {
	if !c.debug {
		return
	}
	c.logger.Printf("api: -> %s %s headers=%v", req.Method, req.URL, redactHeaders(req.Header))
}

func (c *Client) logResponse(resp *http.Response, raw []byte) {
	if !c.debug {
		return
	}
	if raw == nil {
		c.logger.Printf("api: <- %d %s", resp.StatusCode, resp.Request.URL)
		return
	}
	c.logger.Printf("api: <- %d %s body=%s", resp.StatusCode, resp.Request.URL, raw)
}

func redactHeaders(h http.Header) http.Header {
	out := h.Clone()
	if auth := out.Get("Authorization"); auth != "" {
		if len(auth) > 14 {
			auth = auth[:14] + "..."
		}
		out.Set("Authorization", auth)
	}
	return out
}
