// Package api is the typed client for the Lighthouse diagnostics backend.
// Every operation returns a Result; failures are normalized into APIError
// codes rather than thrown.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"github.com/lighthouse-hq/lighthouse/internal/report"
	"github.com/lighthouse-hq/lighthouse/internal/result"
)

// TokenSource supplies the bearer token, if any. Absence of a token does not
// block anonymous scans but fails site-scoped operations fast.
type TokenSource interface {
	Token() (string, bool)
}

// StaticToken adapts a fixed token (possibly empty) into a TokenSource.
type StaticToken string

func (s StaticToken) Token() (string, bool) { return string(s), s != "" }

// Client talks to the diagnostics API. The session-expiry handler is an
// explicit constructor dependency rather than process-global state.
type Client struct {
	baseURL          string
	httpClient       *http.Client
	tokens           TokenSource
	onSessionExpired func()
	maxGetRetries    uint64
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// WithSessionExpiredHandler installs the callback invoked on any 401.
func WithSessionExpiredHandler(fn func()) Option {
	return func(c *Client) { c.onSessionExpired = fn }
}

// WithGetRetries overrides how many times idempotent GETs retry on
// transport failure.
func WithGetRetries(n uint64) Option {
	return func(c *Client) { c.maxGetRetries = n }
}

func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL:       baseURL,
		httpClient:    &http.Client{Timeout: 90 * time.Second},
		tokens:        tokens,
		maxGetRetries: 2,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.tokens == nil {
		c.tokens = StaticToken("")
	}
	return c
}

// ScanOptions tune an anonymous URL scan.
type ScanOptions struct {
	AuditType      string `json:"auditType,omitempty"`
	IncludeSitemap bool   `json:"includeSitemap,omitempty"`
	MaxPages       int    `json:"maxPages,omitempty"`
	StoreRawData   bool   `json:"storeRawData,omitempty"`
	SkipCache      bool   `json:"skipCache,omitempty"`
	SiteCategory   string `json:"site_category,omitempty"`
}

// ScanRequest initiates one anonymous AI-readiness scan.
type ScanRequest struct {
	URL     string       `json:"url"`
	Options *ScanOptions `json:"options,omitempty"`
}

// RescoreResponse acknowledges a triggered rescore. EstimatedCompletionTime
// is in seconds.
type RescoreResponse struct {
	Message                 string `json:"message"`
	JobID                   string `json:"job_id,omitempty"`
	EstimatedCompletionTime int    `json:"estimated_completion_time,omitempty"`
}

// envelope is the backend's uniform response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
	Code    string          `json:"code,omitempty"`
}

// ScanForAIReadiness submits a URL for an anonymous scan. A token is
// attached when present but is not required.
func (c *Client) ScanForAIReadiness(ctx context.Context, req ScanRequest) result.Result[*report.Report, *APIError] {
	return postJSON[*report.Report](c, ctx, "/api/v1/diagnostics/scan-url", req)
}

// GetSiteScore fetches the stored report for an authenticated site.
func (c *Client) GetSiteScore(ctx context.Context, siteID string) result.Result[*report.Report, *APIError] {
	if err := c.requireToken(); err != nil {
		return result.Err[*report.Report](err)
	}
	return getJSON[*report.Report](c, ctx, "/api/v1/diagnostics/sites/"+siteID+"/score")
}

// GetPageScores fetches per-page score summaries for an authenticated site.
func (c *Client) GetPageScores(ctx context.Context, siteID string) result.Result[[]report.PageScore, *APIError] {
	if err := c.requireToken(); err != nil {
		return result.Err[[]report.PageScore](err)
	}
	return getJSON[[]report.PageScore](c, ctx, "/api/v1/diagnostics/pages/"+siteID+"/indicators")
}

// TriggerRescore asks the backend to re-run the stored-site scan.
func (c *Client) TriggerRescore(ctx context.Context, siteID string, force bool) result.Result[*RescoreResponse, *APIError] {
	if err := c.requireToken(); err != nil {
		return result.Err[*RescoreResponse](err)
	}
	body := struct {
		SiteID string `json:"site_id"`
		Force  bool   `json:"force"`
	}{SiteID: siteID, Force: force}
	return postJSON[*RescoreResponse](c, ctx, "/api/v1/diagnostics/trigger-rescore", body)
}

// requireToken guards authenticated-only operations before any network call.
func (c *Client) requireToken() *APIError {
	if _, ok := c.tokens.Token(); !ok {
		return &APIError{Code: CodeAuthRequired, Message: "authentication required"}
	}
	return nil
}

func postJSON[T any](c *Client, ctx context.Context, path string, body interface{}) result.Result[T, *APIError] {
	payload, err := json.Marshal(body)
	if err != nil {
		return result.Err[T](&APIError{Code: CodeInvalidResponse, Message: fmt.Sprintf("encode request: %v", err)})
	}
	resp, apiErr := c.do(ctx, http.MethodPost, path, payload, 0)
	if apiErr != nil {
		return result.Err[T](apiErr)
	}
	return decode[T](resp)
}

func getJSON[T any](c *Client, ctx context.Context, path string) result.Result[T, *APIError] {
	resp, apiErr := c.do(ctx, http.MethodGet, path, nil, c.maxGetRetries)
	if apiErr != nil {
		return result.Err[T](apiErr)
	}
	return decode[T](resp)
}

type response struct {
	status     int
	statusText string
	body       []byte
}

// do performs one HTTP exchange. Transport failures on idempotent requests
// retry with capped exponential backoff; POSTs never retry.
func (c *Client) do(ctx context.Context, method, path string, body []byte, retries uint64) (*response, *APIError) {
	attempt := func() (*response, error) {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("X-Request-ID", uuid.NewString())
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if token, ok := c.tokens.Token(); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}

		httpResp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer httpResp.Body.Close()
		data, err := io.ReadAll(httpResp.Body)
		if err != nil {
			return nil, err
		}
		return &response{
			status:     httpResp.StatusCode,
			statusText: http.StatusText(httpResp.StatusCode),
			body:       data,
		}, nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), retries), ctx)
	resp, err := backoff.RetryWithData(attempt, policy)
	if err != nil {
		return nil, &APIError{Code: CodeNetworkError, Message: err.Error()}
	}

	if resp.status == http.StatusUnauthorized {
		if c.onSessionExpired != nil {
			c.onSessionExpired()
		}
		return nil, &APIError{Code: CodeAuthExpired, Message: "session expired"}
	}
	if resp.status < 200 || resp.status > 299 {
		return nil, httpError(resp)
	}
	return resp, nil
}

// httpError maps a non-2xx exchange onto the taxonomy: domain code from the
// body when present, stringified status otherwise.
func httpError(resp *response) *APIError {
	var env envelope
	code := strconv.Itoa(resp.status)
	message := fmt.Sprintf("HTTP %d: %s", resp.status, resp.statusText)
	if err := json.Unmarshal(resp.body, &env); err == nil {
		if env.Code != "" {
			code = env.Code
		}
		if env.Error != "" {
			message = env.Error
		}
	}
	return &APIError{Code: code, Message: message}
}

func decode[T any](resp *response) result.Result[T, *APIError] {
	var env envelope
	if err := json.Unmarshal(resp.body, &env); err != nil {
		return result.Err[T](&APIError{
			Code:    CodeInvalidResponse,
			Message: fmt.Sprintf("decode response: %v", err),
		})
	}
	if !env.Success {
		code := env.Code
		if code == "" {
			code = CodeInvalidResponse
		}
		message := env.Error
		if message == "" {
			message = "request failed"
		}
		return result.Err[T](&APIError{Code: code, Message: message})
	}

	var data T
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return result.Err[T](&APIError{
			Code:    CodeInvalidResponse,
			Message: fmt.Sprintf("decode payload: %v", err),
		})
	}
	return result.Ok[T, *APIError](data)
}
