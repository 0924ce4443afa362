// Package client is a typed Go client for the drone analytics API. Every
// authenticated call takes the bearer token as an argument; the client itself
// holds no credentials.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

// APIError is any non-2xx response.
type APIError struct {
	Status  int
	Message string
	Details []string
}

func (e *APIError) Error() string {
	if len(e.Details) > 0 {
		return fmt.Sprintf("api error %d: %s (%s)", e.Status, e.Message, strings.Join(e.Details, "; "))
	}
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New returns a client for baseURL, e.g. "http://localhost:8080". A nil
// httpClient gets a default with a 30s timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

func (c *Client) Health(ctx context.Context) (*Health, error) {
	var out Health
	if err := c.do(ctx, http.MethodGet, "/api/health", nil, "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", nil, "", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", nil, "", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Me(ctx context.Context, token string) (*User, error) {
	var out struct {
		User User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, token, nil, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

func (c *Client) UploadJSON(ctx context.Context, token string, req UploadRequest) (*UploadCreated, error) {
	var out UploadCreated
	if err := c.do(ctx, http.MethodPost, "/api/upload/json", nil, token, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListUploads(ctx context.Context, token string, limit, offset int) (*UploadList, error) {
	var out UploadList
	if err := c.do(ctx, http.MethodGet, "/api/upload", pageValues(limit, offset), token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListViolations(ctx context.Context, token string, q ViolationQuery) (*ViolationList, error) {
	values := pageValues(q.Limit, q.Offset)
	if q.DroneID != "" {
		values.Set("droneId", q.DroneID)
	}
	if q.Date != "" {
		values.Set("date", q.Date)
	}
	if q.Type != "" {
		values.Set("type", q.Type)
	}

	var out ViolationList
	if err := c.do(ctx, http.MethodGet, "/api/violations", values, token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ViolationStats(ctx context.Context, token string) (*Stats, error) {
	var out Stats
	if err := c.do(ctx, http.MethodGet, "/api/violations/stats", nil, token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func pageValues(limit, offset int) url.Values {
	values := url.Values{}
	if limit > 0 {
		values.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		values.Set("offset", strconv.Itoa(offset))
	}
	return values
}

// do sends one request. The Authorization header is set only when token is
// non-empty.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, token string, body, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp.StatusCode, raw)
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeAPIError(status int, raw []byte) *APIError {
	var payload struct {
		Error   string   `json:"error"`
		Details []string `json:"details"`
	}
	apiErr := &APIError{Status: status}
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Error != "" {
		apiErr.Message = payload.Error
		apiErr.Details = payload.Details
		return apiErr
	}
	apiErr.Message = http.StatusText(status)
	return apiErr
}
