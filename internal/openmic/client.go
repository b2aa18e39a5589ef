package openmic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	defaultBaseURL = "https://api.openmic.ai/v1"
	defaultTimeout = 10 * time.Second
	maxReadRetries = 3
)

var ErrNotFound = errors.New("openmic: not found")

// APIError is returned for any non-2xx response.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("openmic: HTTP %d: %s", e.StatusCode, e.Body)
}

// Is lets errors.Is(err, ErrNotFound) match a 404.
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// Client talks to the OpenMic REST API. It is safe for concurrent use.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client

	// InitialBackoff is the first retry delay for reads.
	InitialBackoff time.Duration
}

func NewClient(apiKey string, timeout time.Duration) *Client {
	return NewClientWithBaseURL(apiKey, defaultBaseURL, timeout)
}

// NewClientWithBaseURL points the client at another host, e.g. an httptest server.
func NewClientWithBaseURL(apiKey, baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		apiKey:         apiKey,
		baseURL:        strings.TrimRight(baseURL, "/"),
		httpClient:     &http.Client{Timeout: timeout},
		InitialBackoff: 200 * time.Millisecond,
	}
}

func (c *Client) CreateAgent(ctx context.Context, in AgentInput) (Agent, error) {
	var out Agent
	if err := c.do(ctx, http.MethodPost, "/bots", NewCreateAgentRequest(in), &out); err != nil {
		return Agent{}, fmt.Errorf("create agent: %w", err)
	}
	return out, nil
}

func (c *Client) GetAgent(ctx context.Context, uid string) (Agent, error) {
	var out Agent
	if err := c.get(ctx, "/bots/"+url.PathEscape(uid), &out); err != nil {
		return Agent{}, fmt.Errorf("get agent %s: %w", uid, err)
	}
	return out, nil
}

func (c *Client) ListAgents(ctx context.Context) ([]Agent, error) {
	var out []Agent
	if err := c.getList(ctx, "/bots", &out); err != nil {
		return nil, fmt.Errorf("list agents: %w", err)
	}
	return out, nil
}

func (c *Client) UpdateAgent(ctx context.Context, uid string, in AgentInput) (Agent, error) {
	var out Agent
	if err := c.do(ctx, http.MethodPatch, "/bots/"+url.PathEscape(uid), in, &out); err != nil {
		return Agent{}, fmt.Errorf("update agent %s: %w", uid, err)
	}
	return out, nil
}

func (c *Client) DeleteAgent(ctx context.Context, uid string) error {
	if err := c.do(ctx, http.MethodDelete, "/bots/"+url.PathEscape(uid), nil, nil); err != nil {
		return fmt.Errorf("delete agent %s: %w", uid, err)
	}
	return nil
}

func (c *Client) ListCalls(ctx context.Context, botID string) ([]CallLog, error) {
	var out []CallLog
	if err := c.getList(ctx, "/calls?bot_id="+url.QueryEscape(botID), &out); err != nil {
		return nil, fmt.Errorf("list calls for %s: %w", botID, err)
	}
	return out, nil
}

func (c *Client) GetCall(ctx context.Context, id string) (CallLog, error) {
	var out CallLog
	if err := c.get(ctx, "/call/"+url.PathEscape(id), &out); err != nil {
		return CallLog{}, fmt.Errorf("get call %s: %w", id, err)
	}
	return out, nil
}

// get retries transport failures and 5xx with exponential backoff. 4xx is final.
func (c *Client) get(ctx context.Context, path string, out any) error {
	var body []byte
	op := func() error {
		b, err := c.roundTrip(ctx, http.MethodGet, path, nil)
		if err != nil {
			var apiErr *APIError
			if errors.As(err, &apiErr) && apiErr.StatusCode < 500 {
				return backoff.Permanent(err)
			}
			return err
		}
		body = b
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.InitialBackoff
	policy := backoff.WithContext(backoff.WithMaxRetries(bo, maxReadRetries-1), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// getList accepts either {"data": [...]} or a bare array.
func (c *Client) getList(ctx context.Context, path string, out any) error {
	var raw json.RawMessage
	if err := c.get(ctx, path, &raw); err != nil {
		return err
	}
	return decodeList(raw, out)
}

func decodeList(raw json.RawMessage, out any) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if trimmed[0] == '{' {
		var env struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return fmt.Errorf("decode list envelope: %w", err)
		}
		if len(env.Data) == 0 || bytes.Equal(env.Data, []byte("null")) {
			return nil
		}
		trimmed = env.Data
	}
	if err := json.Unmarshal(trimmed, out); err != nil {
		return fmt.Errorf("decode list: %w", err)
	}
	return nil
}

// do performs a single round trip; writes are never retried.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var payload []byte
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		payload = b
	}
	body, err := c.roundTrip(ctx, method, path, payload)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) roundTrip(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return body, nil
}
