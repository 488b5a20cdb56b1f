// Package fal is a thin client for the fal.ai queue API as used by the
// MiniMax image model. It performs no retries and applies no timeouts of its
// own; callers control cancellation through the context.
package fal

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

	"github.com/ironsheep/minimax-mcp/internal/infra"
)

var (
	// ErrMissingAPIKey indicates the client was built without credentials.
	ErrMissingAPIKey = errors.New("fal: api key is required")

	// ErrEmptyRequestID is returned when a status or result lookup has no id.
	ErrEmptyRequestID = errors.New("fal: request id is required")
)

// APIError is returned for non-2xx responses from the fal API.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("fal: status %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("fal: status %d", e.StatusCode)
}

// Options configures a Client.
type Options struct {
	APIKey       string
	Model        string
	BaseURL      string
	PollInterval time.Duration
	HTTPClient   *http.Client
	Logger       *infra.Logger
}

// Client talks to the fal queue for a single model.
type Client struct {
	apiKey       string
	model        string
	appID        string
	baseURL      string
	pollInterval time.Duration
	httpClient   *http.Client
	logger       *infra.Logger
}

// NewClient builds a Client, filling in defaults for anything left unset.
func NewClient(opts Options) (*Client, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	model := strings.Trim(strings.TrimSpace(opts.Model), "/")
	if model == "" {
		model = infra.DefaultModel
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = infra.DefaultQueueURL
	}
	interval := opts.PollInterval
	if interval <= 0 {
		interval = infra.DefaultPollInterval
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	logger := opts.Logger
	if logger == nil {
		l := infra.NopLogger()
		logger = &l
	}
	return &Client{
		apiKey:       apiKey,
		model:        model,
		appID:        appID(model),
		baseURL:      baseURL,
		pollInterval: interval,
		httpClient:   httpClient,
		logger:       logger,
	}, nil
}

// appID reduces a model id such as "fal-ai/minimax/image-01" to the
// owner/alias pair the queue uses for status and result lookups.
func appID(model string) string {
	parts := strings.Split(model, "/")
	if len(parts) <= 2 {
		return model
	}
	return parts[0] + "/" + parts[1]
}

func (c *Client) requestURL(requestID string, suffix string) string {
	return c.baseURL + "/" + c.appID + "/requests/" + url.PathEscape(requestID) + suffix
}

// do sends a request and decodes a 2xx JSON body into out.
func (c *Client) do(ctx context.Context, method, endpoint string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("fal: encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("fal: build request: %w", err)
	}
	req.Header.Set("Authorization", "Key "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fal: http request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("fal: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Detail: errorDetail(raw)}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("fal: decode response: %w", err)
	}
	return nil
}

// errorDetail extracts a readable message from a fal error body. The API
// uses either a plain string or a list of validation objects for "detail".
func errorDetail(raw []byte) string {
	var body struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return strings.TrimSpace(string(raw))
	}
	if len(body.Detail) > 0 {
		var s string
		if err := json.Unmarshal(body.Detail, &s); err == nil {
			return s
		}
		var items []struct {
			Msg string `json:"msg"`
		}
		if err := json.Unmarshal(body.Detail, &items); err == nil {
			msgs := make([]string, 0, len(items))
			for _, it := range items {
				if it.Msg != "" {
					msgs = append(msgs, it.Msg)
				}
			}
			if len(msgs) > 0 {
				return strings.Join(msgs, "; ")
			}
		}
		return string(body.Detail)
	}
	if body.Message != "" {
		return body.Message
	}
	return strings.TrimSpace(string(raw))
}
