package fal

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Submit enqueues a generation request. The webhook URL, when set, is passed
// as a delivery target and is not part of the model input.
func (c *Client) Submit(ctx context.Context, input GenerateInput, webhookURL string) (*QueueHandle, error) {
	endpoint := c.baseURL + "/" + c.model
	if webhookURL = strings.TrimSpace(webhookURL); webhookURL != "" {
		endpoint += "?" + url.Values{"fal_webhook": {webhookURL}}.Encode()
	}

	var handle QueueHandle
	if err := c.do(ctx, http.MethodPost, endpoint, input, &handle); err != nil {
		return nil, fmt.Errorf("submit to queue: %w", err)
	}
	if handle.RequestID == "" {
		return nil, fmt.Errorf("submit to queue: response has no request id")
	}
	handle.WebhookURL = webhookURL

	c.logger.Debug().
		Str("model", c.model).
		Str("request_id", handle.RequestID).
		Msg("request queued")
	return &handle, nil
}

// Status reports the current state of a queued request, optionally with the
// runner's log lines.
func (c *Client) Status(ctx context.Context, requestID string, logs bool) (*QueueStatus, error) {
	if strings.TrimSpace(requestID) == "" {
		return nil, ErrEmptyRequestID
	}
	endpoint := c.requestURL(requestID, "/status")
	if logs {
		endpoint += "?logs=1"
	}

	var status QueueStatus
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &status); err != nil {
		return nil, fmt.Errorf("queue status: %w", err)
	}
	return &status, nil
}

// Result fetches the output of a completed request.
func (c *Client) Result(ctx context.Context, requestID string) (*Result, error) {
	if strings.TrimSpace(requestID) == "" {
		return nil, ErrEmptyRequestID
	}

	var out Output
	if err := c.do(ctx, http.MethodGet, c.requestURL(requestID, ""), nil, &out); err != nil {
		return nil, fmt.Errorf("queue result: %w", err)
	}
	return &Result{Output: out, RequestID: requestID}, nil
}

// Subscribe runs a request to completion: submit, poll status until the
// request completes, then fetch the result. New log lines seen while polling
// are written to the logger as they arrive. Any error ends the call.
func (c *Client) Subscribe(ctx context.Context, input GenerateInput) (*Result, error) {
	handle, err := c.Submit(ctx, input, "")
	if err != nil {
		return nil, err
	}

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	seen := 0
	for {
		status, err := c.Status(ctx, handle.RequestID, true)
		if err != nil {
			return nil, err
		}

		// The status endpoint returns the full log so far on every poll.
		if len(status.Logs) > seen {
			for _, entry := range status.Logs[seen:] {
				c.logger.Info().
					Str("request_id", handle.RequestID).
					Str("status", status.Status).
					Msg(entry.Message)
			}
			seen = len(status.Logs)
		}

		if status.Status == StatusCompleted {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}

	return c.Result(ctx, handle.RequestID)
}
