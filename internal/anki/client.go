// Package anki talks to a running Anki through the AnkiConnect add-on.
package anki

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kpauljoseph/sonaveeb-anki/pkg/logger"
)

const (
	DefaultAnkiConnectURL = "http://localhost:8765"
	MaxRetries            = 3
	RetryDelay            = 500 * time.Millisecond
)

// APIError is an error reported by AnkiConnect itself. It is not retried.
type APIError struct {
	Action  string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("anki: %s: %s", e.Action, e.Message)
}

type AnkiConnectRequest struct {
	Action  string      `json:"action"`
	Version int         `json:"version"`
	Params  interface{} `json:"params,omitempty"`
}

// Client is a Store for both note types and notes backed by AnkiConnect.
type Client struct {
	ankiConnectURL string
	httpClient     *http.Client
	markers        *MarkerRegistry
	logger         *logger.Logger
	retryDelay     time.Duration
}

type Option func(*Client)

func WithURL(url string) Option {
	return func(c *Client) {
		if url != "" {
			c.ankiConnectURL = url
		}
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func WithRetryDelay(d time.Duration) Option {
	return func(c *Client) {
		c.retryDelay = d
	}
}

// NewClient creates a client. markers records which note types belong to
// this tool.
func NewClient(markers *MarkerRegistry, log *logger.Logger, opts ...Option) *Client {
	if log == nil {
		log = logger.Discard()
	}
	c := &Client{
		ankiConnectURL: DefaultAnkiConnectURL,
		httpClient:     &http.Client{Timeout: 30 * time.Second},
		markers:        markers,
		logger:         log.Named("anki"),
		retryDelay:     RetryDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) CheckConnection(ctx context.Context) error {
	var version int
	if err := c.call(ctx, "version", nil, &version); err != nil {
		c.logger.Info("Error sending request to Anki: %v", err)
		return fmt.Errorf("could not connect to Anki. Please ensure:\n" +
			"1. Anki is running https://apps.ankiweb.net/#download\n" +
			"2. AnkiConnect add-on is installed (code: 2055492159) https://ankiweb.net/shared/info/2055492159\n" +
			"3. Anki has been restarted after installing AnkiConnect")
	}
	c.logger.Debug("Connected to AnkiConnect version %d", version)
	return nil
}

// call runs one action and decodes its result into out, which may be nil.
func (c *Client) call(ctx context.Context, action string, params interface{}, out interface{}) error {
	result, err := c.sendRequest(ctx, AnkiConnectRequest{
		Action:  action,
		Version: ANKI_CONNECT_VERSION,
		Params:  params,
	})
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(result, out); err != nil {
		return fmt.Errorf("anki: %s: failed to parse result: %w", action, err)
	}
	return nil
}

func (c *Client) sendRequest(ctx context.Context, req AnkiConnectRequest) (json.RawMessage, error) {
	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < MaxRetries; attempt++ {
		if attempt > 0 {
			c.logger.Info("Retrying %s (attempt %d/%d)...", req.Action, attempt+1, MaxRetries)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.retryDelay):
			}
		}

		result, err := c.post(ctx, req.Action, reqBody)
		if err == nil {
			return result, nil
		}
		var apiErr *APIError
		if errors.As(err, &apiErr) || ctx.Err() != nil {
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("anki: %s: after %d attempts: %w", req.Action, MaxRetries, lastErr)
}

func (c *Client) post(ctx context.Context, action string, body []byte) (json.RawMessage, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.ankiConnectURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var result struct {
		Error  *string         `json:"error"`
		Result json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if result.Error != nil {
		return nil, &APIError{Action: action, Message: *result.Error}
	}
	return result.Result, nil
}
