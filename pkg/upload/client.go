package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Client uploads objects to an HTTP object store. The endpoint is expected to
// accept POST {base}/object/{bucket}/{key} with the raw body, the convention
// of bucket-style storage gateways.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// ClientOption configures the upload client.
type ClientOption func(*Client)

// WithHTTPClient overrides the HTTP client used for uploads.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient constructs a Client for the given storage endpoint.
func NewClient(baseURL string, options ...ClientOption) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, errors.New("upload: endpoint is required")
	}
	if _, err := url.Parse(trimmed); err != nil {
		return nil, fmt.Errorf("upload: parse endpoint: %w", err)
	}

	c := &Client{
		baseURL:    trimmed,
		httpClient: http.DefaultClient,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	return c, nil
}

// Upload sends the object body to the store. Non-2xx responses are reported
// as errors; nothing is retried.
func (c *Client) Upload(ctx context.Context, bucket, key string, body io.Reader) error {
	if bucket == "" {
		return errors.New("upload: bucket is required")
	}
	if key == "" {
		return errors.New("upload: object key is required")
	}

	target := fmt.Sprintf("%s/object/%s/%s", c.baseURL, url.PathEscape(bucket), url.PathEscape(key))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, body)
	if err != nil {
		return fmt.Errorf("upload: request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("upload: do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("upload: unexpected status %d for %s/%s", resp.StatusCode, bucket, key)
	}
	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
