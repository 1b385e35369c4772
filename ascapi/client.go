// Package ascapi is a small App Store Connect API client: JSON resource calls and
// raw binary uploads to presigned asset delivery URLs.
package ascapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"strings"
	"time"

	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/bitrise-io/go-utils/v2/retryhttp"
	"github.com/hashicorp/go-retryablehttp"
)

// DefaultBaseURL ...
const DefaultBaseURL = "https://api.appstoreconnect.apple.com/v1"

const (
	numBinaryUploadRetries = 3
	binaryUploadRetryWait  = 5 * time.Second
)

// Client ...
type Client struct {
	httpClient      *retryablehttp.Client
	binaryClient    *http.Client
	baseURL         string
	token           string
	logger          log.Logger
	binaryRetries   uint
	binaryRetryWait time.Duration
}

// NewClient creates a client for the API at baseURL, authenticated with a bearer token.
// An empty baseURL selects DefaultBaseURL.
func NewClient(baseURL, token string, logger log.Logger) *Client {
	return newClient(retryhttp.NewClient(logger), baseURL, token, logger)
}

func newClient(httpClient *retryablehttp.Client, baseURL, token string, logger log.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		httpClient:      httpClient,
		binaryClient:    &http.Client{Transport: http.DefaultTransport},
		baseURL:         strings.TrimSuffix(baseURL, "/"),
		token:           token,
		logger:          logger,
		binaryRetries:   numBinaryUploadRetries,
		binaryRetryWait: binaryUploadRetryWait,
	}
}

// Get ...
func (c *Client) Get(ctx context.Context, path string, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// Post ...
func (c *Client) Post(ctx context.Context, path string, body, out interface{}) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

// Patch ...
func (c *Client) Patch(ctx context.Context, path string, body, out interface{}) error {
	return c.do(ctx, http.MethodPatch, path, body, out)
}

// Delete ...
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	url := c.baseURL + path

	var reqBody interface{}
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = b
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.token))
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func(body io.ReadCloser) {
		err := body.Close()
		if err != nil {
			c.logger.Printf(err.Error())
		}
	}(resp.Body)

	dump, err := httputil.DumpResponse(resp, true)
	if err != nil {
		c.logger.Warnf("error while dumping response: %s", err)
	}
	c.logger.Debugf("%s %s response dump: %s", method, path, string(dump))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return unwrapError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}

	return nil
}

// drainBody reads at most 1 KiB of a failed response, that is enough for error messages.
func drainBody(body io.Reader) []byte {
	b, _ := io.ReadAll(io.LimitReader(body, 1024))
	return bytes.TrimSpace(b)
}
