package ascapi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"

	"github.com/bitrise-io/go-utils/retry"
)

// UploadBinaryToURL sends data to a presigned URL with exactly the given method and headers.
// Transport errors and 5xx responses are retried, a 4xx means the URL rejected the
// request and is returned right away.
func (c *Client) UploadBinaryToURL(ctx context.Context, method, url string, data []byte, header http.Header) error {
	return retry.Times(c.binaryRetries).Wait(c.binaryRetryWait).TryWithAbort(func(attempt uint) (error, bool) {
		err := c.uploadBinary(ctx, method, url, data, header)
		if err == nil {
			return nil, true
		}
		if ctx.Err() != nil {
			return err, true
		}

		var apiErr *Error
		if errors.As(err, &apiErr) && !apiErr.Temporary() {
			return err, true
		}

		c.logger.Warnf("Binary upload attempt %d failed: %s", attempt+1, err)
		return err, false
	})
}

func (c *Client) uploadBinary(ctx context.Context, method, url string, data []byte, header http.Header) error {
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header = header.Clone()
	if req.Header == nil {
		req.Header = http.Header{}
	}
	req.ContentLength = int64(len(data))

	dump, err := httputil.DumpRequest(req, false)
	if err != nil {
		c.logger.Warnf("error while dumping request: %s", err)
	}
	c.logger.Debugf("Binary upload request dump: %s", string(dump))

	resp, err := c.binaryClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, req.URL.Redacted(), err)
	}
	defer func(body io.ReadCloser) {
		err := body.Close()
		if err != nil {
			c.logger.Printf(err.Error())
		}
	}(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return unwrapError(resp)
	}

	return nil
}
