package infra

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// DefaultTimeout is the per-request timeout used when callers pass zero.
const DefaultTimeout = 30 * time.Second

// retryBaseDelay is the unit for linear backoff between retry attempts.
// Overridden in tests.
var retryBaseDelay = time.Second

// StatusError is returned when the upstream responds with an HTTP error
// status. It is an application-level failure and is never retried by Fetch.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.Code)
}

// Fetch performs a GET request against rawURL and returns the response body.
//
// Only transport-level failures (timeouts, connection errors) are retried,
// with linear backoff: attempt 1 waits 1 unit, attempt 2 waits 2 units, and
// so on, up to maxRetries additional attempts. An HTTP response with a 4xx
// or 5xx status returns *StatusError immediately without retrying. When all
// retries are exhausted the last transport error is returned.
//
// Error messages and StatusError carry the URL stripped of its query string,
// so credentials passed as query parameters never appear in errors or logs.
func Fetch(ctx context.Context, rawURL string, maxRetries int, timeout time.Duration) ([]byte, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	client := &http.Client{Timeout: timeout}
	safeURL := stripQuery(rawURL)

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * retryBaseDelay):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request for %s: %w", safeURL, err)
		}

		resp, err := client.Do(req)
		if err != nil {
			// Timeout or connection-level failure: retryable.
			lastErr = fmt.Errorf("GET %s: %w", safeURL, unwrapURLError(err))
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode >= http.StatusBadRequest {
			return nil, &StatusError{Code: resp.StatusCode, URL: safeURL}
		}
		if readErr != nil {
			lastErr = fmt.Errorf("read body from GET %s: %w", safeURL, readErr)
			continue
		}
		return body, nil
	}
	return nil, lastErr
}

// DoGet performs a single GET request with the given headers and returns the
// open response body and status code. The caller must close the body.
// No retries; intended for connectivity checks and feed polling.
func DoGet(ctx context.Context, rawURL string, headers map[string]string) (io.ReadCloser, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("build request for %s: %w", stripQuery(rawURL), err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	client := &http.Client{Timeout: DefaultTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("GET %s: %w", stripQuery(rawURL), unwrapURLError(err))
	}
	if resp.StatusCode >= http.StatusBadRequest {
		resp.Body.Close()
		return nil, resp.StatusCode, &StatusError{Code: resp.StatusCode, URL: stripQuery(rawURL)}
	}
	return resp.Body, resp.StatusCode, nil
}

// stripQuery drops the query string and fragment from a URL. Credentials
// travel as query parameters, so anything surfaced in errors uses this form.
func stripQuery(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "<invalid url>"
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}

// unwrapURLError peels *url.Error so the full request URL (query included)
// does not leak through the wrapped error text.
func unwrapURLError(err error) error {
	if uerr, ok := err.(*url.Error); ok && uerr.Err != nil {
		return uerr.Err
	}
	return err
}
