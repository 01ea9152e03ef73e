package client

import (
	"context"
	"io"
	"math/rand"
	"net/http"
	"time"

	"github.com/verte-zerg/tuivia/internal/errors"
)

const (
	defaultMaxRetries = 3
	defaultBaseDelay  = 250 * time.Millisecond
	defaultMaxDelay   = 2 * time.Second
)

// do sends the request built by makeReq. Idempotent requests are retried on
// retryable statuses; transport failures are returned immediately.
func (c *Client) do(ctx context.Context, idempotent bool, makeReq func() (*http.Request, error)) (*http.Response, error) {
	retries := 0
	if idempotent {
		retries = c.maxRetries
	}

	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		req, err := makeReq()
		if err != nil {
			return nil, errors.New(errors.KindTransport, errors.WithCause(err), errors.WithMessagef("build request"))
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, errors.Transport(err)
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return resp, nil
		}

		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		_ = resp.Body.Close()
		lastErr = serviceError(resp.StatusCode, body)

		if !isRetryableStatus(resp.StatusCode) || attempt == retries {
			return nil, lastErr
		}

		if err := c.sleepWithBackoff(ctx, attempt); err != nil {
			return nil, errors.Transport(err)
		}
	}

	return nil, lastErr
}

func isRetryableStatus(status int) bool {
	switch status {
	case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

func (c *Client) sleepWithBackoff(ctx context.Context, attempt int) error {
	delay := c.baseDelay * time.Duration(1<<attempt)
	if delay > defaultMaxDelay {
		delay = defaultMaxDelay
	}

	jitter := time.Duration(rand.Int63n(int64(delay/2) + 1))
	delay += jitter
	if delay > defaultMaxDelay {
		delay = defaultMaxDelay
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
