// Package client provides outbound HTTP clients for calling other services.
//
// Error responses are returned as problem.Problem errors, so a handler can
// pass an upstream problem straight back to its own caller. Transient
// failures are retried with exponential backoff.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"slices"
	"time"

	"github.com/Sokol111/ecommerce-problem-json/pkg/core/logger"
	"github.com/Sokol111/ecommerce-problem-json/pkg/failure"
	"github.com/cenkalti/backoff/v4"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// retryableStatuses are upstream statuses worth another attempt.
var retryableStatuses = []int{
	http.StatusTooManyRequests,
	http.StatusBadGateway,
	http.StatusServiceUnavailable,
	http.StatusGatewayTimeout,
}

// Client sends requests to a single upstream service. It is safe for
// concurrent use.
type Client struct {
	http    *http.Client
	baseURL *url.URL
	retry   RetryConfig
}

// New creates a client from cfg. Defaults are applied to cfg first.
func New(cfg ClientConfig) (*Client, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base-url: %w", err)
	}
	return &Client{http: newHTTPClient(cfg), baseURL: base, retry: cfg.Retry}, nil
}

func newHTTPClient(cfg ClientConfig) *http.Client {
	dialer := &net.Dialer{
		Timeout: 5 * time.Second,
	}

	maxIdleConnsPerHost := *cfg.MaxIdleConnsPerHost
	transport := &http.Transport{
		MaxIdleConnsPerHost: maxIdleConnsPerHost,
		IdleConnTimeout:     *cfg.IdleConnTimeout,
	}
	if lifetime := *cfg.MaxConnLifetime; lifetime > 0 {
		transport.DialContext = dialTimed(dialer, lifetime)
	}

	return &http.Client{
		Timeout: *cfg.Timeout,
		Transport: &retryTransport{
			base:       transport,
			transport:  transport,
			maxRetries: min(maxIdleConnsPerHost, MaxRetriesCap),
		},
	}
}

// HTTPClient exposes the underlying client, for generated API clients that
// need a plain *http.Client.
func (c *Client) HTTPClient() *http.Client {
	return c.http
}

// NewRequest builds a request for path relative to the base URL.
func (c *Client) NewRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("invalid request path %q: %w", path, err)
	}
	return http.NewRequestWithContext(ctx, method, c.baseURL.ResolveReference(ref).String(), body)
}

// Do sends req and returns the response for statuses below 400.
//
// Error statuses are returned as a problem.Problem error and the response
// body is closed. 429, 502, 503 and 504 are retried with exponential
// backoff. Connection failures are retried by the transport only, without
// backoff. A request with a body is retried only when its GetBody is set.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	log := logger.FromContext(ctx)

	attempt := 0
	operation := func() (*http.Response, error) {
		send := req
		if attempt > 0 {
			var err error
			if send, err = rewind(req); err != nil {
				return nil, backoff.Permanent(err)
			}
		}
		attempt++

		resp, err := c.http.Do(send)
		if err != nil {
			return nil, transportError(ctx, err)
		}
		if resp.StatusCode < http.StatusBadRequest {
			return resp, nil
		}

		p, err := ProblemFromResponse(resp)
		if err != nil {
			return nil, backoff.Permanent(failure.Wrap(failure.KindUnavailable, err, "upstream returned an unreadable error"))
		}
		if slices.Contains(retryableStatuses, p.StatusOrDefault()) {
			return nil, p
		}
		return nil, backoff.Permanent(p)
	}

	notify := func(err error, wait time.Duration) {
		log.Debug("retrying upstream request",
			zap.String("method", req.Method),
			zap.String("url", req.URL.Redacted()),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err))
	}

	return backoff.RetryNotifyWithData(operation, c.backOff(req), notify)
}

func (c *Client) backOff(req *http.Request) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = *c.retry.InitialInterval
	exp.MaxInterval = *c.retry.MaxInterval
	exp.MaxElapsedTime = 0
	retries := *c.retry.MaxAttempts - 1
	if !replayable(req) {
		retries = 0
	}
	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(max(retries, 0))), req.Context())
}

func transportError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return backoff.Permanent(failure.Wrap(failure.KindTimeout, err, "upstream request timed out"))
		}
		return backoff.Permanent(err)
	}
	return backoff.Permanent(failure.Wrap(failure.KindUnavailable, err, "upstream request failed"))
}

// Provide returns a provider function that creates a named client from config
// Usage with fx:
//
//	fx.Provide(fx.Private, client.Provide("catalog-service"))
func Provide(name string) func(*viper.Viper) (*Client, error) {
	return func(v *viper.Viper) (*Client, error) {
		cfg, err := loadConfig(v, name)
		if err != nil {
			return nil, err
		}
		return New(cfg)
	}
}
