// Package api implements the client for the tnnlr control plane, which
// assigns rendezvous endpoints to tunnel agents.
package api

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/SameOldNick/tnnlr/internal/httputil"
	"github.com/SameOldNick/tnnlr/version"
)

// An Endpoint is a rendezvous assignment returned by the control plane.
// It is immutable for the lifetime of a tunnel pool.
type Endpoint struct {
	ID           string `json:"id"`
	URL          string `json:"url"`
	Host         string `json:"host,omitempty"`
	Port         uint16 `json:"port"`
	SecretKey    string `json:"secret_key"`
	MaxConnCount int    `json:"max_conn_count"`
}

// RemoteAddr returns the host:port tunnel connections should dial.
func (e *Endpoint) RemoteAddr() string {
	return net.JoinHostPort(e.Host, fmt.Sprint(e.Port))
}

// A Client requests endpoints from the control plane.
type Client struct {
	cfg *config
}

// New creates a new Client.
func New(options ...Option) *Client {
	return &Client{cfg: getConfig(options...)}
}

// RequestEndpoint asks the control plane at rawURL for a rendezvous
// endpoint. The request is retried up to the configured retry count, with
// the configured delay between attempts, before the last error surfaces.
func (c *Client) RequestEndpoint(ctx context.Context, rawURL string) (*Endpoint, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid control plane url: %w", err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid control plane url: missing host")
	}

	var endpoint *Endpoint
	operation := func() error {
		var err error
		endpoint, err = c.requestEndpoint(ctx, u)
		return err
	}
	bo := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(c.cfg.retryDelay), c.cfg.retry), ctx)
	if err := backoff.Retry(operation, bo); err != nil {
		return nil, fmt.Errorf("failed to acquire endpoint: %w", err)
	}
	return endpoint, nil
}

func (c *Client) requestEndpoint(ctx context.Context, u *url.URL) (*Endpoint, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", version.UserAgent())
	if c.cfg.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.apiKey)
	}

	body, err := httputil.Fetch(ctx, c.cfg.tlsConfig, req)
	if err != nil {
		return nil, err
	}

	var endpoint Endpoint
	if err := json.Unmarshal(body, &endpoint); err != nil {
		return nil, fmt.Errorf("failed to decode endpoint: %w", err)
	}
	if endpoint.URL == "" || endpoint.Port == 0 {
		return nil, fmt.Errorf("control plane returned an incomplete endpoint")
	}
	// the rendezvous usually lives on the control plane host
	if endpoint.Host == "" {
		endpoint.Host = u.Hostname()
	}
	return &endpoint, nil
}

type config struct {
	apiKey     string
	tlsConfig  *tls.Config
	retry      uint64
	retryDelay time.Duration
}

func getConfig(options ...Option) *config {
	cfg := &config{
		retry:      3,
		retryDelay: 5 * time.Second,
	}
	for _, o := range options {
		o(cfg)
	}
	return cfg
}

// An Option modifies the config.
type Option func(*config)

// WithAPIKey returns an option to configure the bearer credential sent to
// the control plane.
func WithAPIKey(apiKey string) Option {
	return func(cfg *config) {
		cfg.apiKey = apiKey
	}
}

// WithTLSConfig returns an option to configure the tls config.
func WithTLSConfig(tlsConfig *tls.Config) Option {
	return func(cfg *config) {
		cfg.tlsConfig = tlsConfig
	}
}

// WithRetry returns an option to configure how many times a failed
// request is retried.
func WithRetry(retry uint64) Option {
	return func(cfg *config) {
		cfg.retry = retry
	}
}

// WithRetryDelay returns an option to configure the delay between
// retries.
func WithRetryDelay(delay time.Duration) Option {
	return func(cfg *config) {
		cfg.retryDelay = delay
	}
}
