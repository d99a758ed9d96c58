package tunnel

import (
	"fmt"
	"net"
	"time"
)

type config struct {
	remoteHost  string
	remotePort  uint16
	localHost   string
	localPort   uint16
	secretKey   string
	authTimeout time.Duration
	onRequest   func(RequestInfo)
	localTLS    LocalTLS
}

func getConfig(options ...Option) *config {
	cfg := &config{
		localHost:   "localhost",
		authTimeout: defaultAuthTimeout,
		// the local leg targets the operator's own machine, so trust is
		// permissive unless configured otherwise
		localTLS: LocalTLS{AllowInvalidCert: true},
	}
	for _, o := range options {
		o(cfg)
	}
	return cfg
}

// An Option modifies the config.
type Option func(*config)

// WithRemoteHost returns an option to configure the rendezvous host.
func WithRemoteHost(host string) Option {
	return func(cfg *config) {
		cfg.remoteHost = host
	}
}

// WithRemotePort returns an option to configure the rendezvous port.
func WithRemotePort(port uint16) Option {
	return func(cfg *config) {
		cfg.remotePort = port
	}
}

// WithLocalHost returns an option to configure the local server host.
func WithLocalHost(host string) Option {
	return func(cfg *config) {
		cfg.localHost = host
	}
}

// WithLocalPort returns an option to configure the local server port.
func WithLocalPort(port uint16) Option {
	return func(cfg *config) {
		cfg.localPort = port
	}
}

// WithSecretKey returns an option to configure the pre-shared key sent in
// the auth frame. An empty key disables authentication.
func WithSecretKey(key string) Option {
	return func(cfg *config) {
		cfg.secretKey = key
	}
}

// WithAuthTimeout returns an option to configure the auth deadline.
func WithAuthTimeout(timeout time.Duration) Option {
	return func(cfg *config) {
		cfg.authTimeout = timeout
	}
}

// WithRequestObserver returns an option to configure a sink notified of
// HTTP request lines observed on the tunnel. Observation is best-effort
// and never alters the forwarded bytes.
func WithRequestObserver(observe func(RequestInfo)) Option {
	return func(cfg *config) {
		cfg.onRequest = observe
	}
}

// WithLocalTLS returns an option to configure TLS on the local leg.
func WithLocalTLS(localTLS LocalTLS) Option {
	return func(cfg *config) {
		cfg.localTLS = localTLS
	}
}

func (cfg *config) remoteAddr() string {
	return net.JoinHostPort(cfg.remoteHost, fmt.Sprint(cfg.remotePort))
}

// rewriteHost reports whether forwarded requests need their Host header
// rewritten. Loopback hosts are served as-is.
func (cfg *config) rewriteHost() bool {
	return cfg.localHost != "localhost" && cfg.localHost != "127.0.0.1"
}
