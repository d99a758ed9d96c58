package tunnel

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net"
	"os"
)

// LocalTLS configures the optional TLS leg toward the local server.
type LocalTLS struct {
	// Enabled switches the local leg from plain TCP to TLS.
	Enabled bool
	// AllowInvalidCert disables server certificate verification.
	AllowInvalidCert bool
	// CertFile and KeyFile hold the PEM client certificate presented to
	// the local server when verification is enabled.
	CertFile string
	KeyFile  string
	// CAFile optionally holds a PEM bundle trusted for the local server.
	CAFile string
}

// clientConfig builds the tls.Config for the local leg. File reads happen
// here, at connection time.
func (l LocalTLS) clientConfig() (*tls.Config, error) {
	if l.AllowInvalidCert {
		return &tls.Config{InsecureSkipVerify: true}, nil
	}

	cert, err := tls.LoadX509KeyPair(l.CertFile, l.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("%w: loading client cert: %v", ErrLocalConfig, err)
	}
	cfg := &tls.Config{Certificates: []tls.Certificate{cert}}

	if l.CAFile != "" {
		pem, err := os.ReadFile(l.CAFile)
		if err != nil {
			return nil, fmt.Errorf("%w: loading ca bundle: %v", ErrLocalConfig, err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("%w: no certificates in %s", ErrLocalConfig, l.CAFile)
		}
		cfg.RootCAs = pool
	}
	return cfg, nil
}

// dialLocal opens the connection to the local server, plain or TLS
// depending on cfg. Refused connections are labeled so the session can
// report them distinctly.
func dialLocal(ctx context.Context, host string, port uint16, cfg LocalTLS) (net.Conn, error) {
	addr := net.JoinHostPort(host, fmt.Sprint(port))

	if !cfg.Enabled {
		conn, err := (&net.Dialer{}).DialContext(ctx, "tcp", addr)
		if err != nil {
			return nil, labelRefused(fmt.Errorf("failed to connect to local server: %w", err))
		}
		return conn, nil
	}

	tlsCfg, err := cfg.clientConfig()
	if err != nil {
		return nil, err
	}
	conn, err := (&tls.Dialer{Config: tlsCfg}).DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, labelRefused(fmt.Errorf("failed to connect to local server: %w", err))
	}
	return conn, nil
}
