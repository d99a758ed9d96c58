package httputil

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrUnauthenticated indicates the control plane rejected the credential.
var ErrUnauthenticated = errors.New("unauthenticated")

// Fetch performs the http request and returns the response body.
func Fetch(ctx context.Context, tlsConfig *tls.Config, req *http.Request) ([]byte, error) {
	ctx, clearTimeout := context.WithTimeout(ctx, 10*time.Second)
	defer clearTimeout()
	req = req.WithContext(ctx)

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = tlsConfig
	hc := &http.Client{
		Transport: NewLoggingRoundTripper(*log.Ctx(ctx), transport),
	}

	res, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get url: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	switch res.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, fmt.Errorf("%w: unexpected status code: %d", ErrUnauthenticated, res.StatusCode)
	}

	if res.StatusCode/100 != 2 {
		return nil, fmt.Errorf("unexpected status code: %s", res.Status)
	}

	return io.ReadAll(res.Body)
}
