// Package netx builds the HTTP transport used to talk to the cluster.
package netx

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"
)

// ErrNoCertificates is returned when a CA bundle holds no PEM certificate.
var ErrNoCertificates = errors.New("no certificates found")

// TLSOptions controls server certificate verification.
type TLSOptions struct {
	// CACertPath is a PEM bundle trusted in addition to the system pool.
	CACertPath string
	// Insecure disables server certificate verification.
	Insecure bool
}

// NewHTTPClient returns a client with the given per-request timeout and TLS
// settings. Redirects are not followed: the cluster API never redirects and a
// redirect would resend credentials to another location.
func NewHTTPClient(timeout time.Duration, opts TLSOptions) (*http.Client, error) {
	tlsCfg, err := newTLSConfig(opts)
	if err != nil {
		return nil, err
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = tlsCfg

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}, nil
}

func newTLSConfig(opts TLSOptions) (*tls.Config, error) {
	cfg := &tls.Config{MinVersion: tls.VersionTLS12}
	if opts.Insecure {
		cfg.InsecureSkipVerify = true //nolint:gosec // operator opted in with --insecure
		return cfg, nil
	}
	if opts.CACertPath == "" {
		return cfg, nil
	}

	pem, err := os.ReadFile(opts.CACertPath)
	if err != nil {
		return nil, fmt.Errorf("reading CA bundle: %w", err)
	}
	pool, err := x509.SystemCertPool()
	if err != nil || pool == nil {
		pool = x509.NewCertPool()
	}
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("%w in %s", ErrNoCertificates, opts.CACertPath)
	}
	cfg.RootCAs = pool
	return cfg, nil
}
