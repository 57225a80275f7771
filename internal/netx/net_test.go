package netx

import (
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeServerCA(t *testing.T, ts *httptest.Server) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ca.pem")
	block := &pem.Block{Type: "CERTIFICATE", Bytes: ts.Certificate().Raw}
	require.NoError(t, os.WriteFile(path, pem.EncodeToMemory(block), 0o600))
	return path
}

func TestNewHTTPClient_TrustsCABundle(t *testing.T) {
	ts := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	c, err := NewHTTPClient(5*time.Second, TLSOptions{CACertPath: writeServerCA(t, ts)})
	require.NoError(t, err)

	resp, err := c.Get(ts.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestNewHTTPClient_RejectsUnknownCA(t *testing.T) {
	ts := httptest.NewTLSServer(http.NotFoundHandler())
	defer ts.Close()

	c, err := NewHTTPClient(5*time.Second, TLSOptions{})
	require.NoError(t, err)

	_, err = c.Get(ts.URL)
	assert.Error(t, err)
}

func TestNewHTTPClient_Insecure(t *testing.T) {
	ts := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	c, err := NewHTTPClient(5*time.Second, TLSOptions{Insecure: true})
	require.NoError(t, err)

	resp, err := c.Get(ts.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestNewHTTPClient_BadBundle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ca.pem")
	require.NoError(t, os.WriteFile(path, []byte("not a pem"), 0o600))

	_, err := NewHTTPClient(time.Second, TLSOptions{CACertPath: path})
	assert.ErrorIs(t, err, ErrNoCertificates)

	_, err = NewHTTPClient(time.Second, TLSOptions{CACertPath: filepath.Join(t.TempDir(), "missing.pem")})
	assert.Error(t, err)
}

func TestNewHTTPClient_DoesNotFollowRedirects(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/elsewhere", http.StatusFound)
	}))
	defer ts.Close()

	c, err := NewHTTPClient(time.Second, TLSOptions{})
	require.NoError(t, err)

	resp, err := c.Get(ts.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusFound, resp.StatusCode)
}
