package cluster

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dmitrijs2005/runas/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCreds = Credentials{Username: "enrollment_autogenerated_abc", Password: []byte("secret")}

func TestClient_URL(t *testing.T) {
	c, err := NewClient("https://node1:9200/prefix/", nil)
	require.NoError(t, err)

	assert.Equal(t, "https://node1:9200/prefix/_cluster/health?pretty", c.URL("_cluster/health", "pretty"))
	assert.Equal(t, "https://node1:9200/prefix/_features", c.URL("/_features", ""))
}

func TestNewClient_RejectsBadURL(t *testing.T) {
	_, err := NewClient("ftp://node1", nil)
	assert.Error(t, err)

	_, err = NewClient("://", nil)
	assert.Error(t, err)
}

func TestFeatures(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/_features", r.URL.Path)
		_, _ = io.WriteString(w, `{"features":[{"name":"tasks","description":"Manages task results"},{"name":"security","description":"Manages configuration for Security features"}]}`)
	}))
	defer ts.Close()

	c, err := NewClient(ts.URL, nil)
	require.NoError(t, err)

	got, err := Features(context.Background(), c, testCreds)
	require.NoError(t, err)
	assert.Equal(t, []Feature{
		{Name: "tasks", Description: "Manages task results"},
		{Name: "security", Description: "Manages configuration for Security features"},
	}, got)
}

func TestFeatures_Errors(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	c, err := NewClient(ts.URL, nil)
	require.NoError(t, err)

	_, err = Features(context.Background(), c, testCreds)
	assert.Equal(t, common.ExitDataError, common.ExitCodeOf(err))

	ts.Close()
	_, err = Features(context.Background(), c, testCreds)
	assert.Equal(t, common.ExitUnavailable, common.ExitCodeOf(err))
}

func TestChangePassword(t *testing.T) {
	var got struct {
		Password string `json:"password"`
	}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/_security/user/elastic/_password", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = io.WriteString(w, `{}`)
	}))
	defer ts.Close()

	c, err := NewClient(ts.URL, nil)
	require.NoError(t, err)

	require.NoError(t, ChangePassword(context.Background(), c, testCreds, "elastic", []byte("n3w-pass")))
	assert.Equal(t, "n3w-pass", got.Password)
}

func TestChangePassword_UnknownUser(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	c, err := NewClient(ts.URL, nil)
	require.NoError(t, err)

	err = ChangePassword(context.Background(), c, testCreds, "ghost", []byte("x"))
	require.Error(t, err)
	assert.Equal(t, common.ExitDataError, common.ExitCodeOf(err))
	assert.Contains(t, err.Error(), "Failed to reset password for the [ghost] user")
}
