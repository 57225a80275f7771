// Package cluster talks to the cluster REST API as the temporary user: the
// health probe that gates every privileged action, and the few API calls the
// actions themselves need.
package cluster

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// maxBodySize caps how much of a response body is read.
const maxBodySize = 4 << 20

// Credentials authenticate a request with HTTP Basic auth.
type Credentials struct {
	Username string
	Password []byte
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Body       []byte
}

// JSON decodes the body into v.
func (r *Response) JSON(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decoding response body: %w", err)
	}
	return nil
}

// Requester performs one authenticated request against the cluster.
type Requester interface {
	Do(ctx context.Context, method, path, rawQuery string, creds Credentials, body []byte) (*Response, error)
}

// Client is a Requester for a base URL such as https://localhost:9200.
type Client struct {
	base *url.URL
	http *http.Client
}

// NewClient returns a Client for baseURL using httpClient for transport.
func NewClient(baseURL string, httpClient *http.Client) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing cluster url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("cluster url %q: scheme must be http or https", baseURL)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{base: u, http: httpClient}, nil
}

// URL returns the absolute URL for path and rawQuery.
func (c *Client) URL(path, rawQuery string) string {
	u := *c.base
	u.Path = strings.TrimSuffix(u.Path, "/") + "/" + strings.TrimPrefix(path, "/")
	u.RawPath = ""
	u.RawQuery = rawQuery
	return u.String()
}

// Do sends the request and reads the whole response. Any non-nil error is a
// transport failure; HTTP error statuses are returned in the Response.
func (c *Client) Do(ctx context.Context, method, path, rawQuery string, creds Credentials, body []byte) (*Response, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.URL(path, rawQuery), rd)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(creds.Username, string(creds.Password))
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	return &Response{StatusCode: resp.StatusCode, Body: data}, nil
}
