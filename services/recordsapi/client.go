// Package recordsapi is the HTTP client of the school records API.
package recordsapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo-portal/core/records"
)

const maxBodySize = 4 << 20

// StatusError is returned for any other non-2xx answer.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("records api: status %d", e.Code)
	}
	return fmt.Sprintf("records api: status %d: %s", e.Code, e.Body)
}

type tokenKey struct{}

// WithToken returns a copy of ctx carrying the bearer token sent by collections.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func tokenFrom(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

// Client talks JSON to the records API rooted at baseURL (eg. http://localhost:5294/api/v1).
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return NewClientWithHTTP(baseURL, &http.Client{Timeout: timeout})
}

func NewClientWithHTTP(baseURL string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Post sends `in` as JSON to `path` without credentials and returns the raw answer.
// Only transport failures are returned as errors; the status is left to the caller.
func (c *Client) Post(ctx context.Context, path string, in interface{}) (int, []byte, error) {
	return c.do(ctx, http.MethodPost, path, "", in)
}

// Call sends an authorized request (token from ctx) and decodes a 2xx JSON answer into out.
func (c *Client) Call(ctx context.Context, method, path string, in, out interface{}) error {
	status, body, err := c.do(ctx, method, path, tokenFrom(ctx), in)
	if err != nil {
		return err
	}

	switch {
	case status == http.StatusUnauthorized:
		return records.ErrUnauthorized
	case status == http.StatusNotFound:
		return records.ErrNotFound
	case status < 200 || status > 299:
		return &StatusError{Code: status, Body: strings.TrimSpace(string(body))}
	}

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	return errors.Wrapf(json.Unmarshal(body, out), "decoding %s %s", method, path)
}

func (c *Client) do(ctx context.Context, method, path, token string, in interface{}) (int, []byte, error) {
	var reqBody io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return 0, nil, errors.Wrap(err, "encoding request body")
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return 0, nil, errors.Wrap(err, "creating request")
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, errors.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return resp.StatusCode, nil, errors.Wrap(err, "reading response body")
	}
	return resp.StatusCode, body, nil
}
