package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/five82/chanwatch/internal/oops"
)

// Fetcher performs the HTTP requests the imageboard package needs. It is
// implemented by *Client and can be replaced in tests.
//
// A returned error means no response was received at all (connection
// refused, timeout, DNS failure). Every status code, including 404 and 304,
// comes back as a *Response with a nil error.
type Fetcher interface {
	Get(ctx context.Context, rawURL string, header http.Header) (*Response, error)
	Head(ctx context.Context, rawURL string) (*Response, error)
}

// Ensure Client implements Fetcher at compile time.
var _ Fetcher = (*Client)(nil)

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// JSON decodes the body into dest.
func (r *Response) JSON(dest any) error {
	if err := json.Unmarshal(r.Body, dest); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}

// StatusError reports a status code the caller did not expect.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s returned status %d", e.Method, e.URL, e.StatusCode)
}

// Client talks to the imageboard HTTP API.
type Client struct {
	http      *http.Client
	userAgent string
}

const (
	DefaultUserAgent = "chanwatch/0.1"
	defaultTimeout   = 10 * time.Second
	maxBodySize      = 64 << 20
)

// NewClient builds a Client. Empty or zero arguments select the defaults.
func NewClient(userAgent string, timeout time.Duration) *Client {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		http: &http.Client{
			Timeout: timeout,
		},
		userAgent: userAgent,
	}
}

// Get issues a GET request with the optional extra headers.
func (c *Client) Get(ctx context.Context, rawURL string, header http.Header) (*Response, error) {
	return c.do(ctx, http.MethodGet, rawURL, header)
}

// Head issues a HEAD request.
func (c *Client) Head(ctx context.Context, rawURL string) (*Response, error) {
	return c.do(ctx, http.MethodHead, rawURL, nil)
}

func (c *Client) do(ctx context.Context, method, rawURL string, header http.Header) (*Response, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, oops.New(err, "failed to create request")
	}
	for name, values := range header {
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, oops.New(err, "failed to execute %s %s", method, rawURL)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, oops.New(err, "failed to read response body from %s", rawURL)
	}
	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}
