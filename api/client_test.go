package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient("", 0)
	if c.userAgent != DefaultUserAgent {
		t.Fatalf("userAgent = %q, want %q", c.userAgent, DefaultUserAgent)
	}
	if c.http.Timeout != defaultTimeout {
		t.Fatalf("timeout = %v, want %v", c.http.Timeout, defaultTimeout)
	}
}

func TestClient_GetForwardsHeadersAndReturnsEveryStatus(t *testing.T) {
	t.Parallel()

	var gotIfModified, gotUserAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotIfModified = r.Header.Get("If-Modified-Since")
		gotUserAgent = r.Header.Get("User-Agent")
		switch r.URL.Path {
		case "/ok":
			w.Header().Set("Last-Modified", "Mon, 02 Jan 2006 15:04:05 GMT")
			_, _ = w.Write([]byte(`{"posts":[{"no":1,"time":2}]}`))
		case "/unchanged":
			w.WriteHeader(http.StatusNotModified)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	c := NewClient("chanwatch-test/1", time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	header := http.Header{}
	header.Set("If-Modified-Since", "yesterday")
	res, err := c.Get(ctx, server.URL+"/ok", header)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if res.StatusCode != http.StatusOK {
		t.Fatalf("StatusCode = %d, want 200", res.StatusCode)
	}
	if gotIfModified != "yesterday" {
		t.Fatalf("If-Modified-Since = %q, want yesterday", gotIfModified)
	}
	if gotUserAgent != "chanwatch-test/1" {
		t.Fatalf("User-Agent = %q, want chanwatch-test/1", gotUserAgent)
	}
	if res.Header.Get("Last-Modified") == "" {
		t.Fatalf("Last-Modified header missing")
	}
	var payload ThreadResponse
	if err := res.JSON(&payload); err != nil {
		t.Fatalf("JSON returned error: %v", err)
	}
	if len(payload.Posts) != 1 || payload.Posts[0].No != 1 {
		t.Fatalf("payload = %#v, want one post no=1", payload)
	}

	res, err = c.Get(ctx, server.URL+"/unchanged", nil)
	if err != nil || res.StatusCode != http.StatusNotModified {
		t.Fatalf("Get unchanged = %v, %v; want 304", res, err)
	}

	res, err = c.Head(ctx, server.URL+"/missing")
	if err != nil || res.StatusCode != http.StatusNotFound {
		t.Fatalf("Head missing = %v, %v; want 404", res, err)
	}
}

func TestClient_TransportFailureIsAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := server.URL
	server.Close()

	_, err := NewClient("", time.Second).Get(context.Background(), addr+"/gone", nil)
	if err == nil {
		t.Fatalf("Get returned nil error for closed server")
	}
}

func TestResponse_JSONMalformed(t *testing.T) {
	res := &Response{StatusCode: 200, Body: []byte("{not-json")}
	var payload ThreadResponse
	err := res.JSON(&payload)
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("JSON error = %v, want ErrMalformed", err)
	}
}

func TestStatusError_Message(t *testing.T) {
	err := &StatusError{Method: http.MethodGet, URL: "http://x/y", StatusCode: 500}
	if !strings.Contains(err.Error(), "returned status 500") {
		t.Fatalf("Error() = %q, want status 500", err.Error())
	}
}
