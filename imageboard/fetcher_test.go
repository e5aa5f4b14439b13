package imageboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/five82/chanwatch/api"
)

type fakeResponse struct {
	status int
	body   string
	header http.Header
	err    error
}

type fakeRequest struct {
	method string
	url    string
	header http.Header
}

// fakeFetcher serves queued responses per URL. The last response queued for
// a URL keeps being served once the others are used up.
type fakeFetcher struct {
	routes   map[string][]fakeResponse
	requests []fakeRequest
}

var _ api.Fetcher = (*fakeFetcher)(nil)

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{routes: make(map[string][]fakeResponse)}
}

func (f *fakeFetcher) on(url string, responses ...fakeResponse) {
	f.routes[url] = append(f.routes[url], responses...)
}

func (f *fakeFetcher) Get(ctx context.Context, rawURL string, header http.Header) (*api.Response, error) {
	return f.serve(http.MethodGet, rawURL, header)
}

func (f *fakeFetcher) Head(ctx context.Context, rawURL string) (*api.Response, error) {
	return f.serve(http.MethodHead, rawURL, nil)
}

func (f *fakeFetcher) serve(method, rawURL string, header http.Header) (*api.Response, error) {
	f.requests = append(f.requests, fakeRequest{method: method, url: rawURL, header: header.Clone()})
	queue := f.routes[rawURL]
	if len(queue) == 0 {
		return nil, errors.New("no route for " + rawURL)
	}
	next := queue[0]
	if len(queue) > 1 {
		f.routes[rawURL] = queue[1:]
	}
	if next.err != nil {
		return nil, next.err
	}
	return &api.Response{StatusCode: next.status, Header: next.header, Body: []byte(next.body)}, nil
}

func (f *fakeFetcher) count(rawURL string) int {
	n := 0
	for _, r := range f.requests {
		if r.url == rawURL {
			n++
		}
	}
	return n
}

func (f *fakeFetcher) last(rawURL string) fakeRequest {
	for i := len(f.requests) - 1; i >= 0; i-- {
		if f.requests[i].url == rawURL {
			return f.requests[i]
		}
	}
	return fakeRequest{}
}

func post(no int) api.PostRecord {
	return api.PostRecord{No: no, Time: int64(1600000000 + no)}
}

func posts(nos ...int) []api.PostRecord {
	recs := make([]api.PostRecord, len(nos))
	for i, no := range nos {
		recs[i] = post(no)
	}
	return recs
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(data)
}

func threadBody(t *testing.T, recs ...api.PostRecord) string {
	t.Helper()
	return mustJSON(t, api.ThreadResponse{Posts: recs})
}

func ok(body, lastModified string) fakeResponse {
	header := http.Header{}
	if lastModified != "" {
		header.Set("Last-Modified", lastModified)
	}
	return fakeResponse{status: http.StatusOK, body: body, header: header}
}

func status(code int) fakeResponse {
	return fakeResponse{status: code}
}

var testURLs = api.NewURLs(api.FourChan, "g", true)

func newTestBoard(f *fakeFetcher) *Board {
	return NewBoard(f, testURLs, nil)
}

func numbers(ps []*Post) []int {
	out := make([]int, len(ps))
	for i, p := range ps {
		out[i] = p.Number()
	}
	return out
}
