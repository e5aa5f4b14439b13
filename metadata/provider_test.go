package metadata

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/chanwatch/api"
)

const boardList = `{"boards":[
	{"board":"g","title":"Technology","ws_board":1,"per_page":15,"pages":10},
	{"board":"b","title":"Random","ws_board":0,"per_page":15,"pages":10}
]}`

type countingFetcher struct {
	calls  atomic.Int32
	status int
	err    error
}

func (f *countingFetcher) Get(ctx context.Context, rawURL string, header http.Header) (*api.Response, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	status := f.status
	if status == 0 {
		status = http.StatusOK
	}
	return &api.Response{StatusCode: status, Body: []byte(boardList)}, nil
}

func (f *countingFetcher) Head(ctx context.Context, rawURL string) (*api.Response, error) {
	return nil, errors.New("not used")
}

func TestProvider_FetchesOnceAndLooksUp(t *testing.T) {
	fetcher := &countingFetcher{}
	p := New(fetcher, api.FourChan, true)
	ctx := context.Background()

	info, err := p.Board(ctx, "g")
	require.NoError(t, err)
	assert.Equal(t, "Technology", info.Title)
	assert.True(t, info.WsBoard.Bool())
	assert.Equal(t, 15, info.PerPage)

	names, err := p.Names(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "g"}, names)

	_, err = p.Board(ctx, "nope")
	assert.True(t, errors.Is(err, ErrUnknownBoard))

	assert.Equal(t, int32(1), fetcher.calls.Load())

	p.Reset()
	_, err = p.Board(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, int32(2), fetcher.calls.Load())
}

func TestProvider_ConcurrentCallersShareFetch(t *testing.T) {
	fetcher := &countingFetcher{}
	p := New(fetcher, api.FourChan, true)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := p.Board(context.Background(), "g")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, fetcher.calls.Load(), int32(8))
	calls := fetcher.calls.Load()
	_, err := p.Boards(context.Background())
	require.NoError(t, err)
	assert.Equal(t, calls, fetcher.calls.Load(), "memoized list must not be refetched")
}

func TestProvider_FailuresAreNotMemoized(t *testing.T) {
	fetcher := &countingFetcher{status: http.StatusInternalServerError}
	p := New(fetcher, api.FourChan, false)

	_, err := p.Board(context.Background(), "g")
	var statusErr *api.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)

	fetcher.status = http.StatusOK
	_, err = p.Board(context.Background(), "g")
	require.NoError(t, err)
	assert.Equal(t, int32(2), fetcher.calls.Load())
}
