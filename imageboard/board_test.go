package imageboard

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/chanwatch/api"
)

type staticMetadata map[string]api.BoardInfo

func (m staticMetadata) Board(ctx context.Context, name string) (api.BoardInfo, error) {
	info, ok := m[name]
	if !ok {
		return api.BoardInfo{}, ErrUnknownBoard
	}
	return info, nil
}

func (m staticMetadata) Names(ctx context.Context) ([]string, error) {
	var names []string
	for name := range m {
		names = append(names, name)
	}
	return names, nil
}

func TestGetThread_CacheHitUpdatesAndReturnsSameObject(t *testing.T) {
	f := newFakeFetcher()
	f.on(threadURL,
		ok(threadBody(t, posts(42, 10)...), "T1"),
		ok(threadBody(t, posts(42, 10, 11)...), "T2"),
	)
	b := newTestBoard(f)

	first, err := b.GetThread(context.Background(), 42)
	require.NoError(t, err)
	second, err := b.GetThread(context.Background(), 42)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 2, f.count(threadURL))
	assert.Equal(t, []int{10, 11}, numbers(second.Replies()))

	third, err := b.GetThread(context.Background(), 42, WithoutUpdate())
	require.NoError(t, err)
	assert.Same(t, first, third)
	assert.Equal(t, 2, f.count(threadURL), "WithoutUpdate must not hit the network")
}

func TestGetThread_CacheHitReturnsThreadThatJustWentAway(t *testing.T) {
	f := newFakeFetcher()
	f.on(threadURL, ok(threadBody(t, posts(42, 10)...), "T1"), status(http.StatusNotFound))
	b := newTestBoard(f)
	first, err := b.GetThread(context.Background(), 42)
	require.NoError(t, err)

	again, err := b.GetThread(context.Background(), 42)

	require.NoError(t, err)
	assert.Same(t, first, again)
	assert.True(t, again.NotFound())
	assert.Equal(t, 0, b.Len())
}

func TestGetThread_MissingThread(t *testing.T) {
	f := newFakeFetcher()
	f.on(threadURL, status(http.StatusNotFound))
	b := newTestBoard(f)

	th, err := b.GetThread(context.Background(), 42)
	assert.NoError(t, err)
	assert.Nil(t, th)
	assert.Equal(t, 0, b.Len(), "nil results are never cached")

	th, err = b.GetThread(context.Background(), 42, FailIfMissing())
	assert.Nil(t, th)
	assert.ErrorIs(t, err, ErrThreadNotFound)
}

func TestGetThread_DirectFetchState(t *testing.T) {
	f := newFakeFetcher()
	f.on(threadURL, ok(threadBody(t, post(42)), "Wed, 01 Jan 2025 00:00:00 GMT"))
	b := newTestBoard(f)

	th, err := b.GetThread(context.Background(), 42)

	require.NoError(t, err)
	assert.Equal(t, 42, th.ID())
	assert.Equal(t, 42, th.LastReplyID(), "watermark falls back to the topic")
	assert.False(t, th.WantUpdate())
	assert.Equal(t, "Wed, 01 Jan 2025 00:00:00 GMT", th.LastModified())
	assert.Empty(t, th.Replies())
	cached, ok := b.CachedThread(42)
	require.True(t, ok)
	assert.Same(t, th, cached)
}

func TestGetThread_ErrorsPropagate(t *testing.T) {
	f := newFakeFetcher()
	f.on(threadURL, status(http.StatusForbidden))
	b := newTestBoard(f)

	_, err := b.GetThread(context.Background(), 42)
	var statusErr *api.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusForbidden, statusErr.StatusCode)

	f = newFakeFetcher()
	f.on(threadURL, fakeResponse{err: errors.New("dial tcp: refused")})
	_, err = newTestBoard(f).GetThread(context.Background(), 42)
	assert.Error(t, err, "initial fetches do not swallow transport errors")
}

func TestGetThread_HeadMustMatchRequestedID(t *testing.T) {
	f := newFakeFetcher()
	f.on(threadURL, ok(threadBody(t, posts(77, 78)...), ""))
	b := newTestBoard(f)

	th, err := b.GetThread(context.Background(), 42)

	assert.Nil(t, th)
	assert.ErrorIs(t, err, api.ErrMalformed)
	assert.Equal(t, 0, b.Len())
}

func TestGetThreads_CacheWinsOverListing(t *testing.T) {
	f := newFakeFetcher()
	f.on(threadURL, ok(threadBody(t, posts(42, 10, 11, 12)...), "T1"))
	f.on(testURLs.Page(2), ok(mustJSON(t, api.PageResponse{Threads: []api.ThreadResponse{
		{Posts: posts(42, 12)},
		{Posts: posts(77, 78)},
	}}), ""))
	b := newTestBoard(f)
	cached, err := b.GetThread(context.Background(), 42)
	require.NoError(t, err)
	replies := cached.Replies()
	topic := cached.Topic()

	threads, err := b.GetThreads(context.Background(), 2)

	require.NoError(t, err)
	require.Len(t, threads, 2)
	assert.Same(t, cached, threads[0])
	assert.True(t, cached.WantUpdate())
	assert.Same(t, topic, cached.Topic())
	assert.Equal(t, replies, cached.Replies())
	assert.Equal(t, 2, cached.Page())

	fresh := threads[1]
	assert.Equal(t, 77, fresh.ID())
	assert.True(t, fresh.WantUpdate())
	assert.Equal(t, 0, fresh.LastReplyID())
	assert.Equal(t, []int{78}, numbers(fresh.Replies()))
	assert.Equal(t, 2, b.Len())
}

func TestGetAllThreads_CatalogSplicesLastReplies(t *testing.T) {
	head := post(42)
	head.OmittedPosts = 3
	head.LastReplies = posts(50, 51)
	f := newFakeFetcher()
	f.on(testURLs.Catalog(), ok(mustJSON(t, []api.CatalogPage{
		{Page: 1, Threads: []api.PostRecord{head}},
		{Page: 2, Threads: []api.PostRecord{post(60)}},
	}), ""))
	b := newTestBoard(f)

	threads, err := b.GetAllThreads(context.Background(), false)

	require.NoError(t, err)
	require.Len(t, threads, 2)
	assert.Equal(t, []int{50, 51}, numbers(threads[0].Replies()))
	assert.Nil(t, threads[0].Topic().Record().LastReplies)
	assert.Equal(t, 3, threads[0].OmittedPosts())
	assert.Equal(t, 1, threads[0].Page())
	assert.Equal(t, 60, threads[1].ID())
	assert.Equal(t, 2, threads[1].Page())
}

func TestGetAllThreads_ExpandFetchesEachAndDropsMissing(t *testing.T) {
	f := newFakeFetcher()
	f.on(testURLs.ThreadList(), ok(mustJSON(t, []api.ThreadListPage{
		{Page: 1, Threads: []api.ThreadStub{{No: 42}, {No: 43}}},
		{Page: 2, Threads: []api.ThreadStub{{No: 44}, {No: 45}}},
	}), ""))
	f.on(testURLs.ThreadAPI(42), ok(threadBody(t, posts(42, 100)...), ""))
	f.on(testURLs.ThreadAPI(43), status(http.StatusNotFound))
	f.on(testURLs.ThreadAPI(44), ok(threadBody(t, post(44)), ""))
	f.on(testURLs.ThreadAPI(45), ok(threadBody(t, post(45)), ""), status(http.StatusNotFound))
	b := newTestBoard(f)
	cached, err := b.GetThread(context.Background(), 45)
	require.NoError(t, err)
	require.NotNil(t, cached)

	threads, err := b.GetAllThreads(context.Background(), true)

	require.NoError(t, err)
	require.Len(t, threads, 2)
	assert.Equal(t, 42, threads[0].ID())
	assert.Equal(t, 44, threads[1].ID())
	assert.True(t, cached.NotFound(), "cached thread went away on update")
	assert.Equal(t, 2, b.Len())
}

func TestGetAllThreadIDs_AssignsPages(t *testing.T) {
	f := newFakeFetcher()
	f.on(testURLs.ThreadList(), ok(mustJSON(t, []api.ThreadListPage{
		{Page: 1, Threads: []api.ThreadStub{{No: 40}, {No: 41}}},
		{Page: 2, Threads: []api.ThreadStub{{No: 42}}},
	}), ""))
	f.on(threadURL, ok(threadBody(t, post(42)), ""))

	b := newTestBoard(f)
	th, err := b.GetThread(context.Background(), 42)
	require.NoError(t, err)
	ids, err := b.GetAllThreadIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{40, 41, 42}, ids)
	assert.Equal(t, 2, th.Page(), "listing page without metadata")

	withMeta := NewBoard(f, testURLs, staticMetadata{"g": {Board: "g", PerPage: 1}})
	th, err = withMeta.GetThread(context.Background(), 42)
	require.NoError(t, err)
	_, err = withMeta.GetAllThreadIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, th.Page(), "third thread at one thread per page")
}

func TestRefreshCache_SurvivesEvictionDuringIteration(t *testing.T) {
	f := newFakeFetcher()
	for _, id := range []int{1, 2, 3} {
		f.on(testURLs.ThreadAPI(id), ok(threadBody(t, posts(id, id*10)...), "T1"))
	}
	f.on(testURLs.ThreadAPI(2), status(http.StatusNotFound))
	f.on(testURLs.ThreadAPI(1), ok(threadBody(t, posts(1, 10, 11)...), "T2"))
	f.on(testURLs.ThreadAPI(3), status(http.StatusNotModified))
	b := newTestBoard(f)
	for _, id := range []int{1, 2, 3} {
		_, err := b.GetThread(context.Background(), id)
		require.NoError(t, err)
	}

	require.NoError(t, b.RefreshCache(context.Background(), false))

	assert.Equal(t, 2, b.Len())
	one, _ := b.CachedThread(1)
	assert.Equal(t, []int{10, 11}, numbers(one.Replies()))
	for _, id := range []int{1, 2, 3} {
		assert.Equal(t, 2, f.count(testURLs.ThreadAPI(id)))
	}
}

func TestRefreshCache_OnlyWantUpdateAndJoinedErrors(t *testing.T) {
	f := newFakeFetcher()
	f.on(threadURL, ok(threadBody(t, posts(42, 10)...), "T1"), status(http.StatusBadGateway))
	f.on(testURLs.Page(1), ok(mustJSON(t, api.PageResponse{Threads: []api.ThreadResponse{
		{Posts: posts(77, 78)},
	}}), ""))
	f.on(testURLs.ThreadAPI(77), ok(threadBody(t, posts(77, 78, 79)...), "T1"))
	b := newTestBoard(f)
	_, err := b.GetThread(context.Background(), 42)
	require.NoError(t, err)
	_, err = b.GetThreads(context.Background(), 1)
	require.NoError(t, err)
	listed, _ := b.CachedThread(77)
	direct, _ := b.CachedThread(42)
	direct.wantUpdate = false

	require.NoError(t, b.RefreshCache(context.Background(), true))
	assert.Equal(t, 1, f.count(threadURL), "thread without WantUpdate is skipped")
	assert.False(t, listed.WantUpdate())
	assert.Equal(t, []int{78, 79}, numbers(listed.Replies()))

	err = b.RefreshCache(context.Background(), false)
	var statusErr *api.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
	assert.Equal(t, 2, f.count(testURLs.ThreadAPI(77)), "other threads are still refreshed")
}

func TestClearCache(t *testing.T) {
	f := newFakeFetcher()
	f.on(threadURL, ok(threadBody(t, post(42)), ""))
	b := newTestBoard(f)
	other := NewBoard(f, testURLs, nil)
	_, err := b.GetThread(context.Background(), 42)
	require.NoError(t, err)
	_, err = other.GetThread(context.Background(), 42)
	require.NoError(t, err)

	b.ClearCache()

	assert.Equal(t, 0, b.Len())
	assert.Equal(t, 1, other.Len())
}

func TestThreadExists(t *testing.T) {
	f := newFakeFetcher()
	f.on(threadURL, status(http.StatusOK))
	f.on(testURLs.ThreadAPI(43), status(http.StatusNotFound))
	f.on(testURLs.ThreadAPI(44), status(http.StatusServiceUnavailable))
	b := newTestBoard(f)

	exists, err := b.ThreadExists(context.Background(), 42)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, http.MethodHead, f.last(threadURL).method)

	exists, err = b.ThreadExists(context.Background(), 43)
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = b.ThreadExists(context.Background(), 44)
	assert.Error(t, err)
}

func TestBoardMetadata(t *testing.T) {
	meta := staticMetadata{"g": {Board: "g", Title: "Technology", WsBoard: 1, Pages: 10, PerPage: 15}}
	b := NewBoard(newFakeFetcher(), testURLs, meta)
	ctx := context.Background()

	title, err := b.Title(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Technology", title)
	worksafe, err := b.IsWorksafe(ctx)
	require.NoError(t, err)
	assert.True(t, worksafe)
	pages, err := b.PageCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, pages)
	perPage, err := b.ThreadsPerPage(ctx)
	require.NoError(t, err)
	assert.Equal(t, 15, perPage)

	_, err = newTestBoard(newFakeFetcher()).Title(ctx)
	assert.ErrorIs(t, err, ErrNoMetadata)
}
