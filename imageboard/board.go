package imageboard

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"

	"github.com/rs/zerolog"

	"github.com/five82/chanwatch/api"
	"github.com/five82/chanwatch/internal/oops"
)

// MetadataSource resolves board attributes. *metadata.Provider implements
// it.
type MetadataSource interface {
	Board(ctx context.Context, name string) (api.BoardInfo, error)
	Names(ctx context.Context) ([]string, error)
}

// Board fetches listings and threads of one board and caches the threads it
// has seen, keyed by id. A Board is not safe for concurrent use; give each
// goroutine its own Board or serialize access.
type Board struct {
	name    string
	urls    api.URLs
	fetcher api.Fetcher
	meta    MetadataSource

	threads map[int]*Thread
}

// NewBoard returns a Board for urls.Board(). meta may be nil, in which case
// the metadata accessors return ErrNoMetadata.
func NewBoard(fetcher api.Fetcher, urls api.URLs, meta MetadataSource) *Board {
	return &Board{
		name:    urls.Board(),
		urls:    urls,
		fetcher: fetcher,
		meta:    meta,
		threads: make(map[int]*Thread),
	}
}

func (b *Board) Name() string   { return b.name }
func (b *Board) HTTPS() bool    { return b.urls.HTTPS() }
func (b *Board) URLs() api.URLs { return b.urls }
func (b *Board) String() string { return "/" + b.name + "/" }

func (b *Board) metadata(ctx context.Context) (api.BoardInfo, error) {
	if b.meta == nil {
		return api.BoardInfo{}, ErrNoMetadata
	}
	return b.meta.Board(ctx, b.name)
}

func (b *Board) Title(ctx context.Context) (string, error) {
	info, err := b.metadata(ctx)
	return info.Title, err
}

func (b *Board) IsWorksafe(ctx context.Context) (bool, error) {
	info, err := b.metadata(ctx)
	return info.WsBoard.Bool(), err
}

func (b *Board) PageCount(ctx context.Context) (int, error) {
	info, err := b.metadata(ctx)
	return info.Pages, err
}

func (b *Board) ThreadsPerPage(ctx context.Context) (int, error) {
	info, err := b.metadata(ctx)
	return info.PerPage, err
}

type getOptions struct {
	update        bool
	failIfMissing bool
}

// GetOption adjusts GetThread.
type GetOption func(*getOptions)

// WithoutUpdate returns a cached thread as is instead of updating it first.
func WithoutUpdate() GetOption {
	return func(o *getOptions) { o.update = false }
}

// FailIfMissing makes GetThread return ErrThreadNotFound instead of a nil
// thread when the server reports 404.
func FailIfMissing() GetOption {
	return func(o *getOptions) { o.failIfMissing = true }
}

// GetThread returns the thread with the given id. A cached thread is updated
// (unless WithoutUpdate is given) and returned even when that update found it
// gone. Otherwise the thread is fetched and cached; a thread the server does
// not know yields nil, nil.
//
// When the update of a cached thread fails hard, the cached thread is
// returned together with the error.
func (b *Board) GetThread(ctx context.Context, id int, opts ...GetOption) (*Thread, error) {
	o := getOptions{update: true}
	for _, opt := range opts {
		opt(&o)
	}
	log := zerolog.Ctx(ctx)

	if t, ok := b.threads[id]; ok {
		log.Debug().Str("board", b.name).Int("thread", id).Msg("thread cache hit")
		if o.update {
			if _, err := t.Update(ctx, false); err != nil {
				return t, err
			}
		}
		return t, nil
	}

	res, err := b.fetcher.Get(ctx, b.urls.ThreadAPI(id), nil)
	if err != nil {
		return nil, oops.New(err, "failed to fetch thread /%s/%d", b.name, id)
	}
	if res.StatusCode == http.StatusNotFound && o.failIfMissing {
		return nil, fmt.Errorf("%w: /%s/%d", ErrThreadNotFound, b.name, id)
	}
	t, err := newThreadFromResponse(b, id, res)
	if err != nil || t == nil {
		return nil, err
	}
	b.threads[id] = t
	return t, nil
}

// ThreadExists asks the server whether the thread is still there without
// downloading it.
func (b *Board) ThreadExists(ctx context.Context, id int) (bool, error) {
	url := b.urls.ThreadAPI(id)
	res, err := b.fetcher.Head(ctx, url)
	if err != nil {
		return false, oops.New(err, "failed to check thread /%s/%d", b.name, id)
	}
	switch {
	case res.StatusCode >= 200 && res.StatusCode < 400:
		return true, nil
	case res.StatusCode == http.StatusNotFound:
		return false, nil
	default:
		return false, oops.New(&api.StatusError{Method: http.MethodHead, URL: url, StatusCode: res.StatusCode}, "failed to check thread /%s/%d", b.name, id)
	}
}

// GetThreads returns the threads on a board page. Pages start at 1. Threads
// already cached are returned from the cache and flagged WantUpdate; the
// listing's partial data never replaces them.
func (b *Board) GetThreads(ctx context.Context, page int) ([]*Thread, error) {
	var payload api.PageResponse
	if err := b.getJSON(ctx, b.urls.Page(page), &payload); err != nil {
		return nil, err
	}
	entries := make([][]api.PostRecord, len(payload.Threads))
	for i, entry := range payload.Threads {
		entries[i] = entry.Posts
	}
	threads, err := b.threadsFromListing(entries)
	if err != nil {
		return nil, err
	}
	for _, t := range threads {
		t.page = page
	}
	return threads, nil
}

// GetAllThreadIDs returns the id of every thread on the board, in board
// order, and refreshes the Page of cached threads.
func (b *Board) GetAllThreadIDs(ctx context.Context) ([]int, error) {
	var payload []api.ThreadListPage
	if err := b.getJSON(ctx, b.urls.ThreadList(), &payload); err != nil {
		return nil, err
	}

	perPage := 0
	if b.meta != nil {
		n, err := b.ThreadsPerPage(ctx)
		if err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("board", b.name).Msg("board metadata unavailable, using listing pages")
		} else {
			perPage = n
		}
	}

	var ids []int
	for _, listPage := range payload {
		for _, stub := range listPage.Threads {
			ids = append(ids, stub.No)
			t, ok := b.threads[stub.No]
			if !ok {
				continue
			}
			if perPage > 0 {
				t.page = (len(ids) + perPage - 1) / perPage
			} else {
				t.page = b.listingPage(listPage.Page)
			}
		}
	}
	return ids, nil
}

// GetAllThreads returns every thread on the board. Without expand it reads
// the catalog, which carries only the last few replies of each thread. With
// expand every thread is fetched in full; threads that vanish in the
// meantime are left out, cached ones included.
func (b *Board) GetAllThreads(ctx context.Context, expand bool) ([]*Thread, error) {
	if !expand {
		var payload []api.CatalogPage
		if err := b.getJSON(ctx, b.urls.Catalog(), &payload); err != nil {
			return nil, err
		}
		var entries [][]api.PostRecord
		var pages []int
		for _, catalogPage := range payload {
			for _, entry := range catalogPage.Threads {
				entries = append(entries, api.SplicePosts(entry))
				pages = append(pages, b.listingPage(catalogPage.Page))
			}
		}
		threads, err := b.threadsFromListing(entries)
		if err != nil {
			return nil, err
		}
		for i, t := range threads {
			t.page = pages[i]
		}
		return threads, nil
	}

	ids, err := b.GetAllThreadIDs(ctx)
	if err != nil {
		return nil, err
	}
	threads := make([]*Thread, 0, len(ids))
	for _, id := range ids {
		t, err := b.GetThread(ctx, id)
		if err != nil {
			return nil, err
		}
		if t == nil || t.NotFound() {
			continue
		}
		threads = append(threads, t)
	}
	return threads, nil
}

// RefreshCache updates every cached thread, or only those flagged WantUpdate.
// Every thread is tried; hard failures are joined into the returned error.
func (b *Board) RefreshCache(ctx context.Context, onlyWantUpdate bool) error {
	var errs []error
	for _, t := range b.CachedThreads() {
		if onlyWantUpdate && !t.wantUpdate {
			continue
		}
		if _, err := t.Update(ctx, false); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ClearCache forgets every cached thread.
func (b *Board) ClearCache() {
	clear(b.threads)
}

// CachedThread returns the cached thread with the given id without touching
// the network.
func (b *Board) CachedThread(id int) (*Thread, bool) {
	t, ok := b.threads[id]
	return t, ok
}

// CachedThreads returns a snapshot of the cache ordered by id.
func (b *Board) CachedThreads() []*Thread {
	threads := make([]*Thread, 0, len(b.threads))
	for _, t := range b.threads {
		threads = append(threads, t)
	}
	sort.Slice(threads, func(i, j int) bool { return threads[i].id < threads[j].id })
	return threads
}

// Len is the number of cached threads.
func (b *Board) Len() int { return len(b.threads) }

func (b *Board) threadsFromListing(entries [][]api.PostRecord) ([]*Thread, error) {
	threads := make([]*Thread, 0, len(entries))
	for _, posts := range entries {
		if err := (api.ThreadResponse{Posts: posts}).Validate(); err != nil {
			return nil, oops.New(err, "failed to parse listing of %s", b)
		}
		id := posts[0].No
		if t, ok := b.threads[id]; ok {
			t.wantUpdate = true
			threads = append(threads, t)
			continue
		}
		t := newThreadFromListing(b, posts)
		b.threads[id] = t
		threads = append(threads, t)
	}
	return threads, nil
}

// evict removes t from the cache if it is the cached thread for its id.
func (b *Board) evict(t *Thread) {
	if cached, ok := b.threads[t.id]; ok && cached == t {
		delete(b.threads, t.id)
	}
}

// restore puts a thread that came back after a 404 into the cache, unless
// the id has been fetched again in the meantime.
func (b *Board) restore(t *Thread) {
	if _, ok := b.threads[t.id]; !ok {
		b.threads[t.id] = t
	}
}

func (b *Board) listingPage(page int) int {
	if b.urls.Site().ZeroIndexedPages {
		return page + 1
	}
	return page
}

func (b *Board) getJSON(ctx context.Context, url string, dest any) error {
	res, err := b.fetcher.Get(ctx, url, nil)
	if err != nil {
		return oops.New(err, "failed to fetch %s", url)
	}
	if res.StatusCode != http.StatusOK {
		return oops.New(&api.StatusError{Method: http.MethodGet, URL: url, StatusCode: res.StatusCode}, "failed to fetch listing of %s", b)
	}
	if err := res.JSON(dest); err != nil {
		return oops.New(err, "failed to parse %s", url)
	}
	return nil
}
