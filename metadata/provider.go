// Package metadata resolves board attributes (title, worksafe flag, page
// counts) from the site's board list. A Provider fetches the list once and
// keeps it for its own lifetime; share one Provider between Boards of the
// same site.
package metadata

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/five82/chanwatch/api"
	"github.com/five82/chanwatch/internal/oops"
)

// ErrUnknownBoard is returned for names missing from the board list.
var ErrUnknownBoard = errors.New("unknown board")

// Provider memoizes the board list of one site. It is safe for concurrent
// use.
type Provider struct {
	fetcher api.Fetcher
	urls    api.URLs
	sf      singleflight.Group

	mu     sync.RWMutex
	boards map[string]api.BoardInfo
}

func New(fetcher api.Fetcher, site api.Site, https bool) *Provider {
	return &Provider{
		fetcher: fetcher,
		urls:    api.NewURLs(site, "", https),
	}
}

// Board returns the metadata for the named board, loading the board list on
// first use.
func (p *Provider) Board(ctx context.Context, name string) (api.BoardInfo, error) {
	boards, err := p.load(ctx)
	if err != nil {
		return api.BoardInfo{}, err
	}
	info, ok := boards[name]
	if !ok {
		return api.BoardInfo{}, fmt.Errorf("%w: %q", ErrUnknownBoard, name)
	}
	return info, nil
}

// Boards returns every board, sorted by name.
func (p *Provider) Boards(ctx context.Context) ([]api.BoardInfo, error) {
	boards, err := p.load(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]api.BoardInfo, 0, len(boards))
	for _, info := range boards {
		result = append(result, info)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Board < result[j].Board })
	return result, nil
}

// Names returns every board name, sorted.
func (p *Provider) Names(ctx context.Context) ([]string, error) {
	boards, err := p.Boards(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(boards))
	for i, info := range boards {
		names[i] = info.Board
	}
	return names, nil
}

// Reset forgets the memoized list so the next call fetches it again.
func (p *Provider) Reset() {
	p.mu.Lock()
	p.boards = nil
	p.mu.Unlock()
}

func (p *Provider) cached() map[string]api.BoardInfo {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.boards
}

func (p *Provider) load(ctx context.Context) (map[string]api.BoardInfo, error) {
	if boards := p.cached(); boards != nil {
		return boards, nil
	}
	v, err, _ := p.sf.Do("boards", func() (interface{}, error) {
		if boards := p.cached(); boards != nil {
			return boards, nil
		}
		boards, err := p.fetch(ctx)
		if err != nil {
			return nil, err
		}
		p.mu.Lock()
		p.boards = boards
		p.mu.Unlock()
		return boards, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(map[string]api.BoardInfo), nil
}

func (p *Provider) fetch(ctx context.Context) (map[string]api.BoardInfo, error) {
	url := p.urls.BoardList()
	res, err := p.fetcher.Get(ctx, url, nil)
	if err != nil {
		return nil, oops.New(err, "failed to fetch board list")
	}
	if res.StatusCode != http.StatusOK {
		return nil, oops.New(&api.StatusError{Method: http.MethodGet, URL: url, StatusCode: res.StatusCode}, "failed to fetch board list")
	}
	var payload api.BoardListResponse
	if err := res.JSON(&payload); err != nil {
		return nil, oops.New(err, "failed to parse board list")
	}
	boards := make(map[string]api.BoardInfo, len(payload.Boards))
	for _, info := range payload.Boards {
		boards[info.Board] = info
	}
	zerolog.Ctx(ctx).Debug().Int("boards", len(boards)).Msg("loaded board metadata")
	return boards, nil
}
