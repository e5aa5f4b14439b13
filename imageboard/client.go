package imageboard

import (
	"context"

	"github.com/five82/chanwatch/api"
	"github.com/five82/chanwatch/metadata"
)

// Client creates Boards that share one Fetcher, Site and MetadataSource.
type Client struct {
	fetcher api.Fetcher
	site    api.Site
	https   bool
	meta    MetadataSource
}

type ClientOption func(*Client)

// WithSite points the client at an API-compatible site other than 4chan.
func WithSite(site api.Site) ClientOption {
	return func(c *Client) { c.site = site }
}

// WithHTTPS selects https (the default) or plain http URLs.
func WithHTTPS(https bool) ClientOption {
	return func(c *Client) { c.https = https }
}

// WithMetadata replaces the default metadata.Provider.
func WithMetadata(meta MetadataSource) ClientOption {
	return func(c *Client) { c.meta = meta }
}

func NewClient(fetcher api.Fetcher, opts ...ClientOption) *Client {
	c := &Client{fetcher: fetcher, site: api.FourChan, https: true}
	for _, opt := range opts {
		opt(c)
	}
	if c.meta == nil {
		c.meta = metadata.New(c.fetcher, c.site, c.https)
	}
	return c
}

func (c *Client) Metadata() MetadataSource { return c.meta }

// Board returns a new Board with an empty cache. The name is not checked
// against the board list.
func (c *Client) Board(name string) *Board {
	return NewBoard(c.fetcher, api.NewURLs(c.site, name, c.https), c.meta)
}

// Boards returns a Board per name after checking each against the board
// list. Unknown names fail with ErrUnknownBoard.
func (c *Client) Boards(ctx context.Context, names ...string) ([]*Board, error) {
	boards := make([]*Board, 0, len(names))
	for _, name := range names {
		if _, err := c.meta.Board(ctx, name); err != nil {
			return nil, err
		}
		boards = append(boards, c.Board(name))
	}
	return boards, nil
}

// AllBoards returns a Board for every board the site lists.
func (c *Client) AllBoards(ctx context.Context) ([]*Board, error) {
	names, err := c.meta.Names(ctx)
	if err != nil {
		return nil, err
	}
	return c.Boards(ctx, names...)
}
