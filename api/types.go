package api

import (
	"errors"
	"fmt"
)

// ErrMalformed reports a response body that decoded but lacks required data.
var ErrMalformed = errors.New("malformed response")

// Flag is the API's 0/1 integer boolean.
type Flag int

func (f Flag) Bool() bool { return f == 1 }

// FileRecord holds the attachment fields of a post. Posts carry one inline
// (4chan) and optionally more in extra_files (vichan-style sites).
type FileRecord struct {
	Tim           int64   `json:"tim,omitempty"`
	Ext           string  `json:"ext,omitempty"`
	Filename      *string `json:"filename,omitempty"`
	Fsize         int     `json:"fsize,omitempty"`
	W             int     `json:"w,omitempty"`
	H             int     `json:"h,omitempty"`
	TnW           int     `json:"tn_w,omitempty"`
	TnH           int     `json:"tn_h,omitempty"`
	MD5           string  `json:"md5,omitempty"`
	FileDeleted   *Flag   `json:"filedeleted,omitempty"`
	Spoiler       Flag    `json:"spoiler,omitempty"`
	CustomSpoiler int     `json:"custom_spoiler,omitempty"`
}

// HasFile reports whether the record describes an attachment.
func (f FileRecord) HasFile() bool {
	return f.Filename != nil
}

// PostRecord mirrors one entry of a thread's posts array.
type PostRecord struct {
	No          int     `json:"no"`
	Resto       int     `json:"resto,omitempty"`
	Time        int64   `json:"time"`
	Now         string  `json:"now,omitempty"`
	Name        *string `json:"name,omitempty"`
	Trip        *string `json:"trip,omitempty"`
	ID          *string `json:"id,omitempty"`
	Capcode     *string `json:"capcode,omitempty"`
	Country     *string `json:"country,omitempty"`
	CountryName *string `json:"country_name,omitempty"`
	Email       *string `json:"email,omitempty"`
	Sub         *string `json:"sub,omitempty"`
	Com         string  `json:"com,omitempty"`
	SemanticURL string  `json:"semantic_url,omitempty"`

	FileRecord
	ExtraFiles []FileRecord `json:"extra_files,omitempty"`

	// Topic-only fields.
	Replies       int   `json:"replies,omitempty"`
	Images        int   `json:"images,omitempty"`
	OmittedPosts  int   `json:"omitted_posts,omitempty"`
	OmittedImages int   `json:"omitted_images,omitempty"`
	Closed        Flag  `json:"closed,omitempty"`
	Sticky        Flag  `json:"sticky,omitempty"`
	Archived      Flag  `json:"archived,omitempty"`
	BumpLimit     Flag  `json:"bumplimit,omitempty"`
	ImageLimit    Flag  `json:"imagelimit,omitempty"`
	LastModified  int64 `json:"last_modified,omitempty"`

	// Catalog entries carry a tail of recent replies.
	LastReplies []PostRecord `json:"last_replies,omitempty"`
}

// Validate checks the fields every post must carry.
func (p PostRecord) Validate() error {
	if p.No <= 0 {
		return fmt.Errorf("%w: post without no", ErrMalformed)
	}
	if p.Time == 0 {
		return fmt.Errorf("%w: post %d without time", ErrMalformed, p.No)
	}
	return nil
}

// ThreadResponse mirrors /{board}/thread/{id}.json and the entries of a page.
type ThreadResponse struct {
	Posts []PostRecord `json:"posts"`
}

// Validate checks that the thread has a head post and that every post is
// well formed.
func (t ThreadResponse) Validate() error {
	if len(t.Posts) == 0 {
		return fmt.Errorf("%w: thread without posts", ErrMalformed)
	}
	for _, p := range t.Posts {
		if err := p.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// PageResponse mirrors /{board}/{page}.json.
type PageResponse struct {
	Threads []ThreadResponse `json:"threads"`
}

// CatalogPage is one element of /{board}/catalog.json.
type CatalogPage struct {
	Page    int          `json:"page"`
	Threads []PostRecord `json:"threads"`
}

// ThreadStub is the per-thread entry of /{board}/threads.json.
type ThreadStub struct {
	No           int   `json:"no"`
	LastModified int64 `json:"last_modified,omitempty"`
	Replies      int   `json:"replies,omitempty"`
}

// ThreadListPage is one element of /{board}/threads.json.
type ThreadListPage struct {
	Page    int          `json:"page"`
	Threads []ThreadStub `json:"threads"`
}

// BoardInfo mirrors one entry of boards.json.
type BoardInfo struct {
	Board           string `json:"board"`
	Title           string `json:"title"`
	WsBoard         Flag   `json:"ws_board"`
	PerPage         int    `json:"per_page"`
	Pages           int    `json:"pages"`
	MaxFilesize     int    `json:"max_filesize,omitempty"`
	MaxCommentChars int    `json:"max_comment_chars,omitempty"`
	BumpLimit       int    `json:"bump_limit,omitempty"`
	ImageLimit      int    `json:"image_limit,omitempty"`
	MetaDescription string `json:"meta_description,omitempty"`
}

// BoardListResponse mirrors boards.json.
type BoardListResponse struct {
	Boards []BoardInfo `json:"boards"`
}

// SplicePosts flattens a catalog entry into a posts array: the head (with
// its last_replies removed) followed by the recent replies.
func SplicePosts(entry PostRecord) []PostRecord {
	replies := entry.LastReplies
	entry.LastReplies = nil
	posts := make([]PostRecord, 0, 1+len(replies))
	posts = append(posts, entry)
	posts = append(posts, replies...)
	return posts
}
