package imageboard

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/five82/chanwatch/api"
	"github.com/five82/chanwatch/internal/oops"
)

// Thread is a topic post and its replies, cached by the Board it belongs
// to. Replies are kept in ascending post number order. A Thread is not safe
// for concurrent use.
type Thread struct {
	board *Board
	id    int

	topic   *Post
	replies []*Post

	lastReplyID  int
	notFound     bool
	wantUpdate   bool
	lastModified string

	omittedPosts  int
	omittedImages int
	numReplies    int
	numImages     int
	page          int

	lastPollErr error
}

// newThreadFromListing builds a thread from a page or catalog entry. Such
// entries only carry the most recent replies, so the thread is flagged for
// an update.
func newThreadFromListing(b *Board, posts []api.PostRecord) *Thread {
	head := posts[0]
	t := &Thread{board: b, id: head.No, wantUpdate: true}
	t.setTopic(head)
	t.replies = newPosts(t, posts[1:])
	t.omittedPosts = head.OmittedPosts
	t.omittedImages = head.OmittedImages
	return t
}

// newThreadFromResponse builds a thread from a direct thread fetch. A 404
// yields nil without error.
func newThreadFromResponse(b *Board, id int, res *api.Response) (*Thread, error) {
	switch res.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, nil
	default:
		return nil, oops.New(&api.StatusError{Method: http.MethodGet, URL: b.urls.ThreadAPI(id), StatusCode: res.StatusCode}, "failed to fetch thread /%s/%d", b.name, id)
	}

	var payload api.ThreadResponse
	if err := res.JSON(&payload); err != nil {
		return nil, oops.New(err, "failed to parse thread /%s/%d", b.name, id)
	}
	if err := payload.Validate(); err != nil {
		return nil, oops.New(err, "failed to parse thread /%s/%d", b.name, id)
	}

	head := payload.Posts[0]
	if err := checkHead(id, head); err != nil {
		return nil, oops.New(err, "failed to parse thread /%s/%d", b.name, id)
	}
	t := &Thread{board: b, id: id}
	t.lastModified = res.Header.Get("Last-Modified")
	t.setTopic(head)
	t.replies = newPosts(t, payload.Posts[1:])
	t.omittedPosts = head.OmittedPosts
	t.omittedImages = head.OmittedImages
	t.lastReplyID = t.lastNumber()
	return t, nil
}

// checkHead rejects a thread body whose opening post is not the requested
// thread.
func checkHead(id int, head api.PostRecord) error {
	if head.No != id {
		return fmt.Errorf("%w: thread %d opens with post %d", api.ErrMalformed, id, head.No)
	}
	return nil
}

func (t *Thread) setTopic(head api.PostRecord) {
	t.topic = newPost(t, head)
	t.numReplies = head.Replies
	t.numImages = head.Images
}

// lastNumber is the number of the newest reply, or of the topic when there
// are no replies.
func (t *Thread) lastNumber() int {
	if n := len(t.replies); n > 0 {
		return t.replies[n-1].Number()
	}
	return t.topic.Number()
}

func (t *Thread) ID() int       { return t.id }
func (t *Thread) Board() *Board { return t.board }
func (t *Thread) Topic() *Post  { return t.topic }

// Replies returns the replies known so far, including ones marked deleted.
// The slice is a copy; the posts are shared with the thread.
func (t *Thread) Replies() []*Post {
	replies := make([]*Post, len(t.replies))
	copy(replies, t.replies)
	return replies
}

// Posts returns the topic followed by the replies.
func (t *Thread) Posts() []*Post {
	posts := make([]*Post, 0, 1+len(t.replies))
	posts = append(posts, t.topic)
	return append(posts, t.replies...)
}

// AllPosts expands the thread if the listing it came from omitted posts,
// then returns Posts.
func (t *Thread) AllPosts(ctx context.Context) ([]*Post, error) {
	if err := t.Expand(ctx); err != nil {
		return nil, err
	}
	return t.Posts(), nil
}

// LastReplyID is the watermark used by Update to append only new replies.
func (t *Thread) LastReplyID() int { return t.lastReplyID }

// NotFound reports that the last fetch returned 404.
func (t *Thread) NotFound() bool { return t.notFound }

// WantUpdate reports that the thread was built from, or seen again in, a
// listing and may be stale.
func (t *Thread) WantUpdate() bool { return t.wantUpdate }

// LastModified is the validator sent as If-Modified-Since on the next update.
func (t *Thread) LastModified() string { return t.lastModified }

func (t *Thread) OmittedPosts() int  { return t.omittedPosts }
func (t *Thread) OmittedImages() int { return t.omittedImages }

// NumReplies and NumImages are the totals reported by the server on the
// topic, which may exceed what is held locally.
func (t *Thread) NumReplies() int { return t.numReplies }
func (t *Thread) NumImages() int  { return t.numImages }

// Page is the board page the thread was last seen on through a listing, or
// zero.
func (t *Thread) Page() int { return t.page }

// Len is the number of replies the server reports.
func (t *Thread) Len() int { return t.numReplies }

// LastPollError is the transport error swallowed by the most recent Update,
// or nil when that update reached the server.
func (t *Thread) LastPollError() error { return t.lastPollErr }

func (t *Thread) Closed() bool     { return t.topic.rec.Closed.Bool() }
func (t *Thread) Sticky() bool     { return t.topic.rec.Sticky.Bool() }
func (t *Thread) Archived() bool   { return t.topic.rec.Archived.Bool() }
func (t *Thread) BumpLimit() bool  { return t.topic.rec.BumpLimit.Bool() }
func (t *Thread) ImageLimit() bool { return t.topic.rec.ImageLimit.Bool() }
func (t *Thread) CustomSpoiler() int {
	return t.topic.rec.CustomSpoiler
}

func (t *Thread) URL() string { return t.board.urls.Thread(t.id) }

func (t *Thread) SemanticSlug() string { return t.topic.SemanticSlug() }

func (t *Thread) SemanticURL() string {
	if slug := t.SemanticSlug(); slug != "" {
		return t.URL() + "/" + slug
	}
	return t.URL()
}

// Files returns every attachment in the thread, topic first.
func (t *Thread) Files() []*File {
	var files []*File
	for _, p := range t.Posts() {
		files = append(files, p.files...)
	}
	return files
}

func (t *Thread) FileURLs() []string {
	return mapFiles(t.Files(), (*File).URL)
}

func (t *Thread) ThumbnailURLs() []string {
	return mapFiles(t.Files(), (*File).ThumbnailURL)
}

func (t *Thread) Filenames() []string {
	return mapFiles(t.Files(), (*File).Filename)
}

func (t *Thread) ThumbnailFilenames() []string {
	return mapFiles(t.Files(), (*File).ThumbnailFilename)
}

func mapFiles(files []*File, fn func(*File) string) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = fn(f)
	}
	return out
}

func (t *Thread) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "/%s/%d, %d replies", t.board.Name(), t.id, len(t.replies))
	if t.omittedPosts > 0 || t.omittedImages > 0 {
		fmt.Fprintf(&b, ", %d omitted posts, %d omitted images", t.omittedPosts, t.omittedImages)
	}
	return b.String()
}
