package imageboard

import (
	"fmt"
	"strings"
	"time"

	"mvdan.cc/xurls/v2"

	"github.com/five82/chanwatch/api"
	"github.com/five82/chanwatch/htmltext"
)

var linkPattern = xurls.Strict()

// Post is a snapshot of one post as of the fetch that produced it. Only the
// merge in Thread.Update changes it afterwards: it sets Deleted and refreshes
// the file-deleted flags.
type Post struct {
	thread  *Thread
	rec     api.PostRecord
	files   []*File
	deleted bool

	textDone bool
	text     string
}

func newPost(t *Thread, rec api.PostRecord) *Post {
	rec.LastReplies = nil
	p := &Post{thread: t, rec: rec}
	if rec.HasFile() {
		p.files = append(p.files, &File{post: p, index: 0})
	}
	for i, extra := range rec.ExtraFiles {
		if extra.HasFile() {
			p.files = append(p.files, &File{post: p, index: i + 1})
		}
	}
	return p
}

func newPosts(t *Thread, recs []api.PostRecord) []*Post {
	posts := make([]*Post, len(recs))
	for i, rec := range recs {
		posts[i] = newPost(t, rec)
	}
	return posts
}

func (p *Post) Thread() *Thread { return p.thread }

// Number is the post number, unique within the board.
func (p *Post) Number() int { return p.rec.No }

func (p *Post) IsOP() bool {
	return p.thread.topic != nil && p.thread.topic.Number() == p.Number()
}

// Record returns a copy of the raw fields the post was built from.
func (p *Post) Record() api.PostRecord { return p.rec }

func (p *Post) PosterID() string    { return deref(p.rec.ID) }
func (p *Post) Name() string        { return deref(p.rec.Name) }
func (p *Post) Email() string       { return deref(p.rec.Email) }
func (p *Post) Tripcode() string    { return deref(p.rec.Trip) }
func (p *Post) Capcode() string     { return deref(p.rec.Capcode) }
func (p *Post) Country() string     { return deref(p.rec.Country) }
func (p *Post) Subject() string     { return deref(p.rec.Sub) }
func (p *Post) HTMLComment() string { return p.rec.Com }

// Comment is the HTML comment without <wbr> hints.
func (p *Post) Comment() string {
	return htmltext.StripWordBreaks(p.rec.Com)
}

// TextComment is the comment as plain text. It is computed once per Post.
func (p *Post) TextComment() string {
	if !p.textDone {
		p.text = htmltext.Clean(p.rec.Com)
		p.textDone = true
	}
	return p.text
}

// Links returns the URLs written in the comment text.
func (p *Post) Links() []string {
	return linkPattern.FindAllString(p.TextComment(), -1)
}

func (p *Post) Timestamp() int64 { return p.rec.Time }

func (p *Post) Time() time.Time { return time.Unix(p.rec.Time, 0) }

func (p *Post) Spoiler() bool { return p.rec.Spoiler.Bool() }

// Deleted reports that the post disappeared from the thread after it was
// first seen.
func (p *Post) Deleted() bool { return p.deleted }

func (p *Post) HasFile() bool { return len(p.files) > 0 }

// File returns the first attachment, or nil.
func (p *Post) File() *File {
	if len(p.files) == 0 {
		return nil
	}
	return p.files[0]
}

// Files returns every attachment in order.
func (p *Post) Files() []*File {
	files := make([]*File, len(p.files))
	copy(files, p.files)
	return files
}

// FlagURL is the country flag image of the poster, or "" when the board
// shows no flags.
func (p *Post) FlagURL() string {
	country := p.Country()
	if country == "" {
		return ""
	}
	return p.thread.board.urls.Static("country/" + strings.ToLower(country) + ".gif")
}

func (p *Post) URL() string {
	return fmt.Sprintf("%s#p%d", p.thread.URL(), p.Number())
}

func (p *Post) SemanticURL() string {
	return fmt.Sprintf("%s#p%d", p.thread.SemanticURL(), p.Number())
}

func (p *Post) SemanticSlug() string { return p.rec.SemanticURL }

func (p *Post) String() string {
	return fmt.Sprintf("/%s/%d#%d", p.thread.board.Name(), p.thread.ID(), p.Number())
}

// refreshFileState copies the file-deleted flags from a newer record of the
// same post.
func (p *Post) refreshFileState(fresh api.PostRecord) {
	if p.rec.HasFile() {
		p.rec.FileDeleted = fresh.FileDeleted
	}
	for i := range p.rec.ExtraFiles {
		if i < len(fresh.ExtraFiles) {
			p.rec.ExtraFiles[i].FileDeleted = fresh.ExtraFiles[i].FileDeleted
		}
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
