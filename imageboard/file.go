package imageboard

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"

	"github.com/five82/chanwatch/api"
	"github.com/five82/chanwatch/internal/oops"
)

// File is a read-only view of one attachment of a Post. Index 0 is the
// post's primary file, higher indexes are its extra files.
type File struct {
	post  *Post
	index int
}

func (f *File) record() *api.FileRecord {
	if f.index == 0 {
		return &f.post.rec.FileRecord
	}
	return &f.post.rec.ExtraFiles[f.index-1]
}

func (f *File) Post() *Post { return f.post }
func (f *File) Index() int  { return f.index }

// MD5 returns the decoded hash of the file contents.
func (f *File) MD5() ([]byte, error) {
	sum, err := base64.StdEncoding.DecodeString(f.record().MD5)
	if err != nil {
		return nil, oops.New(err, "failed to decode md5 of %s", f)
	}
	return sum, nil
}

// MD5Hex returns the hash as lowercase hex, or "" when it cannot be decoded.
func (f *File) MD5Hex() string {
	sum, err := f.MD5()
	if err != nil {
		return ""
	}
	return hex.EncodeToString(sum)
}

// Filename is the server-side name, tim + ext.
func (f *File) Filename() string {
	rec := f.record()
	return strconv.FormatInt(rec.Tim, 10) + rec.Ext
}

// OriginalFilename is the name the poster uploaded.
func (f *File) OriginalFilename() string {
	rec := f.record()
	return deref(rec.Filename) + rec.Ext
}

func (f *File) Extension() string    { return f.record().Ext }
func (f *File) Size() int            { return f.record().Fsize }
func (f *File) Width() int           { return f.record().W }
func (f *File) Height() int          { return f.record().H }
func (f *File) ThumbnailWidth() int  { return f.record().TnW }
func (f *File) ThumbnailHeight() int { return f.record().TnH }
func (f *File) Spoiler() bool        { return f.record().Spoiler.Bool() }

func (f *File) Deleted() bool {
	rec := f.record()
	return rec.FileDeleted != nil && rec.FileDeleted.Bool()
}

func (f *File) ThumbnailFilename() string {
	return strconv.FormatInt(f.record().Tim, 10) + "s.jpg"
}

// SpoilerImageURL is the placeholder image shown instead of the thumbnail of
// a spoilered file, or "" when the file is not spoilered. Boards with custom
// spoilers have their own image.
func (f *File) SpoilerImageURL() string {
	if !f.Spoiler() {
		return ""
	}
	t := f.post.thread
	if n := t.CustomSpoiler(); n > 0 {
		return t.board.urls.Static(fmt.Sprintf("spoiler-%s%d.png", t.board.Name(), n))
	}
	return t.board.urls.Static("spoiler.png")
}

func (f *File) URL() string {
	rec := f.record()
	return f.post.thread.board.urls.File(rec.Tim, rec.Ext)
}

func (f *File) ThumbnailURL() string {
	return f.post.thread.board.urls.Thumbnail(f.record().Tim)
}

// Fetch downloads the file.
func (f *File) Fetch(ctx context.Context) ([]byte, error) {
	return f.fetch(ctx, f.URL())
}

// FetchThumbnail downloads the thumbnail.
func (f *File) FetchThumbnail(ctx context.Context) ([]byte, error) {
	return f.fetch(ctx, f.ThumbnailURL())
}

func (f *File) fetch(ctx context.Context, url string) ([]byte, error) {
	res, err := f.post.thread.board.fetcher.Get(ctx, url, nil)
	if err != nil {
		return nil, oops.New(err, "failed to download %s", url)
	}
	if res.StatusCode != http.StatusOK {
		return nil, oops.New(&api.StatusError{Method: http.MethodGet, URL: url, StatusCode: res.StatusCode}, "failed to download %s", url)
	}
	return res.Body, nil
}

func (f *File) String() string {
	return fmt.Sprintf("%s from %s", f.Filename(), f.post)
}
