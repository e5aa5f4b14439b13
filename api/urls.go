package api

import (
	"fmt"
	"strconv"
)

// Site describes the hosts of an imageboard that speaks the 4chan JSON API.
// Derivative sites override the hosts and, where their board pages start at
// zero, ZeroIndexedPages.
type Site struct {
	API    string
	Boards string
	Files  string
	Thumbs string
	Static string

	ZeroIndexedPages bool
}

// FourChan is the default Site.
var FourChan = Site{
	API:    "a.4cdn.org",
	Boards: "boards.4chan.org",
	Files:  "i.4cdn.org",
	Thumbs: "i.4cdn.org",
	Static: "s.4cdn.org",
}

// URLs builds endpoint URLs for one board of a Site. The board may be empty
// when only BoardList is needed.
type URLs struct {
	site     Site
	board    string
	protocol string
}

func NewURLs(site Site, board string, https bool) URLs {
	protocol := "http://"
	if https {
		protocol = "https://"
	}
	return URLs{site: site, board: board, protocol: protocol}
}

func (u URLs) Board() string { return u.board }

func (u URLs) HTTPS() bool { return u.protocol == "https://" }

func (u URLs) Site() Site { return u.site }

func (u URLs) BoardList() string {
	return u.protocol + u.site.API + "/boards.json"
}

// Page returns the listing URL for a 1-indexed board page.
func (u URLs) Page(page int) string {
	if u.site.ZeroIndexedPages {
		page--
	}
	return fmt.Sprintf("%s%s/%s/%d.json", u.protocol, u.site.API, u.board, page)
}

func (u URLs) Catalog() string {
	return fmt.Sprintf("%s%s/%s/catalog.json", u.protocol, u.site.API, u.board)
}

func (u URLs) ThreadList() string {
	return fmt.Sprintf("%s%s/%s/threads.json", u.protocol, u.site.API, u.board)
}

func (u URLs) ThreadAPI(id int) string {
	return fmt.Sprintf("%s%s/%s/thread/%d.json", u.protocol, u.site.API, u.board, id)
}

// Thread is the human-facing HTML page of a thread.
func (u URLs) Thread(id int) string {
	return fmt.Sprintf("%s%s/%s/thread/%d", u.protocol, u.site.Boards, u.board, id)
}

func (u URLs) File(tim int64, ext string) string {
	return u.protocol + u.site.Files + "/" + u.board + "/" + strconv.FormatInt(tim, 10) + ext
}

func (u URLs) Thumbnail(tim int64) string {
	return u.protocol + u.site.Thumbs + "/" + u.board + "/" + strconv.FormatInt(tim, 10) + "s.jpg"
}

// Static addresses an image on the static host, such as spoiler images and
// country flags.
func (u URLs) Static(item string) string {
	return u.protocol + u.site.Static + "/image/" + item
}
