// Package htmltext turns imageboard comment markup into plain text.
package htmltext

import (
	"strings"

	"golang.org/x/net/html"
)

// Clean returns body as plain text. Entities are decoded, <br> becomes a
// newline, links are replaced by their text and every other tag is dropped.
func Clean(body string) string {
	if body == "" {
		return ""
	}
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(body))
	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF is the only error a strings.Reader produces
			return b.String()
		case html.TextToken:
			b.Write(z.Text())
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			if string(name) == "br" {
				b.WriteByte('\n')
			}
		}
	}
}

// StripWordBreaks removes <wbr> hints while leaving the rest of the markup.
func StripWordBreaks(body string) string {
	return strings.ReplaceAll(body, "<wbr>", "")
}
