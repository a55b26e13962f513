package index

import (
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Page describes one HTML page for the index.
type Page struct {
	// Path is relative to the aggregated root, using forward slashes.
	Path  string
	Title string
	// Image and Video are the og:image and og:video references as written
	// in the page, relative to the page itself.
	Image string
	Video string
}

// ParseHead extracts the page title and Open Graph image and video from the
// <head> of an HTML document. Scanning stops at </head> or <body>. When no
// title is found the relative path is used instead.
func ParseHead(r io.Reader, relPath string) Page {
	page := Page{Path: relPath}
	var title strings.Builder
	inHead, inTitle := false, false

	z := html.NewTokenizer(r)
scan:
	for {
		switch z.Next() {
		case html.ErrorToken:
			break scan
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			switch atom.Lookup(name) {
			case atom.Head:
				inHead = true
			case atom.Body:
				break scan
			case atom.Title:
				inTitle = inHead
			case atom.Meta:
				if inHead && hasAttr {
					readMeta(z, &page)
				}
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			switch atom.Lookup(name) {
			case atom.Head:
				break scan
			case atom.Title:
				inTitle = false
			}
		case html.TextToken:
			if inTitle {
				title.Write(z.Text())
			}
		}
	}

	page.Title = strings.TrimSpace(title.String())
	if page.Title == "" {
		page.Title = relPath
	}
	return page
}

func readMeta(z *html.Tokenizer, page *Page) {
	var property, content string
	for {
		key, value, more := z.TagAttr()
		switch string(key) {
		case "property":
			property = string(value)
		case "content":
			content = strings.TrimSpace(string(value))
		}
		if !more {
			break
		}
	}
	if content == "" {
		return
	}
	switch property {
	case "og:image":
		page.Image = content
	case "og:video":
		page.Video = content
	}
}
