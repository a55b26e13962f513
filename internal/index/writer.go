package index

import (
	_ "embed"
	"html/template"
	"io"
	"net/url"
	"path"
	"strings"
)

//go:embed templates/index.html.tmpl
var indexTemplateText string

var indexTemplate = template.Must(template.New("index").Parse(indexTemplateText))

// Group is the pages of one directory, relative to the aggregated root. The
// root itself has an empty Dir.
type Group struct {
	Dir   string
	Pages []Page
}

// Listing is the data an IndexWriter renders.
type Listing struct {
	Title  string
	Groups []Group
}

// IndexWriter renders a listing.
type IndexWriter interface {
	WriteIndex(w io.Writer, listing Listing) error
}

// HTMLWriter renders the default index page.
type HTMLWriter struct{}

// WriteIndex implements IndexWriter. Image references are rebased from the
// page directory to the index directory.
func (HTMLWriter) WriteIndex(w io.Writer, listing Listing) error {
	view := Listing{Title: listing.Title, Groups: make([]Group, 0, len(listing.Groups))}
	for _, group := range listing.Groups {
		pages := make([]Page, 0, len(group.Pages))
		for _, page := range group.Pages {
			page.Image = rebase(path.Dir(page.Path), page.Image)
			page.Video = rebase(path.Dir(page.Path), page.Video)
			pages = append(pages, page)
		}
		view.Groups = append(view.Groups, Group{Dir: group.Dir, Pages: pages})
	}
	return indexTemplate.Execute(w, view)
}

// rebase joins a page relative reference onto dir unless it is absolute or
// carries a scheme.
func rebase(dir, ref string) string {
	if ref == "" || strings.HasPrefix(ref, "/") {
		return ref
	}
	if parsed, err := url.Parse(ref); err != nil || parsed.Scheme != "" {
		return ref
	}
	return path.Join(dir, ref)
}
