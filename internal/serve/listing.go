package serve

import (
	_ "embed"
	"html/template"
	"io"
	"io/fs"
	"path"
	"sort"
	"strings"

	"vidscript/internal/textutil"
)

//go:embed templates/listing.html.tmpl
var listingTemplateText string

var listingTemplate = template.Must(template.New("listing").Parse(listingTemplateText))

type listingEntry struct {
	Href  string
	Title string
}

type listingView struct {
	Path   string
	Parent bool
	Dirs   []listingEntry
	Pages  []listingEntry
}

// writeListing renders the subdirectories and HTML pages of one directory.
// Other files are reachable but not listed.
func writeListing(w io.Writer, urlPath string, entries []fs.DirEntry) error {
	view := listingView{Path: urlPath, Parent: urlPath != "/"}
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		switch {
		case entry.IsDir():
			view.Dirs = append(view.Dirs, listingEntry{Href: name + "/", Title: name})
		case strings.EqualFold(path.Ext(name), ".html"):
			view.Pages = append(view.Pages, listingEntry{Href: name, Title: textutil.TitleFromFilename(name)})
		}
	}
	sort.Slice(view.Dirs, func(i, j int) bool { return view.Dirs[i].Href < view.Dirs[j].Href })
	sort.Slice(view.Pages, func(i, j int) bool { return view.Pages[i].Href < view.Pages[j].Href })
	return listingTemplate.Execute(w, view)
}
