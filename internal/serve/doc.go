// Package serve is a development HTTP file server for a directory of videos
// and their generated pages.
//
// Files are served with http.ServeContent, so byte ranges (needed for media
// seeking) and If-Modified-Since revalidation work out of the box. Access is
// confined to the served directory through os.Root and hidden entries are
// never exposed. Directories without an index.html get a generated listing
// of their pages and subdirectories.
//
// Not meant for production; put a real web server or CDN in front of the
// generated files instead.
package serve
