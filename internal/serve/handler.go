package serve

import (
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"vidscript/internal/logging"
)

// contentTypes covers extensions the platform mime tables often miss.
var contentTypes = map[string]string{
	".vtt":   "text/vtt; charset=utf-8",
	".srt":   "application/x-subrip; charset=utf-8",
	".jsonl": "application/jsonl; charset=utf-8",
	".mp4":   "video/mp4",
	".m4v":   "video/mp4",
	".webm":  "video/webm",
	".mkv":   "video/x-matroska",
	".mov":   "video/quicktime",
	".mp3":   "audio/mpeg",
	".m4a":   "audio/mp4",
	".ogg":   "audio/ogg",
	".wav":   "audio/wav",
}

// Handler serves one directory tree.
type Handler struct {
	root   *os.Root
	dir    string
	logger *slog.Logger
}

// NewHandler opens dir for serving. The handler must be closed to release
// the directory.
func NewHandler(dir string, logger *slog.Logger) (*Handler, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	root, err := os.OpenRoot(abs)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Handler{root: root, dir: abs, logger: logging.NewComponentLogger(logger, "serve")}, nil
}

// Dir returns the absolute served directory.
func (h *Handler) Dir() string {
	return h.dir
}

// Close releases the served directory.
func (h *Handler) Close() error {
	return h.root.Close()
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	urlPath := path.Clean("/" + r.URL.Path)
	name := strings.TrimPrefix(urlPath, "/")
	if name == "" {
		name = "."
	}
	if hidden(name) {
		http.NotFound(w, r)
		return
	}

	info, err := h.root.Stat(name)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if info.IsDir() {
		if !strings.HasSuffix(r.URL.Path, "/") {
			http.Redirect(w, r, path.Base(urlPath)+"/", http.StatusMovedPermanently)
			return
		}
		h.serveDir(w, r, name, urlPath)
		return
	}
	h.serveFile(w, r, name)
}

func (h *Handler) serveDir(w http.ResponseWriter, r *http.Request, name, urlPath string) {
	indexName := path.Join(name, "index.html")
	if info, err := h.root.Stat(indexName); err == nil && !info.IsDir() {
		h.serveFile(w, r, indexName)
		return
	}
	entries, err := fs.ReadDir(h.root.FS(), name)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := writeListing(w, urlPath, entries); err != nil {
		h.logger.Error("could not render listing", logging.String("path", urlPath), logging.Error(err))
	}
}

func (h *Handler) serveFile(w http.ResponseWriter, r *http.Request, name string) {
	file, err := h.root.Open(name)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if ctype, ok := contentTypes[strings.ToLower(path.Ext(name))]; ok {
		w.Header().Set("Content-Type", ctype)
	}
	http.ServeContent(w, r, info.Name(), info.ModTime(), file)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		http.NotFound(w, r)
	case errors.Is(err, fs.ErrPermission):
		http.Error(w, "forbidden", http.StatusForbidden)
	default:
		h.logger.Error("could not serve", logging.String("path", r.URL.Path), logging.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

// hidden reports whether any element of a slash separated name starts with a dot.
func hidden(name string) bool {
	for _, part := range strings.Split(name, "/") {
		if part != "." && strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}
