package render

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"vidscript/internal/artifact"
	"vidscript/internal/fileutil"
	"vidscript/internal/logging"
	"vidscript/internal/services"
	"vidscript/internal/textutil"
	"vidscript/internal/transcript"
)

// Default asset names copied next to generated pages.
const (
	DefaultStylesheet = "vidscript.css"
	DefaultJavaScript = "vidscript.js"
)

//go:embed assets/vidscript.css assets/vidscript.js
var assets embed.FS

//go:embed templates/page.html.tmpl
var pageTemplateText string

var pageTemplate = template.Must(template.New("page").Parse(pageTemplateText))

var fallbackMimeTypes = map[string]string{
	".mp4":  "video/mp4",
	".m4v":  "video/mp4",
	".webm": "video/webm",
	".mkv":  "video/x-matroska",
	".mov":  "video/quicktime",
	".ogv":  "video/ogg",
	".mp3":  "audio/mpeg",
	".m4a":  "audio/mp4",
	".ogg":  "audio/ogg",
	".opus": "audio/ogg",
	".wav":  "audio/wav",
	".flac": "audio/flac",
}

// HTML renders the viewer page for a record stream: the media player with
// WebVTT subtitles next to the clickable transcript.
type HTML struct {
	// HeadEntries are raw markup lines appended to <head>.
	HeadEntries []string
	// Stylesheet and JavaScript override the default assets. Overrides are
	// referenced as given and never copied.
	Stylesheet string
	JavaScript string
	Logger     *slog.Logger
}

type pageData struct {
	Title       string
	Language    string
	Media       string
	MimeType    string
	Subtitles   string
	Image       string
	Stylesheet  string
	JavaScript  string
	HeadEntries []template.HTML
	Segments    []pageSegment
}

type pageSegment struct {
	Start string
	End   string
	Label string
	Text  string
	Words []pageWord
}

type pageWord struct {
	Start   string
	End     string
	Text    string
	Lead    string
	Band    string
	Percent string
}

// Name implements artifact.Converter.
func (HTML) Name() string { return "html" }

// OutputPath implements artifact.Converter.
func (HTML) OutputPath(source string) string { return artifact.ReplaceExt(source, "html") }

// Generate implements artifact.Converter.
func (h HTML) Generate(ctx context.Context, source, output string) error {
	reader, err := transcript.Open(source)
	if err != nil {
		return err
	}
	defer reader.Close()

	media := reader.MediaPath()
	mediaBase := filepath.Base(media)
	page := pageData{
		Title:     textutil.TitleFromFilename(media),
		Language:  reader.Language(),
		Media:     mediaBase,
		MimeType:  mimeType(media),
		Subtitles: artifact.ReplaceExt(mediaBase, "vtt"),
	}
	if image := artifact.ReplaceExt(media, "jpeg"); isFile(image) {
		page.Image = filepath.Base(image)
	}
	for _, entry := range h.HeadEntries {
		page.HeadEntries = append(page.HeadEntries, template.HTML(entry)) //nolint:gosec
	}

	dir := filepath.Dir(output)
	if page.Stylesheet, err = h.asset(dir, h.Stylesheet, DefaultStylesheet); err != nil {
		return err
	}
	if page.JavaScript, err = h.asset(dir, h.JavaScript, DefaultJavaScript); err != nil {
		return err
	}

	for seg := range reader.Segments() {
		if err := ctx.Err(); err != nil {
			return err
		}
		page.Segments = append(page.Segments, newPageSegment(seg))
	}
	if err := checkFinished(reader); err != nil {
		return err
	}

	return fileutil.WriteAtomic(output, func(w io.Writer) error {
		if err := pageTemplate.Execute(w, page); err != nil {
			return services.Wrap(services.ErrIO, "html", "render page", output, err)
		}
		return nil
	})
}

// asset returns the reference to use for an asset, copying the embedded
// default into dir the first time it is needed.
func (h HTML) asset(dir, override, name string) (string, error) {
	if override != "" {
		return override, nil
	}
	data, err := assets.ReadFile(path.Join("assets", name))
	if err != nil {
		return "", fmt.Errorf("read embedded %s: %w", name, err)
	}
	target := filepath.Join(dir, name)
	created, err := fileutil.WriteFileExclusive(target, data)
	if err != nil {
		return "", services.Wrap(services.ErrIO, "html", "copy asset", target, err)
	}
	logger := h.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	if created {
		logger.Info("created asset", logging.String(logging.FieldArtifact, target))
	} else {
		logger.Debug("asset already exists", logging.String(logging.FieldArtifact, target))
	}
	return name, nil
}

func newPageSegment(seg transcript.Segment) pageSegment {
	out := pageSegment{
		Start: formatSeconds(seg.Start),
		End:   formatSeconds(seg.End),
		Label: textutil.FormatTimestamp(seg.Start, false, ""),
		Text:  strings.TrimSpace(seg.Text),
		Words: make([]pageWord, 0, len(seg.Words)),
	}
	previous := ""
	for i, word := range seg.Words {
		lead := ""
		if i > 0 && !strings.HasSuffix(previous, " ") && !strings.HasPrefix(word.Text, " ") {
			lead = " "
		}
		text := word.Text
		if i == 0 {
			text = strings.TrimLeft(text, " ")
		}
		out.Words = append(out.Words, pageWord{
			Start:   formatSeconds(word.Start),
			End:     formatSeconds(word.End),
			Text:    text,
			Lead:    lead,
			Band:    textutil.ProbabilityBand(word.Probability),
			Percent: fmt.Sprintf("%.0f%%", word.Probability*100),
		})
		previous = word.Text
	}
	return out
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func mimeType(media string) string {
	ext := strings.ToLower(filepath.Ext(media))
	if value := mime.TypeByExtension(ext); value != "" {
		if mediaType, _, err := mime.ParseMediaType(value); err == nil {
			return mediaType
		}
		return value
	}
	return fallbackMimeTypes[ext]
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
