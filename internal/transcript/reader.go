package transcript

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"path/filepath"

	"vidscript/internal/services"
)

// Reader reads a finished record stream. Segments can be iterated once; open
// the file again to iterate a second time.
type Reader struct {
	path      string
	file      *os.File
	buf       *bufio.Reader
	header    Header
	mediaPath string
	finished  *Terminal
	err       error
	consumed  bool
}

// Open validates the header of the stream at path. Malformed headers,
// unknown encoder versions and missing header fields are reported as
// services.ErrFormat.
func Open(path string) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, services.Wrap(services.ErrIO, "transcript", "open", path, err)
	}
	r := &Reader{
		path: path,
		file: file,
		buf:  bufio.NewReader(file),
	}
	if err := r.readHeader(); err != nil {
		_ = file.Close()
		return nil, err
	}
	return r, nil
}

func (r *Reader) readHeader() error {
	line, _, err := r.readLine()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return r.formatError("missing header", nil)
		}
		return err
	}
	var raw rawRecord
	if err := json.Unmarshal(line, &raw); err != nil {
		return r.formatError("invalid header", err)
	}
	if len(raw.Header) == 0 || bytes.Equal(raw.Header, []byte("null")) {
		return r.formatError("first record is not a header", nil)
	}
	var hdr rawHeader
	if err := json.Unmarshal(raw.Header, &hdr); err != nil {
		return r.formatError("invalid header", err)
	}
	switch {
	case hdr.EncoderVersion == nil:
		return r.formatError("header is missing encoder_version", nil)
	case *hdr.EncoderVersion != EncoderVersion:
		return r.formatError(fmt.Sprintf("unsupported encoder_version %q", *hdr.EncoderVersion), nil)
	case hdr.Info == nil:
		return r.formatError("header is missing info", nil)
	case hdr.MediaFilename == nil:
		return r.formatError("header is missing media_filename", nil)
	}

	r.header = Header{
		EncoderVersion: *hdr.EncoderVersion,
		MediaFilename:  *hdr.MediaFilename,
		Info:           *hdr.Info,
	}
	media := filepath.Join(filepath.Dir(r.path), r.header.MediaFilename)
	if abs, err := filepath.Abs(media); err == nil {
		media = abs
	}
	r.mediaPath = media
	return nil
}

// readLine returns the next line without its newline and whether the line was
// newline terminated.
func (r *Reader) readLine() ([]byte, bool, error) {
	line, err := r.buf.ReadBytes('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, false, services.Wrap(services.ErrIO, "transcript", "read", r.path, err)
	}
	if len(line) == 0 && errors.Is(err, io.EOF) {
		return nil, false, io.EOF
	}
	complete := bytes.HasSuffix(line, []byte("\n"))
	return bytes.TrimRight(line, "\r\n"), complete, nil
}

func (r *Reader) formatError(message string, err error) error {
	return services.Wrap(services.ErrFormat, "transcript", "read header", fmt.Sprintf("%s: %s", r.path, message), err)
}

// Segments lazily yields segments in file order until the terminal record.
// Records after the terminal are ignored. A trailing line cut short by a crash
// ends the sequence without an error; other decode failures end it and are
// reported by Err.
func (r *Reader) Segments() iter.Seq[Segment] {
	return func(yield func(Segment) bool) {
		if r.consumed {
			return
		}
		r.consumed = true
		for {
			line, complete, err := r.readLine()
			if err != nil {
				if !errors.Is(err, io.EOF) {
					r.err = err
				}
				return
			}
			if len(bytes.TrimSpace(line)) == 0 {
				continue
			}
			var raw rawRecord
			if err := json.Unmarshal(line, &raw); err != nil {
				if !complete {
					return
				}
				r.err = services.Wrap(services.ErrFormat, "transcript", "read segment", r.path, err)
				return
			}
			if isPresent(raw.Finished) {
				var term Terminal
				if err := json.Unmarshal(raw.Finished, &term); err != nil {
					r.err = services.Wrap(services.ErrFormat, "transcript", "read terminal", r.path, err)
					return
				}
				r.finished = &term
				return
			}
			if !isPresent(raw.Segment) {
				continue
			}
			var seg Segment
			if err := json.Unmarshal(raw.Segment, &seg); err != nil {
				r.err = services.Wrap(services.ErrFormat, "transcript", "read segment", r.path, err)
				return
			}
			if !yield(seg) {
				return
			}
		}
	}
}

func isPresent(raw json.RawMessage) bool {
	return len(raw) > 0 && !bytes.Equal(raw, []byte("null"))
}

// Err returns the error that ended iteration early, if any.
func (r *Reader) Err() error {
	return r.err
}

// Finished returns the terminal record, or nil when it has not been reached
// or the stream is incomplete.
func (r *Reader) Finished() *Terminal {
	return r.finished
}

// Complete reports whether a successful terminal record was read.
func (r *Reader) Complete() bool {
	return r.finished != nil && r.finished.OK
}

// Header returns the decoded header.
func (r *Reader) Header() Header {
	return r.header
}

// Info returns the transcription metadata from the header.
func (r *Reader) Info() Info {
	return r.header.Info
}

// MediaPath returns the absolute path of the media file the stream describes.
func (r *Reader) MediaPath() string {
	return r.mediaPath
}

// Language returns the detected or forced language.
func (r *Reader) Language() string {
	return r.header.Info.Language
}

// Path returns the stream location.
func (r *Reader) Path() string {
	return r.path
}

// Close releases the underlying file.
func (r *Reader) Close() error {
	return r.file.Close()
}

// ResolveMedia returns the media path recorded in the stream at path.
func ResolveMedia(path string) (string, error) {
	r, err := Open(path)
	if err != nil {
		return "", err
	}
	defer r.Close()
	return r.MediaPath(), nil
}
