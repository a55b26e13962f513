package testsupport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// WriteFile fills the target path with the requested number of bytes using a
// simple repeating pattern. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	const chunkSize = 32 * 1024
	buf := make([]byte, chunkSize)
	for i := range buf {
		buf[i] = 0x42
	}

	remaining := size
	for remaining > 0 {
		toWrite := int64(chunkSize)
		if remaining < toWrite {
			toWrite = remaining
		}
		if _, err := f.Write(buf[:toWrite]); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
		remaining -= toWrite
	}
}

// WriteText writes content to path, creating parent directories.
func WriteText(t testing.TB, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// ReadText returns the content of path.
func ReadText(t testing.TB, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

// WriteStream writes a finished record stream for a media file named media
// inside dir and returns its path. Each entry of segments is a JSON segment
// payload.
func WriteStream(t testing.TB, dir, media string, segments ...string) string {
	t.Helper()

	stem := strings.TrimSuffix(media, filepath.Ext(media))
	lines := []string{
		`{"header":{"encoder_version":"1.0","media_filename":"` + media + `","info":{"duration":60,"language":"en","language_probability":0.95,"all_language_probs":[["en",0.95]]}}}`,
	}
	for _, seg := range segments {
		lines = append(lines, `{"segment":`+seg+`}`)
	}
	lines = append(lines, `{"finished":{"ok":true}}`)

	path := filepath.Join(dir, stem+".jsonl")
	WriteText(t, path, strings.Join(lines, "\n")+"\n")
	return path
}

// Touch sets both access and modification time of path.
func Touch(t testing.TB, path string, when time.Time) {
	t.Helper()

	if err := os.Chtimes(path, when, when); err != nil {
		t.Fatalf("chtimes %s: %v", path, err)
	}
}
