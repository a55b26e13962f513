package transcript_test

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"vidscript/internal/services"
	"vidscript/internal/transcript"
)

const validHeader = `{"header":{"encoder_version":"1.0","media_filename":"clip.mp4","info":{"duration":10,"language":"de","language_probability":0.8,"all_language_probs":[["de",0.8],["en",0.1]]}}}`

func writeStream(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.jsonl")
	content := strings.Join(lines, "\n")
	if len(lines) > 0 {
		content += "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write stream: %v", err)
	}
	return path
}

func TestRoundTripThroughWriterAndReader(t *testing.T) {
	media := filepath.Join(t.TempDir(), "talk.webm")
	raw := []transcript.Segment{
		rawSegment(0.0, 0.4, "Hi"),
		rawSegment(0.5, 0.9, "there"),
		rawSegment(5.0, 5.4, "Bob"),
		rawSegment(5.9, 6.3, "again"),
		rawSegment(9.0, 9.5, "bye"),
	}
	path, err := transcript.Write(media, sampleInfo(), 1.0, func(w *transcript.Writer) error {
		for _, seg := range raw {
			if err := w.Add(seg); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Write returned error: %v", err)
	}

	r, err := transcript.Open(path)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	defer r.Close()

	got := slices.Collect(r.Segments())
	if r.Err() != nil {
		t.Fatalf("unexpected read error: %v", r.Err())
	}
	if !r.Complete() {
		t.Fatal("expected complete stream")
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 coalesced segments, got %d: %+v", len(got), got)
	}
	for i := 1; i < len(got); i++ {
		if got[i].Start < got[i-1].End {
			t.Fatalf("segments overlap at %d", i)
		}
		if got[i].Start-got[i-1].End <= 1.0 {
			t.Fatalf("gap at %d should have been merged", i)
		}
	}
	if got[1].Text != "Bob again" {
		t.Fatalf("unexpected merged text %q", got[1].Text)
	}
	if r.MediaPath() != media {
		t.Fatalf("unexpected media path %q, want %q", r.MediaPath(), media)
	}
	if r.Language() != "en" {
		t.Fatalf("unexpected language %q", r.Language())
	}
	if info := r.Info(); len(info.AllLanguageProbs) != 1 || info.AllLanguageProbs[0].Language != "en" {
		t.Fatalf("unexpected info %+v", info)
	}
}

func TestReaderIgnoresRecordsAfterTerminal(t *testing.T) {
	path := writeStream(t,
		validHeader,
		`{"segment":{"start":0,"end":1,"text":"a","words":[]}}`,
		`{"finished":{"ok":false,"exc":"boom"}}`,
		`{"segment":{"start":2,"end":3,"text":"b","words":[]}}`,
	)
	r, err := transcript.Open(path)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	defer r.Close()

	got := slices.Collect(r.Segments())
	if len(got) != 1 || got[0].Text != "a" {
		t.Fatalf("unexpected segments %+v", got)
	}
	if r.Finished() == nil || r.Finished().OK || r.Finished().Exc != "boom" {
		t.Fatalf("unexpected terminal %+v", r.Finished())
	}
	if r.Complete() {
		t.Fatal("failed stream reported complete")
	}
	if again := slices.Collect(r.Segments()); len(again) != 0 {
		t.Fatalf("second iteration yielded %d segments", len(again))
	}
}

func TestReaderIncompleteStream(t *testing.T) {
	path := writeStream(t,
		validHeader,
		`{"segment":{"start":0,"end":1,"text":"a","words":[]}}`,
	)
	r, err := transcript.Open(path)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	defer r.Close()
	if got := slices.Collect(r.Segments()); len(got) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(got))
	}
	if r.Finished() != nil || r.Complete() {
		t.Fatal("expected incomplete stream")
	}
	if r.Err() != nil {
		t.Fatalf("unexpected error: %v", r.Err())
	}
}

func TestReaderToleratesTruncatedLastLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cut.jsonl")
	content := validHeader + "\n" + `{"segment":{"start":0,"end":1,"text":"a","words":[]}}` + "\n" + `{"segment":{"start":2,"en`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	r, err := transcript.Open(path)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	defer r.Close()
	if got := slices.Collect(r.Segments()); len(got) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(got))
	}
	if r.Err() != nil {
		t.Fatalf("truncated tail should not be an error: %v", r.Err())
	}
}

func TestReaderReportsCorruptSegment(t *testing.T) {
	path := writeStream(t,
		validHeader,
		`{"segment":not json}`,
		`{"finished":{"ok":true}}`,
	)
	r, err := transcript.Open(path)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	defer r.Close()
	_ = slices.Collect(r.Segments())
	if !errors.Is(r.Err(), services.ErrFormat) {
		t.Fatalf("expected format error, got %v", r.Err())
	}
}

func TestOpenRejectsBadHeaders(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
	}{
		{"empty file", nil},
		{"not json", []string{"hello"}},
		{"segment first", []string{`{"segment":{"start":0,"end":1,"text":"a","words":[]}}`}},
		{"unknown version", []string{`{"header":{"encoder_version":"2.0","media_filename":"a.mp4","info":{}}}`}},
		{"missing version", []string{`{"header":{"media_filename":"a.mp4","info":{}}}`}},
		{"missing info", []string{`{"header":{"encoder_version":"1.0","media_filename":"a.mp4"}}`}},
		{"missing media", []string{`{"header":{"encoder_version":"1.0","info":{}}}`}},
		{"bad language probs", []string{`{"header":{"encoder_version":"1.0","media_filename":"a.mp4","info":{"all_language_probs":[["en"]]}}}`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeStream(t, tt.lines...)
			_, err := transcript.Open(path)
			if !errors.Is(err, services.ErrFormat) {
				t.Fatalf("expected format error, got %v", err)
			}
		})
	}
}

func TestOpenMissingFileIsIOError(t *testing.T) {
	_, err := transcript.Open(filepath.Join(t.TempDir(), "nope.jsonl"))
	if !errors.Is(err, services.ErrIO) {
		t.Fatalf("expected io error, got %v", err)
	}
}

func TestInspectSummarizesStream(t *testing.T) {
	path := writeStream(t,
		validHeader,
		`{"segment":{"start":0,"end":1,"text":"a b","words":[{"start":0,"end":0.5,"text":"a","probability":1},{"start":0.5,"end":1,"text":"b","probability":1}]}}`,
		`{"segment":{"start":3,"end":4.25,"text":"c","words":[{"start":3,"end":4.25,"text":"c","probability":1}]}}`,
		`{"finished":{"ok":true}}`,
	)
	summary, err := transcript.Inspect(path)
	if err != nil {
		t.Fatalf("Inspect returned error: %v", err)
	}
	if summary.Segments != 2 || summary.Words != 3 || summary.LastEnd != 4.25 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if summary.Status() != transcript.StatusOK {
		t.Fatalf("unexpected status %q", summary.Status())
	}
	if summary.MediaPath != filepath.Join(filepath.Dir(path), "clip.mp4") {
		t.Fatalf("unexpected media path %q", summary.MediaPath)
	}
	if summary.Header.Info.Language != "de" {
		t.Fatalf("unexpected language %q", summary.Header.Info.Language)
	}
}

func TestResolveMedia(t *testing.T) {
	path := writeStream(t, validHeader)
	media, err := transcript.ResolveMedia(path)
	if err != nil {
		t.Fatalf("ResolveMedia returned error: %v", err)
	}
	if filepath.Base(media) != "clip.mp4" || !filepath.IsAbs(media) {
		t.Fatalf("unexpected media %q", media)
	}
}
