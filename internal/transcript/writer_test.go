package transcript_test

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"vidscript/internal/services"
	"vidscript/internal/transcript"
)

func sampleInfo() transcript.Info {
	return transcript.Info{
		Duration:            1.5,
		Language:            "en",
		LanguageProbability: 0.9,
		AllLanguageProbs:    []transcript.LanguageProb{{Language: "en", Probability: 0.9}},
	}
}

func rawSegment(start, end float64, text string) transcript.Segment {
	return transcript.Segment{
		Start: start,
		End:   end,
		Text:  text,
		Words: []transcript.Word{{Start: start, End: end, Text: text, Probability: 0.9}},
	}
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scan %s: %v", path, err)
	}
	return lines
}

func TestWriterProducesCompactRecords(t *testing.T) {
	media := filepath.Join(t.TempDir(), "a.mp4")

	path, err := transcript.Write(media, sampleInfo(), 1.0, func(w *transcript.Writer) error {
		for _, seg := range []transcript.Segment{
			rawSegment(0.0, 0.4, "Hi"),
			rawSegment(0.5, 0.9, "there"),
			rawSegment(5.0, 5.4, "Bob"),
		} {
			if err := w.Add(seg); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	if path != filepath.Join(filepath.Dir(media), "a.jsonl") {
		t.Fatalf("unexpected output path %q", path)
	}

	lines := readLines(t, path)
	if len(lines) != 4 {
		t.Fatalf("expected header, 2 segments and terminal, got %d lines:\n%s", len(lines), strings.Join(lines, "\n"))
	}
	wantHeader := `{"header":{"encoder_version":"1.0","media_filename":"a.mp4","info":{"duration":1.5,"language":"en","language_probability":0.9,"all_language_probs":[["en",0.9]]}}}`
	if lines[0] != wantHeader {
		t.Fatalf("unexpected header:\n got %s\nwant %s", lines[0], wantHeader)
	}
	wantFirst := `{"segment":{"start":0,"end":0.9,"text":"Hi there","words":[{"start":0,"end":0.4,"text":"Hi","probability":0.9},{"start":0.5,"end":0.9,"text":"there","probability":0.9}]}}`
	if lines[1] != wantFirst {
		t.Fatalf("unexpected first segment:\n got %s\nwant %s", lines[1], wantFirst)
	}
	if lines[3] != `{"finished":{"ok":true}}` {
		t.Fatalf("unexpected terminal %s", lines[3])
	}
}

func TestWriterPersistsEachRecordBeforeClose(t *testing.T) {
	media := filepath.Join(t.TempDir(), "a.mp4")
	w, err := transcript.Create(media, sampleInfo(), 0.5)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	defer w.Close()

	path := transcript.OutputPath(media)
	if lines := readLines(t, path); len(lines) != 1 || !strings.HasPrefix(lines[0], `{"header":`) {
		t.Fatalf("expected header on disk right after Create, got %q", lines)
	}
	for _, seg := range []transcript.Segment{rawSegment(0, 1, "one"), rawSegment(3, 4, "two")} {
		if err := w.Add(seg); err != nil {
			t.Fatalf("Add returned error: %v", err)
		}
	}
	lines := readLines(t, path)
	if len(lines) != 2 || !strings.HasPrefix(lines[1], `{"segment":`) || !strings.Contains(lines[1], `"one"`) {
		t.Fatalf("expected the completed segment on disk while the writer is open, got %q", lines)
	}
}

func TestWriterKeepsNonASCIIAndMarkup(t *testing.T) {
	media := filepath.Join(t.TempDir(), "b.mkv")
	path, err := transcript.Write(media, sampleInfo(), 1.0, func(w *transcript.Writer) error {
		return w.Add(rawSegment(0, 1, "héllo <b>&"))
	})
	if err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	lines := readLines(t, path)
	if !strings.Contains(lines[1], `"text":"héllo <b>&"`) {
		t.Fatalf("text escaped: %s", lines[1])
	}
}

func TestWriterCloseIsIdempotent(t *testing.T) {
	media := filepath.Join(t.TempDir(), "c.mp4")
	w, err := transcript.Create(media, sampleInfo(), 1.0)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if err := w.Add(rawSegment(0, 1, "one")); err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second Close returned error: %v", err)
	}
	if err := w.Fail(errors.New("late")); err != nil {
		t.Fatalf("Fail after Close returned error: %v", err)
	}
	if err := w.Add(rawSegment(2, 3, "two")); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for Add after Close, got %v", err)
	}

	lines := readLines(t, w.Path())
	terminals := 0
	for _, line := range lines {
		if strings.HasPrefix(line, `{"finished"`) {
			terminals++
		}
	}
	if terminals != 1 || lines[len(lines)-1] != `{"finished":{"ok":true}}` {
		t.Fatalf("expected exactly one success terminal, got:\n%s", strings.Join(lines, "\n"))
	}
}

func TestWriteRecordsProducerFailure(t *testing.T) {
	media := filepath.Join(t.TempDir(), "d.mp4")
	boom := errors.New("model crashed")

	path, err := transcript.Write(media, sampleInfo(), 1.0, func(w *transcript.Writer) error {
		if err := w.Add(rawSegment(0, 1, "partial")); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) || !errors.Is(err, services.ErrTranscription) {
		t.Fatalf("expected wrapped producer error, got %v", err)
	}

	lines := readLines(t, path)
	if len(lines) != 3 {
		t.Fatalf("expected header, held segment and terminal, got %d lines", len(lines))
	}
	if !strings.Contains(lines[1], `"text":"partial"`) {
		t.Fatalf("held segment not flushed: %s", lines[1])
	}
	var term struct {
		Finished transcript.Terminal `json:"finished"`
	}
	if err := json.Unmarshal([]byte(lines[2]), &term); err != nil {
		t.Fatalf("decode terminal: %v", err)
	}
	if term.Finished.OK || term.Finished.Exc != "model crashed" {
		t.Fatalf("unexpected terminal: %+v", term.Finished)
	}
}

func TestWriteRecordsPanicAndRepanics(t *testing.T) {
	media := filepath.Join(t.TempDir(), "e.mp4")
	output := transcript.OutputPath(media)

	func() {
		defer func() {
			if r := recover(); r != "kaboom" {
				t.Fatalf("expected panic to propagate, got %v", r)
			}
		}()
		_, _ = transcript.Write(media, sampleInfo(), 1.0, func(w *transcript.Writer) error {
			_ = w.Add(rawSegment(0, 1, "before"))
			panic("kaboom")
		})
	}()

	lines := readLines(t, output)
	last := lines[len(lines)-1]
	if last != `{"finished":{"ok":false,"exc":"panic: kaboom"}}` {
		t.Fatalf("unexpected terminal after panic: %s", last)
	}
	if !slices.ContainsFunc(lines, func(line string) bool { return strings.Contains(line, `"before"`) }) {
		t.Fatal("segment before panic was lost")
	}
}

func TestCreateRejectsConcurrentWriter(t *testing.T) {
	media := filepath.Join(t.TempDir(), "f.mp4")
	first, err := transcript.Create(media, sampleInfo(), 1.0)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	defer first.Close()

	if _, err := transcript.Create(media, sampleInfo(), 1.0); !errors.Is(err, services.ErrIO) {
		t.Fatalf("expected io error for second writer, got %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	second, err := transcript.Create(media, sampleInfo(), 1.0)
	if err != nil {
		t.Fatalf("Create after release returned error: %v", err)
	}
	if err := second.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	if lines := readLines(t, second.Path()); len(lines) != 2 {
		t.Fatalf("expected truncated stream with header and terminal, got %d lines", len(lines))
	}
}

func TestCreateFailsForMissingDirectory(t *testing.T) {
	media := filepath.Join(t.TempDir(), "missing", "g.mp4")
	if _, err := transcript.Create(media, sampleInfo(), 1.0); !errors.Is(err, services.ErrIO) {
		t.Fatalf("expected io error, got %v", err)
	}
}

func TestCreateRejectsRecordStreamAsMedia(t *testing.T) {
	media := filepath.Join(t.TempDir(), "h.jsonl")
	if _, err := transcript.Create(media, sampleInfo(), 1.0); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
