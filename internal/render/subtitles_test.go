package render_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"vidscript/internal/render"
	"vidscript/internal/services"
	"vidscript/internal/testsupport"
)

const (
	greetingSegment = `{"start":0,"end":0.9,"text":"Hi there","words":[{"start":0,"end":0.4,"text":"Hi","probability":0.95},{"start":0.5,"end":0.9,"text":"there","probability":0.5}]}`
	farewellSegment = `{"start":3725.042,"end":3726.5,"text":" Bob ","words":[{"start":3725.042,"end":3726.5,"text":"Bob","probability":0.75}]}`
)

func TestSRTSplitsAndNumbersCues(t *testing.T) {
	dir := t.TempDir()
	source := testsupport.WriteStream(t, dir, "talk.mp4", greetingSegment, farewellSegment)
	conv := render.SRT{Threshold: 0.8}
	output := conv.OutputPath(source)
	if output != filepath.Join(dir, "talk.srt") {
		t.Fatalf("unexpected output path %q", output)
	}

	if err := conv.Generate(context.Background(), source, output); err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	want := "1\n00:00:00,000 --> 00:00:00,400\nHi\n\n" +
		"2\n00:00:00,500 --> 00:00:00,900\nthere\n\n" +
		"3\n01:02:05,042 --> 01:02:06,500\nBob\n\n"
	if got := testsupport.ReadText(t, output); got != want {
		t.Fatalf("unexpected srt:\n%s\nwant:\n%s", got, want)
	}
}

func TestVTTKeepsShortSegments(t *testing.T) {
	dir := t.TempDir()
	source := testsupport.WriteStream(t, dir, "talk.mp4", greetingSegment)
	conv := render.VTT{Threshold: 10}
	output := conv.OutputPath(source)

	if err := conv.Generate(context.Background(), source, output); err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	want := "WEBVTT\n\n00:00:00.000 --> 00:00:00.900\nHi there\n\n"
	if got := testsupport.ReadText(t, output); got != want {
		t.Fatalf("unexpected vtt:\n%q\nwant:\n%q", got, want)
	}
}

func TestSubtitlesRejectIncompleteStream(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "cut.jsonl")
	testsupport.WriteText(t, source,
		`{"header":{"encoder_version":"1.0","media_filename":"cut.mp4","info":{"duration":1,"language":"en","language_probability":1,"all_language_probs":[]}}}`+"\n"+
			`{"segment":`+greetingSegment+"}\n")
	conv := render.SRT{Threshold: 10}
	output := conv.OutputPath(source)

	err := conv.Generate(context.Background(), source, output)
	if !errors.Is(err, services.ErrFormat) {
		t.Fatalf("expected format error, got %v", err)
	}
	if _, statErr := os.Stat(output); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatalf("partial output left behind: %v", statErr)
	}
}

func TestSubtitlesRenderFailedStream(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "failed.jsonl")
	testsupport.WriteText(t, source,
		`{"header":{"encoder_version":"1.0","media_filename":"failed.mp4","info":{"duration":1,"language":"en","language_probability":1,"all_language_probs":[]}}}`+"\n"+
			`{"segment":`+greetingSegment+"}\n"+
			`{"finished":{"ok":false,"exc":"model crashed"}}`+"\n")
	conv := render.VTT{Threshold: 10}
	if err := conv.Generate(context.Background(), source, conv.OutputPath(source)); err != nil {
		t.Fatalf("failed stream should still render: %v", err)
	}
}

func TestParseSize(t *testing.T) {
	size, err := render.ParseSize("320x-1")
	if err != nil {
		t.Fatalf("ParseSize returned error: %v", err)
	}
	if size != render.DefaultThumbnailSize || size.String() != "320x-1" {
		t.Fatalf("unexpected size %v", size)
	}
	for _, bad := range []string{"320", "x", "-1x-1", "0x10", "ax1"} {
		if _, err := render.ParseSize(bad); err == nil {
			t.Fatalf("ParseSize(%q) expected error", bad)
		}
	}

	var flagValue render.Size
	if err := flagValue.Set("640X480"); err != nil || flagValue.String() != "640x480" {
		t.Fatalf("Set returned %v, value %v", err, flagValue)
	}
}
