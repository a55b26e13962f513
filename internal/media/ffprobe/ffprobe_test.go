package ffprobe

import (
	"testing"
)

func TestParseAndHelpers(t *testing.T) {
	payload := `{
  "streams": [
    {"index": 0, "codec_type": "video", "codec_name": "h264"},
    {"index": 1, "codec_type": "audio", "codec_name": "aac", "sample_rate": "48000", "channels": 2},
    {"index": 2, "codec_type": "audio", "codec_name": "opus"}
  ],
  "format": {"filename": "talk.mp4", "nb_streams": 3, "duration": "123.45", "format_name": "mov,mp4"}
}`
	result, err := Parse([]byte(payload))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if result.AudioStreamCount() != 2 {
		t.Fatalf("expected 2 audio streams, got %d", result.AudioStreamCount())
	}
	audio, ok := result.FirstAudioStream()
	if !ok || audio.Index != 1 || audio.Channels != 2 {
		t.Fatalf("unexpected first audio stream %+v", audio)
	}
	if result.DurationSeconds() != 123.45 {
		t.Fatalf("unexpected duration: %v", result.DurationSeconds())
	}
}

func TestDurationFallsBackToStreams(t *testing.T) {
	result := Result{
		Streams: []Stream{{CodecType: "audio", Duration: "10.5"}, {CodecType: "video", Duration: "12"}},
		Format:  Format{Duration: "N/A"},
	}
	if result.DurationSeconds() != 12 {
		t.Fatalf("expected longest stream duration, got %v", result.DurationSeconds())
	}
}

func TestDurationUnknown(t *testing.T) {
	result := Result{Format: Format{Duration: "bad"}}
	if result.DurationSeconds() != 0 {
		t.Fatalf("expected 0 for unknown duration, got %v", result.DurationSeconds())
	}
	if _, ok := result.FirstAudioStream(); ok {
		t.Fatal("expected no audio stream")
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := Parse([]byte("not json")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestArgsEndWithPath(t *testing.T) {
	args := Args("-weird.mp4")
	if args[len(args)-2] != "--" || args[len(args)-1] != "-weird.mp4" {
		t.Fatalf("path should follow --, got %v", args)
	}
}
