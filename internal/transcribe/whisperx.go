package transcribe

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strconv"

	"vidscript/internal/transcript"
)

// buildArgs constructs the uvx command arguments for WhisperX.
func (s *Service) buildArgs(source, outputDir, lang string) []string {
	args := make([]string, 0, 40)

	if s.cfg.Local {
		args = append(args, "--offline")
	}
	if s.cfg.CUDAEnabled {
		args = append(args,
			"--index-url", CUDAIndexURL,
			"--extra-index-url", PypiIndexURL,
		)
	} else {
		args = append(args, "--index-url", PypiIndexURL)
	}

	args = append(args,
		"whisperx",
		source,
		"--model", s.Model(),
		"--batch_size", BatchSize,
		"--output_dir", outputDir,
		"--output_format", OutputFormat,
		"--segment_resolution", SegmentResolution,
		"--chunk_size", ChunkSize,
		"--vad_onset", VADOnset,
		"--vad_offset", VADOffset,
		"--beam_size", BeamSize,
		"--temperature", Temperature,
		"--initial_prompt", InitialPrompt,
	)

	vadMethod := s.cfg.VADMethod
	if vadMethod == "" {
		vadMethod = VADMethodSilero
	}
	args = append(args, "--vad_method", vadMethod)
	if vadMethod == VADMethodPyannote && s.cfg.HFToken != "" {
		args = append(args, "--hf_token", s.cfg.HFToken)
	}

	if lang != "" {
		args = append(args, "--language", lang)
	}

	if s.cfg.CUDAEnabled {
		args = append(args, "--device", CUDADevice)
	} else {
		args = append(args, "--device", CPUDevice, "--compute_type", CPUComputeType)
	}
	return args
}

// buildExtractArgs converts one audio stream to mono 16 kHz PCM.
func buildExtractArgs(source string, audioIndex int, dest string) []string {
	return []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-map", fmt.Sprintf("0:%d", audioIndex),
		"-vn",
		"-sn",
		"-dn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		dest,
	}
}

// payload is the WhisperX JSON output. Segments stay raw so a malformed
// segment only fails from its own position onwards.
type payload struct {
	Segments []json.RawMessage `json:"segments"`
	Language string            `json:"language"`
}

type rawWord struct {
	Word  string   `json:"word"`
	Start *float64 `json:"start"`
	End   *float64 `json:"end"`
	Score *float64 `json:"score"`
}

type rawSegment struct {
	Start *float64  `json:"start"`
	End   *float64  `json:"end"`
	Text  string    `json:"text"`
	Words []rawWord `json:"words"`
}

func loadPayload(path string) (payload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return payload{}, err
	}
	var out payload
	if err := json.Unmarshal(data, &out); err != nil {
		return payload{}, fmt.Errorf("parse whisperx json: %w", err)
	}
	return out, nil
}

// decodeSegment converts one WhisperX segment. Words WhisperX could not align
// (digits, symbols) carry no timing; they inherit the end of the previous
// word and a zero probability.
func decodeSegment(data json.RawMessage) (transcript.Segment, error) {
	var raw rawSegment
	if err := json.Unmarshal(data, &raw); err != nil {
		return transcript.Segment{}, fmt.Errorf("decode segment: %w", err)
	}
	if raw.Start == nil || raw.End == nil {
		return transcript.Segment{}, fmt.Errorf("segment %q has no timestamps", raw.Text)
	}
	if *raw.End < *raw.Start {
		return transcript.Segment{}, fmt.Errorf("segment %q ends at %v before it starts at %v", raw.Text, *raw.End, *raw.Start)
	}

	seg := transcript.Segment{
		Start: *raw.Start,
		End:   *raw.End,
		Text:  raw.Text,
		Words: make([]transcript.Word, 0, len(raw.Words)),
	}
	cursor := seg.Start
	for _, w := range raw.Words {
		word := transcript.Word{Text: w.Word, Start: cursor, End: cursor}
		if w.Start != nil {
			word.Start = *w.Start
		}
		word.End = word.Start
		if w.End != nil && *w.End >= word.Start {
			word.End = *w.End
		}
		if w.Score != nil {
			word.Probability = *w.Score
		}
		cursor = word.End
		seg.Words = append(seg.Words, word)
	}
	return seg, nil
}

var detectedLanguagePattern = regexp.MustCompile(`Detected language: ([A-Za-z_-]+) \(([0-9.]+)\)`)

// detectedLanguage extracts the language WhisperX reports on its console
// output when it auto-detects. ok is false when no such line is present.
func detectedLanguage(output []byte) (lang string, probability float64, ok bool) {
	match := detectedLanguagePattern.FindSubmatch(output)
	if match == nil {
		return "", 0, false
	}
	probability, err := strconv.ParseFloat(string(match[2]), 64)
	if err != nil {
		return string(match[1]), 0, true
	}
	return string(match[1]), probability, true
}
