package transcript

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
)

const (
	// EncoderVersion is the only header version readers accept.
	EncoderVersion = "1.0"
	// Extension is the record stream file extension.
	Extension = ".jsonl"
)

// Word is a single timed token with its recognition probability.
type Word struct {
	Start       float64 `json:"start"`
	End         float64 `json:"end"`
	Text        string  `json:"text"`
	Probability float64 `json:"probability"`
}

// Segment is a timed span of text with its constituent words.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
	Words []Word  `json:"words"`
}

// Duration returns End - Start.
func (s Segment) Duration() float64 {
	return s.End - s.Start
}

// LanguageProb is one alternative language and its probability. It encodes as
// a two element JSON array.
type LanguageProb struct {
	Language    string  `yaml:"language"`
	Probability float64 `yaml:"probability"`
}

// MarshalJSON implements json.Marshaler.
func (l LanguageProb) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{l.Language, l.Probability})
}

// UnmarshalJSON implements json.Unmarshaler.
func (l *LanguageProb) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("language probability: expected [language, probability], got %d elements", len(pair))
	}
	if err := json.Unmarshal(pair[0], &l.Language); err != nil {
		return fmt.Errorf("language probability: %w", err)
	}
	if err := json.Unmarshal(pair[1], &l.Probability); err != nil {
		return fmt.Errorf("language probability: %w", err)
	}
	return nil
}

// Info is the transcription metadata carried by the header.
type Info struct {
	Duration            float64        `json:"duration" yaml:"duration"`
	Language            string         `json:"language" yaml:"language"`
	LanguageProbability float64        `json:"language_probability" yaml:"language_probability"`
	AllLanguageProbs    []LanguageProb `json:"all_language_probs" yaml:"all_language_probs"`
}

// Header is the first record of every stream.
type Header struct {
	EncoderVersion string `json:"encoder_version" yaml:"encoder_version"`
	MediaFilename  string `json:"media_filename" yaml:"media_filename"`
	Info           Info   `json:"info" yaml:"info"`
}

// Terminal is the last record of a finished stream.
type Terminal struct {
	OK  bool   `json:"ok" yaml:"ok"`
	Exc string `json:"exc,omitempty" yaml:"exc,omitempty"`
}

// record is one line of the stream; exactly one field is set.
type record struct {
	Header   *Header   `json:"header,omitempty"`
	Segment  *Segment  `json:"segment,omitempty"`
	Finished *Terminal `json:"finished,omitempty"`
}

// rawRecord defers decoding so the header can be checked for missing fields.
type rawRecord struct {
	Header   json.RawMessage `json:"header"`
	Segment  json.RawMessage `json:"segment"`
	Finished json.RawMessage `json:"finished"`
}

type rawHeader struct {
	EncoderVersion *string `json:"encoder_version"`
	MediaFilename  *string `json:"media_filename"`
	Info           *Info   `json:"info"`
}

// OutputPath returns the record stream path for a media file.
func OutputPath(mediaPath string) string {
	return strings.TrimSuffix(mediaPath, filepath.Ext(mediaPath)) + Extension
}

// encodeRecord serializes rec as one compact line. Non-ASCII text is kept as
// is and HTML characters are not escaped.
func encodeRecord(rec record) ([]byte, error) {
	if rec.Segment != nil && rec.Segment.Words == nil {
		seg := *rec.Segment
		seg.Words = []Word{}
		rec.Segment = &seg
	}
	if rec.Header != nil && rec.Header.Info.AllLanguageProbs == nil {
		hdr := *rec.Header
		hdr.Info.AllLanguageProbs = []LanguageProb{}
		rec.Header = &hdr
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(rec); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
