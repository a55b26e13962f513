package transcript

// Stream states reported by Summary.Status.
const (
	StatusOK         = "ok"
	StatusFailed     = "failed"
	StatusIncomplete = "incomplete"
)

// Summary describes a whole record stream.
type Summary struct {
	Path      string    `json:"path" yaml:"path"`
	MediaPath string    `json:"media_path" yaml:"media_path"`
	Header    Header    `json:"header" yaml:"header"`
	Segments  int       `json:"segments" yaml:"segments"`
	Words     int       `json:"words" yaml:"words"`
	LastEnd   float64   `json:"last_end" yaml:"last_end"`
	Terminal  *Terminal `json:"finished,omitempty" yaml:"finished,omitempty"`
}

// Status classifies the stream by its terminal record.
func (s Summary) Status() string {
	switch {
	case s.Terminal == nil:
		return StatusIncomplete
	case s.Terminal.OK:
		return StatusOK
	default:
		return StatusFailed
	}
}

// Inspect reads the stream at path to the end and summarizes it.
func Inspect(path string) (Summary, error) {
	r, err := Open(path)
	if err != nil {
		return Summary{}, err
	}
	defer r.Close()

	summary := Summary{
		Path:      path,
		MediaPath: r.MediaPath(),
		Header:    r.Header(),
	}
	for seg := range r.Segments() {
		summary.Segments++
		summary.Words += len(seg.Words)
		summary.LastEnd = seg.End
	}
	summary.Terminal = r.Finished()
	return summary, r.Err()
}
