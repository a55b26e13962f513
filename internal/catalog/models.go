package catalog

import "time"

// Status is the lifecycle state of a run.
type Status string

const (
	StatusRunning Status = "running"
	StatusOK      Status = "ok"
	StatusFailed  Status = "failed"
)

// Run is one transcription of a media file.
type Run struct {
	ID                  string    `json:"id" yaml:"id"`
	MediaPath           string    `json:"media_path" yaml:"media_path"`
	RecordPath          string    `json:"record_path" yaml:"record_path"`
	Status              Status    `json:"status" yaml:"status"`
	Model               string    `json:"model,omitempty" yaml:"model,omitempty"`
	Language            string    `json:"language,omitempty" yaml:"language,omitempty"`
	LanguageProbability float64   `json:"language_probability" yaml:"language_probability"`
	Duration            float64   `json:"duration" yaml:"duration"`
	Segments            int       `json:"segments" yaml:"segments"`
	ErrorMessage        string    `json:"error_message,omitempty" yaml:"error_message,omitempty"`
	StartedAt           time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt          time.Time `json:"finished_at,omitzero" yaml:"finished_at,omitempty"`
}

// Elapsed returns the wall time of a finished run, or zero while it runs.
func (r Run) Elapsed() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Outcome is what Finish records about a completed run.
type Outcome struct {
	Language            string
	LanguageProbability float64
	Duration            float64
	Segments            int
	// Err marks the run failed when non-nil.
	Err error
}
