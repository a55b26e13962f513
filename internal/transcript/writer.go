package transcript

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"vidscript/internal/logging"
	"vidscript/internal/services"
	"vidscript/internal/textutil"
)

// WriterOption customizes a Writer.
type WriterOption func(*Writer)

// WithLogger routes debug output about emitted segments to logger.
func WithLogger(logger *slog.Logger) WriterOption {
	return func(w *Writer) {
		if logger != nil {
			w.logger = logging.NewComponentLogger(logger, "transcript")
		}
	}
}

// Writer appends one media file's transcription to its record stream. It
// holds an exclusive lock on the stream until it is finalized with Close or
// Fail. A Writer is not safe for concurrent use.
type Writer struct {
	path      string
	file      *os.File
	lock      *flock.Flock
	coalescer Coalescer
	logger    *slog.Logger
	segments  int
	finished  bool
}

// Create opens the record stream for mediaPath, truncating any previous
// stream, and writes the header. Segments whose gap to the previous one is at
// most mergeGap seconds are merged before they reach the file.
func Create(mediaPath string, info Info, mergeGap float64, opts ...WriterOption) (*Writer, error) {
	path := OutputPath(mediaPath)
	if filepath.Clean(path) == filepath.Clean(mediaPath) {
		return nil, services.Wrap(services.ErrValidation, "transcript", "create",
			fmt.Sprintf("media %q already has the %s extension", mediaPath, Extension), nil)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE, 0o644)
	if err != nil {
		return nil, services.Wrap(services.ErrIO, "transcript", "create", path, err)
	}
	lock := flock.New(path)
	locked, err := lock.TryLock()
	if err != nil {
		_ = file.Close()
		return nil, services.Wrap(services.ErrIO, "transcript", "lock", path, err)
	}
	if !locked {
		_ = file.Close()
		return nil, services.Wrap(services.ErrIO, "transcript", "lock",
			fmt.Sprintf("%s is already being written", path), nil)
	}
	if err := file.Truncate(0); err != nil {
		_ = lock.Unlock()
		_ = file.Close()
		return nil, services.Wrap(services.ErrIO, "transcript", "truncate", path, err)
	}

	w := &Writer{
		path:      path,
		file:      file,
		lock:      lock,
		coalescer: Coalescer{Gap: mergeGap},
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}

	header := Header{
		EncoderVersion: EncoderVersion,
		MediaFilename:  filepath.Base(mediaPath),
		Info:           info,
	}
	if err := w.write(record{Header: &header}); err != nil {
		_ = w.release()
		return nil, err
	}
	w.logger.Debug("record stream opened",
		logging.String(logging.FieldArtifact, path),
		logging.Float64("merge_gap", mergeGap),
	)
	return w, nil
}

// Path returns the record stream location.
func (w *Writer) Path() string {
	return w.path
}

// Add feeds one raw segment through the coalescer, writing the previously
// held segment when seg cannot be merged into it.
func (w *Writer) Add(seg Segment) error {
	if w.finished {
		return services.Wrap(services.ErrValidation, "transcript", "add", "writer already finalized", nil)
	}
	done, ok := w.coalescer.Push(seg)
	if !ok {
		return nil
	}
	return w.writeSegment(done)
}

// Close flushes the held segment and writes a success terminal. Calls after
// the first finalization are no-ops.
func (w *Writer) Close() error {
	return w.finish(Terminal{OK: true})
}

// Fail flushes the held segment and writes a failure terminal carrying the
// text of cause. Calls after the first finalization are no-ops.
func (w *Writer) Fail(cause error) error {
	text := "unknown error"
	if cause != nil {
		text = cause.Error()
	}
	return w.finish(Terminal{OK: false, Exc: text})
}

func (w *Writer) finish(term Terminal) error {
	if w.finished {
		return nil
	}
	w.finished = true

	var errs []error
	if done, ok := w.coalescer.Flush(); ok {
		errs = append(errs, w.writeSegment(done))
	}
	errs = append(errs, w.write(record{Finished: &term}))
	errs = append(errs, w.release())

	if term.OK {
		w.logger.Debug("record stream finished",
			logging.String(logging.FieldArtifact, w.path),
			logging.Int("segments", w.segments),
		)
	} else {
		w.logger.Debug("record stream failed",
			logging.String(logging.FieldArtifact, w.path),
			logging.Int("segments", w.segments),
			logging.String("reason", term.Exc),
		)
	}
	return errors.Join(errs...)
}

func (w *Writer) writeSegment(seg Segment) error {
	if err := w.write(record{Segment: &seg}); err != nil {
		return err
	}
	w.segments++
	if w.logger.Enabled(context.Background(), slog.LevelDebug) {
		w.logger.Debug("segment written",
			logging.String("start", textutil.FormatTimestamp(seg.Start, false, ".")),
			logging.String("end", textutil.FormatTimestamp(seg.End, false, ".")),
			logging.String("text", seg.Text),
		)
	}
	return nil
}

func (w *Writer) write(rec record) error {
	line, err := encodeRecord(rec)
	if err != nil {
		return services.Wrap(services.ErrIO, "transcript", "encode", w.path, err)
	}
	if _, err := w.file.Write(line); err != nil {
		return services.Wrap(services.ErrIO, "transcript", "write", w.path, err)
	}
	if err := w.file.Sync(); err != nil {
		return services.Wrap(services.ErrIO, "transcript", "sync", w.path, err)
	}
	return nil
}

func (w *Writer) release() error {
	var errs []error
	if err := w.lock.Unlock(); err != nil {
		errs = append(errs, services.Wrap(services.ErrIO, "transcript", "unlock", w.path, err))
	}
	if err := w.file.Close(); err != nil {
		errs = append(errs, services.Wrap(services.ErrIO, "transcript", "close", w.path, err))
	}
	return errors.Join(errs...)
}

// Write creates the stream for mediaPath, hands the writer to produce and
// finalizes it on every exit path. A nil return from produce writes a success
// terminal. An error writes a failure terminal with its text and is returned
// marked as a transcription failure. A panic writes a failure terminal before
// propagating.
func Write(mediaPath string, info Info, mergeGap float64, produce func(*Writer) error, opts ...WriterOption) (path string, err error) {
	w, err := Create(mediaPath, info, mergeGap, opts...)
	if err != nil {
		return "", err
	}
	defer func() {
		if r := recover(); r != nil {
			_ = w.Fail(fmt.Errorf("panic: %v", r))
			panic(r)
		}
	}()

	if produceErr := produce(w); produceErr != nil {
		failErr := w.Fail(produceErr)
		wrapped := services.Wrap(services.ErrTranscription, "transcript", "write", w.path, produceErr)
		return w.path, errors.Join(wrapped, failErr)
	}
	return w.path, w.Close()
}
