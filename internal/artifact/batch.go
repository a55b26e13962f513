package artifact

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"vidscript/internal/logging"
	"vidscript/internal/services"
)

// Outcome classifies what happened to one source in a batch.
type Outcome string

const (
	OutcomeRebuilt  Outcome = "rebuilt"
	OutcomeSkipped  Outcome = "skipped"
	OutcomeFailed   Outcome = "failed"
	OutcomeCanceled Outcome = "canceled"
)

// Result records the handling of one source.
type Result struct {
	Source   string
	Artifact string
	Outcome  Outcome
	Err      error
	Elapsed  time.Duration
}

// Report collects the results of a batch in input order.
type Report struct {
	Kind    string
	Results []Result
}

// Count returns the number of results with the given outcome.
func (r Report) Count(outcome Outcome) int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome == outcome {
			n++
		}
	}
	return n
}

// Failures returns the failed results.
func (r Report) Failures() []Result {
	var failed []Result
	for _, res := range r.Results {
		if res.Outcome == OutcomeFailed {
			failed = append(failed, res)
		}
	}
	return failed
}

// Artifacts returns the artifact paths of every source that is now up to
// date, whether it was rebuilt or skipped.
func (r Report) Artifacts() []string {
	var paths []string
	for _, res := range r.Results {
		if res.Outcome == OutcomeRebuilt || res.Outcome == OutcomeSkipped {
			paths = append(paths, res.Artifact)
		}
	}
	return paths
}

// Err joins the errors of all failed results.
func (r Report) Err() error {
	var errs []error
	for _, res := range r.Failures() {
		errs = append(errs, res.Err)
	}
	return errors.Join(errs...)
}

// Batch applies a Converter to many sources.
type Batch struct {
	Logger *slog.Logger
	// Force rebuilds every artifact regardless of timestamps.
	Force bool
	// Workers bounds parallelism; values <= 0 use runtime.NumCPU.
	Workers int
}

// Run converts every source, up to Workers at a time, and returns once all
// started conversions have finished. Per-file failures are logged and
// reported without stopping the batch. An error marked services.ErrFatal, or
// cancellation of ctx, stops scheduling further sources and is returned.
func (b Batch) Run(ctx context.Context, conv Converter, sources []string) (Report, error) {
	logger := b.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.WithContext(services.WithKind(ctx, conv.Name()), logging.NewComponentLogger(logger, "artifact"))

	workers := b.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	report := Report{Kind: conv.Name(), Results: make([]Result, len(sources))}
	parent := ctx
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		once     sync.Once
		fatalErr error
	)
	slots := make(chan struct{}, workers)

	for i, source := range sources {
		if !acquire(ctx, slots) {
			for j := i; j < len(sources); j++ {
				report.Results[j] = Result{Source: sources[j], Outcome: OutcomeCanceled, Err: context.Cause(ctx)}
			}
			break
		}
		wg.Add(1)
		go func(i int, source string) {
			defer wg.Done()
			defer func() { <-slots }()
			res := b.convert(ctx, logger, conv, source)
			report.Results[i] = res
			if services.IsFatal(res.Err) {
				once.Do(func() {
					fatalErr = res.Err
					cancel()
				})
			}
		}(i, source)
	}
	wg.Wait()

	if fatalErr != nil {
		return report, fatalErr
	}
	if err := parent.Err(); err != nil {
		return report, err
	}
	return report, nil
}

// acquire takes a worker slot unless ctx is done first.
func acquire(ctx context.Context, slots chan struct{}) bool {
	if ctx.Err() != nil {
		return false
	}
	select {
	case slots <- struct{}{}:
	case <-ctx.Done():
		return false
	}
	if ctx.Err() != nil {
		<-slots
		return false
	}
	return true
}

func (b Batch) convert(ctx context.Context, logger *slog.Logger, conv Converter, source string) Result {
	started := time.Now()
	input := source
	if resolver, ok := conv.(SourceResolver); ok {
		resolved, err := resolver.ResolveSource(source)
		if err != nil {
			logger.Error("could not resolve source",
				logging.String(logging.FieldSource, source),
				logging.Error(err),
				logging.String(logging.FieldEventType, "artifact_failed"),
			)
			return Result{Source: source, Outcome: OutcomeFailed, Err: err, Elapsed: time.Since(started)}
		}
		input = resolved
	}
	output := conv.OutputPath(input)
	fileLogger := logger.With(
		logging.String(logging.FieldSource, input),
		logging.String(logging.FieldArtifact, output),
	)

	if !NeedsRebuild(input, output, b.Force) {
		fileLogger.Info("up to date",
			logging.Args(logging.DecisionAttrs("staleness", "skip", "artifact newer than source")...)...,
		)
		return Result{Source: input, Artifact: output, Outcome: OutcomeSkipped, Elapsed: time.Since(started)}
	}

	reason := "artifact older than source"
	if b.Force {
		reason = "forced"
	}
	fileLogger.Debug("generating",
		logging.Args(logging.DecisionAttrs("staleness", "rebuild", reason)...)...,
	)
	if err := conv.Generate(ctx, input, output); err != nil {
		fileLogger.Error("could not generate",
			logging.Error(err),
			logging.String(logging.FieldEventType, "artifact_failed"),
		)
		return Result{Source: input, Artifact: output, Outcome: OutcomeFailed, Err: err, Elapsed: time.Since(started)}
	}
	elapsed := time.Since(started)
	fileLogger.Info("saved",
		logging.Duration("elapsed", elapsed),
		logging.String(logging.FieldEventType, "artifact_saved"),
	)
	return Result{Source: input, Artifact: output, Outcome: OutcomeRebuilt, Elapsed: elapsed}
}
