package index

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"time"

	"vidscript/internal/artifact"
	"vidscript/internal/fileutil"
	"vidscript/internal/logging"
	"vidscript/internal/services"
	"vidscript/internal/textutil"
	"vidscript/internal/transcript"
)

// Aggregator regenerates the artifacts of a tree and rebuilds its index.
type Aggregator struct {
	Logger *slog.Logger
	// Force rebuilds every artifact and the index regardless of timestamps.
	Force bool
	// Workers bounds per-converter parallelism.
	Workers int
	// Converters run in order over every record stream found. Later
	// converters may rely on the output of earlier ones.
	Converters []artifact.Converter
	// Writer renders the index; HTMLWriter is used when nil.
	Writer IndexWriter
}

// Result summarizes one aggregated directory.
type Result struct {
	Dir     string
	Index   string
	Rebuilt bool
	Pages   int
	Reports []artifact.Report
}

// Failures counts failed artifacts across all converters.
func (r Result) Failures() int {
	n := 0
	for _, report := range r.Reports {
		n += report.Count(artifact.OutcomeFailed)
	}
	return n
}

// Aggregate processes one root directory. Per-file failures are logged and
// counted in the result; errors marked services.ErrFatal and cancellation stop
// the run and are returned.
func (a Aggregator) Aggregate(ctx context.Context, dir string) (Result, error) {
	logger := a.logger().With(logging.String("dir", dir))
	result := Result{Dir: dir, Index: filepath.Join(dir, IndexName)}

	collection, err := Collect(dir)
	if err != nil {
		return result, err
	}
	logger.Debug("collected files", logging.Int("files", collection.Len()))

	streams := collection.Paths(transcript.Extension)
	batch := artifact.Batch{Logger: a.Logger, Force: a.Force, Workers: a.Workers}
	for _, conv := range a.Converters {
		report, err := batch.Run(ctx, conv, streams)
		result.Reports = append(result.Reports, report)
		for _, produced := range report.Artifacts() {
			collection.Add(filepath.Ext(produced), produced)
		}
		if err != nil {
			return result, err
		}
	}

	listing, newest := a.readPages(dir, collection.Paths(".html"), logger)
	for _, group := range listing.Groups {
		result.Pages += len(group.Pages)
	}

	indexTime := time.Time{}
	if info, err := os.Stat(result.Index); err == nil {
		indexTime = info.ModTime()
	}
	if !a.Force && indexTime.After(newest) {
		logger.With(logging.String(logging.FieldArtifact, result.Index)).Info("up to date",
			logging.Args(logging.DecisionAttrs("staleness", "skip", "index newer than every page")...)...,
		)
		return result, nil
	}

	writer := a.Writer
	if writer == nil {
		writer = HTMLWriter{}
	}
	err = fileutil.WriteAtomic(result.Index, func(w io.Writer) error {
		return writer.WriteIndex(w, listing)
	})
	if err != nil {
		return result, services.Wrap(services.ErrIO, "index", "write", result.Index, err)
	}
	result.Rebuilt = true
	logger.Info("saved",
		logging.String(logging.FieldArtifact, result.Index),
		logging.Int("pages", result.Pages),
		logging.String(logging.FieldEventType, "index_saved"),
	)
	return result, nil
}

// Batch aggregates several roots one after another. Errors from individual
// roots are joined; a fatal error or cancellation stops the remaining roots.
func (a Aggregator) Batch(ctx context.Context, dirs []string) ([]Result, error) {
	results := make([]Result, 0, len(dirs))
	var errs []error
	for _, dir := range dirs {
		result, err := a.Aggregate(ctx, dir)
		results = append(results, result)
		if err == nil {
			continue
		}
		errs = append(errs, fmt.Errorf("%s: %w", dir, err))
		if services.IsFatal(err) || ctx.Err() != nil {
			break
		}
		a.logger().Error("index failed", logging.String("dir", dir), logging.Error(err))
	}
	return results, errors.Join(errs...)
}

// readPages parses the head of every page, grouped by directory, and returns
// the newest page modification time.
func (a Aggregator) readPages(root string, pages []string, logger *slog.Logger) (Listing, time.Time) {
	listing := Listing{Title: rootTitle(root)}
	var newest time.Time
	groups := make(map[string][]Page)

	for _, pagePath := range pages {
		info, err := os.Stat(pagePath)
		if err != nil {
			logger.Error("could not stat page", logging.String(logging.FieldSource, pagePath), logging.Error(err))
			continue
		}
		if info.ModTime().After(newest) {
			newest = info.ModTime()
		}
		rel, err := filepath.Rel(root, pagePath)
		if err != nil {
			rel = pagePath
		}
		rel = filepath.ToSlash(rel)

		page, err := parsePage(pagePath, rel)
		if err != nil {
			logger.Error("could not read page", logging.String(logging.FieldSource, pagePath), logging.Error(err))
			continue
		}
		dir := path.Dir(rel)
		if dir == "." {
			dir = ""
		}
		groups[dir] = append(groups[dir], page)
	}

	dirs := make([]string, 0, len(groups))
	for dir := range groups {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)
	for _, dir := range dirs {
		listing.Groups = append(listing.Groups, Group{Dir: dir, Pages: groups[dir]})
	}
	return listing, newest
}

func parsePage(pagePath, rel string) (Page, error) {
	file, err := os.Open(pagePath)
	if err != nil {
		return Page{}, err
	}
	defer file.Close()
	return ParseHead(file, rel), nil
}

func rootTitle(root string) string {
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = root
	}
	return textutil.Title(filepath.Base(abs))
}

func (a Aggregator) logger() *slog.Logger {
	if a.Logger == nil {
		return logging.NewComponentLogger(logging.NewNop(), "index")
	}
	return logging.NewComponentLogger(a.Logger, "index")
}
