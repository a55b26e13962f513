package index_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"vidscript/internal/artifact"
	"vidscript/internal/index"
	"vidscript/internal/render"
	"vidscript/internal/services"
	"vidscript/internal/testsupport"
)

const segment = `{"start":0,"end":1,"text":"hello","words":[{"start":0,"end":1,"text":"hello","probability":0.9}]}`

func newAggregator() index.Aggregator {
	return index.Aggregator{
		Workers:    2,
		Converters: []artifact.Converter{render.VTT{Threshold: 10}, render.HTML{}},
	}
}

func TestAggregateGeneratesArtifactsAndIndex(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteStream(t, dir, "intro.mp4", segment)
	testsupport.WriteStream(t, filepath.Join(dir, "day-2"), "keynote.mp4", segment)
	testsupport.WriteText(t, filepath.Join(dir, "day-2", "keynote.jpeg"), "jpeg")

	recorder, logger := testsupport.NewLogRecorder()
	agg := newAggregator()
	agg.Logger = logger

	result, err := agg.Aggregate(context.Background(), dir)
	if err != nil {
		t.Fatalf("Aggregate returned error: %v", err)
	}
	if !result.Rebuilt || result.Pages != 2 || result.Failures() != 0 {
		t.Fatalf("unexpected result %+v", result)
	}
	for _, name := range []string{"intro.vtt", "intro.html", "day-2/keynote.vtt", "day-2/keynote.html", "index.html"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("expected %s: %v", name, err)
		}
	}

	page := testsupport.ReadText(t, result.Index)
	for _, want := range []string{
		`<a href="intro.html">`,
		`<span>Intro</span>`,
		`<h2>day-2</h2>`,
		`<a href="day-2/keynote.html"><img src="day-2/keynote.jpeg"`,
		`<span>Keynote</span>`,
	} {
		if !strings.Contains(page, want) {
			t.Fatalf("index missing %q:\n%s", want, page)
		}
	}
	if strings.Index(page, "intro.html") > strings.Index(page, "day-2/keynote.html") {
		t.Fatal("root group should be listed first")
	}
	if len(recorder.Find("saved")) == 0 {
		t.Fatal("expected saved logs")
	}
}

func TestAggregateIndexStaleness(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteStream(t, dir, "intro.mp4", segment)
	agg := newAggregator()

	if _, err := agg.Aggregate(context.Background(), dir); err != nil {
		t.Fatalf("first Aggregate returned error: %v", err)
	}

	base := time.Now().Add(-time.Hour)
	for _, name := range []string{"intro.jsonl", "intro.vtt", "intro.html"} {
		testsupport.Touch(t, filepath.Join(dir, name), base)
	}
	indexPath := filepath.Join(dir, index.IndexName)
	testsupport.Touch(t, indexPath, base.Add(time.Minute))

	recorder, logger := testsupport.NewLogRecorder()
	agg.Logger = logger
	result, err := agg.Aggregate(context.Background(), dir)
	if err != nil {
		t.Fatalf("second Aggregate returned error: %v", err)
	}
	if result.Rebuilt {
		t.Fatal("index newer than every page should be up to date")
	}
	if result.Reports[0].Count(artifact.OutcomeSkipped) != 1 || result.Reports[1].Count(artifact.OutcomeSkipped) != 1 {
		t.Fatalf("expected artifacts skipped, got %+v", result.Reports)
	}
	var indexSkip *testsupport.LogEntry
	for _, entry := range recorder.Find("up to date") {
		if entry.Attrs["artifact"] == indexPath {
			indexSkip = &entry
		}
	}
	if indexSkip == nil {
		t.Fatal("expected an up to date log for the index")
	}
	if indexSkip.Attrs["decision_result"] != "skip" || indexSkip.Attrs["dir"] != dir {
		t.Fatalf("index skip log missing attrs: %v", indexSkip.Attrs)
	}

	testsupport.Touch(t, filepath.Join(dir, "intro.html"), base.Add(2*time.Minute))
	result, err = agg.Aggregate(context.Background(), dir)
	if err != nil {
		t.Fatalf("third Aggregate returned error: %v", err)
	}
	if !result.Rebuilt {
		t.Fatal("page newer than index should trigger a rebuild")
	}

	agg.Force = true
	result, err = agg.Aggregate(context.Background(), dir)
	if err != nil {
		t.Fatalf("forced Aggregate returned error: %v", err)
	}
	if !result.Rebuilt || result.Reports[0].Count(artifact.OutcomeRebuilt) != 1 {
		t.Fatalf("force should rebuild everything, got %+v", result)
	}
}

type fatalConverter struct{}

func (fatalConverter) Name() string                    { return "broken" }
func (fatalConverter) OutputPath(source string) string { return artifact.ReplaceExt(source, "broken") }
func (fatalConverter) Generate(context.Context, string, string) error {
	return services.Wrap(services.ErrFatal, "broken", "generate", "tool missing", nil)
}

func TestAggregateStopsOnFatalConverter(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteStream(t, dir, "intro.mp4", segment)
	agg := index.Aggregator{Converters: []artifact.Converter{fatalConverter{}, render.HTML{}}}

	_, err := agg.Aggregate(context.Background(), dir)
	if !services.IsFatal(err) {
		t.Fatalf("expected fatal error, got %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(dir, index.IndexName)); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatal("index should not be written after a fatal error")
	}
}

func TestBatchContinuesAfterFailedRoot(t *testing.T) {
	good := t.TempDir()
	testsupport.WriteStream(t, good, "intro.mp4", segment)
	missing := filepath.Join(t.TempDir(), "missing")

	agg := newAggregator()
	results, err := agg.Batch(context.Background(), []string{missing, good})
	if err == nil {
		t.Fatal("expected error for missing root")
	}
	if len(results) != 2 || !results[1].Rebuilt {
		t.Fatalf("second root should still be processed: %+v", results)
	}
}
