package catalog_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"vidscript/internal/catalog"
	"vidscript/internal/testsupport"
)

func TestOpenCreatesDatabase(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenCatalog(t, cfg)

	if store.Path() != filepath.Join(cfg.Paths.StateDir, "catalog.db") {
		t.Fatalf("unexpected path %q", store.Path())
	}
	if _, err := os.Stat(store.Path()); err != nil {
		t.Fatalf("expected database file: %v", err)
	}

	// Reopening an initialized database keeps the schema.
	again, err := catalog.Open(cfg)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	again.Close()
}

func TestBeginFinishRoundTrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenCatalog(t, cfg)
	ctx := context.Background()

	id := testsupport.BeginRun(t, store, "/videos/talk.mp4")
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("run id %q is not a uuid: %v", id, err)
	}

	run, err := store.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if run == nil || run.Status != catalog.StatusRunning || !run.FinishedAt.IsZero() {
		t.Fatalf("unexpected running run %#v", run)
	}
	if run.Elapsed() != 0 {
		t.Fatalf("running run should have no elapsed time, got %s", run.Elapsed())
	}

	err = store.Finish(ctx, id, catalog.Outcome{
		Language:            "en",
		LanguageProbability: 0.97,
		Duration:            61.5,
		Segments:            12,
	})
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}

	run, err = store.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if run.Status != catalog.StatusOK || run.Language != "en" || run.Segments != 12 || run.Duration != 61.5 {
		t.Fatalf("unexpected finished run %#v", run)
	}
	if run.Model != "large-v2" || run.ErrorMessage != "" {
		t.Fatalf("unexpected model or error %#v", run)
	}
	if run.FinishedAt.Before(run.StartedAt) {
		t.Fatalf("finished %s before started %s", run.FinishedAt, run.StartedAt)
	}
}

func TestFinishRecordsFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenCatalog(t, cfg)
	ctx := context.Background()

	id := testsupport.BeginRun(t, store, "/videos/broken.mp4")
	if err := store.Finish(ctx, id, catalog.Outcome{Segments: 3, Err: errors.New("whisperx crashed")}); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	run, err := store.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if run.Status != catalog.StatusFailed || run.ErrorMessage != "whisperx crashed" || run.Segments != 3 {
		t.Fatalf("unexpected failed run %#v", run)
	}
}

func TestFinishUnknownRun(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenCatalog(t, cfg)

	if err := store.Finish(context.Background(), "missing", catalog.Outcome{}); err == nil {
		t.Fatal("expected error for unknown run")
	}
}

func TestBeginRequiresMedia(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenCatalog(t, cfg)

	if _, err := store.Begin(context.Background(), " ", "x.jsonl", ""); err == nil {
		t.Fatal("expected error for empty media path")
	}
}

func TestListOrderAndLimit(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenCatalog(t, cfg)
	ctx := context.Background()

	first := testsupport.BeginRun(t, store, "/videos/a.mp4")
	second := testsupport.BeginRun(t, store, "/videos/b.mp4")
	third := testsupport.BeginRun(t, store, "/videos/a.mp4")

	runs, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 3 || runs[0].ID != third || runs[2].ID != first {
		t.Fatalf("unexpected order %v", ids(runs))
	}

	runs, err = store.List(ctx, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 2 || runs[1].ID != second {
		t.Fatalf("unexpected limited list %v", ids(runs))
	}

	runs, err = store.ForMedia(ctx, "/videos/a.mp4")
	if err != nil {
		t.Fatalf("ForMedia: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != third || runs[1].ID != first {
		t.Fatalf("unexpected media runs %v", ids(runs))
	}
}

func TestPruneKeepsRunningRuns(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenCatalog(t, cfg)
	ctx := context.Background()

	done := testsupport.BeginRun(t, store, "/videos/a.mp4")
	if err := store.Finish(ctx, done, catalog.Outcome{}); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	running := testsupport.BeginRun(t, store, "/videos/b.mp4")

	removed, err := store.Prune(ctx, time.Now().Add(time.Minute))
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 pruned run, got %d", removed)
	}
	if run, _ := store.Get(ctx, running); run == nil {
		t.Fatal("running run should survive pruning")
	}
	if run, _ := store.Get(ctx, done); run != nil {
		t.Fatal("finished run should be pruned")
	}
}

func ids(runs []*catalog.Run) []string {
	out := make([]string, 0, len(runs))
	for _, run := range runs {
		out = append(out, run.ID)
	}
	return out
}
