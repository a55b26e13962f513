package main

import (
	"path/filepath"
	"testing"

	"vidscript/internal/testsupport"
)

func TestIndexDefaultsToServeDirectory(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteText(t, filepath.Join(env.videosDir, "intro.mp4"), "media")
	testsupport.WriteStream(t, env.videosDir, "intro.mp4", testSegment)
	day := filepath.Join(env.videosDir, "day-2")
	testsupport.WriteText(t, filepath.Join(day, "keynote.mp4"), "media")
	testsupport.WriteStream(t, day, "keynote.mp4", testSegment)

	out, _, err := runCLI(t, env, "index")
	if err != nil {
		t.Fatalf("index: %v", err)
	}
	requireContains(t, out, "2 pages, index rebuilt")
	requireContains(t, out, "html: 2 rebuilt")

	for _, name := range []string{"index.html", "intro.html", "intro.vtt", "intro.jpeg", "day-2/keynote.html"} {
		requireFile(t, filepath.Join(env.videosDir, name))
	}
	index := testsupport.ReadText(t, filepath.Join(env.videosDir, "index.html"))
	requireContains(t, index, "day-2/keynote.html")
}

func TestIndexMissingDirectoryFails(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, env, "index", filepath.Join(env.baseDir, "nope")); err == nil {
		t.Fatal("expected missing directory to fail")
	}
}
