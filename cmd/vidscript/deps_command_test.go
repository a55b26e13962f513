package main

import (
	"testing"
)

func TestDepsWithStubbedBinaries(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "deps")
	if err != nil {
		t.Fatalf("deps: %v", err)
	}
	requireContains(t, out, "FFmpeg")
	requireContains(t, out, "uvx")
	requireContains(t, out, "read/write ok")

	out, _, err = runCLI(t, env, "deps", "--format", "yaml")
	if err != nil {
		t.Fatalf("deps yaml: %v", err)
	}
	requireContains(t, out, "available: true")
}

func TestDepsFailsWhenBinariesMissing(t *testing.T) {
	env := setupCLITestEnv(t)
	t.Setenv("PATH", t.TempDir())

	out, _, err := runCLI(t, env, "deps")
	if err == nil {
		t.Fatal("expected missing dependencies to fail")
	}
	requireContains(t, err.Error(), "3 required dependencies missing")
	requireContains(t, out, "not found")
}
