package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const probeStub = `#!/bin/sh
echo '{"streams":[{"index":0,"codec_type":"video"},{"index":1,"codec_type":"audio"}],"format":{"duration":"12.5"}}'
`

// ffmpegStub creates the output file, which is always the last argument.
const ffmpegStub = `#!/bin/sh
for last; do :; done
printf 'stub' > "$last"
`

const uvxStub = `#!/bin/sh
out=""
while [ $# -gt 0 ]; do
  if [ "$1" = "--output_dir" ]; then out="$2"; fi
  shift
done
cat > "$out/audio.json" <<'JSON'
{"segments":[
  {"start":0.0,"end":1.0,"text":" Hello","words":[{"word":"Hello","start":0.0,"end":1.0,"score":0.9}]},
  {"start":1.2,"end":2.0,"text":" world.","words":[{"word":"world.","start":1.2,"end":2.0,"score":0.6}]}
],"language":"en"}
JSON
echo "Detected language: en (0.97) in first 30s of audio..."
`

const testSegment = `{"start":0,"end":1.5,"text":"hello there","words":[{"start":0,"end":0.5,"text":"hello","probability":0.9},{"start":0.6,"end":1.5,"text":" there","probability":0.5}]}`

type cliTestEnv struct {
	baseDir    string
	videosDir  string
	stateDir   string
	configPath string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)

	binDir := filepath.Join(base, "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		t.Fatalf("mkdir bin: %v", err)
	}
	for name, script := range map[string]string{"ffprobe": probeStub, "ffmpeg": ffmpegStub, "uvx": uvxStub} {
		if err := os.WriteFile(filepath.Join(binDir, name), []byte(script), 0o755); err != nil {
			t.Fatalf("write stub %s: %v", name, err)
		}
	}
	t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))

	env := &cliTestEnv{
		baseDir:    base,
		videosDir:  filepath.Join(base, "videos"),
		stateDir:   filepath.Join(base, "state"),
		configPath: filepath.Join(base, "vidscript.toml"),
	}
	if err := os.MkdirAll(env.videosDir, 0o755); err != nil {
		t.Fatalf("mkdir videos: %v", err)
	}
	writeTestConfig(t, env)
	return env
}

func writeTestConfig(t *testing.T, env *cliTestEnv) {
	t.Helper()
	content := fmt.Sprintf(
		"[paths]\nstate_dir = %q\n\n[batch]\nworkers = 2\n\n[serve]\ndirectory = %q\n\n[logging]\nlevel = \"info\"\ncolor = \"never\"\n",
		env.stateDir,
		env.videosDir,
	)
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, env *cliTestEnv, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if env != nil {
		flags = append(flags, "--config", env.configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func requireFile(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected file at %s: %v", path, err)
	}
}
