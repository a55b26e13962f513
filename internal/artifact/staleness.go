package artifact

import (
	"os"
	"path/filepath"
	"strings"
)

// NeedsRebuild reports whether artifact must be regenerated from source. It
// never fails: any stat error on either path means a rebuild, so a missing
// source surfaces later as a generation error.
func NeedsRebuild(source, artifact string, force bool) bool {
	if force {
		return true
	}
	sourceInfo, err := os.Stat(source)
	if err != nil {
		return true
	}
	artifactInfo, err := os.Stat(artifact)
	if err != nil {
		return true
	}
	return artifactInfo.ModTime().Before(sourceInfo.ModTime())
}

// ReplaceExt swaps the extension of path for ext (given without the dot).
func ReplaceExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + "." + ext
}
