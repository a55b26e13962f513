package index

import (
	"io/fs"
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"vidscript/internal/services"
)

// IndexName is the aggregate page written at the root of a tree.
const IndexName = "index.html"

// Collection buckets files by extension, including the leading dot. Files
// without an extension are kept under "".
type Collection struct {
	files map[string]map[string]struct{}
}

// NewCollection returns an empty collection.
func NewCollection() *Collection {
	return &Collection{files: make(map[string]map[string]struct{})}
}

// Add registers path under ext.
func (c *Collection) Add(ext, path string) {
	bucket, ok := c.files[ext]
	if !ok {
		bucket = make(map[string]struct{})
		c.files[ext] = bucket
	}
	bucket[path] = struct{}{}
}

// Paths returns the sorted paths registered under ext.
func (c *Collection) Paths(ext string) []string {
	return slices.Sorted(maps.Keys(c.files[ext]))
}

// Extensions returns the sorted extensions present.
func (c *Collection) Extensions() []string {
	return slices.Sorted(maps.Keys(c.files))
}

// Len returns the number of files across all extensions.
func (c *Collection) Len() int {
	n := 0
	for _, bucket := range c.files {
		n += len(bucket)
	}
	return n
}

// Collect walks dir recursively. Entries whose name starts with a dot are
// skipped along with their subtrees, and so is any index.html.
func Collect(dir string) (*Collection, error) {
	collection := NewCollection()
	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == dir {
			return nil
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			if entry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if entry.IsDir() {
			return nil
		}
		if name == IndexName {
			return nil
		}
		collection.Add(filepath.Ext(name), path)
		return nil
	})
	if err != nil {
		return nil, services.Wrap(services.ErrIO, "index", "collect", dir, err)
	}
	return collection, nil
}
