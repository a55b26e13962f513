package fileutil

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// CopyFile streams src to dst using io.Copy with default permissions (0o644).
func CopyFile(src, dst string) error {
	return copyFile(src, dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC)
}

// CopyFileExclusive copies src to dst only when dst does not exist yet.
// It reports whether a copy happened; an existing dst is left untouched.
func CopyFileExclusive(src, dst string) (bool, error) {
	err := copyFile(src, dst, os.O_CREATE|os.O_WRONLY|os.O_EXCL)
	if errors.Is(err, fs.ErrExist) {
		return false, nil
	}
	return err == nil, err
}

// WriteFileExclusive writes data to path only when path does not exist yet.
func WriteFileExclusive(path string, data []byte) (bool, error) {
	out, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if _, err := out.Write(data); err != nil {
		_ = out.Close()
		return false, err
	}
	return true, out.Close()
}

func copyFile(src, dst string, flags int) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, flags, 0o644)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}

// WriteAtomic renders into a hidden temporary file beside path and renames it
// into place once write succeeds. Readers never observe a partial file; on
// failure the temporary file is removed and path keeps its previous content.
func WriteAtomic(path string, write func(io.Writer) error) (err error) {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, "."+base+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if err = write(tmp); err != nil {
		return err
	}
	if err = tmp.Chmod(0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
