package util

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// TempSuffix is inserted between the base name and extension of the
// temporary muxer target ("movie.mkv" -> "movie.temp.mkv").
const TempSuffix = ".temp"

// TempSibling returns the temporary output path for an in-place rewrite of
// path: same directory and base name, with TempSuffix before the extension.
func TempSibling(path string) string {
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return filepath.Join(dir, stem+TempSuffix+ext)
}

// SamePath reports whether a and b name the same file. Paths are compared
// after cleaning and, when both exist, by file identity so that symlinks and
// relative spellings are caught.
func SamePath(a, b string) bool {
	if filepath.Clean(a) == filepath.Clean(b) {
		return true
	}
	fa, errA := os.Stat(a)
	fb, errB := os.Stat(b)
	if errA == nil && errB == nil {
		return os.SameFile(fa, fb)
	}
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}

// ErrEmptyOutput is returned by RequireNonEmpty for a zero-byte file.
var ErrEmptyOutput = errors.New("output file is empty")

// RequireNonEmpty returns the size of path, or an error when it is missing,
// not a regular file, or empty.
func RequireNonEmpty(path string) (int64, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	if !fi.Mode().IsRegular() {
		return 0, fmt.Errorf("%s is not a regular file", path)
	}
	if fi.Size() == 0 {
		return 0, ErrEmptyOutput
	}
	return fi.Size(), nil
}

// ReplaceFile renames src onto dst, overwriting dst. On failure src is left
// untouched so no data is lost.
func ReplaceFile(src, dst string) error {
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("rename %s -> %s: %w", src, dst, err)
	}
	return nil
}

// EnsureDir creates the directory path if it does not exist.
func EnsureDir(path string) error {
	if path == "" {
		return errors.New("empty path")
	}
	return os.MkdirAll(path, 0o755)
}

// RemoveIfExists deletes the file if present.
func RemoveIfExists(path string) error {
	if _, err := os.Stat(path); err == nil {
		return os.Remove(path)
	} else if os.IsNotExist(err) {
		return nil
	} else {
		return err
	}
}
