package safeio

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
)

// ErrOutsideBase is returned when a manifest-relative path escapes its base directory.
var ErrOutsideBase = errors.New("path is outside base directory")

// ResolveContained joins a slash-separated relative path onto baseDir and
// verifies the result stays inside baseDir.
func ResolveContained(baseDir, rel string) (string, error) {
	baseAbs, err := filepath.Abs(baseDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve base directory: %w", err)
	}
	joined := filepath.Join(baseAbs, filepath.FromSlash(rel))

	r, err := filepath.Rel(baseAbs, joined)
	if err != nil {
		return "", fmt.Errorf("failed to compute relative path: %w", err)
	}
	if strings.HasPrefix(r, ".."+string(filepath.Separator)) || r == ".." {
		return "", fmt.Errorf("%w: %s", ErrOutsideBase, rel)
	}
	return joined, nil
}

// IsRegularFile reports whether path exists and is a regular file.
func IsRegularFile(path string) bool {
	st, err := os.Stat(path)
	return err == nil && st.Mode().IsRegular()
}

// ReadFileContained reads a file only if it is contained within baseDir.
func ReadFileContained(baseDir, rel string) ([]byte, error) {
	p, err := ResolveContained(baseDir, rel)
	if err != nil {
		return nil, err
	}
	// #nosec G304 -- p has been verified to be contained within baseDir
	return os.ReadFile(p)
}

// WriteFileAtomic replaces path in one rename, preserving the existing file
// mode when there is one. New files get 0644.
func WriteFileAtomic(path string, data []byte) error {
	var mode os.FileMode = 0o644
	if st, err := os.Stat(path); err == nil {
		mode = st.Mode() & 0o777
		if mode == 0 {
			mode = 0o644
		}
	}
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	// atomic.WriteFile does not carry permissions over to the replacement
	if err := os.Chmod(path, mode); err != nil {
		return fmt.Errorf("failed to set permissions on %s: %w", path, err)
	}
	return nil
}
