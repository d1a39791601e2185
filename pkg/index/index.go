/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/

// Package index renders and verifies the markdown index derived from the
// manifest. The index is fully derived: it is correct iff it equals the
// rendering of the current manifest byte for byte.
package index

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fulmenhq/scriptcat/pkg/manifest"
	"github.com/fulmenhq/scriptcat/pkg/safeio"
	difflib "github.com/pmezard/go-difflib/difflib"
)

// DefaultFileName is the index written next to the manifest.
const DefaultFileName = "SHELLY_MJS.md"

// ErrNotFound is matched by the error Check returns for a missing index.
var ErrNotFound = errors.New("index not found")

type notFoundError struct{ name string }

func (e *notFoundError) Error() string { return e.name + " not found" }
func (e *notFoundError) Is(target error) bool { return target == ErrNotFound }

// DriftError reports an index that no longer matches its manifest.
type DriftError struct {
	Name     string
	Manifest string
	// Diff is a unified diff from the file on disk to the expected content.
	Diff string
}

func (e *DriftError) Error() string {
	return fmt.Sprintf("%s is out of sync with manifest (run: scriptcat index %s)", e.Name, e.Manifest)
}

// Render produces the index content for entries, in manifest order.
func Render(entries []manifest.Entry) string {
	var b strings.Builder
	for _, e := range entries {
		b.WriteString(e.Fname + ": " + e.Title + "\n===\n" + e.Description + "\n\n")
	}
	return b.String()
}

// PathFor returns where the index for manifestPath lives. An absolute
// name is used as is.
func PathFor(manifestPath, name string) string {
	if name == "" {
		name = DefaultFileName
	}
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(filepath.Dir(manifestPath), name)
}

// Check compares the index at path with the rendering of entries.
// manifestPath only names the regeneration command in a DriftError.
func Check(path, manifestPath string, entries []manifest.Entry) error {
	name := filepath.Base(path)
	if !safeio.IsRegularFile(path) {
		return &notFoundError{name: name}
	}
	data, err := os.ReadFile(path) // #nosec G304 -- index path derived from operator-supplied manifest
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}

	want := Render(entries)
	if string(data) == want {
		return nil
	}
	return &DriftError{
		Name:     name,
		Manifest: manifestPath,
		Diff:     unifiedDiff(name, string(data), want),
	}
}

// Write replaces the index at path with the rendering of entries.
func Write(path string, entries []manifest.Entry) error {
	return safeio.WriteFileAtomic(path, []byte(Render(entries)))
}

func unifiedDiff(name, have, want string) string {
	u := difflib.UnifiedDiff{
		A:        difflib.SplitLines(have),
		B:        difflib.SplitLines(want),
		FromFile: name,
		ToFile:   name + " (expected)",
		Context:  3,
	}
	s, err := difflib.GetUnifiedDiffString(u)
	if err != nil {
		return ""
	}
	return s
}
