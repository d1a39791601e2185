/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package catalog

import (
	"fmt"
	"strings"

	"github.com/fulmenhq/scriptcat/pkg/logger"
	"github.com/fulmenhq/scriptcat/pkg/manifest"
	"github.com/fulmenhq/scriptcat/pkg/safeio"
)

// Resolved is a manifest entry whose script exists on disk.
type Resolved struct {
	// Position is the 1-based index of the entry in the manifest.
	Position int
	Label    string
	Entry    manifest.Entry
	Path     string
}

// Validation is the outcome of Validate.
type Validation struct {
	Resolved []Resolved
	Errors   []Finding
	Warnings []Finding
}

// Validate runs the per-entry existence and required-field checks over
// every entry. Nothing short-circuits the batch: an entry that cannot be
// resolved is reported and skipped, the rest continue.
func Validate(entries []manifest.Entry, baseDir string, checkDocs bool) Validation {
	var v Validation
	seen := make(map[string]int, len(entries))

	for i, e := range entries {
		pos := i + 1
		label := fmt.Sprintf("Entry %d", pos)

		if !e.HasFname() {
			v.Errors = append(v.Errors, entryFinding(label, KindMissingField, "Missing 'fname' field"))
			continue
		}
		if strings.TrimSpace(e.Fname) == "" {
			v.Errors = append(v.Errors, entryFinding(label, KindMissingField, "Empty 'fname' field"))
			continue
		}

		label = "[" + e.Fname + "]"
		if first, dup := seen[e.Fname]; dup {
			v.Errors = append(v.Errors, entryFinding(label, KindDuplicate, "Duplicate 'fname' (first seen at entry %d)", first))
			continue
		}
		seen[e.Fname] = pos

		path, err := safeio.ResolveContained(baseDir, e.Fname)
		if err != nil || !safeio.IsRegularFile(path) {
			if err != nil {
				logger.Debug("Rejected script path", logger.String("fname", e.Fname), logger.Err(err))
			}
			v.Errors = append(v.Errors, entryFinding(label, KindFileNotFound, "Script file not found: %s", e.Fname))
			continue
		}

		if strings.TrimSpace(e.Title) == "" {
			v.Errors = append(v.Errors, entryFinding(label, KindMissingField, "Missing or empty 'title' field"))
		}
		if strings.TrimSpace(e.Description) == "" {
			v.Errors = append(v.Errors, entryFinding(label, KindMissingField, "Missing or empty 'description' field"))
		}

		if checkDocs && strings.TrimSpace(e.Doc) != "" {
			docPath, err := safeio.ResolveContained(baseDir, e.Doc)
			if err != nil || !safeio.IsRegularFile(docPath) {
				v.Warnings = append(v.Warnings, entryFinding(label, KindDocNotFound, "Doc file not found: %s", e.Doc))
			}
		}

		v.Resolved = append(v.Resolved, Resolved{Position: pos, Label: label, Entry: e, Path: path})
	}
	return v
}
