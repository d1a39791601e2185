/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package catalog

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/fulmenhq/scriptcat/pkg/discover"
	"github.com/fulmenhq/scriptcat/pkg/logger"
	"github.com/fulmenhq/scriptcat/pkg/manifest"
	"github.com/fulmenhq/scriptcat/pkg/safeio"
)

// SyncOptions configures Sync.
type SyncOptions struct {
	DryRun          bool
	RemoveMissing   bool
	ExtractMetadata bool
	Discover        discover.Options
}

// SyncResult describes what a synchronization found and did.
type SyncResult struct {
	Manifest string `json:"manifest"`

	// Found is every discovered script, sorted.
	Found []string `json:"found"`

	// Existing counts manifest entries with a non-empty fname.
	Existing int      `json:"existing"`
	Added    []string `json:"added"`
	Removed  []string `json:"removed"`

	// Missing lists manifest fnames with no file on disk, kept or removed.
	Missing []string `json:"missing"`

	Entries  []manifest.Entry `json:"-"`
	DryRun   bool             `json:"dry_run"`
	Written  bool             `json:"written"`
	Warnings []Finding        `json:"warnings"`
}

// Changed reports whether the manifest content differs from what was read.
func (r *SyncResult) Changed() bool {
	return len(r.Added) > 0 || len(r.Removed) > 0
}

// Sync reconciles the manifest at manifestPath with the scripts found under
// its directory. Known entries are kept unchanged, new scripts get
// placeholder (or extracted) metadata, and entries whose file is gone are
// dropped only with RemoveMissing. The result is sorted by fname and written
// atomically unless nothing changed or DryRun is set. A missing manifest is
// treated as empty.
func Sync(manifestPath string, opts SyncOptions) (*SyncResult, error) {
	absManifest, err := filepath.Abs(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve manifest path: %w", err)
	}
	baseDir := filepath.Dir(absManifest)

	var current []manifest.Entry
	if safeio.IsRegularFile(manifestPath) {
		m, err := manifest.Load(manifestPath)
		if err != nil {
			return nil, err
		}
		current = m.Entries
	} else {
		logger.Info("Manifest not found, starting empty", logger.String("path", manifestPath))
	}

	res := &SyncResult{
		Manifest: manifestPath,
		Added:    []string{},
		Removed:  []string{},
		Missing:  []string{},
		Warnings: []Finding{},
		DryRun:   opts.DryRun,
	}

	existing := make(map[string]manifest.Entry, len(current))
	for i, e := range current {
		if e.Fname == "" {
			res.Warnings = append(res.Warnings, Finding{
				Entry:   fmt.Sprintf("Entry %d", i+1),
				Kind:    KindUnkeyedEntry,
				Message: fmt.Sprintf("Entry %d: no 'fname', dropped from manifest", i+1),
			})
			continue
		}
		existing[e.Fname] = e
	}
	res.Existing = len(existing)

	found, err := discover.Scripts(baseDir, opts.Discover)
	if err != nil {
		return nil, err
	}
	res.Found = found

	onDisk := make(map[string]bool, len(found))
	entries := make([]manifest.Entry, 0, len(found))
	for _, fname := range found {
		onDisk[fname] = true
		if e, ok := existing[fname]; ok {
			entries = append(entries, e)
			continue
		}
		title, description := manifest.TODOTitle, manifest.TODODescription
		if opts.ExtractMetadata {
			t, d := extractFromPath(filepath.Join(baseDir, filepath.FromSlash(fname)))
			if t != "" {
				title = t
			}
			if d != "" {
				description = d
			}
		}
		entries = append(entries, manifest.NewEntry(fname, title, description))
		res.Added = append(res.Added, fname)
	}

	for fname, e := range existing {
		if onDisk[fname] {
			continue
		}
		res.Missing = append(res.Missing, fname)
		if opts.RemoveMissing {
			res.Removed = append(res.Removed, fname)
			continue
		}
		entries = append(entries, e)
		res.Warnings = append(res.Warnings, Finding{
			Entry:   "[" + fname + "]",
			Kind:    KindMissingOnDisk,
			Message: "[" + fname + "]: Script file not found, kept in manifest",
		})
	}
	sort.Strings(res.Missing)
	sort.Strings(res.Removed)
	sort.Slice(res.Warnings, func(i, j int) bool { return res.Warnings[i].Message < res.Warnings[j].Message })

	manifest.SortByFname(entries)
	res.Entries = entries

	if !res.Changed() || opts.DryRun {
		return res, nil
	}
	if err := manifest.Save(manifestPath, entries); err != nil {
		return res, fmt.Errorf("failed to write manifest: %w", err)
	}
	res.Written = true
	logger.Info("Manifest updated", logger.String("path", manifestPath), logger.Int("entries", len(entries)))
	return res, nil
}

// extractWindow bounds how much of a script metadata extraction looks at.
const extractWindow = 2000

var (
	tagTitlePattern         = regexp.MustCompile(`@title\s+(.+)`)
	tagDescriptionPattern   = regexp.MustCompile(`@description\s+(.+)`)
	labelTitlePattern       = regexp.MustCompile(`(?i)//\s*(?:Title|Name):\s*(.+)`)
	labelDescriptionPattern = regexp.MustCompile(`(?i)//\s*Description:\s*(.+)`)
	firstCommentPattern     = regexp.MustCompile(`(?m)^//\s*(.+?)$`)
)

// ExtractMetadata guesses a title and description from the start of a
// script. Tags win over labeled line comments; failing both, the first line
// comment becomes the title. Either value may come back empty.
func ExtractMetadata(content string) (title, description string) {
	content = truncateRunes(content, extractWindow)

	if m := tagTitlePattern.FindStringSubmatch(content); m != nil {
		title = strings.TrimSpace(m[1])
	}
	if m := tagDescriptionPattern.FindStringSubmatch(content); m != nil {
		description = strings.TrimSpace(m[1])
	}

	if title == "" {
		if m := labelTitlePattern.FindStringSubmatch(content); m != nil {
			title = strings.TrimSpace(m[1])
		}
	}
	if description == "" {
		if m := labelDescriptionPattern.FindStringSubmatch(content); m != nil {
			description = strings.TrimSpace(m[1])
		}
	}

	if title == "" {
		if m := firstCommentPattern.FindStringSubmatch(content); m != nil {
			title = strings.TrimSpace(m[1])
		}
	}
	return title, description
}

func extractFromPath(path string) (string, string) {
	f, err := os.Open(path) // #nosec G304 -- path discovered under the manifest directory
	if err != nil {
		logger.Debug("Metadata extraction skipped", logger.String("path", path), logger.Err(err))
		return "", ""
	}
	defer func() { _ = f.Close() }()

	// UTF-8 needs at most four bytes per rune.
	buf := make([]byte, extractWindow*utf8.UTFMax)
	n, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		logger.Debug("Metadata extraction skipped", logger.String("path", path), logger.Err(err))
		return "", ""
	}
	return ExtractMetadata(string(buf[:n]))
}

func truncateRunes(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
