/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package catalog

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/fulmenhq/scriptcat/pkg/discover"
	"github.com/fulmenhq/scriptcat/pkg/format/header"
	"github.com/fulmenhq/scriptcat/pkg/format/indent"
	"github.com/fulmenhq/scriptcat/pkg/index"
	"github.com/fulmenhq/scriptcat/pkg/logger"
	"github.com/fulmenhq/scriptcat/pkg/manifest"
	"github.com/fulmenhq/scriptcat/pkg/safeio"
)

// Options configures a check run.
type Options struct {
	// BaseDir resolves fnames; defaults to the manifest's directory.
	BaseDir string

	CheckDocs     bool
	CheckIndex    bool
	CheckHeaders  bool
	UpdateHeaders bool
	CheckIndent   bool
	FixIndent     bool
	DryRun        bool

	// IndexFile is resolved against BaseDir unless absolute.
	IndexFile string
	WrapWidth int
	// LinkBase prefixes fname to form @link when CheckCI updates headers.
	LinkBase string
	// Discover drives the production cross-check of CheckCI.
	Discover discover.Options
}

func (o Options) baseDir(manifestPath string) string {
	if o.BaseDir != "" {
		if abs, err := filepath.Abs(o.BaseDir); err == nil {
			return abs
		}
		return o.BaseDir
	}
	if abs, err := filepath.Abs(manifestPath); err == nil {
		return filepath.Dir(abs)
	}
	return filepath.Dir(manifestPath)
}

func (o Options) indexPath(baseDir string) string {
	name := o.IndexFile
	if name == "" {
		name = index.DefaultFileName
	}
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(baseDir, name)
}

func (o Options) wrapWidth() int {
	if o.WrapWidth <= 0 {
		return header.WrapWidth
	}
	return o.WrapWidth
}

// Check runs the interactive integrity check: validation always, and the
// header, indentation and index sections as the options ask. Rewrites go
// through an atomic replace unless DryRun is set.
func Check(m *manifest.Manifest, opts Options) *Result {
	res := newResult(m.Path, ModeInteractive, len(m.Entries))
	res.DryRun = opts.DryRun
	res.Checks = Checks{
		Docs:          opts.CheckDocs,
		Index:         opts.CheckIndex,
		Headers:       opts.CheckHeaders,
		UpdateHeaders: opts.UpdateHeaders,
		Indent:        opts.CheckIndent,
		FixIndent:     opts.FixIndent,
	}

	baseDir := opts.baseDir(m.Path)
	v := Validate(m.Entries, baseDir, opts.CheckDocs)
	res.Errors = append(res.Errors, v.Errors...)
	res.Warnings = append(res.Warnings, v.Warnings...)

	for _, r := range v.Resolved {
		res.Entries = append(res.Entries, r.Entry.Fname)
		if !(opts.CheckHeaders || opts.UpdateHeaders || opts.CheckIndent || opts.FixIndent) {
			continue
		}

		content, err := readScript(r.Path)
		if err != nil {
			res.Errors = append(res.Errors, entryFinding(r.Label, KindIO, "Failed to read script: %v", err))
			continue
		}

		if opts.CheckHeaders || opts.UpdateHeaders {
			content = checkEntryHeader(res, r, content, opts)
		}
		if opts.CheckIndent || opts.FixIndent {
			checkEntryIndent(res, r, content, opts)
		}
	}

	if opts.CheckIndex {
		checkIndex(res, m, opts.indexPath(baseDir))
	}

	logger.Debug("Check finished",
		logger.Int("entries", res.Total),
		logger.Int("errors", len(res.Errors)),
		logger.Int("warnings", len(res.Warnings)))
	return res
}

// checkEntryHeader records header presence and applies a title/description
// update. It returns the content later sections should see: the rewritten
// text once written, the original in dry-run.
func checkEntryHeader(res *Result, r Resolved, content string, opts Options) string {
	fname := r.Entry.Fname
	if opts.CheckHeaders {
		if _, ok := header.Parse(content); ok {
			res.HeadersPresent = append(res.HeadersPresent, fname)
		} else {
			res.HeadersMissing = append(res.HeadersMissing, fname)
		}
	}

	if !opts.UpdateHeaders {
		return content
	}
	e := r.Entry
	if e.Title == "" || e.Description == "" || e.IsPlaceholder() {
		logger.Debug("Skipping header update for placeholder entry", logger.String("fname", fname))
		return content
	}

	updated, changed := header.Update(content, e.Title, e.Description, opts.wrapWidth())
	if !changed {
		return content
	}
	if err := writeScript(r.Path, updated, opts.DryRun); err != nil {
		res.Errors = append(res.Errors, entryFinding(r.Label, KindIO, "Failed to write: %v", err))
		return content
	}
	res.HeadersUpdated = append(res.HeadersUpdated, fname)
	if opts.DryRun {
		return content
	}
	return updated
}

// checkEntryIndent lints indentation and applies the tab fix. Only files
// whose content actually changes count as fixed.
func checkEntryIndent(res *Result, r Resolved, content string, opts Options) {
	fname := r.Entry.Fname
	issues := indent.Check(content)
	if opts.CheckIndent {
		if len(issues) == 0 {
			res.IndentValid = append(res.IndentValid, fname)
		} else {
			res.IndentInvalid = append(res.IndentInvalid, IndentFile{File: fname, Issues: issues})
		}
	}

	if !opts.FixIndent || len(issues) == 0 {
		return
	}
	fixed, changed := indent.Fix(content)
	if !changed {
		return
	}
	if err := writeScript(r.Path, fixed, opts.DryRun); err != nil {
		res.Errors = append(res.Errors, entryFinding(r.Label, KindIO, "Failed to write: %v", err))
		return
	}
	res.IndentFixed = append(res.IndentFixed, fname)
}

func checkIndex(res *Result, m *manifest.Manifest, path string) {
	err := index.Check(path, m.Path, m.Entries)
	if err == nil {
		return
	}
	var drift *index.DriftError
	if errors.As(err, &drift) {
		res.IndexDiff = drift.Diff
	}
	res.Errors = append(res.Errors, Finding{Kind: KindIndex, Message: err.Error()})
}

func readScript(path string) (string, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path resolved inside the base directory
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func writeScript(path, content string, dryRun bool) error {
	if dryRun {
		logger.Info("Would rewrite script", logger.String("path", path))
		return nil
	}
	return safeio.WriteFileAtomic(path, []byte(content))
}
