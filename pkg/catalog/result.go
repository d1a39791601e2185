/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/

// Package catalog checks a script catalogue manifest against the files it
// names and keeps the two in sync.
package catalog

import (
	"fmt"

	"github.com/fulmenhq/scriptcat/pkg/exitcode"
	"github.com/fulmenhq/scriptcat/pkg/format/indent"
)

// FindingKind classifies a finding.
type FindingKind string

const (
	KindMissingField  FindingKind = "missing_field"
	KindDuplicate     FindingKind = "duplicate"
	KindFileNotFound  FindingKind = "file_not_found"
	KindDocNotFound   FindingKind = "doc_not_found"
	KindIO            FindingKind = "io"
	KindHeader        FindingKind = "header"
	KindStatus        FindingKind = "status"
	KindLink          FindingKind = "link"
	KindIndent        FindingKind = "indent"
	KindIndex         FindingKind = "index"
	KindNotInManifest FindingKind = "not_in_manifest"
	KindNotProduction FindingKind = "not_production"
	KindMissingOnDisk FindingKind = "missing_on_disk"
	KindUnkeyedEntry  FindingKind = "unkeyed_entry"
)

// Finding is one error or warning. Message is the full display text,
// already prefixed with the entry label where one applies.
type Finding struct {
	Entry   string      `json:"entry,omitempty" yaml:"entry,omitempty"`
	Kind    FindingKind `json:"kind" yaml:"kind"`
	Message string      `json:"message" yaml:"message"`
}

func (f Finding) String() string { return f.Message }

func entryFinding(label string, kind FindingKind, format string, args ...any) Finding {
	return Finding{Entry: label, Kind: kind, Message: label + ": " + fmt.Sprintf(format, args...)}
}

// Mode names the checker variant that produced a result.
type Mode string

const (
	ModeInteractive Mode = "interactive"
	ModeCI          Mode = "ci"
)

// Checks records which optional sections ran.
type Checks struct {
	Docs          bool `json:"docs" yaml:"docs"`
	Index         bool `json:"index" yaml:"index"`
	Headers       bool `json:"headers" yaml:"headers"`
	UpdateHeaders bool `json:"update_headers" yaml:"update_headers"`
	Indent        bool `json:"indent" yaml:"indent"`
	FixIndent     bool `json:"fix_indent" yaml:"fix_indent"`
}

// IndentFile is a script with indentation issues.
type IndentFile struct {
	File   string         `json:"file" yaml:"file"`
	Issues []indent.Issue `json:"issues" yaml:"issues"`
}

// Result is everything one check run found.
type Result struct {
	Manifest string `json:"manifest" yaml:"manifest"`
	Mode     Mode   `json:"mode" yaml:"mode"`
	DryRun   bool   `json:"dry_run" yaml:"dry_run"`
	Total    int    `json:"total" yaml:"total"`
	Checks   Checks `json:"checks" yaml:"checks"`

	// Entries lists every resolved fname in manifest order.
	Entries []string `json:"entries" yaml:"entries"`

	HeadersPresent []string `json:"headers_present,omitempty" yaml:"headers_present,omitempty"`
	HeadersMissing []string `json:"headers_missing,omitempty" yaml:"headers_missing,omitempty"`
	HeadersUpdated []string `json:"headers_updated,omitempty" yaml:"headers_updated,omitempty"`

	IndentValid   []string     `json:"indent_valid,omitempty" yaml:"indent_valid,omitempty"`
	IndentInvalid []IndentFile `json:"indent_invalid,omitempty" yaml:"indent_invalid,omitempty"`
	IndentFixed   []string     `json:"indent_fixed,omitempty" yaml:"indent_fixed,omitempty"`

	IndexDiff string `json:"index_diff,omitempty" yaml:"index_diff,omitempty"`

	Errors   []Finding `json:"errors" yaml:"errors"`
	Warnings []Finding `json:"warnings" yaml:"warnings"`
}

func newResult(manifestPath string, mode Mode, total int) *Result {
	return &Result{
		Manifest: manifestPath,
		Mode:     mode,
		Total:    total,
		Entries:  []string{},
		Errors:   []Finding{},
		Warnings: []Finding{},
	}
}

// Status values of a finished run.
const (
	StatusOK   = "ok"
	StatusWarn = "warn"
	StatusFail = "fail"
)

// Status summarizes the run: any error fails it; warnings, or missing
// headers when headers were checked, make it a warning.
func (r *Result) Status() string {
	switch {
	case len(r.Errors) > 0:
		return StatusFail
	case len(r.Warnings) > 0:
		return StatusWarn
	case r.Checks.Headers && len(r.HeadersMissing) > 0:
		return StatusWarn
	default:
		return StatusOK
	}
}

// ExitCode maps the result onto the process exit code. Warnings never
// fail a run.
func (r *Result) ExitCode() int {
	return exitcode.FromErrorCount(len(r.Errors))
}

// ErrorsFor returns the errors recorded against one entry label. The empty
// label selects catalogue-level errors.
func (r *Result) ErrorsFor(label string) []Finding {
	return findingsFor(r.Errors, label)
}

// WarningsFor is ErrorsFor for warnings.
func (r *Result) WarningsFor(label string) []Finding {
	return findingsFor(r.Warnings, label)
}

func findingsFor(list []Finding, label string) []Finding {
	var out []Finding
	for _, f := range list {
		if f.Entry == label {
			out = append(out, f)
		}
	}
	return out
}
