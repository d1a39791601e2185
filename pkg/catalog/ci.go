/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package catalog

import (
	"github.com/fulmenhq/scriptcat/pkg/discover"
	"github.com/fulmenhq/scriptcat/pkg/format/header"
	"github.com/fulmenhq/scriptcat/pkg/format/indent"
	"github.com/fulmenhq/scriptcat/pkg/logger"
	"github.com/fulmenhq/scriptcat/pkg/manifest"
	"github.com/fulmenhq/scriptcat/pkg/safeio"
)

// CheckCI is the strict variant for pipelines. Headers, indentation and the
// index are always checked and every discrepancy is an error. On top of
// that every manifest script must be tagged production, and every discovered
// production script must be listed in the manifest.
//
// UpdateHeaders synthesizes full headers (status kept or defaulted, link
// derived from LinkBase) and FixIndent converts tabs before the checks run.
func CheckCI(m *manifest.Manifest, opts Options) *Result {
	res := newResult(m.Path, ModeCI, len(m.Entries))
	res.DryRun = opts.DryRun
	res.Checks = Checks{
		Docs:          opts.CheckDocs,
		Index:         true,
		Headers:       true,
		UpdateHeaders: opts.UpdateHeaders,
		Indent:        true,
		FixIndent:     opts.FixIndent,
	}

	baseDir := opts.baseDir(m.Path)
	v := Validate(m.Entries, baseDir, opts.CheckDocs)
	res.Errors = append(res.Errors, v.Errors...)
	res.Warnings = append(res.Warnings, v.Warnings...)

	for _, r := range v.Resolved {
		res.Entries = append(res.Entries, r.Entry.Fname)
		content, err := readScript(r.Path)
		if err != nil {
			res.Errors = append(res.Errors, entryFinding(r.Label, KindIO, "Failed to read script: %v", err))
			continue
		}
		if opts.UpdateHeaders {
			content = applyFullHeader(res, r, content, opts)
		}
		checkFullHeader(res, r, content)
		if opts.FixIndent {
			content = fixIndentCI(res, r, content, opts)
		}
		if issues := indent.Check(content); len(issues) > 0 {
			res.IndentInvalid = append(res.IndentInvalid, IndentFile{File: r.Entry.Fname, Issues: issues})
			res.Errors = append(res.Errors, entryFinding(r.Label, KindIndent, "Invalid indentation (%d issues)", len(issues)))
		} else {
			res.IndentValid = append(res.IndentValid, r.Entry.Fname)
		}
	}

	checkIndex(res, m, opts.indexPath(baseDir))
	checkUnlistedProduction(res, baseDir, manifest.Index(m.Entries), opts.Discover)

	logger.Debug("CI check finished",
		logger.Int("entries", res.Total),
		logger.Int("errors", len(res.Errors)))
	return res
}

// checkFullHeader validates shape, @status and @link of one manifest script.
func checkFullHeader(res *Result, r Resolved, content string) {
	fname := r.Entry.Fname
	h, ok := header.Parse(content)
	if !ok {
		res.HeadersMissing = append(res.HeadersMissing, fname)
		res.Errors = append(res.Errors, entryFinding(r.Label, KindHeader, "Missing or invalid header"))
		return
	}
	res.HeadersPresent = append(res.HeadersPresent, fname)

	statusOK := true
	switch {
	case h.Status == "":
		statusOK = false
		res.Errors = append(res.Errors, entryFinding(r.Label, KindStatus, "Missing @status"))
	case header.ValidateStatus(h.Status) != nil:
		statusOK = false
		res.Errors = append(res.Errors, entryFinding(r.Label, KindStatus, "Invalid @status: %s", h.Status))
	}

	if h.Link != "" && header.ValidateLink(h.Link) != nil {
		res.Errors = append(res.Errors, entryFinding(r.Label, KindLink, "Invalid @link: %s", h.Link))
	}

	if statusOK && !header.IsProduction(h.Status) {
		res.Errors = append(res.Errors, Finding{
			Entry:   r.Label,
			Kind:    KindNotProduction,
			Message: "Manifest entry not tagged production: " + fname + " (status: " + h.Status + ")",
		})
	}
}

// applyFullHeader rewrites the header with title and description from the
// manifest, the existing @status (or the development default) and a link
// derived from the script's path.
func applyFullHeader(res *Result, r Resolved, content string, opts Options) string {
	e := r.Entry
	if e.Title == "" || e.Description == "" || e.IsPlaceholder() {
		return content
	}
	h := header.Header{
		Title:       e.Title,
		Description: e.Description,
		Status:      header.StatusUnderDevelopment,
	}
	if existing, ok := header.Parse(content); ok && existing.Status != "" {
		h.Status = existing.Status
	}
	if opts.LinkBase != "" {
		h.Link = opts.LinkBase + e.Fname
	}

	updated, changed := header.Apply(content, h, opts.wrapWidth())
	if !changed {
		return content
	}
	if err := writeScript(r.Path, updated, opts.DryRun); err != nil {
		res.Errors = append(res.Errors, entryFinding(r.Label, KindIO, "Failed to write: %v", err))
		return content
	}
	res.HeadersUpdated = append(res.HeadersUpdated, e.Fname)
	if opts.DryRun {
		return content
	}
	return updated
}

func fixIndentCI(res *Result, r Resolved, content string, opts Options) string {
	fixed, changed := indent.Fix(content)
	if !changed {
		return content
	}
	if err := writeScript(r.Path, fixed, opts.DryRun); err != nil {
		res.Errors = append(res.Errors, entryFinding(r.Label, KindIO, "Failed to write: %v", err))
		return content
	}
	res.IndentFixed = append(res.IndentFixed, r.Entry.Fname)
	if opts.DryRun {
		return content
	}
	return fixed
}

// checkUnlistedProduction reports discovered scripts that claim production
// status without being listed in the manifest.
func checkUnlistedProduction(res *Result, baseDir string, listed map[string]manifest.Entry, dopts discover.Options) {
	if dopts.Suffix == "" {
		return
	}
	found, err := discover.Scripts(baseDir, dopts)
	if err != nil {
		res.Errors = append(res.Errors, Finding{Kind: KindIO, Message: "Script discovery failed: " + err.Error()})
		return
	}
	for _, fname := range found {
		if _, ok := listed[fname]; ok {
			continue
		}
		data, err := safeio.ReadFileContained(baseDir, fname)
		if err != nil {
			logger.Warn("Cannot read discovered script", logger.String("fname", fname), logger.Err(err))
			continue
		}
		if h, ok := header.Parse(string(data)); ok && header.IsProduction(h.Status) {
			res.Errors = append(res.Errors, Finding{
				Entry:   "[" + fname + "]",
				Kind:    KindNotInManifest,
				Message: "Production script not in manifest: " + fname,
			})
		}
	}
}
