package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fulmenhq/scriptcat/pkg/catalog"
	"github.com/mattn/go-runewidth"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const ruleWidth = 60

var upper = cases.Upper(language.English)

// rule underlines title, never shorter than ruleWidth columns.
func rule(title string) string {
	w := runewidth.StringWidth(title)
	if w < ruleWidth {
		w = ruleWidth
	}
	return strings.Repeat("=", w)
}

func sorted(in []string) []string {
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}

// Text renders the sectioned console summary.
func Text(res *catalog.Result, opts Options) string {
	var b strings.Builder

	title := "Manifest Integrity Check: " + res.Manifest
	fmt.Fprintf(&b, "\n%s\n%s\n", title, rule(title))
	if res.Mode == catalog.ModeCI {
		b.WriteString("Mode: ci\n")
	}
	fmt.Fprintf(&b, "Total entries: %d\n", res.Total)

	if res.Checks.Headers {
		b.WriteString("\nHeader Check:\n")
		fmt.Fprintf(&b, "  Files with standard header: %d\n", len(res.HeadersPresent))
		fmt.Fprintf(&b, "  Files missing standard header: %d\n", len(res.HeadersMissing))
		if n := len(res.HeadersMissing); n > 0 {
			fmt.Fprintf(&b, "\n  MISSING HEADER (%d):\n", n)
			for _, f := range sorted(res.HeadersMissing) {
				fmt.Fprintf(&b, "    [ ] %s\n", f)
			}
		}
	}

	if res.Checks.UpdateHeaders {
		action := "Updated"
		if res.DryRun {
			action = "Would update"
		}
		writeActionList(&b, "Header Update", action, res.HeadersUpdated)
	}

	if res.Checks.Indent {
		b.WriteString("\nIndentation Check (2-space):\n")
		fmt.Fprintf(&b, "  Files with valid indentation: %d\n", len(res.IndentValid))
		fmt.Fprintf(&b, "  Files with invalid indentation: %d\n", len(res.IndentInvalid))
		if n := len(res.IndentInvalid); n > 0 {
			invalid := append([]catalog.IndentFile(nil), res.IndentInvalid...)
			sort.Slice(invalid, func(i, j int) bool { return invalid[i].File < invalid[j].File })
			fmt.Fprintf(&b, "\n  INVALID INDENTATION (%d):\n", n)
			for _, f := range invalid {
				fmt.Fprintf(&b, "    [ ] %s (%d issues)\n", f.File, len(f.Issues))
				if opts.Verbose {
					for _, is := range f.Issues {
						fmt.Fprintf(&b, "          %s\n", is)
					}
				}
			}
		}
	}

	if res.Checks.FixIndent {
		action := "Fixed"
		if res.DryRun {
			action = "Would fix"
		}
		writeActionList(&b, "Indentation Fix", action, res.IndentFixed)
	}

	if n := len(res.Errors); n > 0 {
		fmt.Fprintf(&b, "\nERRORS (%d):\n", n)
		for _, e := range res.Errors {
			fmt.Fprintf(&b, "  [X] %s\n", e.Message)
		}
	}
	if opts.Verbose && res.IndexDiff != "" {
		b.WriteString("\nINDEX DIFF:\n")
		b.WriteString(res.IndexDiff)
		if !strings.HasSuffix(res.IndexDiff, "\n") {
			b.WriteString("\n")
		}
	}
	if n := len(res.Warnings); n > 0 {
		fmt.Fprintf(&b, "\nWARNINGS (%d):\n", n)
		for _, w := range res.Warnings {
			fmt.Fprintf(&b, "  [!] %s\n", w.Message)
		}
	}

	b.WriteString("\n" + verdict(res) + "\n")
	return b.String()
}

func writeActionList(b *strings.Builder, section, action string, files []string) {
	fmt.Fprintf(b, "\n%s:\n", section)
	fmt.Fprintf(b, "  %s: %d files\n", action, len(files))
	if len(files) == 0 {
		return
	}
	fmt.Fprintf(b, "\n  %s (%d):\n", upper.String(action), len(files))
	for _, f := range sorted(files) {
		fmt.Fprintf(b, "    [+] %s\n", f)
	}
}

// verdict is the closing status line.
func verdict(res *catalog.Result) string {
	switch {
	case len(res.Errors) > 0:
		return fmt.Sprintf("[FAIL] Found %d error(s)", len(res.Errors))
	case len(res.Warnings) > 0:
		return fmt.Sprintf("[WARN] Found %d warning(s), no errors", len(res.Warnings))
	case res.Checks.Headers && len(res.HeadersMissing) > 0:
		return fmt.Sprintf("[WARN] %d files missing headers", len(res.HeadersMissing))
	default:
		return "[OK] All checks passed! Manifest is valid."
	}
}

// SyncText renders the synchronization summary.
func SyncText(res *catalog.SyncResult) string {
	var b strings.Builder

	title := "Manifest Sync: " + res.Manifest
	fmt.Fprintf(&b, "\n%s\n%s\n", title, rule(title))
	fmt.Fprintf(&b, "Scripts found: %d\n", len(res.Found))
	fmt.Fprintf(&b, "Existing entries: %d\n", res.Existing)

	if n := len(res.Added); n > 0 {
		fmt.Fprintf(&b, "\nNEW (%d):\n", n)
		for _, f := range res.Added {
			fmt.Fprintf(&b, "  [+] %s\n", f)
		}
	}
	if n := len(res.Removed); n > 0 {
		fmt.Fprintf(&b, "\nREMOVED (%d):\n", n)
		for _, f := range res.Removed {
			fmt.Fprintf(&b, "  [-] %s\n", f)
		}
	}
	if len(res.Missing) > 0 && len(res.Removed) == 0 {
		fmt.Fprintf(&b, "\nMISSING FILES (%d) - kept in manifest:\n", len(res.Missing))
		for _, f := range res.Missing {
			fmt.Fprintf(&b, "  [?] %s\n", f)
		}
		b.WriteString("  (use --remove-missing to remove these entries)\n")
	}

	switch {
	case !res.Changed():
		b.WriteString("\n[OK] Manifest is already in sync.\n")
	case res.DryRun:
		b.WriteString("\n[DRY-RUN] No changes written.\n")
	case res.Written:
		fmt.Fprintf(&b, "\n[OK] Manifest updated: %d entries\n", len(res.Entries))
	}
	return b.String()
}
