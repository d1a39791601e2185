/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/

// Package indent lints and fixes the two-space indentation convention of
// catalogue scripts.
package indent

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// IssueKind classifies an indentation problem.
type IssueKind string

const (
	KindTabs IssueKind = "tabs"
	KindOdd  IssueKind = "odd"
)

// Issue is one offending line.
type Issue struct {
	Line   int       `json:"line"`
	Kind   IssueKind `json:"kind"`
	Spaces int       `json:"spaces,omitempty"`
}

func (i Issue) String() string {
	if i.Kind == KindTabs {
		return fmt.Sprintf("Line %d: Uses tabs for indentation", i.Line)
	}
	return fmt.Sprintf("Line %d: Odd indentation (%d spaces)", i.Line, i.Spaces)
}

// commentState is the per-line block comment automaton.
type commentState int

const (
	outsideComment commentState = iota
	insideComment
)

// next advances the automaton over one line. A line holding "/*" enters a
// comment; a line holding "*/" leaves it and is itself skipped. An opener
// and closer on the same line therefore just leave, which is the known
// limitation of this scanner.
func (s commentState) next(line string) (commentState, bool) {
	if strings.Contains(line, "/*") {
		s = insideComment
	}
	if strings.Contains(line, "*/") {
		return outsideComment, true
	}
	return s, false
}

// leading returns the whitespace prefix of line.
func leading(line string) string {
	end := len(line)
	for i, r := range line {
		if !unicode.IsSpace(r) {
			end = i
			break
		}
	}
	return line[:end]
}

// Check scans content line by line and reports every indentation issue.
// JSDoc continuation lines (" * ...") inside block comments are skipped.
func Check(content string) []Issue {
	var issues []Issue
	state := outsideComment

	for i, line := range strings.Split(content, "\n") {
		lineNum := i + 1

		var skip bool
		state, skip = state.next(line)
		if skip {
			continue
		}
		if state == insideComment && strings.HasPrefix(strings.TrimSpace(line), "*") {
			continue
		}

		if line == "" {
			continue
		}
		if r, _ := utf8.DecodeRuneInString(line); !unicode.IsSpace(r) {
			continue
		}

		if strings.Contains(leading(line), "\t") {
			issues = append(issues, Issue{Line: lineNum, Kind: KindTabs})
			continue
		}

		spaces := len(line) - len(strings.TrimLeft(line, " "))
		if spaces > 0 && spaces%2 != 0 {
			issues = append(issues, Issue{Line: lineNum, Kind: KindOdd, Spaces: spaces})
		}
	}
	return issues
}

// Fix converts every tab in leading whitespace to two spaces. Odd space
// indentation is left alone since it is often deliberate alignment.
func Fix(content string) (out string, changed bool) {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		if line == "" {
			continue
		}
		lead := leading(line)
		if !strings.Contains(lead, "\t") {
			continue
		}
		lines[i] = strings.ReplaceAll(lead, "\t", "  ") + line[len(lead):]
		changed = true
	}
	return strings.Join(lines, "\n"), changed
}
