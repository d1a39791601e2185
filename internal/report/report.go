/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/

// Package report renders check and sync results for people and for CI.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fulmenhq/scriptcat/pkg/catalog"
	"gopkg.in/yaml.v3"
)

// Format is an output format for check results.
type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
	FormatJUnit    Format = "junit"
)

// Formats lists every supported format, for flag help.
var Formats = []Format{FormatText, FormatJSON, FormatYAML, FormatMarkdown, FormatJUnit}

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if f == "md" {
		f = FormatMarkdown
	}
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unsupported format: %s", s)
}

// Options tune rendering.
type Options struct {
	// Verbose adds per-line indentation issues and the index diff to text
	// output.
	Verbose bool
}

// Write renders res to w in the given format.
func Write(w io.Writer, res *catalog.Result, format Format, opts Options) error {
	switch format {
	case FormatText, "":
		_, err := io.WriteString(w, Text(res, opts))
		return err
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(res)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(res); err != nil {
			return err
		}
		return enc.Close()
	case FormatMarkdown:
		out, err := Markdown(res)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, out)
		return err
	case FormatJUnit:
		out, err := JUnit(res)
		if err != nil {
			return err
		}
		_, err = w.Write(out)
		return err
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}
