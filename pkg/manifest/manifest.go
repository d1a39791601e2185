/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/

// Package manifest loads and writes the script catalogue manifest: a JSON
// array of {fname, title, description, doc} entries.
package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/fulmenhq/scriptcat/internal/assets"
	"github.com/fulmenhq/scriptcat/pkg/safeio"
	"github.com/fulmenhq/scriptcat/pkg/schema"
	"github.com/tailscale/hujson"
)

// ErrConfig marks a manifest that cannot be used at all: missing,
// unreadable, unparseable or of the wrong shape.
var ErrConfig = errors.New("manifest error")

// ErrShape is wrapped into ErrConfig when the JSON does not match the
// manifest schema.
var ErrShape = errors.New("manifest has wrong shape")

// Placeholder values written for newly discovered scripts.
const (
	TODOTitle       = "TODO: Add title"
	TODODescription = "TODO: Add description"
)

const (
	keyFname       = "fname"
	keyTitle       = "title"
	keyDescription = "description"
	keyDoc         = "doc"
)

// Entry is one manifest record.
type Entry struct {
	Fname       string
	Title       string
	Description string
	Doc         string

	// fields keeps the original key order and any unknown keys so a
	// rewrite does not reshuffle or drop hand-maintained data.
	fields []field
}

type field struct {
	key string
	raw json.RawMessage
}

// NewEntry builds an entry with the three required keys.
func NewEntry(fname, title, description string) Entry {
	return Entry{
		Fname:       fname,
		Title:       title,
		Description: description,
		fields:      []field{{key: keyFname}, {key: keyTitle}, {key: keyDescription}},
	}
}

// Has reports whether key was present in the source object.
func (e Entry) Has(key string) bool {
	for _, f := range e.fields {
		if f.key == key {
			return true
		}
	}
	return false
}

// HasFname reports whether the entry carries an fname key at all.
func (e Entry) HasFname() bool { return e.Has(keyFname) }

// IsPlaceholder reports whether title or description still carry TODO text.
func (e Entry) IsPlaceholder() bool {
	return strings.HasPrefix(e.Title, "TODO") || strings.HasPrefix(e.Description, "TODO")
}

// UnmarshalJSON decodes an object while remembering key order.
func (e *Entry) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("manifest entry must be an object")
	}

	*e = Entry{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}

		var target *string
		switch key {
		case keyFname:
			target = &e.Fname
		case keyTitle:
			target = &e.Title
		case keyDescription:
			target = &e.Description
		case keyDoc:
			target = &e.Doc
		}
		if target != nil {
			if err := json.Unmarshal(raw, target); err != nil {
				return fmt.Errorf("field %q: %w", key, err)
			}
		}

		replaced := false
		for i := range e.fields {
			if e.fields[i].key == key {
				e.fields[i].raw = raw
				replaced = true
			}
		}
		if !replaced {
			e.fields = append(e.fields, field{key: key, raw: raw})
		}
	}
	_, err = dec.Token()
	return err
}

// MarshalJSON writes known keys from the struct and unknown keys verbatim,
// in original order. Known keys set in code but absent from the source are
// appended; an empty doc is never invented.
func (e Entry) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	seen := map[string]bool{}
	first := true

	write := func(key string, value []byte) error {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		k, err := marshalString(key)
		if err != nil {
			return err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(value)
		return nil
	}

	known := func(key string) (string, bool) {
		switch key {
		case keyFname:
			return e.Fname, true
		case keyTitle:
			return e.Title, true
		case keyDescription:
			return e.Description, true
		case keyDoc:
			return e.Doc, true
		}
		return "", false
	}

	for _, f := range e.fields {
		seen[f.key] = true
		value := []byte(f.raw)
		if s, ok := known(f.key); ok {
			b, err := marshalString(s)
			if err != nil {
				return nil, err
			}
			value = b
		}
		if err := write(f.key, value); err != nil {
			return nil, err
		}
	}

	for _, key := range []string{keyFname, keyTitle, keyDescription, keyDoc} {
		if seen[key] {
			continue
		}
		s, _ := known(key)
		if key == keyDoc && s == "" {
			continue
		}
		b, err := marshalString(s)
		if err != nil {
			return nil, err
		}
		if err := write(key, b); err != nil {
			return nil, err
		}
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func marshalString(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Manifest is the ordered list of entries together with where it lives.
type Manifest struct {
	Path    string
	Entries []Entry
}

// Load reads and shape-checks a manifest file. JSONC comments and trailing
// commas are tolerated. Every failure wraps ErrConfig.
func Load(path string) (*Manifest, error) {
	if !safeio.IsRegularFile(path) {
		return nil, fmt.Errorf("%w: cannot find the file: %s", ErrConfig, path)
	}
	data, err := os.ReadFile(path) // #nosec G304 -- operator-supplied manifest path
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read manifest file: %v", ErrConfig, err)
	}
	entries, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return &Manifest{Path: path, Entries: entries}, nil
}

// Parse decodes manifest bytes.
func Parse(data []byte) ([]Entry, error) {
	std, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid JSON in manifest file: %v", ErrConfig, err)
	}

	validator, err := schema.GetEmbeddedValidator(assets.ManifestSchemaName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	res, err := validator.ValidateJSON(std)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	if !res.Valid {
		msgs := make([]string, 0, len(res.Errors))
		for _, ve := range res.Errors {
			msgs = append(msgs, ve.String())
		}
		if bytes.HasPrefix(bytes.TrimSpace(std), []byte("[")) {
			return nil, fmt.Errorf("%w: %w: %s", ErrConfig, ErrShape, strings.Join(msgs, "; "))
		}
		return nil, fmt.Errorf("%w: %w: manifest must be a JSON array", ErrConfig, ErrShape)
	}

	var entries []Entry
	if err := json.Unmarshal(std, &entries); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON in manifest file: %v", ErrConfig, err)
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}

// Encode renders entries the way the catalogue stores them: two-space
// indent, non-ASCII kept as is, trailing newline.
func Encode(entries []Entry) ([]byte, error) {
	if entries == nil {
		entries = []Entry{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save rewrites the whole manifest atomically.
func Save(path string, entries []Entry) error {
	data, err := Encode(entries)
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	return safeio.WriteFileAtomic(path, data)
}

// SortByFname orders entries by fname, keeping the relative order of ties.
func SortByFname(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Fname < entries[j].Fname
	})
}

// Index maps fname to entry for every entry with a non-empty fname. Later
// duplicates win.
func Index(entries []Entry) map[string]Entry {
	m := make(map[string]Entry, len(entries))
	for _, e := range entries {
		if e.Fname != "" {
			m[e.Fname] = e
		}
	}
	return m
}
