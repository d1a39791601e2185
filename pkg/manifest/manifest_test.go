/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package manifest

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "examples-manifest.json")
	writeFile(t, path, `[
  {"fname": "b.shelly.js", "title": "B", "description": "second", "doc": "b.md"},
  {"fname": "a.shelly.js", "title": "A", "description": "first"}
]`)

	m, err := Load(path)
	require.NoError(t, err)
	require.Len(t, m.Entries, 2)
	assert.Equal(t, path, m.Path)
	assert.Equal(t, "b.shelly.js", m.Entries[0].Fname)
	assert.Equal(t, "b.md", m.Entries[0].Doc)
	assert.True(t, m.Entries[1].HasFname())
	assert.False(t, m.Entries[1].Has("doc"))
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
		shape   bool
	}{
		{"invalid json", `[{"fname": }`, false},
		{"object root", `{"fname": "a.js"}`, true},
		{"wrong field type", `[{"fname": "a.js", "title": 1}]`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".json")
			writeFile(t, path, tt.content)
			_, err := Load(path)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrConfig), "want ErrConfig, got %v", err)
			assert.Equal(t, tt.shape, errors.Is(err, ErrShape))
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "nope.json"))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrConfig)
		assert.Contains(t, err.Error(), "cannot find the file")
	})

	t.Run("object root message", func(t *testing.T) {
		_, err := Parse([]byte(`{}`))
		assert.Contains(t, err.Error(), "manifest must be a JSON array")
	})
}

func TestParseJSONC(t *testing.T) {
	entries, err := Parse([]byte(`[
  // the only script
  {"fname": "a.shelly.js", "title": "A", "description": "x",},
]`))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a.shelly.js", entries[0].Fname)
}

func TestParseNullTextFields(t *testing.T) {
	entries, err := Parse([]byte(`[
  {"fname": "a.shelly.js", "title": null, "description": null, "doc": null},
  {"fname": "b.shelly.js", "title": "B", "description": "b"}
]`))
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "", entries[0].Title)
	assert.Equal(t, "", entries[0].Description)
	assert.Equal(t, "", entries[0].Doc)
	assert.Equal(t, "B", entries[1].Title)
}

func TestMissingFnameKey(t *testing.T) {
	entries, err := Parse([]byte(`[{"title": "A"}, {"fname": ""}]`))
	require.NoError(t, err)
	assert.False(t, entries[0].HasFname())
	assert.True(t, entries[1].HasFname())
	assert.Equal(t, "", entries[1].Fname)
}

func TestEncodePreservesOrderAndUnknownKeys(t *testing.T) {
	entries, err := Parse([]byte(`[{"title": "Ünïcode & <b>", "fname": "a.shelly.js", "tags": ["x", "y"], "description": "d"}]`))
	require.NoError(t, err)

	entries[0].Description = "changed"
	out, err := Encode(entries)
	require.NoError(t, err)

	want := `[
  {
    "title": "Ünïcode & <b>",
    "fname": "a.shelly.js",
    "tags": [
      "x",
      "y"
    ],
    "description": "changed"
  }
]
`
	if diff := cmp.Diff(want, string(out)); diff != "" {
		t.Errorf("Encode mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodeNewEntry(t *testing.T) {
	out, err := Encode([]Entry{NewEntry("x.shelly.js", TODOTitle, TODODescription)})
	require.NoError(t, err)
	want := `[
  {
    "fname": "x.shelly.js",
    "title": "TODO: Add title",
    "description": "TODO: Add description"
  }
]
`
	assert.Equal(t, want, string(out))
}

func TestEncodeEmpty(t *testing.T) {
	out, err := Encode(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(out))
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.json")
	in := []Entry{NewEntry("a.shelly.js", "A", "x")}
	in[0].Doc = "a.md"
	require.NoError(t, Save(path, in))

	m, err := Load(path)
	require.NoError(t, err)
	require.Len(t, m.Entries, 1)
	assert.Equal(t, "a.md", m.Entries[0].Doc)
	assert.Equal(t, "A", m.Entries[0].Title)
}

func TestSortByFname(t *testing.T) {
	entries := []Entry{NewEntry("c", "", ""), NewEntry("a", "", ""), NewEntry("b", "", "")}
	SortByFname(entries)
	got := []string{entries[0].Fname, entries[1].Fname, entries[2].Fname}
	assert.Equal(t, []string{"a", "b", "c"}, got)
}

func TestIsPlaceholder(t *testing.T) {
	assert.True(t, NewEntry("a", TODOTitle, "real").IsPlaceholder())
	assert.True(t, NewEntry("a", "Real", TODODescription).IsPlaceholder())
	assert.False(t, NewEntry("a", "Real", "real").IsPlaceholder())
}

func TestIndex(t *testing.T) {
	idx := Index([]Entry{NewEntry("a", "1", ""), NewEntry("", "skip", ""), NewEntry("a", "2", "")})
	assert.Len(t, idx, 1)
	assert.Equal(t, "2", idx["a"].Title)
}
