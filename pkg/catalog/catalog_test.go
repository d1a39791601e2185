package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fulmenhq/scriptcat/pkg/discover"
	"github.com/fulmenhq/scriptcat/pkg/exitcode"
	"github.com/fulmenhq/scriptcat/pkg/format/header"
	"github.com/fulmenhq/scriptcat/pkg/index"
	"github.com/fulmenhq/scriptcat/pkg/manifest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const linkBase = "https://example.test/blob/main/"

// repo is a throwaway catalogue checkout.
type repo struct {
	t    *testing.T
	root string
}

func newRepo(t *testing.T) *repo {
	t.Helper()
	return &repo{t: t, root: t.TempDir()}
}

func (r *repo) write(rel, content string) string {
	r.t.Helper()
	full := filepath.Join(r.root, filepath.FromSlash(rel))
	require.NoError(r.t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(r.t, os.WriteFile(full, []byte(content), 0o644))
	return full
}

func (r *repo) read(rel string) string {
	r.t.Helper()
	data, err := os.ReadFile(filepath.Join(r.root, filepath.FromSlash(rel)))
	require.NoError(r.t, err)
	return string(data)
}

func (r *repo) manifestPath() string {
	return filepath.Join(r.root, "examples-manifest.json")
}

func (r *repo) manifest(raw string) *manifest.Manifest {
	r.t.Helper()
	r.write("examples-manifest.json", raw)
	m, err := manifest.Load(r.manifestPath())
	require.NoError(r.t, err)
	return m
}

func scriptOptions() discover.Options {
	return discover.Options{
		Suffix:      ".shelly.js",
		ExcludeDirs: []string{"node_modules", ".git", "tools", "_backup"},
	}
}

func productionScript(fname, title, desc string) string {
	return header.Format(header.Header{
		Title:       title,
		Description: desc,
		Status:      header.StatusProduction,
		Link:        linkBase + fname,
	}, header.WrapWidth) + "let a = 1;\n"
}

func messages(fs []Finding) []string {
	out := make([]string, 0, len(fs))
	for _, f := range fs {
		out = append(out, f.Message)
	}
	return out
}

func TestValidateValidManifest(t *testing.T) {
	r := newRepo(t)
	r.write("a.shelly.js", "let a;\n")
	r.write("ble/b.shelly.js", "let b;\n")
	r.write("ble/b.md", "# doc\n")
	m := r.manifest(`[
  {"fname": "a.shelly.js", "title": "A", "description": "Alpha."},
  {"fname": "ble/b.shelly.js", "title": "B", "description": "Beta.", "doc": "ble/b.md"}
]`)

	v := Validate(m.Entries, r.root, true)
	assert.Empty(t, v.Errors)
	assert.Empty(t, v.Warnings)
	require.Len(t, v.Resolved, 2)
	assert.Equal(t, "[ble/b.shelly.js]", v.Resolved[1].Label)
	assert.Equal(t, 2, v.Resolved[1].Position)
}

func TestValidateFindings(t *testing.T) {
	r := newRepo(t)
	r.write("b.shelly.js", "let b;\n")
	r.write("c.shelly.js", "let c;\n")
	r.write("d.shelly.js", "let d;\n")
	m := r.manifest(`[
  {"title": "no fname", "description": "x"},
  {"fname": "  ", "title": "blank", "description": "x"},
  {"fname": "a.js", "title": "A", "description": "missing file"},
  {"fname": "b.shelly.js", "title": " ", "description": ""},
  {"fname": "c.shelly.js", "title": "C", "description": "C.", "doc": "c.md"},
  {"fname": "c.shelly.js", "title": "C again", "description": "dup"},
  {"fname": "../outside.shelly.js", "title": "X", "description": "X."},
  {"fname": "d.shelly.js", "title": null, "description": null}
]`)

	v := Validate(m.Entries, r.root, true)
	assert.Equal(t, []string{
		"Entry 1: Missing 'fname' field",
		"Entry 2: Empty 'fname' field",
		"[a.js]: Script file not found: a.js",
		"[b.shelly.js]: Missing or empty 'title' field",
		"[b.shelly.js]: Missing or empty 'description' field",
		"[c.shelly.js]: Duplicate 'fname' (first seen at entry 5)",
		"[../outside.shelly.js]: Script file not found: ../outside.shelly.js",
		"[d.shelly.js]: Missing or empty 'title' field",
		"[d.shelly.js]: Missing or empty 'description' field",
	}, messages(v.Errors))
	assert.Equal(t, []string{"[c.shelly.js]: Doc file not found: c.md"}, messages(v.Warnings))
	assert.Equal(t, KindFileNotFound, v.Errors[2].Kind)
	assert.Equal(t, KindDocNotFound, v.Warnings[0].Kind)

	var fnames []string
	for _, res := range v.Resolved {
		fnames = append(fnames, res.Entry.Fname)
	}
	assert.Equal(t, []string{"b.shelly.js", "c.shelly.js", "d.shelly.js"}, fnames)
}

func TestValidateDocsOnlyWhenAsked(t *testing.T) {
	r := newRepo(t)
	r.write("a.shelly.js", "let a;\n")
	m := r.manifest(`[{"fname": "a.shelly.js", "title": "A", "description": "A.", "doc": "missing.md"}]`)
	assert.Empty(t, Validate(m.Entries, r.root, false).Warnings)
}

func TestCheckMissingScriptFails(t *testing.T) {
	r := newRepo(t)
	m := r.manifest(`[{"fname": "a.js", "title": "A", "description": "Alpha."}]`)

	res := Check(m, Options{})
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0].Message, "a.js")
	assert.Equal(t, KindFileNotFound, res.Errors[0].Kind)
	assert.Equal(t, exitcode.Failure, res.ExitCode())
	assert.Equal(t, StatusFail, res.Status())
}

func TestCheckHeadersAndUpdate(t *testing.T) {
	r := newRepo(t)
	r.write("a.shelly.js", header.Generate("A", "Alpha.")+"let a;\n")
	r.write("b.shelly.js", "/*\n * old notes\n */\nlet b;\n")
	r.write("c.shelly.js", "let c;\n")
	m := r.manifest(`[
  {"fname": "a.shelly.js", "title": "A", "description": "Alpha."},
  {"fname": "b.shelly.js", "title": "B", "description": "Beta."},
  {"fname": "c.shelly.js", "title": "TODO: Add title", "description": "TODO: Add description"}
]`)

	res := Check(m, Options{CheckHeaders: true})
	assert.Equal(t, []string{"a.shelly.js"}, res.HeadersPresent)
	assert.Equal(t, []string{"b.shelly.js", "c.shelly.js"}, res.HeadersMissing)
	assert.Equal(t, StatusWarn, res.Status())
	assert.Equal(t, exitcode.Success, res.ExitCode())

	t.Run("dry run writes nothing", func(t *testing.T) {
		before := r.read("b.shelly.js")
		res := Check(m, Options{UpdateHeaders: true, DryRun: true})
		assert.Equal(t, []string{"b.shelly.js"}, res.HeadersUpdated)
		assert.Equal(t, before, r.read("b.shelly.js"))
	})

	res = Check(m, Options{UpdateHeaders: true})
	assert.Equal(t, []string{"b.shelly.js"}, res.HeadersUpdated, "placeholder entries and current headers are skipped")
	assert.Equal(t, header.Generate("B", "Beta.")+"let b;\n", r.read("b.shelly.js"))
	assert.Equal(t, "let c;\n", r.read("c.shelly.js"))

	res = Check(m, Options{UpdateHeaders: true})
	assert.Empty(t, res.HeadersUpdated, "second update is a no-op")
}

func TestCheckIndentAndFix(t *testing.T) {
	r := newRepo(t)
	r.write("a.shelly.js", "function a() {\n\treturn 1;\n}\n")
	r.write("b.shelly.js", "function b() {\n   return 2;\n}\n")
	r.write("c.shelly.js", "function c() {\n  return 3;\n}\n")
	m := r.manifest(`[
  {"fname": "a.shelly.js", "title": "A", "description": "A."},
  {"fname": "b.shelly.js", "title": "B", "description": "B."},
  {"fname": "c.shelly.js", "title": "C", "description": "C."}
]`)

	res := Check(m, Options{CheckIndent: true})
	assert.Equal(t, []string{"c.shelly.js"}, res.IndentValid)
	require.Len(t, res.IndentInvalid, 2)
	assert.Equal(t, "a.shelly.js", res.IndentInvalid[0].File)
	assert.Equal(t, "Line 2: Uses tabs for indentation", res.IndentInvalid[0].Issues[0].String())
	assert.Empty(t, res.Errors, "indentation issues are not errors in interactive mode")

	res = Check(m, Options{FixIndent: true})
	assert.Equal(t, []string{"a.shelly.js"}, res.IndentFixed, "odd-only files are not rewritten")
	assert.Equal(t, "function a() {\n  return 1;\n}\n", r.read("a.shelly.js"))
	assert.Equal(t, "function b() {\n   return 2;\n}\n", r.read("b.shelly.js"))
}

func TestCheckIndex(t *testing.T) {
	r := newRepo(t)
	r.write("a.shelly.js", "let a;\n")
	m := r.manifest(`[{"fname": "a.shelly.js", "title": "A", "description": "Alpha."}]`)

	res := Check(m, Options{CheckIndex: true})
	assert.Equal(t, []string{"SHELLY_MJS.md not found"}, messages(res.Errors))

	require.NoError(t, index.Write(filepath.Join(r.root, index.DefaultFileName), m.Entries))
	res = Check(m, Options{CheckIndex: true})
	assert.Empty(t, res.Errors)
	assert.Equal(t, StatusOK, res.Status())

	m.Entries[0].Title = "A2"
	res = Check(m, Options{CheckIndex: true})
	require.Len(t, res.Errors, 1)
	assert.Equal(t, KindIndex, res.Errors[0].Kind)
	assert.Contains(t, res.Errors[0].Message, "scriptcat index")
	assert.Contains(t, res.IndexDiff, "+a.shelly.js: A2")
}

func TestCheckBaseDirOverride(t *testing.T) {
	r := newRepo(t)
	r.write("scripts/a.shelly.js", "let a;\n")
	m := r.manifest(`[{"fname": "a.shelly.js", "title": "A", "description": "A."}]`)

	assert.Len(t, Check(m, Options{}).Errors, 1)
	assert.Empty(t, Check(m, Options{BaseDir: filepath.Join(r.root, "scripts")}).Errors)
}

func ciRepo(t *testing.T) (*repo, *manifest.Manifest) {
	t.Helper()
	r := newRepo(t)
	r.write("a.shelly.js", productionScript("a.shelly.js", "A", "Alpha."))
	m := r.manifest(`[{"fname": "a.shelly.js", "title": "A", "description": "Alpha."}]`)
	require.NoError(t, index.Write(filepath.Join(r.root, index.DefaultFileName), m.Entries))
	return r, m
}

func ciOptions() Options {
	return Options{LinkBase: linkBase, Discover: scriptOptions()}
}

func TestCheckCIClean(t *testing.T) {
	_, m := ciRepo(t)
	res := CheckCI(m, ciOptions())
	assert.Empty(t, messages(res.Errors))
	assert.Equal(t, ModeCI, res.Mode)
	assert.Equal(t, []string{"a.shelly.js"}, res.HeadersPresent)
}

func TestCheckCIStatusAndLink(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   []string
	}{
		{
			name:   "draft status",
			header: "/**\n * @title A\n * @description Alpha.\n * @status draft\n */\n\n",
			want:   []string{"[a.shelly.js]: Invalid @status: draft"},
		},
		{
			name:   "capitalised status",
			header: "/**\n * @title A\n * @description Alpha.\n * @status Production\n */\n\n",
			want:   []string{"[a.shelly.js]: Invalid @status: Production"},
		},
		{
			name:   "missing status",
			header: "/**\n * @title A\n * @description Alpha.\n */\n\n",
			want:   []string{"[a.shelly.js]: Missing @status"},
		},
		{
			name:   "bad link",
			header: "/**\n * @title A\n * @description Alpha.\n * @status production\n * @link not-a-url\n */\n\n",
			want:   []string{"[a.shelly.js]: Invalid @link: not-a-url"},
		},
		{
			name:   "under development",
			header: "/**\n * @title A\n * @description Alpha.\n * @status under-development\n */\n\n",
			want:   []string{"Manifest entry not tagged production: a.shelly.js (status: under-development)"},
		},
		{
			name:   "no header",
			header: "",
			want:   []string{"[a.shelly.js]: Missing or invalid header"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, m := ciRepo(t)
			r.write("a.shelly.js", tt.header+"let a;\n")
			res := CheckCI(m, ciOptions())
			assert.Equal(t, tt.want, messages(res.Errors))
			assert.Equal(t, exitcode.Failure, res.ExitCode())
		})
	}
}

func TestCheckCIUnlistedProduction(t *testing.T) {
	r, m := ciRepo(t)
	r.write("ble/b.shelly.js", productionScript("ble/b.shelly.js", "B", "Beta."))
	r.write("ble/c.shelly.js", "let c;\n")
	r.write("tools/t.shelly.js", productionScript("tools/t.shelly.js", "T", "Tool."))

	res := CheckCI(m, ciOptions())
	assert.Equal(t, []string{"Production script not in manifest: ble/b.shelly.js"}, messages(res.Errors))
	assert.Equal(t, KindNotInManifest, res.Errors[0].Kind)
	assert.Len(t, res.ErrorsFor("[ble/b.shelly.js]"), 1)
}

func TestResultFindingsFor(t *testing.T) {
	res := &Result{
		Errors: []Finding{
			entryFinding("[a.js]", KindFileNotFound, "Script file not found: a.js"),
			{Kind: KindIndex, Message: "SHELLY_MJS.md not found"},
			entryFinding("[a.js]", KindHeader, "Missing or invalid header"),
		},
		Warnings: []Finding{
			entryFinding("[b.js]", KindDocNotFound, "Doc file not found: b.md"),
		},
	}

	tests := []struct {
		label    string
		errors   []string
		warnings []string
	}{
		{"[a.js]", []string{"[a.js]: Script file not found: a.js", "[a.js]: Missing or invalid header"}, nil},
		{"", []string{"SHELLY_MJS.md not found"}, nil},
		{"[b.js]", nil, []string{"[b.js]: Doc file not found: b.md"}},
		{"[c.js]", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			assert.Equal(t, tt.errors, messagesOrNil(res.ErrorsFor(tt.label)))
			assert.Equal(t, tt.warnings, messagesOrNil(res.WarningsFor(tt.label)))
		})
	}
}

func messagesOrNil(fs []Finding) []string {
	if len(fs) == 0 {
		return nil
	}
	return messages(fs)
}

func TestCheckCIIndentAndIndex(t *testing.T) {
	r, m := ciRepo(t)
	r.write("a.shelly.js", productionScript("a.shelly.js", "A", "Alpha.")+"if (a) {\n\tb();\n}\n")
	require.NoError(t, os.Remove(filepath.Join(r.root, index.DefaultFileName)))

	res := CheckCI(m, ciOptions())
	assert.Equal(t, []string{
		"[a.shelly.js]: Invalid indentation (1 issues)",
		"SHELLY_MJS.md not found",
	}, messages(res.Errors))

	opts := ciOptions()
	opts.FixIndent = true
	res = CheckCI(m, opts)
	assert.Equal(t, []string{"SHELLY_MJS.md not found"}, messages(res.Errors))
	assert.Equal(t, []string{"a.shelly.js"}, res.IndentFixed)
}

func TestCheckCIUpdateHeaders(t *testing.T) {
	r, m := ciRepo(t)
	r.write("a.shelly.js", "/**\n * @title Old\n * @description Old.\n * @status production\n */\n\nlet a;\n")

	opts := ciOptions()
	opts.UpdateHeaders = true
	res := CheckCI(m, opts)
	assert.Empty(t, messages(res.Errors))
	assert.Equal(t, []string{"a.shelly.js"}, res.HeadersUpdated)

	h, ok := header.Parse(r.read("a.shelly.js"))
	require.True(t, ok)
	assert.Equal(t, header.Header{Title: "A", Description: "Alpha.", Status: "production", Link: linkBase + "a.shelly.js"}, h)

	r.write("a.shelly.js", "let a;\n")
	res = CheckCI(m, opts)
	h, _ = header.Parse(r.read("a.shelly.js"))
	assert.Equal(t, header.StatusUnderDevelopment, h.Status, "new headers default to development")
	assert.Equal(t, []string{"Manifest entry not tagged production: a.shelly.js (status: under development)"}, messages(res.Errors))
}

func TestSyncAddsAndRemoves(t *testing.T) {
	r := newRepo(t)
	r.write("b.shelly.js", "let b;\n")
	r.write("a/new.shelly.js", "// Title: Fresh script\n// Description: Does fresh things\nlet n;\n")
	r.write("node_modules/x.shelly.js", "")
	r.manifest(`[
  {"fname": "b.shelly.js", "title": "B", "description": "Beta.", "extra": {"k": 1}},
  {"fname": "gone.shelly.js", "title": "G", "description": "Gone."}
]`)

	res, err := Sync(r.manifestPath(), SyncOptions{Discover: scriptOptions(), DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"a/new.shelly.js"}, res.Added)
	assert.Equal(t, []string{"gone.shelly.js"}, res.Missing)
	assert.Empty(t, res.Removed)
	assert.False(t, res.Written)
	assert.Contains(t, r.read("examples-manifest.json"), "gone.shelly.js")

	res, err = Sync(r.manifestPath(), SyncOptions{Discover: scriptOptions(), RemoveMissing: true, ExtractMetadata: true})
	require.NoError(t, err)
	assert.True(t, res.Written)
	assert.Equal(t, []string{"gone.shelly.js"}, res.Removed)

	m, err := manifest.Load(r.manifestPath())
	require.NoError(t, err)
	var fnames []string
	for _, e := range m.Entries {
		fnames = append(fnames, e.Fname)
	}
	assert.Equal(t, res.Found, fnames, "manifest matches the discovered set")
	assert.Equal(t, "Fresh script", m.Entries[0].Title)
	assert.Equal(t, "Does fresh things", m.Entries[0].Description)
	assert.Contains(t, r.read("examples-manifest.json"), `"extra": {`, "unknown keys survive")
	assert.True(t, strings.HasSuffix(r.read("examples-manifest.json"), "}\n]\n"))
}

func TestSyncKeepsMissingByDefault(t *testing.T) {
	r := newRepo(t)
	r.write("z.shelly.js", "let z;\n")
	r.manifest(`[{"fname": "gone.shelly.js", "title": "G", "description": "Gone."}]`)

	res, err := Sync(r.manifestPath(), SyncOptions{Discover: scriptOptions()})
	require.NoError(t, err)
	assert.True(t, res.Written)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, KindMissingOnDisk, res.Warnings[0].Kind)

	m, err := manifest.Load(r.manifestPath())
	require.NoError(t, err)
	require.Len(t, m.Entries, 2)
	assert.Equal(t, "gone.shelly.js", m.Entries[0].Fname)
	assert.Equal(t, manifest.TODOTitle, m.Entries[1].Title)
}

func TestSyncInSyncDoesNotWrite(t *testing.T) {
	r := newRepo(t)
	r.write("a.shelly.js", "let a;\n")
	raw := `[ {"fname": "a.shelly.js", "title": "A", "description": "A."} ]`
	r.manifest(raw)

	res, err := Sync(r.manifestPath(), SyncOptions{Discover: scriptOptions()})
	require.NoError(t, err)
	assert.False(t, res.Changed())
	assert.False(t, res.Written)
	assert.Equal(t, raw, r.read("examples-manifest.json"))
}

func TestSyncWithoutManifest(t *testing.T) {
	r := newRepo(t)
	r.write("a.shelly.js", "let a;\n")

	res, err := Sync(r.manifestPath(), SyncOptions{Discover: scriptOptions()})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Existing)
	assert.True(t, res.Written)
}

func TestSyncBadManifest(t *testing.T) {
	r := newRepo(t)
	r.write("examples-manifest.json", `{"not": "an array"}`)
	_, err := Sync(r.manifestPath(), SyncOptions{Discover: scriptOptions()})
	assert.ErrorIs(t, err, manifest.ErrConfig)
}

func TestExtractMetadata(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		wantTitle string
		wantDesc  string
	}{
		{
			name:      "tags",
			content:   "/**\n * @title Tagged\n * @description From tags.\n */\n// Title: Ignored\n",
			wantTitle: "Tagged",
			wantDesc:  "From tags.",
		},
		{
			name:      "labels are case-insensitive",
			content:   "// name: Labeled\n// DESCRIPTION: From labels\n",
			wantTitle: "Labeled",
			wantDesc:  "From labels",
		},
		{
			name:      "first comment as title",
			content:   "let a;\n// Plain comment\n// second\n",
			wantTitle: "Plain comment",
		},
		{
			name:    "nothing",
			content: "let a = 1;\n",
		},
		{
			name:      "outside window",
			content:   strings.Repeat("я", 2000) + "\n// @title Late\n",
			wantTitle: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, desc := ExtractMetadata(tt.content)
			assert.Equal(t, tt.wantTitle, title)
			assert.Equal(t, tt.wantDesc, desc)
		})
	}
}
