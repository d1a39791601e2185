package ignore

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewMatcher(t *testing.T) {
	root := t.TempDir()

	gitignoreContent := `# Test gitignore
*.log
scratch/
!scratch/keep.shelly.js
`
	if err := os.WriteFile(filepath.Join(root, ".gitignore"), []byte(gitignoreContent), 0o644); err != nil {
		t.Fatalf("Failed to write .gitignore: %v", err)
	}
	ignoreContent := `# catalogue overrides
*.wip.shelly.js
drafts/
`
	if err := os.WriteFile(filepath.Join(root, IgnoreFileName), []byte(ignoreContent), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", IgnoreFileName, err)
	}

	matcher, err := NewMatcher(root)
	if err != nil {
		t.Fatalf("Failed to create matcher: %v", err)
	}

	tests := []struct {
		path     string
		isDir    bool
		expected bool
		name     string
	}{
		{"error.log", false, true, "*.log pattern"},
		{"logs/error.log", false, true, "*.log pattern in subdirectory"},
		{"scratch/a.shelly.js", false, true, "scratch/ pattern"},
		{"scratch/keep.shelly.js", false, false, "negation pattern"},
		{"ble/new.wip.shelly.js", false, true, "scriptcatignore glob"},
		{"drafts/x.shelly.js", false, true, "scriptcatignore directory"},
		{"ble/scanner.shelly.js", false, false, "regular script"},
		{"/error.log", false, true, "leading slash"},
		{"drafts", true, true, "ignored directory"},
		{"ble", true, false, "kept directory"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := matcher.Match(tt.path, tt.isDir); got != tt.expected {
				t.Errorf("Match(%q, %v) = %v, expected %v", tt.path, tt.isDir, got, tt.expected)
			}
		})
	}
}

func TestNewMatcherWithoutIgnoreFiles(t *testing.T) {
	matcher, err := NewMatcher(t.TempDir())
	if err != nil {
		t.Fatalf("NewMatcher: %v", err)
	}
	if matcher.Match("a.shelly.js", false) {
		t.Error("nothing should be ignored without ignore files")
	}
	if matcher.Match(".", true) {
		t.Error("root must never be ignored")
	}
}

func TestSplitPath(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{".", 0},
		{"/a/b", 2},
		{"a//b/./c", 3},
	}
	for _, tt := range tests {
		if got := len(splitPath(tt.in)); got != tt.want {
			t.Errorf("splitPath(%q) has %d parts, want %d", tt.in, got, tt.want)
		}
	}
}

func TestReadIgnoreFileRejectsOtherNames(t *testing.T) {
	if _, err := readIgnoreFile("/etc/passwd"); err == nil {
		t.Error("expected disallowed path error")
	}
}
