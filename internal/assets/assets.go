package assets

import (
	"embed"
	"io/fs"
)

//go:embed embedded_templates
var Templates embed.FS

func GetTemplatesFS() fs.FS {
	if sub, err := fs.Sub(Templates, "embedded_templates"); err == nil {
		return sub
	}
	return Templates
}

// GetTemplate returns an embedded report template by path relative to
// embedded_templates (e.g. "report/check.md.hbs").
func GetTemplate(relPath string) ([]byte, bool) {
	data, err := fs.ReadFile(GetTemplatesFS(), relPath)
	return data, err == nil
}
