package assets

// Registry lists embedded assets available at runtime.
// Update this when adding/removing curated assets.

type AssetInfo struct {
	Family  string // jsonschema, template
	Name    string // lookup key
	Version string
	Path    string // embed path
}

var Registry = []AssetInfo{
	{
		Family:  "jsonschema",
		Name:    ManifestSchemaName,
		Version: "v1.0.0",
		Path:    "embedded_schemas/manifest/v1.0.0/examples-manifest.yaml",
	},
	{
		Family:  "template",
		Name:    "check-report-markdown",
		Version: "v1.0.0",
		Path:    "embedded_templates/report/check.md.hbs",
	},
}
