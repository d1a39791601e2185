package assets

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed embedded_schemas
var schemaFS embed.FS

// ManifestSchemaName is the registry key of the manifest shape schema.
const ManifestSchemaName = "examples-manifest-v1.0.0"

// SchemaInfo holds schema metadata.
type SchemaInfo struct {
	Name  string `json:"name"`
	Path  string `json:"path"`
	Draft string `json:"draft"`
}

// GetSchema returns the embedded schema bytes by embed path.
func GetSchema(relPath string) ([]byte, bool) {
	data, err := schemaFS.ReadFile(relPath)
	return data, err == nil
}

// GetSchemaNames returns the registered schemas that are actually embedded.
func GetSchemaNames() []SchemaInfo {
	var infos []SchemaInfo
	for _, a := range Registry {
		if a.Family != "jsonschema" {
			continue
		}
		if _, ok := GetSchema(a.Path); ok {
			infos = append(infos, SchemaInfo{Name: a.Name, Path: a.Path, Draft: detectDraft(a.Path)})
		}
	}
	return infos
}

// GetSchemaJSON returns a registered schema converted to JSON, which is what
// gojsonschema consumes. Schemas are authored in YAML.
func GetSchemaJSON(name string) ([]byte, error) {
	for _, info := range GetSchemaNames() {
		if info.Name != name {
			continue
		}
		raw, _ := GetSchema(info.Path)
		var doc interface{}
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("schema %s: %w", name, err)
		}
		return json.Marshal(doc)
	}
	return nil, fmt.Errorf("schema %s not embedded", name)
}

// detectDraft heuristically detects draft from schema bytes via $schema key.
func detectDraft(path string) string {
	bytes, ok := GetSchema(path)
	if !ok {
		return "Unknown"
	}
	var doc interface{}
	if err := yaml.Unmarshal(bytes, &doc); err != nil {
		return "Unknown"
	}
	if m, ok := doc.(map[string]interface{}); ok {
		if v, ok := m["$schema"].(string); ok {
			if strings.Contains(v, "draft-07") {
				return "Draft-07"
			}
			if strings.Contains(v, "2020-12") {
				return "Draft-2020-12"
			}
		}
	}
	return "Unknown"
}
