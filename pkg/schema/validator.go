package schema

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/fulmenhq/scriptcat/internal/assets"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// Result holds the validation result.
type Result struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// ValidationError represents a single validation error.
type ValidationError struct {
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`
}

func (e ValidationError) String() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// registry caches compiled schemas by name for reuse
var (
	schemaRegistry = map[string]*gojsonschema.Schema{}
	regMu          sync.Mutex
)

// Validator wraps a compiled schema for repeated validation.
type Validator struct {
	schema *gojsonschema.Schema
}

func compileSchemaBytes(schemaBytes []byte) (*gojsonschema.Schema, error) {
	// Schemas may be authored in YAML; gojsonschema wants JSON.
	var tmp any
	if err := yaml.Unmarshal(schemaBytes, &tmp); err == nil {
		jb, jerr := json.Marshal(tmp)
		if jerr != nil {
			return nil, fmt.Errorf("failed to encode schema to JSON: %w", jerr)
		}
		schemaBytes = jb
	}
	sch, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to load schema: %w", err)
	}
	return sch, nil
}

// GetEmbeddedValidator returns a validator for a named embedded schema
// (e.g. examples-manifest-v1.0.0).
func GetEmbeddedValidator(schemaName string) (*Validator, error) {
	regMu.Lock()
	defer regMu.Unlock()

	if sch, ok := schemaRegistry[schemaName]; ok {
		return &Validator{schema: sch}, nil
	}

	data, err := assets.GetSchemaJSON(schemaName)
	if err != nil {
		return nil, err
	}
	sch, err := compileSchemaBytes(data)
	if err != nil {
		return nil, err
	}
	schemaRegistry[schemaName] = sch
	return &Validator{schema: sch}, nil
}

// ValidateJSON validates a JSON document against the compiled schema.
func (v *Validator) ValidateJSON(doc []byte) (*Result, error) {
	if v == nil || v.schema == nil {
		return nil, fmt.Errorf("validator not initialised")
	}
	result, err := v.schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}
	res := &Result{Valid: result.Valid()}
	for _, verr := range result.Errors() {
		field := verr.Field()
		if field == "" || field == "(root)" {
			field = "root"
		}
		res.Errors = append(res.Errors, ValidationError{Path: field, Message: verr.Description()})
	}
	return res, nil
}
