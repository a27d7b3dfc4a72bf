package schema

import (
	"embed"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

const (
	Result = "result"
	Run    = "run"
)

//go:embed schemas/*.schema.json
var builtin embed.FS

// Validate checks doc against the schema file at schemaPath.
func Validate(schemaPath string, doc any) ([]string, error) {
	return validate(gojsonschema.NewReferenceLoader("file://"+schemaPath), schemaPath, doc)
}

// ValidateBuiltin checks doc against one of the embedded schemas (Result or Run).
func ValidateBuiltin(name string, doc any) ([]string, error) {
	raw, err := builtin.ReadFile("schemas/" + name + ".schema.json")
	if err != nil {
		return nil, fmt.Errorf("unknown schema %q: %w", name, err)
	}
	return validate(gojsonschema.NewBytesLoader(raw), name, doc)
}

func validate(schemaLoader gojsonschema.JSONLoader, label string, doc any) ([]string, error) {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("validate %s: %w", label, err)
	}
	if result.Valid() {
		return nil, nil
	}

	errs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		errs = append(errs, e.String())
	}
	return errs, nil
}
