// Package schema provides JSON schema generation for the manifest format.
package schema

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"

	"github.com/whitehall-lang/ffibridge/domain/entities"
)

// Generate creates a JSON schema from a Go struct.
// It uses the `invopop/jsonschema` library to reflect on the struct
// and generate a standard JSON Schema (Draft 2020-12).
func Generate(v interface{}) ([]byte, error) {
	reflector := jsonschema.Reflector{
		ExpandedStruct: true, // Expand struct definitions inline
	}
	schema := reflector.Reflect(v)

	jsonBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}

	return jsonBytes, nil
}

// ManifestSchema returns the JSON schema of the manifest emitted at
// generation time. Downstream build steps can validate manifests against it
// without linking this module.
func ManifestSchema() ([]byte, error) {
	return Generate(&entities.Manifest{})
}
