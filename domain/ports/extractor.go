// Package ports defines the interfaces between the binding pipeline and its
// collaborators. Implementations live in application/ and infrastructure/.
package ports

import "github.com/whitehall-lang/ffibridge/domain/entities"

// SignatureExtractor scans one native source unit and returns the exported
// declarations in source order. Declarations without the export marker are
// excluded. Extraction inspects declarations only; function bodies are never
// interpreted. A marked declaration with an unrepresentable type fails the
// whole unit.
type SignatureExtractor interface {
	// Dialect identifies the native language this extractor understands.
	Dialect() entities.Dialect

	// Extensions lists the file extensions (with dot) the extractor claims.
	Extensions() []string

	// Extract parses the source unit. Pure: no filesystem access, no side
	// effects beyond the returned records.
	Extract(filename string, src []byte) ([]entities.ExportedFunction, error)
}
