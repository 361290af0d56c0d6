// Package extract implements the signature extractors: per-dialect scanners
// that find declarations immediately preceded by the export marker and parse
// their type signatures. Function bodies are never interpreted.
//
// Functions without the marker never leak across the boundary: only marked
// declarations appear in the output, in source order.
package extract

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/whitehall-lang/ffibridge/domain/ports"
)

// ForFile returns the extractor claiming the file's extension, if any.
func ForFile(path string) (ports.SignatureExtractor, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range All() {
		for _, claimed := range e.Extensions() {
			if ext == claimed {
				return e, true
			}
		}
	}
	return nil, false
}

// All returns one extractor per supported dialect.
func All() []ports.SignatureExtractor {
	return []ports.SignatureExtractor{NewCpp(), NewRust()}
}

// lineOf returns the 1-based line number of the byte offset in src.
func lineOf(src []byte, offset int) int {
	return bytes.Count(src[:offset], []byte{'\n'}) + 1
}
