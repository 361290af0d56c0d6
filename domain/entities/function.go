package entities

import (
	"fmt"
	"strings"
)

// Dialect identifies the native source language of a compilation unit.
type Dialect string

const (
	DialectCpp  Dialect = "cpp"
	DialectRust Dialect = "rust"
)

// SourceLocation identifies where a declaration appears in native source.
type SourceLocation struct {
	File string
	Line int
}

func (l SourceLocation) String() string {
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// Parameter is a single named parameter of an exported function.
type Parameter struct {
	Name string
	Type CanonicalType
}

// ExportedFunction is an immutable record of one marker-annotated native
// declaration. It is created by the signature extractor and owned by the
// pipeline run that produced it; generation consumes it and the record is
// discarded with the run.
type ExportedFunction struct {
	Name    string
	Params  []Parameter
	Return  CanonicalType
	Dialect Dialect
	Loc     SourceLocation
}

// Signature renders the canonical signature, e.g. "add(i32, i32) -> i32".
func (f ExportedFunction) Signature() string {
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = p.Type.String()
	}
	return fmt.Sprintf("%s(%s) -> %s", f.Name, strings.Join(params, ", "), f.Return)
}

// Arity returns the declared parameter count.
func (f ExportedFunction) Arity() int {
	return len(f.Params)
}
