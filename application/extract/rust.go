package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/whitehall-lang/ffibridge/application/typemap"
	"github.com/whitehall-lang/ffibridge/domain/entities"
	"github.com/whitehall-lang/ffibridge/domain/errors"
	"github.com/whitehall-lang/ffibridge/domain/ports"
)

// rustDeclRe matches an #[ffi] attribute followed by a fn item header:
// optional visibility, name, parameter list, optional return type up to the
// body brace.
var rustDeclRe = regexp.MustCompile(
	`(?m)^[ \t]*#\[ffi\][ \t]*\r?\n[ \t]*(?:pub(?:\([a-z]+\))?[ \t]+)?fn[ \t]+([A-Za-z_][A-Za-z0-9_]*)[ \t]*\(([^)]*)\)[ \t]*(?:->[ \t]*([^\r\n{]+))?`)

// RustExtractor finds "#[ffi]" annotated fn items in Rust source.
type RustExtractor struct{}

// NewRust creates a Rust signature extractor.
func NewRust() *RustExtractor { return &RustExtractor{} }

func (e *RustExtractor) Dialect() entities.Dialect { return entities.DialectRust }

func (e *RustExtractor) Extensions() []string { return []string{".rs"} }

func (e *RustExtractor) Extract(filename string, src []byte) ([]entities.ExportedFunction, error) {
	var funcs []entities.ExportedFunction

	for _, m := range rustDeclRe.FindAllSubmatchIndex(src, -1) {
		name := string(src[m[2]:m[3]])
		paramsRaw := strings.TrimSpace(string(src[m[4]:m[5]]))
		loc := entities.SourceLocation{File: filename, Line: lineOf(src, m[2])}

		// Absent return type is the unit type.
		retToken := "()"
		if m[6] >= 0 {
			retToken = strings.TrimSpace(string(src[m[6]:m[7]]))
		}

		ret, err := typemap.Native(entities.DialectRust, retToken)
		if err != nil {
			return nil, &errors.UnsupportedSignatureError{Function: name, TypeToken: retToken, Loc: loc}
		}

		params, err := parseRustParams(paramsRaw, name, loc)
		if err != nil {
			return nil, err
		}

		funcs = append(funcs, entities.ExportedFunction{
			Name:    name,
			Params:  params,
			Return:  ret,
			Dialect: entities.DialectRust,
			Loc:     loc,
		})
	}

	return funcs, nil
}

// parseRustParams splits "a: i32, text: String" into named, typed
// parameters. Receivers (self in any form) cannot cross the boundary.
func parseRustParams(raw, function string, loc entities.SourceLocation) ([]entities.Parameter, error) {
	if raw == "" {
		return nil, nil
	}

	var params []entities.Parameter
	for _, piece := range strings.Split(raw, ",") {
		piece = strings.TrimSpace(piece)
		if piece == "" {
			continue
		}

		if piece == "self" || strings.HasSuffix(piece, " self") || strings.HasSuffix(piece, "&self") {
			return nil, &errors.UnsupportedSignatureError{Function: function, TypeToken: "self", Loc: loc}
		}

		name, token, ok := strings.Cut(piece, ":")
		if !ok {
			return nil, &errors.UnsupportedSignatureError{
				Function:  function,
				TypeToken: fmt.Sprintf("parameter %q (expected 'name: type')", piece),
				Loc:       loc,
			}
		}
		name = strings.TrimSpace(name)
		token = strings.TrimSpace(token)

		t, err := typemap.Native(entities.DialectRust, token)
		if err != nil {
			return nil, &errors.UnsupportedSignatureError{Function: function, TypeToken: token, Loc: loc}
		}
		if t.Kind == entities.KindVoid {
			return nil, &errors.UnsupportedSignatureError{Function: function, TypeToken: token, Loc: loc}
		}

		params = append(params, entities.Parameter{Name: name, Type: t})
	}
	return params, nil
}

var _ ports.SignatureExtractor = (*RustExtractor)(nil)
