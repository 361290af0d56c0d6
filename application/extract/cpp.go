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

// cppDeclRe matches an export marker line followed by a function declaration:
// return type (possibly multi-word, possibly qualified), name, parameter
// list. Bodies are not matched.
var cppDeclRe = regexp.MustCompile(
	`(?m)^[ \t]*//[ \t]*@ffi[ \t]*\r?\n[ \t]*([A-Za-z_][A-Za-z0-9_:<>,&* \t]*?)[ \t]+([A-Za-z_][A-Za-z0-9_]*)[ \t]*\(([^)]*)\)`)

// CppExtractor finds "// @ffi" annotated declarations in C++ source.
type CppExtractor struct{}

// NewCpp creates a C++ signature extractor.
func NewCpp() *CppExtractor { return &CppExtractor{} }

func (e *CppExtractor) Dialect() entities.Dialect { return entities.DialectCpp }

func (e *CppExtractor) Extensions() []string { return []string{".cpp", ".cc", ".cxx"} }

// Extract returns the marked declarations in source order. A marked
// declaration with a type outside the supported set fails the whole unit.
func (e *CppExtractor) Extract(filename string, src []byte) ([]entities.ExportedFunction, error) {
	var funcs []entities.ExportedFunction

	for _, m := range cppDeclRe.FindAllSubmatchIndex(src, -1) {
		retToken := strings.TrimSpace(string(src[m[2]:m[3]]))
		name := string(src[m[4]:m[5]])
		paramsRaw := strings.TrimSpace(string(src[m[6]:m[7]]))
		loc := entities.SourceLocation{File: filename, Line: lineOf(src, m[4])}

		ret, err := typemap.Native(entities.DialectCpp, retToken)
		if err != nil {
			return nil, &errors.UnsupportedSignatureError{Function: name, TypeToken: retToken, Loc: loc}
		}

		params, err := parseCppParams(paramsRaw, name, loc)
		if err != nil {
			return nil, err
		}

		funcs = append(funcs, entities.ExportedFunction{
			Name:    name,
			Params:  params,
			Return:  ret,
			Dialect: entities.DialectCpp,
			Loc:     loc,
		})
	}

	return funcs, nil
}

// parseCppParams splits "int a, const std::string& b" into named, typed
// parameters. The last whitespace-separated word is the name; everything
// before it is the type, which keeps multi-word types like "long long"
// intact.
func parseCppParams(raw, function string, loc entities.SourceLocation) ([]entities.Parameter, error) {
	if raw == "" || raw == "void" {
		return nil, nil
	}

	var params []entities.Parameter
	for _, piece := range strings.Split(raw, ",") {
		piece = strings.TrimSpace(piece)
		if piece == "" {
			continue
		}

		parts := strings.Fields(piece)
		if len(parts) < 2 {
			return nil, &errors.UnsupportedSignatureError{
				Function:  function,
				TypeToken: fmt.Sprintf("parameter %q (expected 'type name')", piece),
				Loc:       loc,
			}
		}

		name := parts[len(parts)-1]
		token := strings.Join(parts[:len(parts)-1], " ")

		// A reference glued to the name ("std::string &str") belongs to the type.
		for strings.HasPrefix(name, "&") || strings.HasPrefix(name, "*") {
			token += string(name[0])
			name = name[1:]
		}
		if name == "" {
			return nil, &errors.UnsupportedSignatureError{
				Function:  function,
				TypeToken: fmt.Sprintf("parameter %q (missing name)", piece),
				Loc:       loc,
			}
		}

		t, err := typemap.Native(entities.DialectCpp, token)
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

var _ ports.SignatureExtractor = (*CppExtractor)(nil)
