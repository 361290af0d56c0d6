package generate

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/whitehall-lang/ffibridge/application/typemap"
	"github.com/whitehall-lang/ffibridge/domain/entities"
)

// cppDecl renders the forward declaration of the original C++ function the
// adapter delegates to, e.g. "int32_t add(int32_t a, int32_t b)".
func cppDecl(f entities.ExportedFunction) string {
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		t := typemap.NativeType(entities.DialectCpp, p.Type)
		if p.Type.Kind == entities.KindText {
			t = "const std::string&"
		}
		params[i] = fmt.Sprintf("%s %s", t, p.Name)
	}
	return fmt.Sprintf("%s %s(%s)",
		typemap.NativeType(entities.DialectCpp, f.Return), f.Name, strings.Join(params, ", "))
}

// cppArg renders the accessor expression pulling argument i out of the
// decoded call frame.
func cppArg(f entities.ExportedFunction, i int) string {
	return fmt.Sprintf("args.%s(%d)", resultCtor(f.Params[i].Type), i)
}

// rustSig renders the fn signature of the original Rust function, used in
// the adapter's doc header.
func rustSig(f entities.ExportedFunction) string {
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = fmt.Sprintf("%s: %s", p.Name, typemap.NativeType(entities.DialectRust, p.Type))
	}
	sig := fmt.Sprintf("fn %s(%s)", f.Name, strings.Join(params, ", "))
	if f.Return.Kind != entities.KindVoid {
		sig += " -> " + typemap.NativeType(entities.DialectRust, f.Return)
	}
	return sig
}

// rustArg renders the accessor expression for argument i.
func rustArg(f entities.ExportedFunction, i int) string {
	return fmt.Sprintf("args.%s(%d)", resultCtor(f.Params[i].Type), i)
}

// resultCtor names the frame accessor / result constructor for a canonical
// type in the whffi support library ("boolean" because bool is reserved in
// both target languages' support APIs).
func resultCtor(t entities.CanonicalType) string {
	switch t.Kind {
	case entities.KindVoid:
		return "void"
	case entities.KindBool:
		return "boolean"
	case entities.KindText:
		return "text"
	default:
		return t.String()
	}
}

var rustStubTemplate = template.Must(template.New("rust_stub").Funcs(templateFuncs).Parse(
	`// Code generated by ffibridge. DO NOT EDIT.
// Adapter exports for {{.Unit}} (library "{{.Library}}").
//
// Each export accepts a packed pointer/length to a call frame, converts the
// arguments to native types, calls the original function exactly once, and
// returns a packed result frame. Conversion failures travel in the result
// frame's error slot, never in the value slot.

{{range $f := .Functions}}
/// {{rustSig $f}} ({{$f.Loc}})
#[no_mangle]
pub extern "C" fn {{export $f.Name}}(frame: u64) -> u64 {
    let args = match whffi::CallFrame::decode(frame, {{len $f.Params}}) {
        Ok(args) => args,
        Err(err) => return whffi::ResultFrame::from_err(err).encode(),
    };
{{- if isVoid $f.Return}}
    {{$f.Name}}({{range $i, $p := $f.Params}}{{if $i}}, {{end}}{{rustArg $f $i}}{{end}});
    whffi::ResultFrame::void().encode()
{{- else}}
    let out = {{$f.Name}}({{range $i, $p := $f.Params}}{{if $i}}, {{end}}{{rustArg $f $i}}{{end}});
    whffi::ResultFrame::{{ctor $f.Return}}(out).encode()
{{- end}}
}
{{end}}`))

var cppStubTemplate = template.Must(template.New("cpp_stub").Funcs(templateFuncs).Parse(
	`// Code generated by ffibridge. DO NOT EDIT.
// Adapter exports for {{.Unit}} (library "{{.Library}}").
//
// Each export accepts a packed pointer/length to a call frame, converts the
// arguments to native types, calls the original function exactly once, and
// returns a packed result frame. Conversion failures travel in the result
// frame's error slot, never in the value slot.

#include <cstdint>
#include <string>

#include "whffi.hpp"

{{range $f := .Functions}}extern {{cppDecl $f}};
{{end}}
extern "C" {
{{range $f := .Functions}}
// {{$f.Signature}} ({{$f.Loc}})
uint64_t {{export $f.Name}}(uint64_t frame) {
    whffi::CallFrame args;
    if (uint64_t err = whffi::CallFrame::decode(frame, {{len $f.Params}}, args)) {
        return err;
    }
{{- if isVoid $f.Return}}
    {{$f.Name}}({{range $i, $p := $f.Params}}{{if $i}}, {{end}}{{cppArg $f $i}}{{end}});
    return whffi::ResultFrame::make_void();
{{- else}}
    return whffi::ResultFrame::{{ctor $f.Return}}({{$f.Name}}({{range $i, $p := $f.Params}}{{if $i}}, {{end}}{{cppArg $f $i}}{{end}}));
{{- end}}
}
{{end}}
}  // extern "C"
`))

var hostStubTemplate = template.Must(template.New("host_stub").Funcs(templateFuncs).Parse(
	`// Code generated by ffibridge. DO NOT EDIT.

// Package {{.Package}} exposes the exports of the native library
// "{{.Library}}" with host-native signatures. Calls route through the
// runtime marshaller; conversion failures surface as *errors.MarshalError
// and native traps as *errors.NativeFaultError.
package {{.Package}}

import (
	"context"

	"{{.ModulePath}}/host"
)

// Bindings wraps a runtime caller with the typed exports of {{.UnitBase}}.
type Bindings struct {
	caller *host.Caller
}

// New creates typed bindings over the given caller.
func New(caller *host.Caller) *Bindings {
	return &Bindings{caller: caller}
}
{{range $f := .Functions}}
// {{pascal $f.Name}} calls the native export "{{$f.Name}}" declared at {{$f.Loc}}.
func (b *Bindings) {{pascal $f.Name}}(ctx context.Context{{range $i, $p := $f.Params}}, arg{{$i}} {{host $p.Type}}{{end}}) {{if isVoid $f.Return}}error{{else}}({{host $f.Return}}, error){{end}} {
{{- if isVoid $f.Return}}
	_, err := b.caller.Call(ctx, "{{$f.Name}}"{{range $i, $p := $f.Params}}, arg{{$i}}{{end}})
	return err
{{- else}}
	out, err := b.caller.Call(ctx, "{{$f.Name}}"{{range $i, $p := $f.Params}}, arg{{$i}}{{end}})
	if err != nil {
		return {{zero $f.Return}}, err
	}
	return out.({{host $f.Return}}), nil
{{- end}}
}
{{end}}`))
