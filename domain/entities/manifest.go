package entities

import "fmt"

// ManifestVersion is the current manifest format version. Bump only on
// incompatible changes to the manifest or frame layout.
const ManifestVersion = 1

// ManifestParam is the wire form of a single parameter.
type ManifestParam struct {
	Name string `json:"name" jsonschema:"description=Parameter name as declared in native source"`
	Type string `json:"type" jsonschema:"description=Canonical type spelling,example=i32,example=text"`
}

// ManifestEntry is the wire form of one exported function: its qualified
// name, canonical signature, and declaration origin.
type ManifestEntry struct {
	Name   string          `json:"name"`
	Params []ManifestParam `json:"params"`
	Return string          `json:"return"`
	File   string          `json:"file"`
	Line   int             `json:"line"`
}

// Manifest maps exported names to canonical signatures. It is emitted at
// build time alongside the generated stubs and consumed by the host-language
// build step and the runtime loader.
type Manifest struct {
	Version   int             `json:"version" jsonschema:"description=Manifest format version"`
	Library   string          `json:"library" jsonschema:"description=Native library the exports belong to"`
	Functions []ManifestEntry `json:"functions"`
}

// NewManifest builds a manifest from extracted functions, preserving order.
func NewManifest(library string, funcs []ExportedFunction) Manifest {
	m := Manifest{Version: ManifestVersion, Library: library}
	for _, f := range funcs {
		entry := ManifestEntry{
			Name:   f.Name,
			Params: make([]ManifestParam, 0, len(f.Params)),
			Return: f.Return.String(),
			File:   f.Loc.File,
			Line:   f.Loc.Line,
		}
		for _, p := range f.Params {
			entry.Params = append(entry.Params, ManifestParam{Name: p.Name, Type: p.Type.String()})
		}
		m.Functions = append(m.Functions, entry)
	}
	return m
}

// Signatures reconstructs ExportedFunction records from the manifest.
// Unknown type spellings fail; a manifest written by a newer toolchain must
// not be silently reinterpreted.
func (m Manifest) Signatures() (map[string]ExportedFunction, error) {
	sigs := make(map[string]ExportedFunction, len(m.Functions))
	for _, entry := range m.Functions {
		ret, err := ParseCanonical(entry.Return)
		if err != nil {
			return nil, fmt.Errorf("manifest entry %q: return: %w", entry.Name, err)
		}
		f := ExportedFunction{
			Name:   entry.Name,
			Return: ret,
			Loc:    SourceLocation{File: entry.File, Line: entry.Line},
		}
		for _, p := range entry.Params {
			t, err := ParseCanonical(p.Type)
			if err != nil {
				return nil, fmt.Errorf("manifest entry %q: param %q: %w", entry.Name, p.Name, err)
			}
			f.Params = append(f.Params, Parameter{Name: p.Name, Type: t})
		}
		if _, dup := sigs[entry.Name]; dup {
			return nil, fmt.Errorf("manifest entry %q: duplicate export", entry.Name)
		}
		sigs[entry.Name] = f
	}
	return sigs, nil
}
