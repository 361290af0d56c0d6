package entities

// BindingArtifact is the generated output for one compilation unit: the
// native-side adapter stub, the host-side stub source, and the functions
// they cover. Immutable once emitted; its lifetime is the build session.
type BindingArtifact struct {
	Unit       string  // source unit path the artifact was generated from
	Dialect    Dialect // native dialect of the unit
	NativeStub string  // adapter source text compiled alongside the unit
	HostStub   string  // host-side Go stub source text
	Functions  []ExportedFunction
}

// SupportAsset is a dialect's copy of the frame codec the generated
// adapters compile against. One asset is emitted per dialect present in a
// build, next to the adapter stubs.
type SupportAsset struct {
	Dialect  Dialect
	Name     string // file name under the native output directory
	Contents string
}

// NativeStubName returns the file name the native adapter should be written
// under, e.g. "string_utils_bridge.rs".
func (a BindingArtifact) NativeStubName(base string) string {
	switch a.Dialect {
	case DialectRust:
		return base + "_bridge.rs"
	default:
		return base + "_bridge.cpp"
	}
}
