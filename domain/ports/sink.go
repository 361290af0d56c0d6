package ports

import "github.com/whitehall-lang/ffibridge/domain/entities"

// ArtifactSink receives generated binding artifacts and the combined
// manifest. The default implementation writes files under an output
// directory; tests substitute an in-memory sink.
type ArtifactSink interface {
	WriteArtifact(artifact entities.BindingArtifact) error
	WriteSupport(asset entities.SupportAsset) error
	WriteManifest(manifest entities.Manifest) error
}
