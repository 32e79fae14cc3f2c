package ocigen

import (
	"fmt"

	"github.com/opencontainers/runtime-spec/specs-go"
)

// hostStaticDirs are read-only host asset directories every application
// needs regardless of desktop environment: MIME type registration, pixmap
// icons, and compiled glib schemas.
var hostStaticDirs = []string{
	"/usr/share/mime",
	"/usr/share/pixmaps",
	"/usr/share/glib-2.0/schemas",
}

// HostStatics is stage 25-host-statics: read-only binds for shared static
// asset directories the container has no business writing to.
type HostStatics struct{}

func (HostStatics) Name() string { return "25-host-statics" }

func (HostStatics) Generate(spec *specs.Spec) error {
	if spec.Version != ociVersion {
		return fmt.Errorf("%w: got %q", ErrOCIVersionMismatch, spec.Version)
	}

	for _, dir := range hostStaticDirs {
		bindIfExistRO(spec, dir, dir)
	}
	return nil
}
