package ocigen

import (
	"fmt"
	"os"

	"github.com/opencontainers/runtime-spec/specs-go"
)

// IDMapping is stage 00-id-mapping: maps the current uid/gid to themselves
// inside the container, size 1.
type IDMapping struct{}

func (IDMapping) Name() string { return "00-id-mapping" }

func (IDMapping) Generate(spec *specs.Spec) error {
	if spec.Version != ociVersion {
		return fmt.Errorf("%w: got %q", ErrOCIVersionMismatch, spec.Version)
	}

	spec.Linux = &specs.Linux{
		Namespaces: namespacesOf(spec.Linux),
	}
	g := NewGenerator(spec)

	uid := uint32(os.Getuid())
	gid := uint32(os.Getgid())
	g.AddLinuxUIDMapping(uid, uid, 1)
	g.AddLinuxGIDMapping(gid, gid, 1)
	return nil
}

func namespacesOf(l *specs.Linux) []specs.LinuxNamespace {
	if l == nil {
		return nil
	}
	return l.Namespaces
}
