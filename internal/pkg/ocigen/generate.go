package ocigen

import "github.com/opencontainers/runtime-spec/specs-go"

// Generator is a small mutation helper over a *specs.Spec, reproducing the
// AddOrReplaceLinuxNamespace/AddLinuxUIDMapping/AddLinuxGIDMapping call
// surface that engine_linux.go-style code in the wider codebase consumes
// from an internal config/oci/generate package not present in this
// module's retrieval pack.
type Generator struct {
	Config *specs.Spec
}

// NewGenerator wraps spec, allocating an empty one if spec is nil.
func NewGenerator(spec *specs.Spec) *Generator {
	if spec == nil {
		spec = &specs.Spec{}
	}
	return &Generator{Config: spec}
}

func (g *Generator) linux() *specs.Linux {
	if g.Config.Linux == nil {
		g.Config.Linux = &specs.Linux{}
	}
	return g.Config.Linux
}

// AddOrReplaceLinuxNamespace inserts a namespace of type t, replacing any
// existing entry of the same type in place rather than duplicating it.
func (g *Generator) AddOrReplaceLinuxNamespace(t specs.LinuxNamespaceType, path string) {
	l := g.linux()
	for i, ns := range l.Namespaces {
		if ns.Type == t {
			l.Namespaces[i] = specs.LinuxNamespace{Type: t, Path: path}
			return
		}
	}
	l.Namespaces = append(l.Namespaces, specs.LinuxNamespace{Type: t, Path: path})
}

// AddLinuxUIDMapping appends one uid mapping entry.
func (g *Generator) AddLinuxUIDMapping(hostID, containerID, size uint32) {
	l := g.linux()
	l.UIDMappings = append(l.UIDMappings, specs.LinuxIDMapping{
		HostID:      hostID,
		ContainerID: containerID,
		Size:        size,
	})
}

// AddLinuxGIDMapping appends one gid mapping entry.
func (g *Generator) AddLinuxGIDMapping(hostID, containerID, size uint32) {
	l := g.linux()
	l.GIDMappings = append(l.GIDMappings, specs.LinuxIDMapping{
		HostID:      hostID,
		ContainerID: containerID,
		Size:        size,
	})
}
