package ocigen

import "github.com/opencontainers/runtime-spec/specs-go"

// hostRootfsPatch exposes the host's root filesystem read-only at
// /run/host/rootfs — the path 40-host-ipc's /etc overlay symlinks
// (including the resolved localtime target) assume exists.
const hostRootfsPatch = `{
    "ociVersion": "1.0.1",
    "patch": [
        {"op": "add", "path": "/mounts/-", "value": {"destination": "/run/host/rootfs", "type": "bind", "source": "/", "options": ["rbind", "ro"]}}
    ]
}`

// HostRootfs is stage 25-host-rootfs: merges a JSON patch exposing the
// host rootfs at /run/host/rootfs.
type HostRootfs struct{}

func (HostRootfs) Name() string { return "25-host-rootfs" }

func (HostRootfs) Generate(spec *specs.Spec) error {
	return applyPatch(spec, []byte(hostRootfsPatch))
}
