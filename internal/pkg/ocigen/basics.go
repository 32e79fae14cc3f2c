package ocigen

import "github.com/opencontainers/runtime-spec/specs-go"

// basicsPatch establishes the default rootfs/proc/sys/dev mount set via an
// RFC-6902 patch rather than imperative mount-building code, mirroring the
// original's embedded basicsPatch constant.
const basicsPatch = `{
    "ociVersion": "1.0.1",
    "patch": [
        {"op": "add", "path": "/mounts/-", "value": {"destination": "/proc", "type": "proc", "source": "proc", "options": []}},
        {"op": "add", "path": "/mounts/-", "value": {"destination": "/sys", "type": "sysfs", "source": "sysfs", "options": ["nosuid", "noexec", "nodev", "ro"]}},
        {"op": "add", "path": "/mounts/-", "value": {"destination": "/dev", "type": "tmpfs", "source": "tmpfs", "options": ["nosuid", "strictatime", "mode=755"]}},
        {"op": "add", "path": "/mounts/-", "value": {"destination": "/dev/pts", "type": "devpts", "source": "devpts", "options": ["nosuid", "noexec", "newinstance", "ptmxmode=0666", "mode=0620"]}},
        {"op": "add", "path": "/mounts/-", "value": {"destination": "/dev/shm", "type": "tmpfs", "source": "shm", "options": ["nosuid", "noexec", "nodev", "mode=1777"]}},
        {"op": "add", "path": "/mounts/-", "value": {"destination": "/tmp", "type": "tmpfs", "source": "tmpfs", "options": ["nosuid", "nodev", "mode=1777"]}},
        {"op": "add", "path": "/root/readonly", "value": true}
    ]
}`

// Basics is stage 10-basics: merges a JSON patch describing default
// rootfs/proc/sys/dev mounts into the config.
type Basics struct{}

func (Basics) Name() string { return "10-basics" }

func (Basics) Generate(spec *specs.Spec) error {
	return applyPatch(spec, []byte(basicsPatch))
}
