package ocigen

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/opencontainers/runtime-spec/specs-go"
)

// etcOverlayFiles are host /etc entries that must track the host rootfs
// exactly: each gets a symlink in the bundle directory pointing at its
// in-container target, then that symlink is bind-mounted over the real
// /etc entry with copy-symlink so the container always resolves the
// current host state (DNS, clock, timezone) without write access to /etc.
var etcOverlayFiles = []string{
	"ld.so.cache",
	"localtime",
	"resolv.conf",
	"timezone",
}

// HostIPC is stage 40-host-ipc: wires up the display server, D-Bus, audio
// and the XDG runtime directory so desktop applications can talk to the
// host session, plus the host-rootfs-backed /etc overlay.
type HostIPC struct{}

func (HostIPC) Name() string { return "40-host-ipc" }

func (HostIPC) Generate(spec *specs.Spec) error {
	if spec.Version != ociVersion {
		return fmt.Errorf("%w: got %q", ErrOCIVersionMismatch, spec.Version)
	}
	if spec.Annotations == nil {
		return ErrNoAnnotations
	}
	bundleDir, ok := spec.Annotations[annotationBundleDir]
	if !ok {
		return ErrBundleDirMissing
	}
	if bundleDir == "" {
		return ErrBundleDirEmpty
	}

	bindX11(spec)

	appendMount(spec, "tmpfs", "/run/user", "tmpfs", []string{"nodev", "nosuid", "mode=755"})

	if err := bindDBus(spec); err != nil {
		return err
	}

	runtimeDir, err := bindXDGRuntimeDir(spec)
	if err != nil {
		return err
	}
	if runtimeDir != "" {
		containerRuntimeDir := containerRuntimeDirPath()
		bindIfExist(spec, filepath.Join(runtimeDir, "pulse"), "")
		bindIfExist(spec, filepath.Join(runtimeDir, "gvfs"), "")
		bindWayland(spec, runtimeDir)
		mountOptionalDir(spec, filepath.Join(runtimeDir, "dconf"), filepath.Join(containerRuntimeDir, "dconf"))
	}

	bindXauthority(spec)

	return bindHostEtcOverlay(spec, bundleDir)
}

func bindX11(spec *specs.Spec) {
	bindIfExist(spec, "/tmp/.X11-unix", "")
}

// containerRuntimeDirPath is the in-container XDG_RUNTIME_DIR, keyed by the
// current uid the same way the host's own /run/user/<uid> is.
func containerRuntimeDirPath() string {
	return fmt.Sprintf("/run/user/%d", os.Getuid())
}

// bindDBus redirects both the system and session bus sockets to their
// standard container-side paths and advertises each via its *_BUS_ADDRESS
// env var, so a client that ignores the environment and tries the
// well-known default path still finds the socket (spec §4.2.7).
func bindDBus(spec *specs.Spec) error {
	if systemSocket := resolveSystemBusSocket(); systemSocket != "" {
		const containerSystemSocket = "/run/dbus/system_bus_socket"
		bindIfExist(spec, systemSocket, containerSystemSocket)
		if err := setEnvOnce(spec, "DBUS_SYSTEM_BUS_ADDRESS", "unix:path="+containerSystemSocket); err != nil {
			return err
		}
	}

	if sessionSocket, ok := resolveSessionBusSocket(); ok {
		containerSessionSocket := containerRuntimeDirPath() + "/bus"
		bindIfExist(spec, sessionSocket, containerSessionSocket)
		if _, err := os.Stat(sessionSocket); err == nil {
			if err := setEnvOnce(spec, "DBUS_SESSION_BUS_ADDRESS", "unix:path="+containerSessionSocket); err != nil {
				return err
			}
		}
	}

	return nil
}

// resolveSystemBusSocket honors DBUS_SYSTEM_BUS_ADDRESS first, then falls
// back to the two well-known system bus socket paths.
func resolveSystemBusSocket() string {
	if path, ok := unixSocketPathFromAddress(os.Getenv("DBUS_SYSTEM_BUS_ADDRESS")); ok {
		return path
	}
	for _, candidate := range []string{"/run/dbus/system_bus_socket", "/var/run/dbus/system_bus_socket"} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// resolveSessionBusSocket honors DBUS_SESSION_BUS_ADDRESS first, then
// falls back to the conventional <XDG_RUNTIME_DIR>/bus path.
func resolveSessionBusSocket() (string, bool) {
	if path, ok := unixSocketPathFromAddress(os.Getenv("DBUS_SESSION_BUS_ADDRESS")); ok {
		return path, true
	}
	runtimeDir := os.Getenv("XDG_RUNTIME_DIR")
	if runtimeDir == "" {
		return "", false
	}
	return filepath.Join(runtimeDir, "bus"), true
}

// unixSocketPathFromAddress extracts the filesystem path out of a D-Bus
// "unix:path=/run/user/1000/bus" style address. Returns ok=false for
// abstract-namespace or non-unix addresses, which have no host path to bind.
func unixSocketPathFromAddress(address string) (string, bool) {
	const prefix = "unix:path="
	idx := strings.Index(address, prefix)
	if idx == -1 {
		return "", false
	}
	rest := address[idx+len(prefix):]
	if end := strings.Index(rest, ","); end != -1 {
		rest = rest[:end]
	}
	if rest == "" {
		return "", false
	}
	return rest, true
}

// bindXDGRuntimeDir mounts a fresh per-container /run/user/<uid> tmpfs and
// binds the real XDG_RUNTIME_DIR's contents into it, after validating the
// host directory has mode 0700 and is owned by the running uid — the
// invariant systemd-logind guarantees and that applications rely on.
func bindXDGRuntimeDir(spec *specs.Spec) (string, error) {
	runtimeDir := os.Getenv("XDG_RUNTIME_DIR")
	if runtimeDir == "" {
		return "", nil
	}

	info, err := os.Stat(runtimeDir)
	if err != nil {
		return "", nil
	}
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return "", fmt.Errorf("ocigen: cannot stat owner of %s", runtimeDir)
	}
	if uint32(stat.Uid) != uint32(os.Getuid()) {
		return "", fmt.Errorf("ocigen: %s not owned by current uid", runtimeDir)
	}
	if info.Mode().Perm() != 0o700 {
		return "", fmt.Errorf("ocigen: %s must be mode 0700, got %o", runtimeDir, info.Mode().Perm())
	}

	containerRuntimeDir := containerRuntimeDirPath()
	appendMount(spec, "tmpfs", containerRuntimeDir, "tmpfs", []string{"nodev", "nosuid", "mode=700"})
	appendRBindMount(spec, runtimeDir, containerRuntimeDir)

	if err := setEnvOnce(spec, "XDG_RUNTIME_DIR", containerRuntimeDir); err != nil {
		return "", err
	}
	return runtimeDir, nil
}

func bindWayland(spec *specs.Spec, runtimeDir string) {
	display := os.Getenv("WAYLAND_DISPLAY")
	if display == "" {
		display = "wayland-0"
	}
	bindIfExist(spec, filepath.Join(runtimeDir, display), "")
}

func bindXauthority(spec *specs.Spec) {
	xauth := os.Getenv("XAUTHORITY")
	if xauth == "" {
		xauth = filepath.Join(os.Getenv("HOME"), ".Xauthority")
	}
	bindIfExist(spec, xauth, "")
}

// bindHostEtcOverlay creates, under <bundleDir>/etc-overlay, one symlink
// per entry in etcOverlayFiles pointing at that file's in-container
// target, then bind-mounts the symlink itself (rbind,ro,nosymfollow,
// copy-symlink) over the container's real /etc/<name> — the original's
// symlink-then-bind construction, not a second /etc tree copy.
func bindHostEtcOverlay(spec *specs.Spec, bundleDir string) error {
	const containerEtcDir = "/run/linglong/etc"
	appendMount(spec, "tmpfs", containerEtcDir, "tmpfs", []string{"nodev", "nosuid", "mode=755"})

	overlayDir := filepath.Join(bundleDir, "etc-overlay")
	if err := os.MkdirAll(overlayDir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", overlayDir, err)
	}

	for _, name := range etcOverlayFiles {
		hostPath := filepath.Join("/etc", name)
		if _, err := os.Lstat(hostPath); err != nil {
			continue
		}

		target, err := etcOverlayTarget(hostPath, name)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", hostPath, err)
		}

		symlinkPath := filepath.Join(overlayDir, name)
		if err := os.RemoveAll(symlinkPath); err != nil {
			return fmt.Errorf("reset %s: %w", symlinkPath, err)
		}
		if err := os.Symlink(target, symlinkPath); err != nil {
			return fmt.Errorf("symlink %s -> %s: %w", symlinkPath, target, err)
		}

		appendMount(spec, symlinkPath, hostPath, "bind", []string{"rbind", "ro", "nosymfollow", "copy-symlink"})
	}

	return nil
}

// etcOverlayTarget is the in-container path the bundle-dir symlink for
// name should point at. ld.so.cache tracks the dedicated cache mount
// 05-initialize advertises via LINGLONG_LD_SO_CACHE; localtime resolves
// through its host-side symlink first, since a browser's timezone code
// refuses to follow /etc/localtime when it is itself a symlink that,
// once relocated into the container, would point outside any mounted
// tree — everything else tracks the host rootfs 25-host-rootfs already
// exposes at /run/host/rootfs.
func etcOverlayTarget(hostPath, name string) (string, error) {
	switch name {
	case "ld.so.cache":
		return "/run/linglong/cache/ld.so.cache", nil
	case "localtime":
		real, err := filepath.EvalSymlinks(hostPath)
		if err != nil {
			return "", err
		}
		return filepath.Join("/run/host/rootfs", real), nil
	default:
		return filepath.Join("/run/host/rootfs/etc", name), nil
	}
}
