package ocigen

import (
	"fmt"
	"os"
	"strings"

	"github.com/opencontainers/runtime-spec/specs-go"
)

// envDenylist are host environment variables that must never be copied
// into the container verbatim even though they're also desktop-relevant —
// HOME/XDG_*/D-Bus addresses are instead (re)written by 30-user-home and
// 40-host-ipc against container-side paths.
var envDenylist = []string{
	"HOME", "USER", "LOGNAME",
	"XDG_RUNTIME_DIR", "XDG_DATA_HOME", "XDG_CONFIG_HOME", "XDG_CACHE_HOME", "XDG_STATE_HOME",
	"DBUS_SESSION_BUS_ADDRESS", "DBUS_SYSTEM_BUS_ADDRESS",
	"LD_LIBRARY_PATH", "LD_PRELOAD",
}

// envAllowlistPrefixes are host environment variable name prefixes safe to
// forward verbatim into the container process environment.
var envAllowlistPrefixes = []string{
	"LANG", "LC_", "TZ",
	"WAYLAND_DISPLAY", "DISPLAY", "XAUTHORITY",
	"QT_", "GTK_", "GDK_",
	"DESKTOP_SESSION", "XDG_SESSION_TYPE", "XDG_CURRENT_DESKTOP",
}

// HostEnv is stage 25-host-env: forwards an allowlisted subset of the
// host's process environment into the container, skipping anything on the
// denylist even if it also matches an allowlisted prefix, and skipping any
// variable already present in process.env.
type HostEnv struct{}

func (HostEnv) Name() string { return "25-host-env" }

func (HostEnv) Generate(spec *specs.Spec) error {
	if spec.Version != ociVersion {
		return fmt.Errorf("%w: got %q", ErrOCIVersionMismatch, spec.Version)
	}

	if spec.Process == nil {
		spec.Process = &specs.Process{}
	}

	for _, kv := range os.Environ() {
		key, _, ok := strings.Cut(kv, "=")
		if !ok || isDenylistedEnv(key) || !isAllowlistedEnv(key) {
			continue
		}
		if envExists(spec.Process.Env, key) {
			continue
		}
		spec.Process.Env = append(spec.Process.Env, kv)
	}

	return nil
}

func isDenylistedEnv(key string) bool {
	for _, d := range envDenylist {
		if key == d {
			return true
		}
	}
	return false
}

func isAllowlistedEnv(key string) bool {
	for _, p := range envAllowlistPrefixes {
		if strings.HasPrefix(key, p) {
			return true
		}
	}
	return false
}
