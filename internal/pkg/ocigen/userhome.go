package ocigen

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/opencontainers/runtime-spec/specs-go"
)

const envSkipHomeGenerate = "LINGLONG_SKIP_HOME_GENERATE"

// XdgDirectoryPermission is one entry of a per-app permissions.json's
// xdgDirectories list: whether a well-known home-relative directory may be
// exposed to the container unmodified.
type XdgDirectoryPermission struct {
	Allowed bool   `json:"allowed"`
	DirType string `json:"dirType"`
}

// ApplicationConfigurationPermissions is the schema of
// <host HOME>/.linglong/<appID>/permissions.json.
type ApplicationConfigurationPermissions struct {
	XdgDirectories []XdgDirectoryPermission `json:"xdgDirectories"`
}

type xdgBaseDir struct {
	envVar        string
	defaultRel    string // relative to hostHome
	privateSubdir string // relative to privateAppDir; "" means no private override
	containerRel  string // relative to containerHome
}

var xdgBaseDirs = []xdgBaseDir{
	{"XDG_DATA_HOME", filepath.Join(".local", "share"), "", filepath.Join(".local", "share")},
	{"XDG_CONFIG_HOME", ".config", "config", ".config"},
	{"XDG_CACHE_HOME", ".cache", "cache", ".cache"},
	{"XDG_STATE_HOME", filepath.Join(".local", "state"), "config", filepath.Join(".local", "state")},
}

// UserHome is stage 30-user-home: projects a per-app HOME on tmpfs,
// redirects the XDG base directories (preferring a private per-app
// override when one exists), and blacklists sensitive directories via
// permissions.json. A no-op when LINGLONG_SKIP_HOME_GENERATE is set.
type UserHome struct{}

func (UserHome) Name() string { return "30-user-home" }

func (UserHome) Generate(spec *specs.Spec) error {
	if os.Getenv(envSkipHomeGenerate) != "" {
		return nil
	}
	if spec.Version != ociVersion {
		return fmt.Errorf("%w: got %q", ErrOCIVersionMismatch, spec.Version)
	}
	if spec.Annotations == nil {
		return ErrNoAnnotations
	}
	appID, ok := spec.Annotations[annotationAppID]
	if !ok {
		return ErrAppIDMissing
	}
	if appID == "" {
		return ErrAppIDEmpty
	}

	hostHome := os.Getenv("HOME")
	userName := os.Getenv("USER")
	if hostHome == "" || userName == "" {
		return ErrHomeEnvMissing
	}
	if _, err := os.Stat(hostHome); err != nil {
		return fmt.Errorf("%w: %s", ErrHostHomeMissing, hostHome)
	}

	containerHome := filepath.Join("/home", userName)
	appendMount(spec, "tmpfs", "/home", "tmpfs", []string{"nodev", "nosuid", "mode=700"})

	if err := mountRequiredDir(spec, hostHome, containerHome); err != nil {
		return fmt.Errorf("bind host HOME: %w", err)
	}
	if err := setEnvOnce(spec, "HOME", containerHome); err != nil {
		return err
	}

	privateAppDir := filepath.Join(hostHome, ".linglong", appID)
	if err := os.MkdirAll(privateAppDir, 0o700); err != nil {
		return fmt.Errorf("create %s: %w", privateAppDir, err)
	}

	resolved := make(map[string]string, len(xdgBaseDirs))
	for _, d := range xdgBaseDirs {
		host := os.Getenv(d.envVar)
		if host == "" {
			host = filepath.Join(hostHome, d.defaultRel)
		}
		if d.privateSubdir != "" {
			private := filepath.Join(privateAppDir, d.privateSubdir)
			if _, err := os.Stat(private); err == nil {
				host = private
			}
		}
		resolved[d.envVar] = host

		container := filepath.Join(containerHome, d.containerRel)
		if err := mountRequiredDir(spec, host, container); err != nil {
			return fmt.Errorf("bind %s: %w", d.envVar, err)
		}
		if err := setEnvOnce(spec, d.envVar, container); err != nil {
			return err
		}
	}

	xdgConfigHome := resolved["XDG_CONFIG_HOME"]
	xdgCacheHome := resolved["XDG_CACHE_HOME"]
	containerConfigHome := filepath.Join(containerHome, ".config")
	containerCacheHome := filepath.Join(containerHome, ".cache")

	mountOptionalDir(spec, filepath.Join(xdgConfigHome, "systemd", "user"), filepath.Join(containerConfigHome, "systemd", "user"))
	mountOptionalDir(spec, filepath.Join(xdgConfigHome, "dconf"), filepath.Join(containerConfigHome, "dconf"))
	mountOptionalDir(spec, filepath.Join(xdgCacheHome, "deepin", "dde-api"), filepath.Join(containerCacheHome, "deepin", "dde-api"))

	bindIfExist(spec, filepath.Join(xdgConfigHome, "user-dirs.dirs"), filepath.Join(containerConfigHome, "user-dirs.dirs"))
	bindIfExist(spec, filepath.Join(xdgConfigHome, "user-dirs.locale"), filepath.Join(containerConfigHome, "user-dirs", ".locale"))

	const defaultBashrc = "/etc/skel/.bashrc"
	if _, err := os.Stat(defaultBashrc); err == nil {
		appendMount(spec, defaultBashrc, filepath.Join(hostHome, ".bashrc"), "bind", []string{"ro", "rbind"})
	}

	maskDir := filepath.Join(hostHome, ".linglong", "data")
	if err := mountRequiredDir(spec, maskDir, filepath.Join(containerHome, ".linglong")); err != nil {
		return fmt.Errorf("mask ~/.linglong: %w", err)
	}

	return applyHomeBlacklist(spec, hostHome, privateAppDir, containerHome)
}

// applyHomeBlacklist hides the implicit [.gnupg, .ssh] plus any
// permissions.json-denied directories by binding the app's private shadow
// copy over the real path inside the container.
func applyHomeBlacklist(spec *specs.Spec, hostHome, privateAppDir, containerHome string) error {
	blacklist := []string{".gnupg", ".ssh"}

	permissionsFile := filepath.Join(privateAppDir, "permissions.json")
	data, err := os.ReadFile(permissionsFile)
	switch {
	case err == nil:
		var perms ApplicationConfigurationPermissions
		if err := json.Unmarshal(data, &perms); err != nil {
			return fmt.Errorf("parse %s: %w", permissionsFile, err)
		}
		for _, d := range perms.XdgDirectories {
			if !d.Allowed {
				blacklist = append(blacklist, d.DirType)
			}
		}
	case os.IsNotExist(err):
		// no permission config: implicit blacklist only.
	default:
		return fmt.Errorf("read %s: %w", permissionsFile, err)
	}

	for _, rel := range blacklist {
		if _, err := os.Stat(filepath.Join(hostHome, rel)); err != nil {
			continue
		}
		if err := mountRequiredDir(spec, filepath.Join(privateAppDir, rel), filepath.Join(containerHome, rel)); err != nil {
			return fmt.Errorf("blacklist %s: %w", rel, err)
		}
	}

	return nil
}
