package ocigen

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/opencontainers/runtime-spec/specs-go"
)

// Devices is stage 20-devices: exposes host device nodes GUI/audio/GPU
// applications commonly need. A no-op when annotation onlyApp=="true".
type Devices struct{}

func (Devices) Name() string { return "20-devices" }

func (Devices) Generate(spec *specs.Spec) error {
	if spec.Version != ociVersion {
		return fmt.Errorf("%w: got %q", ErrOCIVersionMismatch, spec.Version)
	}
	if spec.Annotations == nil {
		return ErrNoAnnotations
	}
	if spec.Annotations[annotationOnlyApp] == "true" {
		return nil
	}

	bindIfExist(spec, "/run/udev", "")
	bindIfExist(spec, "/dev/snd", "")
	bindIfExist(spec, "/dev/dri", "")

	entries, err := os.ReadDir("/dev")
	if err != nil {
		return fmt.Errorf("read /dev: %w", err)
	}
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, "video") || strings.HasPrefix(name, "nvidia") {
			devPath := filepath.Join("/dev", name)
			appendRBindMount(spec, devPath, devPath)
		}
	}

	return bindMedia(spec)
}

// bindMedia honors FHS /media's symlink-or-directory duality: a symlinked
// /media binds its resolved target rshared plus the symlink itself
// read-only; a plain directory binds itself rshared.
func bindMedia(spec *specs.Spec) error {
	const mediaDir = "/media"

	info, err := os.Lstat(mediaDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("stat %s: %w", mediaDir, err)
	}

	if info.Mode()&os.ModeSymlink == 0 {
		appendMount(spec, mediaDir, mediaDir, "bind", []string{"rbind", "rshared"})
		return nil
	}

	target, err := os.Readlink(mediaDir)
	if err != nil {
		return fmt.Errorf("readlink %s: %w", mediaDir, err)
	}
	destinationDir := target
	if !filepath.IsAbs(destinationDir) {
		destinationDir = "/" + destinationDir
	}
	if _, err := os.Stat(destinationDir); err != nil {
		return fmt.Errorf("media target %s: %w", destinationDir, err)
	}

	appendMount(spec, destinationDir, destinationDir, "bind", []string{"rbind", "rshared"})
	appendMount(spec, mediaDir, mediaDir, "bind", []string{"rbind", "ro", "copy-symlink"})
	return nil
}
