package uab

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/OpenAtom-Linyaps/linglong/internal/pkg/sylog"
)

// runtimeDir resolves $XDG_RUNTIME_DIR, falling back to /tmp when unset, and
// canonicalizes it via EvalSymlinks.
func runtimeDir() (string, error) {
	dir := os.Getenv("XDG_RUNTIME_DIR")
	if dir == "" {
		dir = "/tmp"
	}
	real, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrRuntimeDirUnavailable, dir, err)
	}
	return real, nil
}

// createMountPoint resolves the per-UUID mount point under
// $XDG_RUNTIME_DIR/linglong/UAB/<uuid>, creates it recursively, and records
// createFlag atomically. Must strictly precede any mount attempt.
func createMountPoint(uuid string) (string, error) {
	base, err := runtimeDir()
	if err != nil {
		return "", err
	}

	mountPoint := filepath.Join(base, "linglong", "UAB", uuid)
	if err := os.MkdirAll(mountPoint, 0o700); err != nil {
		return "", fmt.Errorf("create mount point %q: %w", mountPoint, err)
	}

	if err := state.markCreated(mountPoint); err != nil {
		return "", err
	}

	return mountPoint, nil
}

// mountSelfBundle forks erofsfuse against the self binary's bundle section
// and waits for it to daemonize. Verbose passthrough of the helper's
// stdout/stderr is gated by UAB_EROFSFUSE_VERBOSE.
func mountSelfBundle(selfBin string, rng sectionRange, mountPoint string) error {
	erofsfuse, err := findBin("erofsfuse")
	if err != nil {
		return fmt.Errorf("locate erofsfuse: %w", err)
	}

	args := []string{
		fmt.Sprintf("--offset=%d", rng.Offset),
		selfBin,
		mountPoint,
	}

	cmd := exec.Command(erofsfuse, args...)
	if os.Getenv("UAB_EROFSFUSE_VERBOSE") != "" {
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
	} else {
		tmp, err := os.CreateTemp("", "erofsfuse-out-")
		if err == nil {
			defer tmp.Close()
			cmd.Stdout = tmp
			cmd.Stderr = tmp
		}
	}

	sylog.Debugf("executing FUSE mount command: %s %v", erofsfuse, args)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("erofsfuse exec: %w", err)
	}

	if err := state.markMounted(); err != nil {
		return err
	}

	return nil
}

// unmountSelfBundle runs `umount -l <mountPoint>`. Failures are logged but
// not returned as fatal, matching the cleanup contract (§4.1.9).
func unmountSelfBundle(mountPoint string) {
	umount, err := findBin("umount")
	if err != nil {
		sylog.Warningf("umount not found, cannot unmount %q: %v", mountPoint, err)
		return
	}
	cmd := exec.Command(umount, "-l", mountPoint)
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		sylog.Warningf("umount -l %q failed: %v", mountPoint, err)
	}
}
