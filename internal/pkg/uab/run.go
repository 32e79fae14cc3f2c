package uab

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"

	"github.com/OpenAtom-Linyaps/linglong/internal/pkg/sylog"
)

// packageInfoV2 is the subset of `ll-cli --json list`'s per-entry schema the
// runtime needs to compute an installed ref for comparison against AppRef().
type packageInfoV2 struct {
	Channel string   `json:"channel"`
	ID      string   `json:"id"`
	Version string   `json:"version"`
	Arch    []string `json:"arch"`
}

func (p packageInfoV2) ref() string {
	arch := ""
	if len(p.Arch) > 0 {
		arch = p.Arch[0]
	}
	return fmt.Sprintf("%s:%s/%s/%s", p.Channel, p.ID, p.Version, arch)
}

// detectLinglong reports whether ll-cli is reachable on PATH.
func detectLinglong() (string, bool) {
	path, err := findBin("ll-cli")
	if err != nil {
		return "", false
	}
	return path, true
}

// listInstalled runs `ll-cli --json list` and decodes its output.
func listInstalled(cliBin string) ([]packageInfoV2, error) {
	cmd := exec.Command(cliBin, "--json", "list")
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ll-cli --json list: %w", err)
	}
	var pkgs []packageInfoV2
	if err := json.Unmarshal(out.Bytes(), &pkgs); err != nil {
		return nil, fmt.Errorf("parse ll-cli --json list output: %w", err)
	}
	return pkgs, nil
}

// importSelf ensures the bundle's app layer is installed via the detected
// ll-cli, installing it from selfBin if the ref is not already present.
func importSelf(cliBin, selfBin string, appLayer *Layer) error {
	ref := appLayer.AppRef()

	installed, err := listInstalled(cliBin)
	if err != nil {
		return err
	}
	for _, p := range installed {
		if p.ref() == ref {
			sylog.Debugf("%s already installed", ref)
			return nil
		}
	}

	sylog.Debugf("installing %s via %s install %s", ref, cliBin, selfBin)
	cmd := exec.Command(cliBin, "install", selfBin)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ll-cli install %q: %w", selfBin, err)
	}
	return nil
}

// runAppLinglong execs `ll-cli run <appID>` in place of the current process
// image. On success this never returns; on failure to even start the exec it
// returns an error for the caller to route through cleanAndExit.
func runAppLinglong(cliBin string, appLayer *Layer) error {
	argv := []string{cliBin, "run", appLayer.Info.ID}
	env := os.Environ()
	sylog.Debugf("delegating to %v", argv)
	return syscall.Exec(cliBin, argv, env)
}

// runAppLoader forks, execs <mountPoint>/loader with loaderArgs appended
// after argv[0], waits, and maps the child's termination to a process exit
// code via cleanAndExit. It never returns.
func runAppLoader(mountPoint string, loaderArgs []string) {
	loaderPath := filepath.Join(mountPoint, "loader")
	argv := append([]string{loaderPath}, loaderArgs...)

	cmd := exec.Command(loaderPath, loaderArgs...)
	cmd.Args = argv
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	err := cmd.Run()

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		cleanAndExit(0)
	case errors.As(err, &exitErr):
		cleanAndExit(exitErr.ExitCode())
	default:
		sylog.Errorf("exec %s: %v", loaderPath, err)
		cleanAndExit(-1)
	}
}
