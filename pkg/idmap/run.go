package idmap

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/user"
	"strconv"
	"syscall"

	"golang.org/x/sys/unix"
)

// reexecFDEnv carries the fd number of the handshake socket to a child
// started by RunInNamespace.
const reexecFDEnv = "LINGLONG_IDMAP_HANDSHAKE_FD"

// RunInNamespace implements spec.md §4.4's runInNamespace: if the calling
// process lacks CAP_SYS_ADMIN, it clones argv[0] into a new user+mount
// namespace, maps the caller's uid/gid using subuid/subgid ranges via
// newuidmap/newgidmap, then lets the child resume. It returns the child's
// mapped exit status. If CAP_SYS_ADMIN is already held, argv runs directly
// with no namespace indirection.
func RunInNamespace(argv []string) (int, error) {
	need, err := needRunInNamespace()
	if err != nil {
		return -1, err
	}
	if !need {
		return runDirect(argv)
	}

	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		return -1, fmt.Errorf("socketpair: %w", err)
	}
	parentSock := os.NewFile(uintptr(fds[0]), "idmap-parent")
	childSock := os.NewFile(uintptr(fds[1]), "idmap-child")
	defer parentSock.Close()

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr
	cmd.ExtraFiles = []*os.File{childSock}
	cmd.Env = append(os.Environ(), fmt.Sprintf("%s=3", reexecFDEnv))
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Cloneflags: syscall.CLONE_NEWUSER | syscall.CLONE_NEWNS,
	}

	if err := cmd.Start(); err != nil {
		childSock.Close()
		return -1, fmt.Errorf("start %q: %w", argv[0], err)
	}
	childSock.Close()

	buf := make([]byte, 1)
	if _, err := parentSock.Read(buf); err != nil {
		return -1, fmt.Errorf("handshake read from child: %w", err)
	}

	u, err := user.Current()
	if err != nil {
		return -1, fmt.Errorf("lookup current user: %w", err)
	}
	euid := uint32(os.Geteuid())
	egid := uint32(os.Getegid())

	if err := mapIDs("newuidmap", cmd.Process.Pid, u.Username, euid, SubUIDRanges); err != nil {
		return -1, err
	}
	if err := mapIDs("newgidmap", cmd.Process.Pid, u.Username, egid, SubGIDRanges); err != nil {
		return -1, err
	}

	if _, err := parentSock.Write([]byte{1}); err != nil {
		return -1, fmt.Errorf("handshake write to child: %w", err)
	}

	err = cmd.Wait()
	return mapExitStatus(err), nil
}

// MaybeWaitForIDMap blocks until the parent (if this process was started by
// RunInNamespace) has finished mapping this process's uid/gid. It must be
// called once, early, before any code that depends on the mapping. It is a
// no-op when the process was not started by RunInNamespace.
func MaybeWaitForIDMap() error {
	fdStr := os.Getenv(reexecFDEnv)
	if fdStr == "" {
		return nil
	}
	os.Unsetenv(reexecFDEnv)

	fd, err := strconv.Atoi(fdStr)
	if err != nil {
		return fmt.Errorf("parse %s: %w", reexecFDEnv, err)
	}
	sock := os.NewFile(uintptr(fd), "idmap-child")
	defer sock.Close()

	if _, err := sock.Write([]byte{1}); err != nil {
		return fmt.Errorf("child handshake write: %w", err)
	}
	buf := make([]byte, 1)
	if _, err := sock.Read(buf); err != nil {
		return fmt.Errorf("child handshake read: %w", err)
	}
	return nil
}

// mapIDs invokes the named setuid helper (newuidmap or newgidmap) against
// pid, mapping container id 0 to the caller's euid/egid with size 1, then
// chaining every subuid/subgid range after it starting at container id 1.
func mapIDs(helper string, pid int, name string, id uint32, ranges func(string, uint32) ([]Range, error)) error {
	path, err := exec.LookPath(helper)
	if err != nil {
		return fmt.Errorf("%s not found: %w", helper, err)
	}

	rs, err := ranges(name, id)
	if err != nil {
		return fmt.Errorf("read id ranges for %s: %w", helper, err)
	}

	args := []string{strconv.Itoa(pid), "0", strconv.FormatUint(uint64(id), 10), "1"}
	next := uint32(1)
	for _, r := range rs {
		args = append(args,
			strconv.FormatUint(uint64(next), 10),
			strconv.FormatUint(uint64(r.HostID), 10),
			strconv.FormatUint(uint64(r.Size), 10),
		)
		next += r.Size
	}

	cmd := exec.Command(path, args...)
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s %v: %w", helper, args, err)
	}
	return nil
}

// runDirect execs argv directly, replacing the current process image.
func runDirect(argv []string) (int, error) {
	path, err := exec.LookPath(argv[0])
	if err != nil {
		return -1, fmt.Errorf("lookup %q: %w", argv[0], err)
	}
	if err := syscall.Exec(path, argv, os.Environ()); err != nil {
		return -1, fmt.Errorf("exec %q: %w", path, err)
	}
	return 0, nil // unreachable on success
}

// mapExitStatus maps a Wait() error to the exit code convention used
// throughout this tree: normal exit -> exit code, signal death -> 128+signum,
// anything else -> -1.
func mapExitStatus(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
			return 128 + int(status.Signal())
		}
		return exitErr.ExitCode()
	}
	return -1
}
