// Package idmap implements unprivileged user-namespace setup: subuid/subgid
// range lookup and the newuidmap/newgidmap invocation needed to give a
// fakeroot-mapped child process more than a single uid/gid.
package idmap

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ccoveille/go-safecast"
)

// IsInsideUserNamespace reports whether pid is already running in a user
// namespace, and whether it has permission to call setgroups there.
func IsInsideUserNamespace(pid int) (inUserNS, setgroupsAllowed bool) {
	r, err := os.Open(fmt.Sprintf("/proc/%d/uid_map", pid))
	if err != nil {
		return false, false
	}
	defer r.Close()

	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		return false, false
	}

	fields := strings.Fields(scanner.Text())
	size, _ := strconv.ParseUint(fields[2], 10, 32)
	if uint32(size) == ^uint32(0) {
		// size == 4294967295 means the process is in the host user namespace.
		return false, false
	}

	inUserNS = true
	d, err := os.ReadFile(fmt.Sprintf("/proc/%d/setgroups", pid))
	if err != nil {
		return inUserNS, false
	}
	return inUserNS, string(d) == "allow\n"
}

// HostUID returns the original host UID if the current process is running
// inside a 1:1-mapped user namespace, or the current UID otherwise.
func HostUID() (uint32, error) {
	const uidMap = "/proc/self/uid_map"

	currentUID, err := safecast.ToUint32(os.Getuid())
	if err != nil {
		return 0, err
	}

	f, err := os.Open(uidMap)
	if err != nil {
		if os.IsNotExist(err) {
			return currentUID, nil
		}
		return 0, fmt.Errorf("read %s: %w", uidMap, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())

		size, err := strconv.ParseUint(fields[2], 10, 32)
		if err != nil {
			return 0, fmt.Errorf("parse uid_map size field %q: %w", fields[2], err)
		}
		if uint32(size) == ^uint32(0) {
			break
		}

		containerUID, err := strconv.ParseUint(fields[0], 10, 32)
		if err != nil {
			return 0, fmt.Errorf("parse uid_map container-uid field %q: %w", fields[0], err)
		}
		if size == 1 && currentUID == uint32(containerUID) {
			hostUID, err := strconv.ParseUint(fields[1], 10, 32)
			if err != nil {
				return 0, fmt.Errorf("parse uid_map host-uid field %q: %w", fields[1], err)
			}
			return uint32(hostUID), nil
		}
	}

	return currentUID, nil
}
