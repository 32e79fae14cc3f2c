package idmap

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// capSysAdmin is CAP_SYS_ADMIN's bit position (linux/capability.h).
const capSysAdmin = 21

// needRunInNamespace reports whether the effective capability set lacks
// CAP_SYS_ADMIN, i.e. whether namespace/mount operations need to go through
// an unprivileged user-namespace + subuid/subgid mapped child instead of
// being performed directly.
func needRunInNamespace() (bool, error) {
	f, err := os.Open("/proc/self/status")
	if err != nil {
		return false, fmt.Errorf("open /proc/self/status: %w", err)
	}
	defer f.Close()
	return lacksSysAdmin(f)
}

// lacksSysAdmin scans a /proc/<pid>/status-formatted reader for the CapEff
// line and reports whether CAP_SYS_ADMIN is absent from it.
func lacksSysAdmin(r io.Reader) (bool, error) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "CapEff:") {
			continue
		}
		hex := strings.TrimSpace(strings.TrimPrefix(line, "CapEff:"))
		capEff, err := strconv.ParseUint(hex, 16, 64)
		if err != nil {
			return false, fmt.Errorf("parse CapEff %q: %w", hex, err)
		}
		return capEff&(1<<capSysAdmin) == 0, nil
	}
	return false, fmt.Errorf("CapEff not found in status")
}
