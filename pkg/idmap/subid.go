package idmap

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Range is one allocated id range from a subuid/subgid file.
type Range struct {
	HostID uint32
	Size   uint32
}

// parseSubIDFile reads a subuid/subgid-format file and returns every range
// whose first field matches name or the decimal form of uid exactly. A
// prefix match (e.g. the file's "user1_long" against the requested
// "user1") is rejected — only an exact field match counts.
func parseSubIDFile(path, name string, uid uint32) ([]Range, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	uidStr := strconv.FormatUint(uint64(uid), 10)

	var ranges []Range
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, ":")
		if len(fields) != 3 {
			continue
		}
		owner, startStr, countStr := fields[0], fields[1], fields[2]
		if owner != name && owner != uidStr {
			continue
		}

		start, err := strconv.ParseUint(startStr, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("parse start id in %s: %w", path, err)
		}
		count, err := strconv.ParseUint(countStr, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("parse count in %s: %w", path, err)
		}
		ranges = append(ranges, Range{HostID: uint32(start), Size: uint32(count)})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", path, err)
	}

	return ranges, nil
}

// SubUIDRanges returns the subuid ranges for name/uid from /etc/subuid.
func SubUIDRanges(name string, uid uint32) ([]Range, error) {
	return parseSubIDFile("/etc/subuid", name, uid)
}

// SubGIDRanges returns the subgid ranges for name/gid from /etc/subgid.
func SubGIDRanges(name string, gid uint32) ([]Range, error) {
	return parseSubIDFile("/etc/subgid", name, gid)
}
