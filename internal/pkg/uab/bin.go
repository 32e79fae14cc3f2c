// Copyright (c) 2019-2023, Sylabs Inc. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package uab

import (
	"fmt"
	"os/exec"
)

// findBin returns the path to the named external helper, or an error if it
// is not found. Only the small set of binaries the UAB runtime shells out to
// is recognized.
func findBin(name string) (string, error) {
	switch name {
	case "erofsfuse":
		return findOnPath(name)
	case "fusermount", "fusermount3":
		return findFusermount()
	case "umount":
		return findOnPath(name)
	case "ll-cli":
		return findOnPath(name)
	default:
		return "", fmt.Errorf("executable name %q is not known to findBin", name)
	}
}

func findOnPath(name string) (string, error) {
	return exec.LookPath(name)
}

// findFusermount looks for fusermount3 or, if that's not found, fusermount on PATH.
func findFusermount() (string, error) {
	path, err := findOnPath("fusermount3")
	if err == nil {
		return path, nil
	}
	return findOnPath("fusermount")
}
