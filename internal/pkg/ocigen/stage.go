// Package ocigen implements the OCI runtime-config generator pipeline: an
// ordered chain of named transformations that build a container's
// namespace/ID mapping, base mounts, device access, host rootfs exposure,
// host-IPC surface, per-user HOME projection, and legacy compatibility
// mounts on top of a github.com/opencontainers/runtime-spec specs.Spec.
package ocigen

import (
	"fmt"
	"sort"

	"github.com/opencontainers/runtime-spec/specs-go"
)

const ociVersion = "1.0.1"

const (
	annotationAppID     = "org.deepin.linglong.appID"
	annotationBundleDir = "org.deepin.linglong.bundleDir"
	annotationOnlyApp   = "org.deepin.linglong.onlyApp"
)

// Stage is one named, ordered transformation in the pipeline. Generate
// mutates spec in place; a non-nil error aborts the pipeline before any
// later stage runs, leaving spec in an unspecified state.
type Stage interface {
	Name() string
	Generate(spec *specs.Spec) error
}

// BuiltinStages returns every stage this package ships, unordered; Run
// sorts them by Name() before applying, so callers never need to
// pre-sort this slice themselves.
func BuiltinStages() []Stage {
	return []Stage{
		IDMapping{},
		Initialize{},
		Basics{},
		Devices{},
		HostEnv{},
		HostRootfs{},
		HostStatics{},
		UserHome{},
		HostIPC{},
		Legacy{},
	}
}

// Run applies stages to spec in lexicographic order of Name() — "00",
// "05", "10", "20", "25"×3, "30", "40", "90" — matching the numeric-prefix
// ordering the stage names carry. Stages are independent of each other
// except through spec itself; the driver calls none of them on behalf of
// another.
func Run(stages []Stage, spec *specs.Spec) error {
	seedInitConfig(spec)

	ordered := append([]Stage(nil), stages...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Name() < ordered[j].Name() })

	for _, s := range ordered {
		if err := s.Generate(spec); err != nil {
			return fmt.Errorf("%s: %w", s.Name(), err)
		}
	}
	return nil
}
