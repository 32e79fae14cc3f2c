package ocigen

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/opencontainers/runtime-spec/specs-go"
)

// legacyROBinds are read-only compatibility binds kept around for
// applications that still expect a traditional, non-sandboxed
// distribution layout rather than going through the more specific binds
// of the earlier stages.
var legacyROBinds = []string{
	"/run/resolvconf",
	"/etc/machine-id",
	"/etc/ssl/certs",
	"/var/cache/fontconfig",
	"/usr/share/fonts",
	"/usr/lib/locale",
	"/usr/share/themes",
	"/usr/share/icons",
	"/usr/share/zoneinfo",
}

// Legacy is stage 90-legacy: final-pass compatibility binds for
// applications that predate the newer, more surgical stages — skipped
// entirely for onlyApp containers, since those never had this surface to
// begin with.
type Legacy struct{}

func (Legacy) Name() string { return "90-legacy" }

func (Legacy) Generate(spec *specs.Spec) error {
	if spec.Version != ociVersion {
		return fmt.Errorf("%w: got %q", ErrOCIVersionMismatch, spec.Version)
	}
	if spec.Annotations == nil {
		return ErrNoAnnotations
	}
	if spec.Annotations[annotationOnlyApp] == "true" {
		return nil
	}
	appID, ok := spec.Annotations[annotationAppID]
	if !ok {
		return ErrAppIDMissing
	}

	for _, dir := range legacyROBinds {
		bindIfExistRO(spec, dir, dir)
	}

	if appID == "com.360.browser-stable" {
		bindIfExist(spec, "/opt/apps/com.360.browser-stable/files", "")
	}

	if err := randomizeXDGDataDirs(spec); err != nil {
		return err
	}

	bindIfExistRO(spec, "/etc/distribution.info", "/etc/distribution.info")

	return nil
}

// randomizeXDGDataDirs appends a uniquely named tmpfs directory to
// XDG_DATA_DIRS. Desktop file caches (mimeinfo.cache, *.desktop indices)
// key off this path, and using a fresh one per launch forces those caches
// to rebuild rather than serve data belonging to a previous app version.
func randomizeXDGDataDirs(spec *specs.Spec) error {
	dir := filepath.Join("/run/linglong/xdg-data", uuid.NewString())

	appendMount(spec, "tmpfs", dir, "tmpfs", []string{"nodev", "nosuid", "mode=755"})

	existing := os.Getenv("XDG_DATA_DIRS")
	if existing == "" {
		existing = "/usr/local/share:/usr/share"
	}
	return setEnvOnce(spec, "XDG_DATA_DIRS", existing+":"+dir)
}
