package ocigen

import (
	"encoding/json"
	"fmt"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/opencontainers/runtime-spec/specs-go"
)

// patchDocument is the on-disk shape a JSON-patch-applying stage consumes:
// an ociVersion guard plus an RFC-6902 patch array, mirroring the
// original's `nlohmann::json(config).patch(rawPatch)` round-trip.
type patchDocument struct {
	OCIVersion string          `json:"ociVersion"`
	Patch      json.RawMessage `json:"patch"`
}

// applyPatch parses raw as a patchDocument, rejects it if its declared
// ociVersion doesn't match spec's, and applies its RFC-6902 patch to spec
// by round-tripping through encoding/json.
func applyPatch(spec *specs.Spec, raw []byte) error {
	var doc patchDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("parse patch document: %w", err)
	}
	if doc.OCIVersion != spec.Version {
		return fmt.Errorf("%w: patch wants %q, config has %q", ErrOCIVersionMismatch, doc.OCIVersion, spec.Version)
	}

	patch, err := jsonpatch.DecodePatch(doc.Patch)
	if err != nil {
		return fmt.Errorf("decode json patch: %w", err)
	}

	rawConfig, err := json.Marshal(spec)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	// Empty slices such as a fresh config's mounts are dropped by omitempty
	// when marshalling, so "add" ops must be allowed to create their parent.
	opts := jsonpatch.NewApplyOptions()
	opts.EnsurePathExistsOnAdd = true
	patched, err := patch.ApplyWithOptions(rawConfig, opts)
	if err != nil {
		return fmt.Errorf("apply json patch: %w", err)
	}

	var next specs.Spec
	if err := json.Unmarshal(patched, &next); err != nil {
		return fmt.Errorf("unmarshal patched config: %w", err)
	}

	*spec = next
	return nil
}
