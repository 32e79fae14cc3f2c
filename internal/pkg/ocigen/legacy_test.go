package ocigen

import (
	"strings"
	"testing"

	"github.com/opencontainers/runtime-spec/specs-go"
)

func TestLegacySkippedForOnlyApp(t *testing.T) {
	spec := &specs.Spec{
		Version: ociVersion,
		Annotations: map[string]string{
			annotationAppID:   "org.example.app",
			annotationOnlyApp: "true",
		},
	}
	if err := (Legacy{}).Generate(spec); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(spec.Mounts) != 0 {
		t.Errorf("expected no mounts for onlyApp container, got %d", len(spec.Mounts))
	}
}

func TestLegacyRequiresAppID(t *testing.T) {
	spec := &specs.Spec{Version: ociVersion, Annotations: map[string]string{}}
	if err := (Legacy{}).Generate(spec); err == nil {
		t.Fatal("expected error for missing appID")
	}
}

func TestLegacyRandomizesXDGDataDirsOncePerRun(t *testing.T) {
	spec := &specs.Spec{
		Version:     ociVersion,
		Annotations: map[string]string{annotationAppID: "org.example.app"},
	}
	if err := (Legacy{}).Generate(spec); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	var dataDirs string
	for _, e := range spec.Process.Env {
		if strings.HasPrefix(e, "XDG_DATA_DIRS=") {
			dataDirs = e
		}
	}
	if dataDirs == "" {
		t.Fatal("expected XDG_DATA_DIRS to be set")
	}
	if !strings.Contains(dataDirs, "/run/linglong/xdg-data/") {
		t.Errorf("expected a randomized tmpfs path in XDG_DATA_DIRS, got %q", dataDirs)
	}
}

func TestLegacyAppliesBrowserWorkaroundOnlyForThatApp(t *testing.T) {
	spec := &specs.Spec{
		Version:     ociVersion,
		Annotations: map[string]string{annotationAppID: "org.example.other"},
	}
	if err := (Legacy{}).Generate(spec); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	for _, m := range spec.Mounts {
		if strings.Contains(m.Source, "com.360.browser-stable") {
			t.Errorf("unexpected browser-specific mount for unrelated appID: %+v", m)
		}
	}
}
