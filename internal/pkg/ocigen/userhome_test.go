package ocigen

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/opencontainers/runtime-spec/specs-go"
)

func newHomeTestSpec(appID string) *specs.Spec {
	return &specs.Spec{
		Version:     ociVersion,
		Annotations: map[string]string{annotationAppID: appID},
	}
}

func setHomeTestEnv(t *testing.T, home string) {
	t.Helper()
	t.Setenv("HOME", home)
	t.Setenv("USER", "tester")
	t.Setenv("XDG_DATA_HOME", "")
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("XDG_CACHE_HOME", "")
	t.Setenv("XDG_STATE_HOME", "")
	t.Setenv(envSkipHomeGenerate, "")
}

func TestUserHomeSkipsEntirelyWhenEnvSet(t *testing.T) {
	t.Setenv(envSkipHomeGenerate, "1")
	spec := newHomeTestSpec("org.example.app")

	if err := (UserHome{}).Generate(spec); err != nil {
		t.Fatalf("expected no-op, got error: %v", err)
	}
	if len(spec.Mounts) != 0 {
		t.Errorf("expected no mounts when skip env set, got %d", len(spec.Mounts))
	}
}

func TestUserHomeRequiresAppID(t *testing.T) {
	home := t.TempDir()
	setHomeTestEnv(t, home)
	spec := &specs.Spec{Version: ociVersion, Annotations: map[string]string{}}

	err := (UserHome{}).Generate(spec)
	if err == nil {
		t.Fatal("expected error for missing appID")
	}
}

func TestUserHomeSetsHomeEnvExactlyOnce(t *testing.T) {
	home := t.TempDir()
	setHomeTestEnv(t, home)
	spec := newHomeTestSpec("org.example.app")

	if err := (UserHome{}).Generate(spec); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	seen := 0
	for _, e := range spec.Process.Env {
		if len(e) >= 5 && e[:5] == "HOME=" {
			seen++
		}
	}
	if seen != 1 {
		t.Errorf("expected HOME set exactly once, saw %d times", seen)
	}
}

func TestUserHomePrefersPrivateXDGConfigOverride(t *testing.T) {
	home := t.TempDir()
	setHomeTestEnv(t, home)
	spec := newHomeTestSpec("org.example.app")

	privateConfig := filepath.Join(home, ".linglong", "org.example.app", "config")
	if err := os.MkdirAll(privateConfig, 0o700); err != nil {
		t.Fatal(err)
	}

	if err := (UserHome{}).Generate(spec); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	found := false
	for _, m := range spec.Mounts {
		if m.Source == privateConfig {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a mount sourced from the private override %s, mounts: %+v", privateConfig, spec.Mounts)
	}
}

func TestUserHomeBlacklistsGnupgAndSshByDefault(t *testing.T) {
	home := t.TempDir()
	setHomeTestEnv(t, home)
	spec := newHomeTestSpec("org.example.app")

	if err := os.MkdirAll(filepath.Join(home, ".gnupg"), 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(home, ".ssh"), 0o700); err != nil {
		t.Fatal(err)
	}

	if err := (UserHome{}).Generate(spec); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	containerHome := filepath.Join("/home", "tester")
	wantDests := map[string]bool{
		filepath.Join(containerHome, ".gnupg"): false,
		filepath.Join(containerHome, ".ssh"):   false,
	}
	for _, m := range spec.Mounts {
		if _, ok := wantDests[m.Destination]; ok {
			wantDests[m.Destination] = true
		}
	}
	for dest, ok := range wantDests {
		if !ok {
			t.Errorf("expected a blacklist bind mount for %s", dest)
		}
	}
}

// TestUserHomePermissionsJSONOnlyExtendsBlacklist checks the extend-only
// semantics of permissions.json: it can add denied directories to the
// implicit [.gnupg, .ssh] blacklist, but an allowed:true entry for one of
// the implicit entries does not un-blacklist it.
func TestUserHomePermissionsJSONOnlyExtendsBlacklist(t *testing.T) {
	home := t.TempDir()
	setHomeTestEnv(t, home)
	spec := newHomeTestSpec("org.example.app")

	appDir := filepath.Join(home, ".linglong", "org.example.app")
	if err := os.MkdirAll(appDir, 0o700); err != nil {
		t.Fatal(err)
	}
	perms := ApplicationConfigurationPermissions{
		XdgDirectories: []XdgDirectoryPermission{
			{Allowed: true, DirType: ".gnupg"},
			{Allowed: false, DirType: "Documents"},
		},
	}
	data, err := json.Marshal(perms)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(appDir, "permissions.json"), data, 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(home, ".gnupg"), 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(home, "Documents"), 0o700); err != nil {
		t.Fatal(err)
	}

	if err := (UserHome{}).Generate(spec); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	containerHome := filepath.Join("/home", "tester")
	wantBlacklisted := map[string]bool{
		filepath.Join(containerHome, ".gnupg"):    false,
		filepath.Join(containerHome, "Documents"): false,
	}
	for _, m := range spec.Mounts {
		if _, ok := wantBlacklisted[m.Destination]; ok {
			wantBlacklisted[m.Destination] = true
		}
	}
	for dest, found := range wantBlacklisted {
		if !found {
			t.Errorf("expected a blacklist bind mount for %s", dest)
		}
	}
}

func TestUserHomeFailsWhenHostHomeMissing(t *testing.T) {
	setHomeTestEnv(t, "/nonexistent/definitely/not/here")
	spec := newHomeTestSpec("org.example.app")

	err := (UserHome{}).Generate(spec)
	if err == nil {
		t.Fatal("expected error when host HOME doesn't exist")
	}
}
