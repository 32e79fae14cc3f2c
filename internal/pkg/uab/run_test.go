package uab

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func writeFakeCLI(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS != "linux" {
		t.Skip("fake CLI scripts require a POSIX shell")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "ll-cli")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestPackageInfoV2Ref(t *testing.T) {
	p := packageInfoV2{Channel: "main", ID: "org.app", Version: "1.0.0", Arch: []string{"x86_64"}}
	if got, want := p.ref(), "main:org.app/1.0.0/x86_64"; got != want {
		t.Errorf("ref() = %q, want %q", got, want)
	}
}

func TestImportSelfSkipsInstallWhenAlreadyPresent(t *testing.T) {
	cli := writeFakeCLI(t, `
if [ "$1" = "--json" ] && [ "$2" = "list" ]; then
  echo '[{"channel":"main","id":"org.app","version":"1.0.0","arch":["x86_64"]}]'
  exit 0
fi
echo "unexpected invocation: $@" >&2
exit 1
`)

	layer := &Layer{Info: LayerInfo{ID: "org.app", Channel: "main", Version: "1.0.0", Arch: []string{"x86_64"}, Kind: LayerKindApp}}
	if err := importSelf(cli, "/path/to/self", layer); err != nil {
		t.Fatalf("importSelf: %v", err)
	}
}

func TestImportSelfInstallsWhenAbsent(t *testing.T) {
	marker := filepath.Join(t.TempDir(), "installed")
	cli := writeFakeCLI(t, `
if [ "$1" = "--json" ] && [ "$2" = "list" ]; then
  echo '[]'
  exit 0
fi
if [ "$1" = "install" ]; then
  touch `+marker+`
  exit 0
fi
exit 1
`)

	layer := &Layer{Info: LayerInfo{ID: "org.app", Channel: "main", Version: "1.0.0", Arch: []string{"x86_64"}, Kind: LayerKindApp}}
	if err := importSelf(cli, "/path/to/self", layer); err != nil {
		t.Fatalf("importSelf: %v", err)
	}
	if _, err := os.Stat(marker); err != nil {
		t.Fatalf("expected install to run: %v", err)
	}
}
