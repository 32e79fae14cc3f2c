package uab

import (
	"os"
	"path/filepath"
	"testing"
)

func resetState() {
	state = &runtimeState{}
	state.mountPoint.Store("")
}

func TestFlagAtomicity(t *testing.T) {
	resetState()

	dir := t.TempDir()
	mp := filepath.Join(dir, "mountpoint")
	if err := os.MkdirAll(mp, 0o700); err != nil {
		t.Fatal(err)
	}

	if err := state.markCreated(mp); err != nil {
		t.Fatalf("first markCreated: %v", err)
	}
	if err := state.markCreated(mp); err == nil {
		t.Fatal("second markCreated should have failed")
	}

	if err := state.markMounted(); err != nil {
		t.Fatalf("first markMounted: %v", err)
	}
	if err := state.markMounted(); err == nil {
		t.Fatal("second markMounted should have failed")
	}
}

func TestCleanResourceRemovesMountPointWhenCreatedNotMounted(t *testing.T) {
	resetState()

	dir := t.TempDir()
	mp := filepath.Join(dir, "mountpoint")
	if err := os.MkdirAll(mp, 0o700); err != nil {
		t.Fatal(err)
	}
	if err := state.markCreated(mp); err != nil {
		t.Fatal(err)
	}

	cleanResource()

	if _, err := os.Stat(mp); !os.IsNotExist(err) {
		t.Fatalf("expected mount point removed, stat err = %v", err)
	}
}

func TestCleanResourceIsNoopWhenNeitherFlagSet(t *testing.T) {
	resetState()
	// Must not panic or error when nothing was ever created/mounted.
	cleanResource()
}
