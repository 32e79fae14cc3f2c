package idmap

import (
	"os"
	"runtime"
	"testing"
)

func TestHostUIDReturnsCurrentUIDOutsideNamespace(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("requires /proc")
	}

	got, err := HostUID()
	if err != nil {
		t.Fatalf("HostUID: %v", err)
	}
	if want := uint32(os.Getuid()); got != want {
		// Inside a 1:1-mapped user namespace HostUID legitimately differs
		// from os.Getuid(); only assert equality when uid_map reports the
		// host's own identity mapping, which IsInsideUserNamespace exposes.
		if inNS, _ := IsInsideUserNamespace(os.Getpid()); !inNS {
			t.Fatalf("HostUID()=%d, want %d (os.Getuid())", got, want)
		}
	}
}

func TestIsInsideUserNamespaceUnknownPidIsFalse(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("requires /proc")
	}

	inNS, allowed := IsInsideUserNamespace(-1)
	if inNS || allowed {
		t.Fatalf("expected false/false for an unreadable pid, got %v/%v", inNS, allowed)
	}
}
