package uab

import (
	"crypto/sha256"
	"encoding/hex"
	"math/rand"
	"os"
	"testing"
)

func TestDigestSectionMatchesSingleCallDigest(t *testing.T) {
	r := rand.New(rand.NewSource(1))

	for _, size := range []int{0, 1, digestChunkSize - 1, digestChunkSize, digestChunkSize + 1, 3*digestChunkSize + 17} {
		data := make([]byte, size)
		r.Read(data)

		f, err := os.CreateTemp(t.TempDir(), "digest-")
		if err != nil {
			t.Fatal(err)
		}
		if _, err := f.Write(data); err != nil {
			t.Fatal(err)
		}
		f.Close()

		want := sha256.Sum256(data)
		wantHex := hex.EncodeToString(want[:])

		got, err := digestSection(f.Name(), sectionRange{Offset: 0, Size: uint64(size)})
		if err != nil {
			t.Fatalf("digestSection: %v", err)
		}
		if got != wantHex {
			t.Errorf("size %d: got %s, want %s", size, got, wantHex)
		}
	}
}

func TestDigestSectionRespectsOffset(t *testing.T) {
	prefix := []byte("garbage-before-the-section-")
	payload := []byte("the actual bundle section bytes")

	f, err := os.CreateTemp(t.TempDir(), "digest-offset-")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.Write(append(prefix, payload...)); err != nil {
		t.Fatal(err)
	}
	f.Close()

	want := sha256.Sum256(payload)
	wantHex := hex.EncodeToString(want[:])

	got, err := digestSection(f.Name(), sectionRange{Offset: uint64(len(prefix)), Size: uint64(len(payload))})
	if err != nil {
		t.Fatalf("digestSection: %v", err)
	}
	if got != wantHex {
		t.Errorf("got %s, want %s", got, wantHex)
	}
}

func TestVerifyDigestMismatch(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "digest-mismatch-")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString("hello world"); err != nil {
		t.Fatal(err)
	}
	f.Close()

	err = verifyDigest(f.Name(), sectionRange{Offset: 0, Size: 11}, "0000000000000000000000000000000000000000000000000000000000000000")
	if err == nil {
		t.Fatal("expected mismatch error, got nil")
	}
}
