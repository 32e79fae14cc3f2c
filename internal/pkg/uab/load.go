package uab

import (
	"fmt"
	"io"
	"os"
)

// LoadMetadata opens selfBin, locates the "linglong.meta" section, reads and
// parses it. It also returns the bundle section's (offset, size) so callers
// can verify the digest and mount without reopening the file.
func LoadMetadata(selfBin string) (*Metadata, sectionRange, error) {
	metaRng, err := findSection(selfBin, "linglong.meta")
	if err != nil {
		return nil, sectionRange{}, err
	}

	f, err := os.Open(selfBin)
	if err != nil {
		return nil, sectionRange{}, fmt.Errorf("open %q: %w", selfBin, err)
	}
	defer f.Close()

	if _, err := f.Seek(int64(metaRng.Offset), io.SeekStart); err != nil {
		return nil, sectionRange{}, fmt.Errorf("seek to metadata section: %w", err)
	}
	buf := make([]byte, metaRng.Size)
	if _, err := io.ReadFull(f, buf); err != nil {
		return nil, sectionRange{}, fmt.Errorf("read metadata section: %w", err)
	}

	meta, err := ParseMetadata(buf)
	if err != nil {
		return nil, sectionRange{}, err
	}

	bundleRng, err := findSection(selfBin, meta.Sections.Bundle)
	if err != nil {
		return nil, sectionRange{}, err
	}

	return meta, bundleRng, nil
}
