package uab

import (
	"debug/elf"
	"fmt"
)

// sectionRange is the (offset, size) pair a named ELF section occupies in
// the file.
type sectionRange struct {
	Offset uint64
	Size   uint64
}

// findSection opens path read-only and returns the (offset, size) of the
// section named name. Only the two fields the runtime needs are read; no
// symbol table or relocation processing is performed.
func findSection(path, name string) (sectionRange, error) {
	f, err := elf.Open(path)
	if err != nil {
		return sectionRange{}, fmt.Errorf("open %q: %w", path, err)
	}
	defer f.Close()

	for _, sec := range f.Sections {
		if sec.Name != name {
			continue
		}
		return sectionRange{Offset: sec.Offset, Size: sec.Size}, nil
	}

	return sectionRange{}, fmt.Errorf("%w: %q in %q", ErrSectionNotFound, name, path)
}
