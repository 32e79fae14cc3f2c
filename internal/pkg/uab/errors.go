package uab

import "errors"

// Sentinel errors observable to callers, per the error-kind taxonomy:
// input-malformed, integrity-violation, environment-missing,
// contract-violation.
var (
	// ErrSectionNotFound indicates a required ELF section is absent from the
	// self binary.
	ErrSectionNotFound = errors.New("uab: section not found")

	// ErrDigestMismatch indicates the bundle section's SHA-256 does not match
	// the metadata digest.
	ErrDigestMismatch = errors.New("uab: digest mismatch")

	// ErrExclusiveOption indicates more than one of --extract/--print-meta/
	// --help was supplied.
	ErrExclusiveOption = errors.New("uab: at most one of --extract, --print-meta, --help may be given")

	// ErrRuntimeDirUnavailable indicates neither XDG_RUNTIME_DIR nor /tmp is usable.
	ErrRuntimeDirUnavailable = errors.New("uab: no usable runtime directory")

	// ErrAlreadyMounted indicates a programming error: a second attempt to
	// transition mountFlag from true to true.
	ErrAlreadyMounted = errors.New("uab: mount flag already set")

	// ErrAlreadyCreated indicates a second attempt to transition createFlag.
	ErrAlreadyCreated = errors.New("uab: create flag already set")

	// ErrExtractDestinationNotEmpty indicates --extract=PATH named an
	// existing path that is not an empty directory (a non-empty directory
	// or a non-directory).
	ErrExtractDestinationNotEmpty = errors.New("uab: extract destination is not an empty directory")

	// ErrNoAppLayer indicates no layer with kind=="app" was present in metadata.
	ErrNoAppLayer = errors.New("uab: metadata has no app layer")
)
