package ocigen

import "errors"

var (
	ErrOCIVersionMismatch = errors.New("ocigen: ociVersion mismatched")
	ErrNoAnnotations      = errors.New("ocigen: no annotations")
	ErrAppIDMissing       = errors.New("ocigen: appID not found")
	ErrAppIDEmpty         = errors.New("ocigen: appID is empty")
	ErrBundleDirMissing   = errors.New("ocigen: bundleDir not found")
	ErrBundleDirEmpty     = errors.New("ocigen: bundleDir is empty")
	ErrHomeEnvMissing     = errors.New("ocigen: HOME or USER not set in environment")
	ErrHostHomeMissing    = errors.New("ocigen: host HOME directory does not exist")
	ErrEnvAlreadySet      = errors.New("ocigen: environment variable already set")
)
