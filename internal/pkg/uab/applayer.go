package uab

import "fmt"

// AppRef computes the "channel:id/version/arch[0]" reference string used to
// compare this bundle's app layer against `ll-cli --json list` output.
// `ll-cli run` is given the bare app ID, not this reference.
func (l *Layer) AppRef() string {
	arch := ""
	if len(l.Info.Arch) > 0 {
		arch = l.Info.Arch[0]
	}
	return fmt.Sprintf("%s:%s/%s/%s", l.Info.Channel, l.Info.ID, l.Info.Version, arch)
}
