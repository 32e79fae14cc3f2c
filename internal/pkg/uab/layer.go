package uab

// LayerKind identifies the role a bundle layer plays.
type LayerKind string

const (
	LayerKindApp     LayerKind = "app"
	LayerKindRuntime LayerKind = "runtime"
	LayerKindBase    LayerKind = "base"
)

// LayerInfo mirrors the `info` object of a UAB layer descriptor.
type LayerInfo struct {
	ID      string    `json:"id"`
	Channel string    `json:"channel"`
	Version string    `json:"version"`
	Arch    []string  `json:"arch"`
	Kind    LayerKind `json:"kind"`
}

// Layer is one entry of Metadata.Layers.
type Layer struct {
	Info LayerInfo `json:"info"`
}

// AppLayer returns the first layer with Kind=="app", or ErrNoAppLayer if
// none is present. When more than one app layer is present, the first one
// wins and the rest are ignored.
func (m *Metadata) AppLayer() (*Layer, error) {
	for i := range m.Layers {
		if m.Layers[i].Info.Kind == LayerKindApp {
			return &m.Layers[i], nil
		}
	}
	return nil, ErrNoAppLayer
}
