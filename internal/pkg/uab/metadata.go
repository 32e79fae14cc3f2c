package uab

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Sections names the ELF sections a UAB carries beyond the standard ones.
type Sections struct {
	Bundle string `json:"bundle"`
}

// Metadata is the `linglong.meta` JSON record embedded in a UAB.
type Metadata struct {
	UUID     string   `json:"uuid"`
	Digest   string   `json:"digest"`
	Sections Sections `json:"sections"`
	Layers   []Layer  `json:"layers"`
}

// ParseMetadata decodes and validates a metadata JSON buffer.
func ParseMetadata(buf []byte) (*Metadata, error) {
	var m Metadata
	if err := json.Unmarshal(buf, &m); err != nil {
		return nil, fmt.Errorf("parse metadata: %w", err)
	}
	if m.UUID == "" {
		return nil, fmt.Errorf("parse metadata: missing uuid")
	}
	if _, err := uuid.Parse(m.UUID); err != nil {
		return nil, fmt.Errorf("parse metadata: uuid: %w", err)
	}
	if m.Sections.Bundle == "" {
		return nil, fmt.Errorf("parse metadata: missing sections.bundle")
	}
	if _, err := m.AppLayer(); err != nil {
		return nil, fmt.Errorf("parse metadata: %w", err)
	}
	return &m, nil
}

// PrettyJSON renders the metadata with a 4-space indent, matching
// `--print-meta`'s output contract.
func (m *Metadata) PrettyJSON() ([]byte, error) {
	return json.MarshalIndent(m, "", "    ")
}
