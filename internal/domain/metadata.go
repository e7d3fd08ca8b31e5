package domain

import (
	"encoding/json"
	"fmt"

	"eto.dev/pkg/eto/internal/adapter"
	m "eto.dev/pkg/eto/internal/model"
)

// markerFile mirrors m.Metadata with pointer fields so absent or null keys
// can be told apart from empty values.
type markerFile struct {
	Version *string   `json:"version"`
	Ignore  *[]string `json:"ignore"`
}

// readMetadata loads the marker file at the root of dir. Both keys are required.
func readMetadata(fsAdapter adapter.TreeFSAdapter, dir m.Path) (m.Metadata, error) {
	path := m.RelPath(m.MetadataFileName).Join(dir)

	data, err := fsAdapter.ReadFile(path)
	if err != nil {
		return m.Metadata{}, fmt.Errorf("unable to open %s: %w", m.MetadataFileName, err)
	}

	var marker markerFile
	if err := json.Unmarshal(data, &marker); err != nil {
		return m.Metadata{}, fmt.Errorf("unable to parse %s: %w", m.MetadataFileName, err)
	}

	if marker.Version == nil {
		return m.Metadata{}, fmt.Errorf("unable to parse %s: missing field version", m.MetadataFileName)
	}

	if marker.Ignore == nil {
		return m.Metadata{}, fmt.Errorf("unable to parse %s: missing field ignore", m.MetadataFileName)
	}

	return m.Metadata{
		Version: *marker.Version,
		Ignore:  *marker.Ignore,
	}, nil
}
