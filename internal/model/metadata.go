package model

// MetadataFileName is the marker file at the root of every tracked directory.
const MetadataFileName = "eto.json"

// Metadata is the content of the marker file.
type Metadata struct {
	// Version is the current version of the installation.
	Version string `json:"version"`
	// Ignore lists glob patterns of files that are not tracked.
	Ignore []string `json:"ignore"`
}
