package model

// ManifestVersion is the manifest format written into new packages.
const ManifestVersion = "0.1.0"

// Manifest is the header stored inside a package container.
type Manifest struct {
	Version string `json:"version" yaml:"version"`
	Diff    Diff   `json:"diff" yaml:"diff"`
}
