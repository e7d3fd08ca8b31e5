package model

// Snapshot is the content-addressed state of a tracked directory.
type Snapshot struct {
	Version string `json:"version" yaml:"version"`
	// Files maps every tracked file to its hex encoded SHA-256 digest.
	Files map[RelPath]string `json:"files" yaml:"files"`
}

// Equal reports whether two snapshots track the same files with the same content.
// The version is compared too because it is read from the tracked marker file.
func (s Snapshot) Equal(other Snapshot) bool {
	if s.Version != other.Version || len(s.Files) != len(other.Files) {
		return false
	}

	for path, hash := range s.Files {
		if otherHash, ok := other.Files[path]; !ok || otherHash != hash {
			return false
		}
	}

	return true
}
