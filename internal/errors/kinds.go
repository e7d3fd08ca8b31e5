// Package errors defines the structured error taxonomy of the eto engine.
package errors

// Kind is a stable identifier for a class of failure.
type Kind string

const (
	// Scanning.
	MissingMetadata  Kind = "MissingMetadata"
	BadIgnorePattern Kind = "BadIgnorePattern"
	FileReadError    Kind = "FileReadError"

	// Encoding.
	MissingSourceFile Kind = "MissingSourceFile"
	PackageWriteError Kind = "PackageWriteError"

	// Decoding.
	BadMagic          Kind = "BadMagic"
	MalformedManifest Kind = "MalformedManifest"
	PackageReadError  Kind = "PackageReadError"

	// Patching.
	NotTrackedDirectory Kind = "NotTrackedDirectory"
	VersionMismatch     Kind = "VersionMismatch"
	ExtractionError     Kind = "ExtractionError"
	DeleteWarning       Kind = "DeleteWarning"

	// Orchestration.
	PackageNotFound  Kind = "PackageNotFound"
	AmbiguousPackage Kind = "AmbiguousPackage"
	ProcessWaitError Kind = "ProcessWaitError"
	LaunchError      Kind = "LaunchError"
)

// Fatal reports whether the kind aborts the operation that produced it.
func (k Kind) Fatal() bool {
	return k != DeleteWarning
}
