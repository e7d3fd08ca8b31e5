package errors

// New constructs a structured error.
func New(kind Kind, message string) *Error {
	return &Error{
		Kind:    kind,
		Message: message,
	}
}

// Wrap constructs a structured error around an underlying cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return New(kind, message).WithCause(cause)
}

// ErrMissingMetadata reports a tracked directory whose marker file is absent or malformed.
func ErrMissingMetadata(dir string, cause error) *Error {
	return Wrap(MissingMetadata, "unable to read tracked directory metadata", cause).
		WithData("path", dir)
}

// ErrBadIgnorePattern reports an ignore glob that does not compile.
func ErrBadIgnorePattern(pattern string) *Error {
	return New(BadIgnorePattern, "invalid ignore pattern").
		WithData("pattern", pattern)
}

// ErrFileRead reports a file that could not be walked or hashed during a scan.
func ErrFileRead(op, path string, cause error) *Error {
	return Wrap(FileReadError, "failed to read file", cause).
		WithData("op", op).
		WithData("path", path)
}

// ErrMissingSourceFile reports a diff entry missing from the source directory while packaging.
func ErrMissingSourceFile(path string, cause error) *Error {
	return Wrap(MissingSourceFile, "unable to open diff file", cause).
		WithData("path", path)
}

// ErrPackageWrite reports a failure writing the package file.
func ErrPackageWrite(path string, cause error) *Error {
	return Wrap(PackageWriteError, "failed to write package", cause).
		WithData("path", path)
}

// ErrBadMagic reports a file that does not start with the package magic.
func ErrBadMagic(path string) *Error {
	return New(BadMagic, "package magic does not match, file is not a package or has an unsupported format version").
		WithData("path", path)
}

// ErrMalformedManifest reports a manifest block that is not valid JSON.
func ErrMalformedManifest(path string, cause error) *Error {
	return Wrap(MalformedManifest, "malformed manifest json", cause).
		WithData("path", path)
}

// ErrPackageRead reports an I/O failure or truncation while reading a package.
func ErrPackageRead(path string, cause error) *Error {
	return Wrap(PackageReadError, "failed to read package", cause).
		WithData("path", path)
}

// ErrNotTrackedDirectory reports a patch target without a readable marker file.
func ErrNotTrackedDirectory(dir string, cause error) *Error {
	return Wrap(NotTrackedDirectory, "directory is not an eto tracked directory", cause).
		WithData("path", dir)
}

// ErrVersionMismatch reports a package built for a different installed version.
func ErrVersionMismatch(expected, actual string) *Error {
	return New(VersionMismatch, "package was made for a different version").
		WithData("expected", expected).
		WithData("actual", actual)
}

// ErrExtraction reports a payload entry that could not be decoded or written.
func ErrExtraction(path string, cause error) *Error {
	return Wrap(ExtractionError, "failed to extract package entry", cause).
		WithData("path", path)
}

// ErrDeleteWarning reports a file the patch could not remove. It is not fatal.
func ErrDeleteWarning(path string, cause error) *Error {
	return Wrap(DeleteWarning, "attempted to remove file that doesn't exist", cause).
		WithData("path", path)
}

// ErrPackageNotFound reports a package pattern that matched nothing.
func ErrPackageNotFound(pattern string) *Error {
	return New(PackageNotFound, "couldn't find package").
		WithData("pattern", pattern)
}

// ErrAmbiguousPackage reports a package pattern that matched more than one file.
func ErrAmbiguousPackage(pattern string, matches []string) *Error {
	return New(AmbiguousPackage, "more than one package matches").
		WithData("pattern", pattern).
		WithData("matches", matches)
}

// ErrProcessWait reports a failure while waiting for a process to exit.
func ErrProcessWait(pid int32, cause error) *Error {
	return Wrap(ProcessWaitError, "failed waiting for process to close", cause).
		WithData("pid", pid)
}

// ErrLaunch reports a successor process that failed to start.
func ErrLaunch(path string, cause error) *Error {
	return Wrap(LaunchError, "failed to run on_complete", cause).
		WithData("path", path)
}
