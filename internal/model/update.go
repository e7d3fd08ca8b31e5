package model

// ApplyReport describes what a patch did to the target directory.
type ApplyReport struct {
	Written []RelPath
	Deleted []RelPath
	// Warnings holds non-fatal conditions, such as deleting a file that was already gone.
	Warnings []error
}

// LaunchSpec describes a process started once an update has been applied.
type LaunchSpec struct {
	Path string
	Args []string
	Dir  string
}
