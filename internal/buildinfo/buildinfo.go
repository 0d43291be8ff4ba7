// Package buildinfo carries the version stamped in by the linker:
//
//	go build -ldflags "-X voxray/internal/buildinfo.Version=v0.3.0 -X voxray/internal/buildinfo.Commit=$(git rev-parse --short HEAD)"
package buildinfo

import "fmt"

var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// Short returns a compact build identifier for the window title.
func Short() string {
	if Version != "" && Version != "dev" {
		return Version
	}
	if Commit != "" && Commit != "unknown" {
		return Commit
	}
	return "dev"
}

// String is the form printed in the startup log.
func String() string {
	return fmt.Sprintf("voxray %s (commit %s, built %s)", Version, Commit, Date)
}
