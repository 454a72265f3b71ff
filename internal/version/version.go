package version

import "runtime"

// Build metadata, overridden through -ldflags at release time. The defaults
// identify a local, untagged build.
var (
	// Version is the release tag of this binary
	Version = "dev"
	// Commit is the git revision the binary was built from
	Commit = "unknown"
	// BuildTime is the ISO 8601 timestamp of the build
	BuildTime = "unknown"
)

// Info is the build identity served on the version endpoint.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
}

// Get assembles the build identity of the running binary.
func Get() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
	}
}
