// Package version carries build identification, overridden at link
// time via -ldflags "-X".
package version

var (
	// Version is the release version of the tracking tools
	Version = "dev"
	// GitSHA is the git commit the binaries were built from
	GitSHA = "unknown"
	// BuildTime is the build timestamp
	BuildTime = "unknown"
)
