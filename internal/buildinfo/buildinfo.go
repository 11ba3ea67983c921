// Package buildinfo carries the version identifier stamped into release
// builds of keelsim.
package buildinfo

// Version is set at build time via -ldflags.
var Version = "dev"

// Short returns the identifier the -version flag prints.
func Short() string {
	if Version == "" {
		return "dev"
	}
	return Version
}
