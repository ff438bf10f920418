// Package version carries the build version shared by the service and the
// operator, and decides whether two builds can talk to each other.
package version

import (
	"fmt"

	"golang.org/x/mod/semver"
)

// Version is overridden at link time with -X.
var Version = "v0.3.0"

// Current returns Version in canonical form, or v0.0.0 when it is not a
// valid semantic version (development builds).
func Current() string {
	if !semver.IsValid(Version) {
		return "v0.0.0"
	}
	return semver.Canonical(Version)
}

// Compatible reports whether a remote version speaks the same payload
// format: major versions must match, and below v1 the minor version too.
func Compatible(local, remote string) error {
	if !semver.IsValid(local) || !semver.IsValid(remote) {
		return fmt.Errorf("version: cannot compare %q with %q", local, remote)
	}
	if semver.Major(local) != semver.Major(remote) {
		return fmt.Errorf("version: %s is incompatible with %s", remote, local)
	}
	if semver.Major(local) == "v0" && semver.MajorMinor(local) != semver.MajorMinor(remote) {
		return fmt.Errorf("version: %s is incompatible with %s", remote, local)
	}
	return nil
}
