package services

import (
	"regexp"
	"strings"
)

// Repository flavours of the IntelliJ artifact repository
const (
	ReleaseTypeReleases  = "releases"
	ReleaseTypeSnapshots = "snapshots"
	ReleaseTypeNightly   = "nightly"
)

var majorSnapshotPattern = regexp.MustCompile(`^(RIDER-|GO-)?\d{4}\.\d-SNAPSHOT$`)

// ReleaseType maps an IDE version to the repository flavour that publishes it
func ReleaseType(version string) string {
	switch {
	case strings.HasSuffix(version, "-EAP-SNAPSHOT"),
		strings.HasSuffix(version, "-EAP-CANDIDATE-SNAPSHOT"),
		strings.HasSuffix(version, "-CUSTOM-SNAPSHOT"),
		majorSnapshotPattern.MatchString(version):
		return ReleaseTypeSnapshots
	case strings.HasSuffix(version, "-SNAPSHOT"):
		return ReleaseTypeNightly
	default:
		return ReleaseTypeReleases
	}
}
