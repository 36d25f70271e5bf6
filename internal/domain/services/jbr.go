package services

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

var jbrPrefixes = []string{"jbrsdk-", "jbr_jcef-", "jbr_dcevm-", "jbr_fd-", "jbrx-", "jbr-"}

var jcefDefaultBuild = semver.MustParse("1319.6")

// JbrArtifact identifies a JetBrains Runtime distribution
type JbrArtifact struct {
	Prefix string
	Major  string
	Build  string
}

// ParseJbrVersion splits identifiers such as "11_0_10b1145.77", "jbr_jcef-17.0.2b315.1" or "u202b1483.24".
// A leading "u" denotes Java 8. When no flavour prefix is given one is picked from the major version and build.
func ParseJbrVersion(version string) (JbrArtifact, error) {
	v := strings.TrimSpace(version)
	if strings.HasPrefix(v, "u") {
		v = "8" + v
	}

	var artifact JbrArtifact
	for _, prefix := range jbrPrefixes {
		if strings.HasPrefix(v, prefix) {
			artifact.Prefix = prefix
			v = strings.TrimPrefix(v, prefix)
			break
		}
	}

	if b := strings.LastIndex(v, "b"); b >= 0 {
		artifact.Major, artifact.Build = v[:b], v[b+1:]
	} else {
		artifact.Major = v
	}
	if artifact.Major == "" {
		return JbrArtifact{}, fmt.Errorf("invalid JBR version %q", version)
	}

	if artifact.Prefix == "" {
		artifact.Prefix = defaultJbrPrefix(artifact.Major, artifact.Build)
	}
	return artifact, nil
}

func defaultJbrPrefix(major, build string) string {
	switch {
	case strings.HasPrefix(major, "8"):
		return "jbrx-"
	case strings.HasPrefix(major, "17"):
		return "jbr_jcef-"
	}
	b, err := semver.NewVersion(build)
	if err != nil || b.LessThan(jcefDefaultBuild) {
		return "jbr-"
	}
	return "jbr_jcef-"
}

// Name returns the distribution name for a Go platform, e.g. "jbr-11_0_10-linux-x64-b1145.77"
func (a JbrArtifact) Name(goos, goarch string) string {
	name := fmt.Sprintf("%s%s-%s-%s", a.Prefix, a.Major, jbrPlatform(goos), jbrArch(goarch))
	if a.Build != "" {
		name += "-b" + a.Build
	}
	return name
}

// ArchiveName returns Name with the published archive extension
func (a JbrArtifact) ArchiveName(goos, goarch string) string {
	return a.Name(goos, goarch) + ".tar.gz"
}

func jbrPlatform(goos string) string {
	switch goos {
	case "darwin":
		return "osx"
	case "windows":
		return "windows"
	default:
		return "linux"
	}
}

func jbrArch(goarch string) string {
	switch goarch {
	case "arm64":
		return "aarch64"
	case "386":
		return "x86"
	default:
		return "x64"
	}
}

// JavaHomeSubpath returns where the java home lives inside an extracted JBR
func JavaHomeSubpath(goos string) string {
	if goos == "darwin" {
		return "jbr/Contents/Home"
	}
	return "jbr"
}
