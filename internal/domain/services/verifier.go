package services

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/ochairo/pluginverify/internal/domain/entities"
)

// relocatedVerifierVersion is the first verifier release served from the new repository
var relocatedVerifierVersion = semver.MustParse("1.255")

// VerifierCoordinate returns the Maven coordinate of the verifier-cli fat jar
func VerifierCoordinate(version string) string {
	return fmt.Sprintf("org.jetbrains.intellij.plugins:verifier-cli:%s:all@jar", version)
}

// VerifierRepository picks the repository hosting version. Unparsable versions compare
// as lower than every release and map to the legacy repository.
func VerifierRepository(version string, endpoints entities.Endpoints) string {
	v, err := semver.NewVersion(version)
	if err != nil || v.LessThan(relocatedVerifierVersion) {
		return endpoints.LegacyRepository
	}
	return endpoints.VerifierRepository
}

// BuildVerifierOptions returns the option switches passed before the positional arguments
func BuildVerifierOptions(opts entities.VerificationOptions) []string {
	args := []string{
		"-verification-reports-dir", opts.ReportsDir,
		"-runtime-dir", opts.RuntimeDir,
	}

	if len(opts.ExternalPrefixes) > 0 {
		args = append(args, "-external-prefixes", strings.Join(opts.ExternalPrefixes, ":"))
	}
	if opts.TeamCityOutput {
		args = append(args, "-team-city")
	}
	if opts.SubsystemsToCheck != "" {
		args = append(args, "-subsystems-to-check", opts.SubsystemsToCheck)
	}
	if opts.Offline {
		args = append(args, "-offline")
	}
	return args
}

// BuildVerifierArgs assembles the full check-plugin command line:
// options, the plugin artifact, then resolved IDE directories and local IDE paths
func BuildVerifierArgs(req entities.VerificationRequest) []string {
	args := []string{"check-plugin"}
	args = append(args, BuildVerifierOptions(req.Options)...)
	args = append(args, req.PluginArtifactPath)
	args = append(args, req.ResolvedIdeDirectories...)
	args = append(args, req.LocalIdePaths...)
	return args
}
