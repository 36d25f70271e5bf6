// Package services contains the pure decision logic of artifact resolution and verification.
package services

import (
	"regexp"
	"strings"

	"github.com/ochairo/pluginverify/internal/domain/entities"
	domainerrors "github.com/ochairo/pluginverify/internal/domain/errors"
)

var buildNumberPattern = regexp.MustCompile(`^\d{3}(\.\d+)+$`)

// ParseIdeSpec parses identifiers such as "IC-2020.2", "2020.2" or "203.1234.56".
// Without a known product prefix the whole input is the version and the type is IC.
func ParseIdeSpec(raw string) (entities.IdeSpec, error) {
	trimmed := strings.TrimSpace(raw)

	spec := entities.IdeSpec{Type: entities.DefaultProductCode, Version: trimmed}
	if code, version, found := strings.Cut(trimmed, "-"); found && entities.IsKnownProductCode(code) {
		spec = entities.IdeSpec{Type: entities.ProductCode(code), Version: version}
	}

	if spec.Version == "" {
		return entities.IdeSpec{}, &domainerrors.InvalidVersionSpecError{Raw: raw}
	}
	return spec, nil
}

// ParseIdeSpecs parses every identifier, failing on the first invalid one
func ParseIdeSpecs(raws []string) ([]entities.IdeSpec, error) {
	specs := make([]entities.IdeSpec, 0, len(raws))
	for _, raw := range raws {
		spec, err := ParseIdeSpec(raw)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// IsBuildNumber reports whether version is a build number like "203.1234.56"
// rather than a marketing version like "2020.2"
func IsBuildNumber(version string) bool {
	return buildNumberPattern.MatchString(version)
}

// VersionQueryParam returns the download service parameter name for version
func VersionQueryParam(version string) string {
	if IsBuildNumber(version) {
		return "build"
	}
	return "version"
}
