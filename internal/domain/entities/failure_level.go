package entities

import (
	"fmt"
	"strings"
)

// FailureLevel is a category of issue the verifier can report
type FailureLevel int

// Failure levels in declaration order. The order decides which level is reported
// when several markers are present in the verifier output.
const (
	CompatibilityWarnings FailureLevel = iota
	CompatibilityProblems
	DeprecatedAPIUsages
	ExperimentalAPIUsages
	InternalAPIUsages
	OverrideOnlyAPIUsages
	NonExtendableAPIUsages
	PluginStructureWarnings
	MissingDependencies
	InvalidPlugin
	NotDynamic
)

type failureLevelInfo struct {
	name   string
	marker string
}

var failureLevels = []failureLevelInfo{
	CompatibilityWarnings:   {"COMPATIBILITY_WARNINGS", "Compatibility warnings"},
	CompatibilityProblems:   {"COMPATIBILITY_PROBLEMS", "Compatibility problems"},
	DeprecatedAPIUsages:     {"DEPRECATED_API_USAGES", "Deprecated API usages"},
	ExperimentalAPIUsages:   {"EXPERIMENTAL_API_USAGES", "Experimental API usages"},
	InternalAPIUsages:       {"INTERNAL_API_USAGES", "Internal API usages"},
	OverrideOnlyAPIUsages:   {"OVERRIDE_ONLY_API_USAGES", "Override-only API usages"},
	NonExtendableAPIUsages:  {"NON_EXTENDABLE_API_USAGES", "Non-extendable API usages"},
	PluginStructureWarnings: {"PLUGIN_STRUCTURE_WARNINGS", "Plugin structure warnings"},
	MissingDependencies:     {"MISSING_DEPENDENCIES", "Missing dependencies"},
	InvalidPlugin:           {"INVALID_PLUGIN", "The following files specified for the verification are not valid plugins"},
	NotDynamic:              {"NOT_DYNAMIC", "Plugin cannot be loaded/unloaded without IDE restart"},
}

// AllFailureLevels returns every level in declaration order
func AllFailureLevels() []FailureLevel {
	levels := make([]FailureLevel, len(failureLevels))
	for i := range failureLevels {
		levels[i] = FailureLevel(i)
	}
	return levels
}

func (l FailureLevel) valid() bool {
	return l >= 0 && int(l) < len(failureLevels)
}

func (l FailureLevel) String() string {
	if !l.valid() {
		return fmt.Sprintf("FailureLevel(%d)", int(l))
	}
	return failureLevels[l].name
}

// Marker returns the literal text the verifier prints for this level
func (l FailureLevel) Marker() string {
	if !l.valid() {
		return ""
	}
	return failureLevels[l].marker
}

// ParseFailureLevel converts a level name such as "COMPATIBILITY_PROBLEMS" (case-insensitive)
func ParseFailureLevel(name string) (FailureLevel, error) {
	normalized := strings.ToUpper(strings.TrimSpace(name))
	normalized = strings.ReplaceAll(normalized, "-", "_")
	for i, info := range failureLevels {
		if info.name == normalized {
			return FailureLevel(i), nil
		}
	}
	return 0, fmt.Errorf("unknown failure level %q", name)
}

// ParseFailureLevels converts a list of names. "ALL" and "NONE" expand to every level and to no level.
func ParseFailureLevels(names []string) ([]FailureLevel, error) {
	seen := make(map[FailureLevel]bool)
	var levels []FailureLevel
	for _, name := range names {
		switch strings.ToUpper(strings.TrimSpace(name)) {
		case "":
			continue
		case "ALL":
			for _, l := range AllFailureLevels() {
				if !seen[l] {
					seen[l] = true
					levels = append(levels, l)
				}
			}
			continue
		case "NONE":
			seen = make(map[FailureLevel]bool)
			levels = nil
			continue
		}

		l, err := ParseFailureLevel(name)
		if err != nil {
			return nil, err
		}
		if !seen[l] {
			seen[l] = true
			levels = append(levels, l)
		}
	}
	return levels, nil
}

// FailureLevelSet is the subset of levels treated as fatal for a run
type FailureLevelSet map[FailureLevel]struct{}

// NewFailureLevelSet builds a set from a list of levels
func NewFailureLevelSet(levels ...FailureLevel) FailureLevelSet {
	set := make(FailureLevelSet, len(levels))
	for _, l := range levels {
		set[l] = struct{}{}
	}
	return set
}

// Contains reports whether level is fatal
func (s FailureLevelSet) Contains(level FailureLevel) bool {
	_, ok := s[level]
	return ok
}
