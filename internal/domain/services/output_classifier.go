package services

import (
	"strings"

	"github.com/ochairo/pluginverify/internal/domain/entities"
)

// ClassifyOutput returns the first fatal level, in declaration order, whose marker
// appears anywhere in the verifier output. Position in the text does not matter.
func ClassifyOutput(output string, fatal entities.FailureLevelSet) *entities.FailureLevel {
	for _, level := range entities.AllFailureLevels() {
		if !fatal.Contains(level) {
			continue
		}
		if strings.Contains(output, level.Marker()) {
			matched := level
			return &matched
		}
	}
	return nil
}

// MatchedLevels returns every level whose marker is present, fatal or not, in declaration order
func MatchedLevels(output string) []entities.FailureLevel {
	var matched []entities.FailureLevel
	for _, level := range entities.AllFailureLevels() {
		if strings.Contains(output, level.Marker()) {
			matched = append(matched, level)
		}
	}
	return matched
}
