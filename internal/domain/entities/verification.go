package entities

import "time"

// Subsystem filters accepted by the verifier
const (
	SubsystemsAll            = "all"
	SubsystemsAndroidOnly    = "android-only"
	SubsystemsWithoutAndroid = "without-android"
)

// VerificationOptions are the verifier CLI switches derived from configuration
type VerificationOptions struct {
	ReportsDir        string
	RuntimeDir        string
	ExternalPrefixes  []string
	TeamCityOutput    bool
	SubsystemsToCheck string
	Offline           bool
	FailureLevels     FailureLevelSet
}

// VerificationRequest aggregates every resolved input of a single verifier run
type VerificationRequest struct {
	PluginArtifactPath     string
	ResolvedIdeDirectories []string
	LocalIdePaths          []string
	VerifierPath           string
	Java                   string
	Runtime                RuntimeSpec
	Options                VerificationOptions
	Timeout                time.Duration
}

// VerificationResult is the outcome of a verifier run. ReportedLevels lists every level
// found in the output, fatal or not.
type VerificationResult struct {
	RunID          string
	Passed         bool
	MatchedLevel   *FailureLevel
	ReportedLevels []FailureLevel
	Output         string
	ExitCode       int
	Ides           []ResolvedArtifact
	VerifierPath   string
	Runtime        RuntimeSpec
	ReportsDir     string
	Duration       time.Duration
}
