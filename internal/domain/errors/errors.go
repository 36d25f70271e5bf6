// Package errors defines the failure taxonomy of artifact resolution and verification.
//
// Every error type unwraps to its underlying cause so that resolution failures surface
// verbatim, and matches its category sentinel through errors.Is.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Code is a stable, machine-readable error category
type Code string

// Error codes
const (
	CodeInvalidInput       Code = "INVALID_INPUT"
	CodeOffline            Code = "OFFLINE"
	CodeResolutionFailed   Code = "RESOLUTION_FAILED"
	CodeInvalidConfig      Code = "INVALID_CONFIGURATION"
	CodeVerificationFailed Code = "VERIFICATION_FAILED"
	CodeExecutionFailed    Code = "EXECUTION_FAILED"
	CodeUnknown            Code = "UNKNOWN"
)

// Category sentinels
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrOffline            = errors.New("offline mode")
	ErrResolution         = errors.New("resolution failed")
	ErrMisconfigured      = errors.New("misconfigured")
	ErrVerificationFailed = errors.New("verification failed")
	ErrProcess            = errors.New("process failed")
)

// InvalidVersionSpecError reports an IDE identifier without a usable version
type InvalidVersionSpecError struct {
	Raw string
}

func (e *InvalidVersionSpecError) Error() string {
	return fmt.Sprintf("invalid IDE version %q: version part is empty", e.Raw)
}

// Is matches ErrInvalidInput
func (e *InvalidVersionSpecError) Is(target error) bool { return target == ErrInvalidInput }

// Code returns CodeInvalidInput
func (e *InvalidVersionSpecError) Code() Code { return CodeInvalidInput }

// OfflineDownloadError reports an IDE that is not cached while network access is disallowed
type OfflineDownloadError struct {
	Spec string
}

func (e *OfflineDownloadError) Error() string {
	return fmt.Sprintf("cannot download IDE %s in offline mode: "+
		"provide pre-downloaded IDEs in the download directory or use local paths instead", e.Spec)
}

// Is matches ErrOffline
func (e *OfflineDownloadError) Is(target error) bool { return target == ErrOffline }

// Code returns CodeOffline
func (e *OfflineDownloadError) Code() Code { return CodeOffline }

// OfflineVerifierError reports that the verifier must be downloaded while offline
type OfflineVerifierError struct{}

func (e *OfflineVerifierError) Error() string {
	return "cannot resolve the plugin verifier in offline mode: provide a pre-downloaded verifier jar with the verifier path setting"
}

// Is matches ErrOffline
func (e *OfflineVerifierError) Is(target error) bool { return target == ErrOffline }

// Code returns CodeOffline
func (e *OfflineVerifierError) Code() Code { return CodeOffline }

// IdeResolutionError reports that every channel failed for an IDE
type IdeResolutionError struct {
	Spec     string
	Channels []string
	Err      error
}

func (e *IdeResolutionError) Error() string {
	msg := fmt.Sprintf("IDE %s cannot be downloaded (tried channels: %s); "+
		"verify the version against the products available for testing",
		e.Spec, strings.Join(e.Channels, ", "))
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the per-channel failures
func (e *IdeResolutionError) Unwrap() error { return e.Err }

// Is matches ErrResolution
func (e *IdeResolutionError) Is(target error) bool { return target == ErrResolution }

// Code returns CodeResolutionFailed
func (e *IdeResolutionError) Code() Code { return CodeResolutionFailed }

// VerifierResolutionError reports a failed verifier metadata or artifact fetch
type VerifierResolutionError struct {
	Version string
	Err     error
}

func (e *VerifierResolutionError) Error() string {
	if e.Version == "" {
		return fmt.Sprintf("cannot resolve plugin verifier: %v", e.Err)
	}
	return fmt.Sprintf("cannot resolve plugin verifier %s: %v", e.Version, e.Err)
}

// Unwrap returns the underlying failure
func (e *VerifierResolutionError) Unwrap() error { return e.Err }

// Is matches ErrResolution
func (e *VerifierResolutionError) Is(target error) bool { return target == ErrResolution }

// Code returns CodeResolutionFailed
func (e *VerifierResolutionError) Code() Code { return CodeResolutionFailed }

// MissingArtifactError reports a plugin artifact that does not exist
type MissingArtifactError struct {
	Path string
}

func (e *MissingArtifactError) Error() string {
	return fmt.Sprintf("plugin file does not exist: %s", e.Path)
}

// Is matches ErrMisconfigured
func (e *MissingArtifactError) Is(target error) bool { return target == ErrMisconfigured }

// Code returns CodeInvalidConfig
func (e *MissingArtifactError) Code() Code { return CodeInvalidConfig }

// NoTargetsError reports that neither IDE versions nor local IDE paths were configured
type NoTargetsError struct{}

func (e *NoTargetsError) Error() string {
	return "IDE versions and local paths should not both be empty"
}

// Is matches ErrMisconfigured
func (e *NoTargetsError) Is(target error) bool { return target == ErrMisconfigured }

// Code returns CodeInvalidConfig
func (e *NoTargetsError) Code() Code { return CodeInvalidConfig }

// VerificationFailedError reports a configured fatal failure level found in the verifier output
type VerificationFailedError struct {
	Level string
}

func (e *VerificationFailedError) Error() string {
	return e.Level
}

// Is matches ErrVerificationFailed
func (e *VerificationFailedError) Is(target error) bool { return target == ErrVerificationFailed }

// Code returns CodeVerificationFailed
func (e *VerificationFailedError) Code() Code { return CodeVerificationFailed }

// ProcessError reports a verifier process that crashed or exited non-zero
type ProcessError struct {
	ExitCode int
	Err      error
}

func (e *ProcessError) Error() string {
	return fmt.Sprintf("plugin verifier exited with code %d: %v", e.ExitCode, e.Err)
}

// Unwrap returns the process failure
func (e *ProcessError) Unwrap() error { return e.Err }

// Is matches ErrProcess
func (e *ProcessError) Is(target error) bool { return target == ErrProcess }

// Code returns CodeExecutionFailed
func (e *ProcessError) Code() Code { return CodeExecutionFailed }

// CodeOf returns the code of the first coded error in err's chain
func CodeOf(err error) Code {
	var coded interface{ Code() Code }
	if errors.As(err, &coded) {
		return coded.Code()
	}
	switch {
	case errors.Is(err, ErrInvalidInput):
		return CodeInvalidInput
	case errors.Is(err, ErrOffline):
		return CodeOffline
	case errors.Is(err, ErrMisconfigured):
		return CodeInvalidConfig
	}
	return CodeUnknown
}
