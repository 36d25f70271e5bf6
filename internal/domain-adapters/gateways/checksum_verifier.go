package gateways

import (
	"context"
	"crypto/sha1" //nolint:gosec // G505: Maven repositories still publish sha1 sidecars
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
	"strings"
)

// Checksum algorithms published as Maven sidecar files, strongest first
const (
	AlgorithmSHA256 = "sha256"
	AlgorithmSHA1   = "sha1"
)

// ChecksumAlgorithms lists the sidecar extensions tried after a download
func ChecksumAlgorithms() []string {
	return []string{AlgorithmSHA256, AlgorithmSHA1}
}

// checksumVerifier implements checksum verification using pure Go
type checksumVerifier struct{}

// NewChecksumVerifier creates a new checksum verifier
//
//nolint:revive // unexported-return: Intentionally returns concrete type for testability
func NewChecksumVerifier() *checksumVerifier {
	return &checksumVerifier{}
}

// VerifyChecksum compares filePath against expectedSum. expectedSum may carry a trailing
// file name, as in "<hex>  verifier-cli.jar".
func (v *checksumVerifier) VerifyChecksum(_ context.Context, filePath, algorithm, expectedSum string) error {
	fields := strings.Fields(expectedSum)
	if len(fields) == 0 {
		return fmt.Errorf("empty %s checksum", algorithm)
	}
	expected := strings.ToLower(fields[0])

	actualSum, err := v.CalculateChecksum(filePath, algorithm)
	if err != nil {
		return err
	}

	if actualSum != expected {
		return fmt.Errorf("%s checksum mismatch: expected %s, got %s", algorithm, expected, actualSum)
	}
	return nil
}

// CalculateChecksum returns the hex digest of a file
func (v *checksumVerifier) CalculateChecksum(filePath, algorithm string) (string, error) {
	var h hash.Hash
	switch algorithm {
	case AlgorithmSHA256:
		h = sha256.New()
	case AlgorithmSHA1:
		h = sha1.New() //nolint:gosec // G401: integrity check against a published sidecar
	default:
		return "", fmt.Errorf("unsupported checksum algorithm %q", algorithm)
	}

	//nolint:gosec // G304: File path is the artifact being verified
	f, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	//nolint:errcheck // Defer close on read-only file
	defer f.Close()

	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash file: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
