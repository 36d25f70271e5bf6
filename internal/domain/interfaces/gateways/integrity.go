// Package gateways defines interfaces for external service adapters.
package gateways

import "context"

// IntegrityGateway checks downloaded artifacts before they are handed out
type IntegrityGateway interface {
	// VerifyChecksum compares a file against a hex digest published next to it
	VerifyChecksum(ctx context.Context, filePath, algorithm, expectedSum string) error

	// VerifySignature checks a detached PGP signature published at sigURL
	VerifySignature(ctx context.Context, filePath, sigURL string) error
}
