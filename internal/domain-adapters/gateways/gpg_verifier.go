package gateways

import (
	"context"
	"fmt"
	"sync"

	"github.com/ochairo/pluginverify/internal/domain/interfaces"
	"github.com/ochairo/pluginverify/internal/domain/interfaces/gateways"
	"github.com/ochairo/pluginverify/internal/external-adapters/gpg"
)

// integrityVerifier combines sidecar checksums with optional PGP signatures.
// Without a keyring every signature check passes.
type integrityVerifier struct {
	checksums  *checksumVerifier
	signatures *gpg.Verifier
	keyring    string
	logger     interfaces.Logger

	loadOnce sync.Once
	loadErr  error
}

var _ gateways.IntegrityGateway = (*integrityVerifier)(nil)

// NewIntegrityVerifier creates the integrity gateway used by the Maven resolver.
// keyring is a file path or URL; it is imported on the first signature check, so
// cached or explicit artifacts never cause a keyring download. signatures may be nil
// when keyring is empty.
//
//nolint:revive // unexported-return: Intentionally returns concrete type for testability
func NewIntegrityVerifier(signatures *gpg.Verifier, keyring string, logger interfaces.Logger) *integrityVerifier {
	return &integrityVerifier{
		checksums:  NewChecksumVerifier(),
		signatures: signatures,
		keyring:    keyring,
		logger:     interfaces.OrNoOp(logger),
	}
}

// VerifyChecksum compares a file against a published digest
func (g *integrityVerifier) VerifyChecksum(ctx context.Context, filePath, algorithm, expectedSum string) error {
	return g.checksums.VerifyChecksum(ctx, filePath, algorithm, expectedSum)
}

// VerifySignature checks the detached signature at sigURL when a keyring is configured
func (g *integrityVerifier) VerifySignature(ctx context.Context, filePath, sigURL string) error {
	if g.signatures == nil || g.keyring == "" {
		return nil
	}
	if err := g.loadKeyring(ctx); err != nil {
		return err
	}
	if err := g.signatures.VerifySignature(ctx, filePath, sigURL); err != nil {
		return fmt.Errorf("GPG signature verification failed: %w", err)
	}
	g.logger.Debug("Signature verified", interfaces.F("file", filePath))
	return nil
}

func (g *integrityVerifier) loadKeyring(ctx context.Context) error {
	g.loadOnce.Do(func() {
		if err := g.signatures.ImportKeyring(ctx, g.keyring); err != nil {
			g.loadErr = fmt.Errorf("failed to import verifier keyring: %w", err)
			return
		}
		g.logger.Debug("Imported verifier keyring", interfaces.F("keys", g.signatures.KeyringSize()))
	})
	return g.loadErr
}
