// Package services defines interfaces for domain service contracts.
package services

import (
	"context"

	"github.com/ochairo/pluginverify/internal/domain/entities"
)

// VerificationService runs the full resolve-and-verify flow for a plugin artifact
type VerificationService interface {
	Verify(ctx context.Context, pluginArtifact string, cfg *entities.Config) (*entities.VerificationResult, error)
}
