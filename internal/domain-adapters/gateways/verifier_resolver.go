package gateways

import (
	"context"
	"os"

	"github.com/ochairo/pluginverify/internal/domain/entities"
	domainerrors "github.com/ochairo/pluginverify/internal/domain/errors"
	"github.com/ochairo/pluginverify/internal/domain/interfaces"
	"github.com/ochairo/pluginverify/internal/domain/interfaces/gateways"
	"github.com/ochairo/pluginverify/internal/domain/services"
)

// VerifierResolver locates the verifier-cli jar, downloading it when needed
type VerifierResolver struct {
	fetcher   *VersionFetcher
	artifacts gateways.ArtifactResolver
	endpoints entities.Endpoints
	logger    interfaces.Logger
}

var _ gateways.VerifierResolver = (*VerifierResolver)(nil)

// NewVerifierResolver creates a new verifier resolver
func NewVerifierResolver(
	fetcher *VersionFetcher,
	artifacts gateways.ArtifactResolver,
	endpoints entities.Endpoints,
	logger interfaces.Logger,
) *VerifierResolver {
	return &VerifierResolver{
		fetcher:   fetcher,
		artifacts: artifacts,
		endpoints: endpoints,
		logger:    interfaces.OrNoOp(logger),
	}
}

// Resolve returns the path of the verifier jar. An existing explicit path is returned as is
// and nothing is downloaded.
func (r *VerifierResolver) Resolve(ctx context.Context, spec entities.VerifierSpec, offline bool) (string, error) {
	if spec.ExplicitPath != "" {
		if info, err := os.Stat(spec.ExplicitPath); err == nil && !info.IsDir() {
			r.logger.Debug("Using provided plugin verifier", interfaces.F("path", spec.ExplicitPath))
			return spec.ExplicitPath, nil
		}
		r.logger.Warn("Provided plugin verifier path does not exist, downloading instead",
			interfaces.F("path", spec.ExplicitPath),
			interfaces.F("version", spec.Version))
	}

	if offline {
		return "", &domainerrors.OfflineVerifierError{}
	}

	version, err := r.ResolveVersion(ctx, spec)
	if err != nil {
		return "", err
	}

	repository := services.VerifierRepository(version, r.endpoints)
	path, err := r.artifacts.ResolveArtifact(ctx, services.VerifierCoordinate(version), repository)
	if err != nil {
		return "", &domainerrors.VerifierResolutionError{Version: version, Err: err}
	}

	r.logger.Info("Resolved plugin verifier", interfaces.F("version", version), interfaces.F("path", path))
	return path, nil
}

// ResolveVersion returns the requested version, looking up the latest release for "latest"
func (r *VerifierResolver) ResolveVersion(ctx context.Context, spec entities.VerifierSpec) (string, error) {
	if !spec.WantsLatest() {
		return spec.Version, nil
	}

	version, err := r.fetcher.FetchLatestVersion(ctx, r.endpoints.VerifierMetadataURL)
	if err != nil {
		return "", &domainerrors.VerifierResolutionError{Err: err}
	}
	return version, nil
}
