package gateways

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"

	"github.com/ochairo/pluginverify/internal/domain/entities"
	domainerrors "github.com/ochairo/pluginverify/internal/domain/errors"
	"github.com/ochairo/pluginverify/internal/domain/interfaces"
	"github.com/ochairo/pluginverify/internal/domain/interfaces/gateways"
)

const maxChecksumSize = 1024

// MavenResolverConfig contains the settings of the Maven resolver
type MavenResolverConfig struct {
	CacheDir string
	Offline  bool
}

// MavenResolver fetches single artifacts from Maven repositories into a local repository layout.
// Transitive dependencies are not resolved.
type MavenResolver struct {
	downloader *Downloader
	integrity  gateways.IntegrityGateway
	fs         billy.Filesystem
	cacheDir   string
	offline    bool
	logger     interfaces.Logger
}

var _ gateways.ArtifactResolver = (*MavenResolver)(nil)

// NewMavenResolver creates a new Maven resolver
func NewMavenResolver(
	downloader *Downloader,
	integrity gateways.IntegrityGateway,
	config MavenResolverConfig,
	logger interfaces.Logger,
) *MavenResolver {
	return &MavenResolver{
		downloader: downloader,
		integrity:  integrity,
		fs:         osfs.New(config.CacheDir),
		cacheDir:   config.CacheDir,
		offline:    config.Offline,
		logger:     interfaces.OrNoOp(logger),
	}
}

// ResolveArtifact returns the local path of coordinate, downloading it from repositoryURL when
// it is not cached yet
func (m *MavenResolver) ResolveArtifact(ctx context.Context, coordinate, repositoryURL string) (string, error) {
	c, err := entities.ParseCoordinate(coordinate)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domainerrors.ErrInvalidInput, err)
	}

	rel := c.RelativePath()
	local := filepath.Join(m.cacheDir, filepath.FromSlash(rel))
	if info, err := m.fs.Stat(rel); err == nil && !info.IsDir() {
		m.logger.Debug("Artifact already available", interfaces.F("coordinate", coordinate), interfaces.F("path", local))
		return local, nil
	}

	if m.offline {
		return "", fmt.Errorf("%w: %s is not available locally", domainerrors.ErrOffline, coordinate)
	}

	artifactURL := strings.TrimRight(repositoryURL, "/") + "/" + rel
	m.logger.Debug("Downloading artifact", interfaces.F("coordinate", coordinate), interfaces.F("url", artifactURL))

	if _, err := m.downloader.DownloadFile(ctx, artifactURL, m.fs, rel); err != nil {
		return "", fmt.Errorf("%w: cannot resolve %s from %s: %w", domainerrors.ErrResolution, coordinate, repositoryURL, err)
	}

	if err := m.verify(ctx, local, artifactURL); err != nil {
		if removeErr := m.fs.Remove(rel); removeErr != nil && !errors.Is(removeErr, os.ErrNotExist) {
			m.logger.Warn("Failed to remove rejected artifact", interfaces.F("path", local), interfaces.F("error", removeErr))
		}
		return "", fmt.Errorf("%w: %s failed verification: %w", domainerrors.ErrResolution, coordinate, err)
	}

	return local, nil
}

// verify checks the strongest published checksum, then the signature
func (m *MavenResolver) verify(ctx context.Context, local, artifactURL string) error {
	for _, algorithm := range ChecksumAlgorithms() {
		sum, err := m.downloader.Fetch(ctx, artifactURL+"."+algorithm, maxChecksumSize)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to fetch %s checksum: %w", algorithm, err)
		}
		if err := m.integrity.VerifyChecksum(ctx, local, algorithm, string(sum)); err != nil {
			return err
		}
		m.logger.Debug("Checksum verified", interfaces.F("algorithm", algorithm), interfaces.F("path", local))
		break
	}

	return m.integrity.VerifySignature(ctx, local, artifactURL+".asc")
}
