package gateways

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/ochairo/pluginverify/internal/domain-adapters/cache"
	domainerrors "github.com/ochairo/pluginverify/internal/domain/errors"
	"github.com/ochairo/pluginverify/internal/domain/interfaces"
	"github.com/ochairo/pluginverify/internal/domain/interfaces/gateways"
	"github.com/ochairo/pluginverify/internal/domain/services"
)

// JbrResolverConfig contains the settings of JetBrains Runtime downloads
type JbrResolverConfig struct {
	Repository string
	Offline    bool
	GOOS       string
	GOARCH     string
}

// JbrResolver downloads JetBrains Runtime distributions by version string
type JbrResolver struct {
	downloader *Downloader
	extractor  ArchiveExtractor
	cache      *cache.Cache
	repository string
	offline    bool
	goos       string
	goarch     string
	logger     interfaces.Logger
}

var _ gateways.JbrResolver = (*JbrResolver)(nil)

// NewJbrResolver creates a new JBR resolver. Runtimes are cached in store, one directory per
// distribution name.
func NewJbrResolver(
	downloader *Downloader,
	extractor ArchiveExtractor,
	store *cache.Cache,
	config JbrResolverConfig,
	logger interfaces.Logger,
) *JbrResolver {
	goos, goarch := config.GOOS, config.GOARCH
	if goos == "" {
		goos = runtime.GOOS
	}
	if goarch == "" {
		goarch = runtime.GOARCH
	}
	return &JbrResolver{
		downloader: downloader,
		extractor:  extractor,
		cache:      store,
		repository: strings.TrimRight(config.Repository, "/"),
		offline:    config.Offline,
		goos:       goos,
		goarch:     goarch,
		logger:     interfaces.OrNoOp(logger),
	}
}

// Resolve returns the java home of the JBR identified by version
func (r *JbrResolver) Resolve(ctx context.Context, version string) (string, error) {
	artifact, err := services.ParseJbrVersion(version)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domainerrors.ErrInvalidInput, err)
	}
	name := artifact.Name(r.goos, r.goarch)

	if dir, ok := r.cache.Lookup(name); ok {
		return r.javaHome(dir), nil
	}
	if r.offline {
		return "", fmt.Errorf("%w: JBR %s is not available locally", domainerrors.ErrOffline, name)
	}

	unlock, err := r.cache.Lock(ctx, name)
	if err != nil {
		return "", err
	}
	defer unlock()

	if dir, ok := r.cache.Lookup(name); ok {
		return r.javaHome(dir), nil
	}

	dir, err := r.download(ctx, name, r.repository+"/"+artifact.ArchiveName(r.goos, r.goarch))
	if err != nil {
		return "", fmt.Errorf("%w: cannot resolve JBR %s: %w", domainerrors.ErrResolution, version, err)
	}

	r.logger.Info("Resolved JBR", interfaces.F("version", version), interfaces.F("path", dir))
	return r.javaHome(dir), nil
}

func (r *JbrResolver) download(ctx context.Context, name, archiveURL string) (string, error) {
	fs := r.cache.FS()
	archive := r.cache.ArchivePath(name, ".tar.gz")
	staging := r.cache.StagingDir(name)

	defer func() {
		if err := fs.Remove(archive); err != nil && !errors.Is(err, os.ErrNotExist) {
			r.logger.Warn("Failed to remove JBR archive", interfaces.F("archive", archive), interfaces.F("error", err))
		}
	}()

	if _, err := r.downloader.DownloadFile(ctx, archiveURL, fs, archive); err != nil {
		return "", err
	}
	if err := r.extractor.Extract(fs, archive, staging); err != nil {
		_ = r.cache.Remove(name)
		return "", fmt.Errorf("extraction failed: %w", err)
	}
	dir, err := r.cache.Store(name, staging)
	if err != nil {
		_ = r.cache.Remove(name)
		return "", err
	}
	return dir, nil
}

// javaHome returns the platform java home inside an extracted JBR, or dir itself
// for archives without the usual jbr/ root
func (r *JbrResolver) javaHome(dir string) string {
	home := filepath.Join(dir, filepath.FromSlash(services.JavaHomeSubpath(r.goos)))
	if info, err := os.Stat(home); err == nil && info.IsDir() {
		return home
	}
	return dir
}
