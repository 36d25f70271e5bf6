package gateways

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/ochairo/pluginverify/internal/domain-adapters/cache"
	"github.com/ochairo/pluginverify/internal/domain/entities"
	domainerrors "github.com/ochairo/pluginverify/internal/domain/errors"
	"github.com/ochairo/pluginverify/internal/domain/interfaces"
	"github.com/ochairo/pluginverify/internal/domain/services"
)

const ideArchiveExt = ".tar.gz"

// ArchiveExtractor unpacks an archive inside a filesystem
type ArchiveExtractor interface {
	Extract(fs billy.Filesystem, archivePath, destDir string) error
}

// IdeResolverConfig contains the settings of IDE downloads
type IdeResolverConfig struct {
	DownloadURL string
	Offline     bool
}

// IdeResolver downloads IDE distributions, trying every release channel in turn
type IdeResolver struct {
	downloader  *Downloader
	extractor   ArchiveExtractor
	cache       *cache.Cache
	downloadURL string
	offline     bool
	logger      interfaces.Logger
}

// NewIdeResolver creates a new IDE resolver
func NewIdeResolver(
	downloader *Downloader,
	extractor ArchiveExtractor,
	store *cache.Cache,
	config IdeResolverConfig,
	logger interfaces.Logger,
) *IdeResolver {
	downloadURL := config.DownloadURL
	if downloadURL == "" {
		downloadURL = entities.DefaultIdeDownloadURL
	}
	return &IdeResolver{
		downloader:  downloader,
		extractor:   extractor,
		cache:       store,
		downloadURL: downloadURL,
		offline:     config.Offline,
		logger:      interfaces.OrNoOp(logger),
	}
}

// Resolve returns the directory of spec, downloading it when the cache has no entry
func (r *IdeResolver) Resolve(ctx context.Context, spec entities.IdeSpec) (*entities.ResolvedArtifact, error) {
	key := spec.Key()
	log := r.logger.With(interfaces.F("ide", key))

	if dir, ok := r.cache.Lookup(key); ok {
		log.Debug("IDE already available", interfaces.F("path", dir))
		return &entities.ResolvedArtifact{Spec: spec, Directory: dir, Cached: true}, nil
	}
	if r.offline {
		return nil, &domainerrors.OfflineDownloadError{Spec: key}
	}

	unlock, err := r.cache.Lock(ctx, key)
	if err != nil {
		return nil, err
	}
	defer unlock()

	// Another worker may have finished while we waited for the lock.
	if dir, ok := r.cache.Lookup(key); ok {
		return &entities.ResolvedArtifact{Spec: spec, Directory: dir, Cached: true}, nil
	}

	channels := entities.Channels()
	candidates := make([]services.Candidate[*entities.ResolvedArtifact], 0, len(channels))
	for _, channel := range channels {
		channel := channel
		candidates = append(candidates, services.Candidate[*entities.ResolvedArtifact]{
			Name: string(channel),
			Try: func(ctx context.Context) (*entities.ResolvedArtifact, error) {
				return r.downloadChannel(ctx, spec, channel, log)
			},
		})
	}

	artifact, attempts, err := services.FirstSuccess(ctx, candidates)
	if err != nil {
		if removeErr := r.cache.Remove(key); removeErr != nil {
			log.Warn("Failed to clean up partial IDE", interfaces.F("error", removeErr))
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &domainerrors.IdeResolutionError{
			Spec:     key,
			Channels: services.AttemptedNames(attempts),
			Err:      err,
		}
	}

	log.Info("Resolved IDE", interfaces.F("path", artifact.Directory), interfaces.F("channel", artifact.Channel))
	return artifact, nil
}

func (r *IdeResolver) downloadChannel(
	ctx context.Context,
	spec entities.IdeSpec,
	channel entities.Channel,
	log interfaces.Logger,
) (*entities.ResolvedArtifact, error) {
	key := spec.Key()
	fs := r.cache.FS()
	archive := r.cache.ArchivePath(key, ideArchiveExt)
	staging := r.cache.StagingDir(key)

	defer func() {
		if err := fs.Remove(archive); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Warn("Failed to remove IDE archive", interfaces.F("archive", archive), interfaces.F("error", err))
		}
	}()

	fail := func(err error) (*entities.ResolvedArtifact, error) {
		_ = util.RemoveAll(fs, staging)
		log.Debug("Cannot download IDE from channel, trying another channel",
			interfaces.F("channel", channel), interfaces.F("error", err))
		return nil, err
	}

	metadataURL, err := r.ChannelURL(spec, channel)
	if err != nil {
		return nil, err
	}
	log.Debug("Downloading IDE", interfaces.F("channel", channel), interfaces.F("url", metadataURL))

	target, err := r.downloader.ProbeRedirect(ctx, metadataURL)
	if err != nil {
		return fail(err)
	}
	if _, err := r.downloader.DownloadFile(ctx, target, fs, archive); err != nil {
		return fail(err)
	}

	if err := util.RemoveAll(fs, staging); err != nil {
		return fail(err)
	}
	if err := r.extractor.Extract(fs, archive, staging); err != nil {
		return fail(fmt.Errorf("extraction failed: %w", err))
	}
	if err := cache.Normalize(fs, staging); err != nil {
		return fail(err)
	}

	dir, err := r.cache.Store(key, staging)
	if err != nil {
		return fail(err)
	}
	return &entities.ResolvedArtifact{Spec: spec, Directory: dir, Channel: channel}, nil
}

// ChannelURL builds the download service URL of spec on channel
func (r *IdeResolver) ChannelURL(spec entities.IdeSpec, channel entities.Channel) (string, error) {
	u, err := url.Parse(r.downloadURL)
	if err != nil {
		return "", fmt.Errorf("invalid IDE download URL %q: %w", r.downloadURL, err)
	}
	q := u.Query()
	q.Set("code", string(spec.Type))
	q.Set("platform", "linux")
	q.Set("type", string(channel))
	q.Set(services.VersionQueryParam(spec.Version), spec.Version)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
