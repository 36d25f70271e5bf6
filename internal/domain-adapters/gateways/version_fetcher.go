package gateways

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/ochairo/pluginverify/internal/domain/interfaces"
	"github.com/ochairo/pluginverify/internal/external-adapters/xml"
)

// maxMetadataSize bounds maven-metadata.xml responses
const maxMetadataSize = 1 << 20

// VersionFetcher looks up the latest published version from Maven metadata
type VersionFetcher struct {
	httpClient *http.Client
	parser     *xml.MetadataParser
	logger     interfaces.Logger
}

// NewVersionFetcher creates a new version fetcher
func NewVersionFetcher(client *http.Client, logger interfaces.Logger) *VersionFetcher {
	if client == nil {
		client = &http.Client{}
	}
	return &VersionFetcher{
		httpClient: client,
		parser:     xml.NewMetadataParser(),
		logger:     interfaces.OrNoOp(logger),
	}
}

// FetchLatestVersion downloads the metadata document at metadataURL and returns its latest version
func (vf *VersionFetcher) FetchLatestVersion(ctx context.Context, metadataURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, metadataURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := vf.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}
	//nolint:errcheck // Defer close
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	metadata, err := vf.parser.Parse(io.LimitReader(resp.Body, maxMetadataSize))
	if err != nil {
		return "", err
	}

	version, err := metadata.LatestVersion()
	if err != nil {
		return "", err
	}

	vf.logger.Debug("Resolved latest version", interfaces.F("url", metadataURL), interfaces.F("version", version))
	return version, nil
}
