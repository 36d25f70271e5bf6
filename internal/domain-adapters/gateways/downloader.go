// Package gateways implements the network, process and filesystem collaborators of the domain.
package gateways

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/ochairo/pluginverify/internal/domain/interfaces"
)

const userAgent = "pluginverify/1.0"

// ErrNotFound is returned by Fetch for a 404 response
var ErrNotFound = errors.New("not found")

// Downloader fetches artifacts over HTTP into a go-billy filesystem
type Downloader struct {
	httpClient  *http.Client
	probeClient *http.Client
	mirrorURL   string
	logger      interfaces.Logger
}

// NewDownloader creates a new downloader. An empty mirrorURL disables mirror rewriting.
// Requests carry no client timeout; callers bound them through the context.
func NewDownloader(mirrorURL string, logger interfaces.Logger) *Downloader {
	return NewDownloaderWithClient(&http.Client{}, mirrorURL, logger)
}

// NewDownloaderWithClient creates a downloader on top of client
func NewDownloaderWithClient(client *http.Client, mirrorURL string, logger interfaces.Logger) *Downloader {
	probe := *client
	probe.CheckRedirect = func(_ *http.Request, _ []*http.Request) error {
		return http.ErrUseLastResponse
	}

	return &Downloader{
		httpClient:  client,
		probeClient: &probe,
		mirrorURL:   strings.TrimRight(mirrorURL, "/"),
		logger:      interfaces.OrNoOp(logger),
	}
}

// ProbeRedirect requests rawURL without following redirects and returns the URL to download.
// A redirect target is rewritten through the mirror. A non-redirect success returns rawURL unchanged,
// and so does a transport failure. An error status fails the probe.
func (d *Downloader) ProbeRedirect(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := d.probeClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		d.logger.Info("Cannot resolve direct download URL", interfaces.F("url", rawURL), interfaces.F("error", err))
		return rawURL, nil
	}
	//nolint:errcheck // Defer close on HTTP response body
	defer resp.Body.Close()

	switch {
	case isRedirect(resp.StatusCode):
		location, err := resp.Location()
		if err != nil {
			return "", fmt.Errorf("redirect without usable location: %w", err)
		}
		target := d.RewriteMirror(location)
		d.logger.Debug("Resolved direct download URL", interfaces.F("url", rawURL), interfaces.F("target", target))
		return target, nil
	case resp.StatusCode >= http.StatusBadRequest:
		return "", fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	default:
		d.logger.Debug("Download URL has no redirection", interfaces.F("url", rawURL))
		return rawURL, nil
	}
}

// RewriteMirror maps target to "{mirror}/{host}{path}", keeping the query string
func (d *Downloader) RewriteMirror(target *url.URL) string {
	if d.mirrorURL == "" {
		return target.String()
	}
	rewritten := d.mirrorURL + "/" + target.Host + target.EscapedPath()
	if target.RawQuery != "" {
		rewritten += "?" + target.RawQuery
	}
	return rewritten
}

func isRedirect(status int) bool {
	switch status {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	}
	return false
}

// DownloadFile downloads rawURL to dest on fs. The body is written to a temporary file next to
// dest and renamed into place, so dest is either complete or absent.
func (d *Downloader) DownloadFile(ctx context.Context, rawURL string, fs billy.Filesystem, dest string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("HTTP request failed: %w", err)
	}
	//nolint:errcheck // Defer close on HTTP response body
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	dir := filepath.Dir(dest)
	if err := fs.MkdirAll(dir, 0750); err != nil {
		return 0, fmt.Errorf("failed to create destination directory: %w", err)
	}

	tmp, err := util.TempFile(fs, dir, "."+filepath.Base(dest)+"-")
	if err != nil {
		return 0, fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName := tmp.Name()

	written, err := io.Copy(tmp, resp.Body)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = fs.Remove(tmpName)
		return 0, fmt.Errorf("failed to write file: %w", err)
	}

	if err := fs.Rename(tmpName, dest); err != nil {
		_ = fs.Remove(tmpName)
		return 0, fmt.Errorf("failed to move download into place: %w", err)
	}

	d.logger.Info("Downloaded",
		interfaces.F("file", filepath.Base(dest)),
		interfaces.F("size", humanize.Bytes(uint64(written)))) //nolint:gosec // G115: written is never negative
	return written, nil
}

// Fetch reads a small document into memory, at most limit bytes
func (d *Downloader) Fetch(ctx context.Context, rawURL string, limit int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	//nolint:errcheck // Defer close on HTTP response body
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, rawURL)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return body, nil
}
