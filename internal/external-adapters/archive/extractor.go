// Package archive extracts tar distributions into a go-billy filesystem.
package archive

import (
	"archive/tar"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/ulikunitz/xz"

	"github.com/ochairo/pluginverify/internal/domain/interfaces"
)

// defaultMaxFileSize caps a single extracted file to guard against decompression bombs
const defaultMaxFileSize int64 = 4 << 30

// ErrUnsupportedFormat is returned for archive names without a known extension
var ErrUnsupportedFormat = errors.New("unsupported archive format")

// Extractor unpacks .tar.gz, .tgz and .tar.xz archives
type Extractor struct {
	maxFileSize int64
	logger      interfaces.Logger
}

// NewExtractor creates a new extractor
func NewExtractor(logger interfaces.Logger) *Extractor {
	return &Extractor{maxFileSize: defaultMaxFileSize, logger: interfaces.OrNoOp(logger)}
}

type symlinkEntry struct {
	target   string
	linkname string
}

// Extract unpacks archivePath into destDir. Both paths are relative to fs.
func (e *Extractor) Extract(fs billy.Filesystem, archivePath, destDir string) error {
	kind, err := compression(archivePath)
	if err != nil {
		return err
	}

	file, err := fs.Open(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	//nolint:errcheck // Defer close on read-only file
	defer file.Close()

	var stream io.Reader
	switch kind {
	case "gzip":
		gzr, err := gzip.NewReader(file)
		if err != nil {
			return fmt.Errorf("failed to create gzip reader: %w", err)
		}
		//nolint:errcheck // Defer close on gzip reader
		defer gzr.Close()
		stream = gzr
	case "xz":
		xzr, err := xz.NewReader(file)
		if err != nil {
			return fmt.Errorf("failed to create xz reader: %w", err)
		}
		stream = xzr
	}

	if err := fs.MkdirAll(destDir, 0750); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	tr := tar.NewReader(stream)
	var symlinks []symlinkEntry
	files := 0

	// First pass: files and directories
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("tar read error: %w", err)
		}

		target, err := safeJoin(destDir, header.Name)
		if err != nil {
			return err
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := fs.MkdirAll(target, 0750); err != nil {
				return fmt.Errorf("failed to create directory: %w", err)
			}

		case tar.TypeReg:
			if err := e.writeFile(fs, target, tr, header); err != nil {
				return err
			}
			files++

		case tar.TypeSymlink:
			symlinks = append(symlinks, symlinkEntry{target: target, linkname: header.Linkname})

		default:
			e.logger.Debug("Ignoring unsupported tar entry",
				interfaces.F("type", string(header.Typeflag)),
				interfaces.F("name", header.Name))
		}
	}

	// Second pass: symlinks, once their targets exist
	for _, link := range symlinks {
		if err := fs.MkdirAll(filepath.Dir(link.target), 0750); err != nil {
			return fmt.Errorf("failed to create directory for symlink: %w", err)
		}
		if err := fs.Symlink(link.linkname, link.target); err != nil {
			e.logger.Warn("Failed to create symlink",
				interfaces.F("link", link.target),
				interfaces.F("target", link.linkname),
				interfaces.F("error", err))
		}
	}

	e.logger.Debug("Extracted archive",
		interfaces.F("archive", archivePath),
		interfaces.F("destination", destDir),
		interfaces.F("files", files))
	return nil
}

// writeFile copies one entry to target. Entries above the size cap are rejected, not truncated.
func (e *Extractor) writeFile(fs billy.Filesystem, target string, r io.Reader, header *tar.Header) error {
	if header.Size > e.maxFileSize {
		return fmt.Errorf("%s exceeds the %d byte file size limit", header.Name, e.maxFileSize)
	}
	if err := fs.MkdirAll(filepath.Dir(target), 0750); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}

	mode := os.FileMode(header.Mode).Perm() //nolint:gosec // G115: tar header mode fits in FileMode
	if mode == 0 {
		mode = 0644
	}
	out, err := fs.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	written, err := io.Copy(out, io.LimitReader(r, e.maxFileSize+1))
	if err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}
	if written > e.maxFileSize {
		_ = fs.Remove(target)
		return fmt.Errorf("%s exceeds the %d byte file size limit", header.Name, e.maxFileSize)
	}
	return nil
}

// safeJoin joins name below dir and rejects entries escaping it
func safeJoin(dir, name string) (string, error) {
	target := filepath.Join(dir, name)
	rel, err := filepath.Rel(dir, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid file path in archive: %s", name)
	}
	return target, nil
}

func compression(name string) (string, error) {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		return "gzip", nil
	case strings.HasSuffix(lower, ".tar.xz"), strings.HasSuffix(lower, ".txz"):
		return "xz", nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}
}
