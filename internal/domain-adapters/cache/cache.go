// Package cache stores extracted IDE distributions on disk, one directory per "{type}-{version}" key.
package cache

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/gofrs/flock"

	"github.com/ochairo/pluginverify/internal/domain/interfaces"
	"github.com/ochairo/pluginverify/internal/domain/interfaces/repositories"
)

const lockRetryDelay = 250 * time.Millisecond

// Cache maps keys to directories below a root. A present, non-empty directory is a valid
// entry; nothing else is recorded.
type Cache struct {
	fs     billy.Filesystem
	root   string
	logger interfaces.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

var _ repositories.ArtifactCache = (*Cache)(nil)

// New creates a cache rooted at an OS directory
func New(root string, logger interfaces.Logger) *Cache {
	return NewWithFS(osfs.New(root), root, logger)
}

// NewWithFS creates a cache over fs. root is the OS path fs is mounted at and is used
// for the paths handed out and for lock files.
func NewWithFS(fs billy.Filesystem, root string, logger interfaces.Logger) *Cache {
	return &Cache{
		fs:     fs,
		root:   root,
		logger: interfaces.OrNoOp(logger),
		locks:  make(map[string]*sync.Mutex),
	}
}

// FS returns the filesystem entries live in
//
//nolint:ireturn // callers extract and download straight into the cache filesystem
func (c *Cache) FS() billy.Filesystem {
	return c.fs
}

// Path returns the OS path of key, whether or not it exists
func (c *Cache) Path(key string) string {
	return filepath.Join(c.root, key)
}

// StagingDir returns the cache-relative directory entries are assembled in before Store
func (c *Cache) StagingDir(key string) string {
	return "." + key + ".partial"
}

// ArchivePath returns the cache-relative path a downloaded archive for key is written to
func (c *Cache) ArchivePath(key, ext string) string {
	return key + ext
}

// Lookup returns the directory of key when it holds at least one entry
func (c *Cache) Lookup(key string) (string, bool) {
	entries, err := c.fs.ReadDir(key)
	if err != nil || len(entries) == 0 {
		return "", false
	}
	return c.Path(key), true
}

// Store moves a fully extracted staging directory into place under key
func (c *Cache) Store(key, staging string) (string, error) {
	if err := util.RemoveAll(c.fs, key); err != nil {
		return "", fmt.Errorf("failed to clear cache entry %s: %w", key, err)
	}
	if err := c.fs.Rename(staging, key); err != nil {
		return "", fmt.Errorf("failed to move %s into cache: %w", staging, err)
	}

	c.logger.Debug("Stored cache entry", interfaces.F("key", key), interfaces.F("path", c.Path(key)))
	return c.Path(key), nil
}

// Remove deletes key together with its staging directory
func (c *Cache) Remove(key string) error {
	for _, p := range []string{key, c.StagingDir(key)} {
		if err := util.RemoveAll(c.fs, p); err != nil {
			return fmt.Errorf("failed to remove %s: %w", p, err)
		}
	}
	return nil
}

// Lock serializes work on key, both between goroutines and between processes sharing the cache.
// The returned func releases the lock.
func (c *Cache) Lock(ctx context.Context, key string) (func(), error) {
	local := c.keyMutex(key)
	local.Lock()

	if err := os.MkdirAll(c.root, 0750); err != nil {
		local.Unlock()
		return nil, fmt.Errorf("failed to create cache root: %w", err)
	}

	fileLock := flock.New(filepath.Join(c.root, "."+key+".lock"))
	locked, err := fileLock.TryLockContext(ctx, lockRetryDelay)
	if err != nil || !locked {
		local.Unlock()
		if err == nil {
			err = ctx.Err()
		}
		return nil, fmt.Errorf("failed to lock cache entry %s: %w", key, err)
	}

	return func() {
		if err := fileLock.Unlock(); err != nil {
			c.logger.Warn("Failed to release cache lock", interfaces.F("key", key), interfaces.F("error", err))
		}
		local.Unlock()
	}, nil
}

func (c *Cache) keyMutex(key string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.locks[key]
	if !ok {
		m = &sync.Mutex{}
		c.locks[key] = m
	}
	return m
}

// Normalize flattens dir when its only entry is a directory: the wrapper's children move up
// one level and the wrapper is removed. dir is relative to fs.
func Normalize(fs billy.Filesystem, dir string) error {
	entries, err := fs.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", dir, err)
	}
	if len(entries) != 1 || !entries[0].IsDir() {
		return nil
	}

	// Rename first so a child named like the wrapper cannot collide with it.
	wrapper := path.Join(dir, ".wrapper-"+entries[0].Name())
	if err := fs.Rename(path.Join(dir, entries[0].Name()), wrapper); err != nil {
		return fmt.Errorf("failed to move wrapper directory: %w", err)
	}

	children, err := fs.ReadDir(wrapper)
	if err != nil {
		return fmt.Errorf("failed to read wrapper directory: %w", err)
	}
	for _, child := range children {
		if err := fs.Rename(path.Join(wrapper, child.Name()), path.Join(dir, child.Name())); err != nil {
			return fmt.Errorf("failed to hoist %s: %w", child.Name(), err)
		}
	}

	if err := util.RemoveAll(fs, wrapper); err != nil {
		return fmt.Errorf("failed to remove wrapper directory: %w", err)
	}
	return nil
}
