// Package repositories defines interfaces for data access layers.
package repositories

import "context"

// ArtifactCache stores extracted distributions under stable keys
type ArtifactCache interface {
	// Lookup returns the directory for key when a non-empty entry exists
	Lookup(key string) (string, bool)

	// Path returns where key would live, whether or not it exists
	Path(key string) string

	// Lock serializes work on key across processes; call the returned func to release
	Lock(ctx context.Context, key string) (func(), error)

	// Remove deletes key and any staging leftovers
	Remove(key string) error
}
