// Package entities defines core domain models and data structures.
package entities

// ResolvedArtifact is an IDE distribution that is present on disk
type ResolvedArtifact struct {
	Spec      IdeSpec
	Directory string
	Channel   Channel // empty when served from the cache
	Cached    bool
}
