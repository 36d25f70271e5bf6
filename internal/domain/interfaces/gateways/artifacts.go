package gateways

import (
	"context"

	"github.com/ochairo/pluginverify/internal/domain/entities"
)

// ArtifactResolver resolves a Maven coordinate from a repository to a local file
type ArtifactResolver interface {
	ResolveArtifact(ctx context.Context, coordinate, repositoryURL string) (string, error)
}

// IdeResolver turns an IdeSpec into an IDE installation on disk
type IdeResolver interface {
	Resolve(ctx context.Context, spec entities.IdeSpec) (*entities.ResolvedArtifact, error)
}

// VerifierResolver locates the verifier executable artifact
type VerifierResolver interface {
	Resolve(ctx context.Context, spec entities.VerifierSpec, offline bool) (string, error)
}

// RuntimeResolver picks the Java runtime for the verifier
type RuntimeResolver interface {
	Resolve(ctx context.Context, req entities.RuntimeRequest) entities.RuntimeSpec
}

// JbrResolver resolves a JetBrains Runtime by version string
type JbrResolver interface {
	Resolve(ctx context.Context, version string) (string, error)
}

// CompilerResolver returns the classpath of the instrumentation compiler
type CompilerResolver interface {
	Classpath(ctx context.Context, req entities.CompilerRequest) ([]string, error)
}
