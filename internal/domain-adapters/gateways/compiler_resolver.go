package gateways

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ochairo/pluginverify/internal/domain/entities"
	domainerrors "github.com/ochairo/pluginverify/internal/domain/errors"
	"github.com/ochairo/pluginverify/internal/domain/interfaces"
	"github.com/ochairo/pluginverify/internal/domain/interfaces/gateways"
	"github.com/ochairo/pluginverify/internal/domain/services"
)

// Repositories that host the compiler's third-party dependencies
const (
	AsmRepositoryURL   = "https://cache-redirector.jetbrains.com/intellij-dependencies"
	FormsRepositoryURL = "https://cache-redirector.jetbrains.com/repo1.maven.org/maven2"
)

const compilerCoordinate = "com.jetbrains.intellij.java:java-compiler-ant-tasks:%s"

// Jars of an IDE's lib directory that a local javac2 needs next to it
var localCompilerJars = []string{
	"jdom.jar",
	"asm-all.jar",
	"asm-all-*.jar",
	"jgoodies-forms.jar",
	"forms-*.jar",
}

// CompilerResolver finds the javac2 instrumentation compiler, either next to an IDE or in Maven repositories
type CompilerResolver struct {
	artifacts gateways.ArtifactResolver
	logger    interfaces.Logger
}

var _ gateways.CompilerResolver = (*CompilerResolver)(nil)

// NewCompilerResolver creates a new compiler resolver
func NewCompilerResolver(artifacts gateways.ArtifactResolver, logger interfaces.Logger) *CompilerResolver {
	return &CompilerResolver{
		artifacts: artifacts,
		logger:    interfaces.OrNoOp(logger),
	}
}

// Classpath returns the compiler classpath. An existing req.Javac2 is combined with the IDE's
// lib jars; otherwise java-compiler-ant-tasks is fetched from the first repository that has it.
func (r *CompilerResolver) Classpath(ctx context.Context, req entities.CompilerRequest) ([]string, error) {
	if req.Javac2 != "" {
		if info, err := os.Stat(req.Javac2); err == nil && !info.IsDir() {
			return r.localClasspath(req.IdeDir, req.Javac2)
		}
		r.logger.Warn("javac2 not found, falling back to Maven", interfaces.F("javac2", req.Javac2))
	}

	if req.Version == "" {
		return nil, fmt.Errorf("%w: compiler version is required without a local javac2", domainerrors.ErrInvalidInput)
	}
	return r.mavenClasspath(ctx, req)
}

func (r *CompilerResolver) localClasspath(ideDir, javac2 string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(ideDir, "lib"))
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to list IDE libraries: %w", err)
	}

	var classpath []string
	for _, entry := range entries {
		if entry.IsDir() || !isCompilerJar(entry.Name()) {
			continue
		}
		classpath = append(classpath, filepath.Join(ideDir, "lib", entry.Name()))
	}
	return append(classpath, javac2), nil
}

func isCompilerJar(name string) bool {
	for _, pattern := range localCompilerJars {
		if ok, _ := filepath.Match(pattern, name); ok {
			return true
		}
	}
	return false
}

func (r *CompilerResolver) mavenClasspath(ctx context.Context, req entities.CompilerRequest) ([]string, error) {
	intellijRepository := req.IntellijRepository
	if intellijRepository == "" {
		intellijRepository = entities.DefaultIntellijRepository
	}
	coordinate := fmt.Sprintf(compilerCoordinate, req.Version)

	repositories := []string{
		strings.TrimRight(intellijRepository, "/") + "/" + services.ReleaseType(req.Version),
		AsmRepositoryURL,
		FormsRepositoryURL,
	}

	candidates := make([]services.Candidate[string], 0, len(repositories))
	for _, repository := range repositories {
		repository := repository
		candidates = append(candidates, services.Candidate[string]{
			Name: repository,
			Try: func(ctx context.Context) (string, error) {
				return r.artifacts.ResolveArtifact(ctx, coordinate, repository)
			},
		})
	}

	jar, attempts, err := services.FirstSuccess(ctx, candidates)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot resolve %s (tried %s): %w",
			domainerrors.ErrResolution, coordinate, strings.Join(services.AttemptedNames(attempts), ", "), err)
	}

	r.logger.Info("Resolved instrumentation compiler", interfaces.F("coordinate", coordinate), interfaces.F("path", jar))
	return []string{jar}, nil
}
