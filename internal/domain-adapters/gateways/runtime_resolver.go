package gateways

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/ochairo/pluginverify/internal/domain/entities"
	"github.com/ochairo/pluginverify/internal/domain/interfaces"
	"github.com/ochairo/pluginverify/internal/domain/interfaces/gateways"
	"github.com/ochairo/pluginverify/internal/domain/services"
	"github.com/ochairo/pluginverify/internal/external-adapters/properties"
)

// RuntimeResolver picks the Java runtime the verifier checks against
type RuntimeResolver struct {
	jbr      gateways.JbrResolver
	goos     string
	hostHome func() string
	logger   interfaces.Logger
}

var _ gateways.RuntimeResolver = (*RuntimeResolver)(nil)

// NewRuntimeResolver creates a new runtime resolver. hostHome reports the host runtime and
// defaults to HostJavaHome.
func NewRuntimeResolver(jbr gateways.JbrResolver, hostHome func() string, logger interfaces.Logger) *RuntimeResolver {
	if hostHome == nil {
		hostHome = HostJavaHome
	}
	return &RuntimeResolver{
		jbr:      jbr,
		goos:     runtime.GOOS,
		hostHome: hostHome,
		logger:   interfaces.OrNoOp(logger),
	}
}

// Resolve walks the precedence chain: explicit directory, pinned JBR version, the runtime
// bundled with the first resolved IDE, then the host runtime. It never fails.
func (r *RuntimeResolver) Resolve(ctx context.Context, req entities.RuntimeRequest) entities.RuntimeSpec {
	spec, attempts, err := services.FirstSuccess(ctx, r.candidates(req))
	if err != nil {
		// Only a cancelled context gets here; the host candidate never fails.
		spec = entities.RuntimeSpec{JavaHome: r.hostHome(), Source: entities.RuntimeHost}
	}

	r.logger.Debug("Resolved runtime",
		interfaces.F("java_home", spec.JavaHome),
		interfaces.F("source", spec.Source),
		interfaces.F("tried", services.AttemptedNames(attempts)))
	return spec
}

func (r *RuntimeResolver) candidates(req entities.RuntimeRequest) []services.Candidate[entities.RuntimeSpec] {
	return []services.Candidate[entities.RuntimeSpec]{
		{Name: string(entities.RuntimeExplicitDir), Try: func(_ context.Context) (entities.RuntimeSpec, error) {
			if req.ExplicitDir == "" {
				return entities.RuntimeSpec{}, services.ErrSkip
			}
			return entities.RuntimeSpec{JavaHome: req.ExplicitDir, Source: entities.RuntimeExplicitDir}, nil
		}},
		{Name: string(entities.RuntimePinnedVersion), Try: func(ctx context.Context) (entities.RuntimeSpec, error) {
			if req.ExplicitVersion == "" {
				return entities.RuntimeSpec{}, services.ErrSkip
			}
			home, err := r.jbr.Resolve(ctx, req.ExplicitVersion)
			if err != nil {
				r.logger.Warn("Cannot resolve JBR, falling back to the bundled runtime",
					interfaces.F("version", req.ExplicitVersion), interfaces.F("error", err))
				return entities.RuntimeSpec{}, err
			}
			return entities.RuntimeSpec{JavaHome: home, Source: entities.RuntimePinnedVersion}, nil
		}},
		{Name: string(entities.RuntimeBundled), Try: func(ctx context.Context) (entities.RuntimeSpec, error) {
			if req.FirstResolvedIde == "" {
				return entities.RuntimeSpec{}, services.ErrSkip
			}
			home, err := r.bundledRuntime(ctx, req.FirstResolvedIde)
			if err != nil {
				r.logger.Warn("Cannot use the bundled runtime, falling back to the host runtime",
					interfaces.F("ide", req.FirstResolvedIde), interfaces.F("error", err))
				return entities.RuntimeSpec{}, err
			}
			return entities.RuntimeSpec{JavaHome: home, Source: entities.RuntimeBundled}, nil
		}},
		{Name: string(entities.RuntimeHost), Try: func(_ context.Context) (entities.RuntimeSpec, error) {
			return entities.RuntimeSpec{JavaHome: r.hostHome(), Source: entities.RuntimeHost}, nil
		}},
	}
}

// bundledRuntime resolves the JBR named in the IDE's dependencies.txt, then falls back to
// the runtime shipped inside the IDE itself
func (r *RuntimeResolver) bundledRuntime(ctx context.Context, ideDir string) (string, error) {
	if props, err := properties.Load(filepath.Join(ideDir, "dependencies.txt")); err == nil {
		if version, ok := props.Get("runtimeBuild", "jdkBuild"); ok {
			home, err := r.jbr.Resolve(ctx, version)
			if err == nil && isDir(home) {
				return home, nil
			}
			r.logger.Warn("Cannot resolve builtin JBR", interfaces.F("version", version), interfaces.F("error", err))
		}
	}

	inTree := filepath.Join(ideDir, filepath.FromSlash(services.JavaHomeSubpath(r.goos)))
	if isDir(inTree) {
		return inTree, nil
	}
	return "", fmt.Errorf("no bundled runtime in %s", ideDir)
}

// HostJavaHome returns JAVA_HOME, else the home of the java executable on PATH, else ""
func HostJavaHome() string {
	if home := os.Getenv("JAVA_HOME"); home != "" {
		return home
	}
	java, err := exec.LookPath("java")
	if err != nil {
		return ""
	}
	if resolved, err := filepath.EvalSymlinks(java); err == nil {
		java = resolved
	}
	return filepath.Dir(filepath.Dir(java))
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
