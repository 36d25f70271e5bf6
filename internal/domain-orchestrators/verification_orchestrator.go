// Package orchestrators coordinates complex workflows across multiple domain services.
package orchestrators

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ochairo/pluginverify/internal/domain/entities"
	domainerrors "github.com/ochairo/pluginverify/internal/domain/errors"
	"github.com/ochairo/pluginverify/internal/domain/interfaces"
	"github.com/ochairo/pluginverify/internal/domain/interfaces/gateways"
	"github.com/ochairo/pluginverify/internal/domain/interfaces/services"
	domainservices "github.com/ochairo/pluginverify/internal/domain/services"
)

// VerificationOrchestrator coordinates the complete plugin verification workflow
type VerificationOrchestrator struct {
	ides     gateways.IdeResolver
	verifier gateways.VerifierResolver
	runtime  gateways.RuntimeResolver
	runner   gateways.ProcessRunner
	output   io.Writer
	logger   interfaces.Logger
}

var _ services.VerificationService = (*VerificationOrchestrator)(nil)

// VerificationOrchestratorConfig holds configuration for the orchestrator
type VerificationOrchestratorConfig struct {
	// Output receives the verifier output after the process exits. Defaults to stdout.
	Output io.Writer
}

// NewVerificationOrchestrator creates a new verification orchestrator
func NewVerificationOrchestrator(
	ides gateways.IdeResolver,
	verifier gateways.VerifierResolver,
	runtime gateways.RuntimeResolver,
	runner gateways.ProcessRunner,
	config VerificationOrchestratorConfig,
	logger interfaces.Logger,
) *VerificationOrchestrator {
	output := config.Output
	if output == nil {
		output = os.Stdout
	}

	return &VerificationOrchestrator{
		ides:     ides,
		verifier: verifier,
		runtime:  runtime,
		runner:   runner,
		output:   output,
		logger:   interfaces.OrNoOp(logger),
	}
}

// Verify resolves the verifier, the target IDEs and a runtime, runs the verifier against
// pluginArtifact and decides pass or fail from its output. The result is returned together
// with VerificationFailedError and ProcessError so callers can inspect the output.
func (o *VerificationOrchestrator) Verify(ctx context.Context, pluginArtifact string, cfg *entities.Config) (*entities.VerificationResult, error) {
	startTime := time.Now()
	result := &entities.VerificationResult{RunID: uuid.NewString(), ReportsDir: cfg.ReportsDir}
	logger := o.logger.With(interfaces.F("run_id", result.RunID))

	// Step 1: Validate inputs before any network or process work
	if info, err := os.Stat(pluginArtifact); err != nil || info.IsDir() {
		return result, &domainerrors.MissingArtifactError{Path: pluginArtifact}
	}
	specs, err := domainservices.ParseIdeSpecs(cfg.IdeVersions)
	if err != nil {
		return result, err
	}
	if len(specs) == 0 && len(cfg.LocalPaths) == 0 {
		return result, &domainerrors.NoTargetsError{}
	}
	localPaths, err := absolutePaths(cfg.LocalPaths)
	if err != nil {
		return result, err
	}

	// Step 2: Resolve the verifier
	verifierPath, err := o.verifier.Resolve(ctx, cfg.Verifier, cfg.Offline)
	if err != nil {
		return result, err
	}
	result.VerifierPath = verifierPath
	logger.Info("Using plugin verifier", interfaces.F("path", verifierPath))

	// Step 3: Resolve IDEs
	ides, err := o.ResolveIdes(ctx, specs, cfg.Parallelism)
	if err != nil {
		return result, err
	}
	result.Ides = ides

	// Step 4: Resolve the runtime from the first target
	result.Runtime = o.runtime.Resolve(ctx, entities.RuntimeRequest{
		ExplicitDir:      cfg.RuntimeDir,
		ExplicitVersion:  cfg.JbrVersion,
		FirstResolvedIde: firstTarget(ides, localPaths),
	})
	logger.Info("Using runtime",
		interfaces.F("java_home", result.Runtime.JavaHome),
		interfaces.F("source", result.Runtime.Source))

	// Step 5: Run the verifier
	req := entities.VerificationRequest{
		PluginArtifactPath:     pluginArtifact,
		ResolvedIdeDirectories: directories(ides),
		LocalIdePaths:          localPaths,
		VerifierPath:           verifierPath,
		Java:                   cfg.Java,
		Runtime:                result.Runtime,
		Options: entities.VerificationOptions{
			ReportsDir:        cfg.ReportsDir,
			RuntimeDir:        result.Runtime.JavaHome,
			ExternalPrefixes:  cfg.ExternalPrefixes,
			TeamCityOutput:    cfg.TeamCityOutput,
			SubsystemsToCheck: cfg.SubsystemsToCheck,
			Offline:           cfg.Offline,
			FailureLevels:     entities.NewFailureLevelSet(cfg.FailureLevels...),
		},
		Timeout: cfg.Timeout,
	}
	err = o.run(ctx, req, result, logger)
	result.Duration = time.Since(startTime)
	return result, err
}

func (o *VerificationOrchestrator) run(ctx context.Context, req entities.VerificationRequest, result *entities.VerificationResult, logger interfaces.Logger) error {
	args := domainservices.BuildVerifierArgs(req)
	logger.Debug("Distribution file", interfaces.F("path", req.PluginArtifactPath))
	logger.Debug("Verifier arguments", interfaces.F("args", strings.Join(args, " ")))

	execResult := o.runner.InvokeJava(ctx, gateways.JavaInvocation{
		Java:      req.Java,
		Classpath: []string{req.VerifierPath},
		MainClass: entities.VerifierMainClass,
		Args:      args,
		Timeout:   req.Timeout,
	})
	result.Output = execResult.Output
	result.ExitCode = execResult.ExitCode

	// Output is always shown before any failure is reported
	if _, err := io.WriteString(o.output, execResult.Output); err != nil {
		logger.Warn("Failed to echo verifier output", interfaces.F("error", err))
	}
	result.ReportedLevels = domainservices.MatchedLevels(execResult.Output)

	if execResult.Error != nil || execResult.ExitCode != 0 {
		return &domainerrors.ProcessError{ExitCode: execResult.ExitCode, Err: execResult.Error}
	}

	if level := domainservices.ClassifyOutput(execResult.Output, req.Options.FailureLevels); level != nil {
		result.MatchedLevel = level
		logger.Error("Verification failed", interfaces.F("level", level.String()))
		return &domainerrors.VerificationFailedError{Level: level.String()}
	}

	result.Passed = true
	logger.Info("Verification passed", interfaces.F("duration", execResult.Duration))
	return nil
}

// ResolveIdes resolves every distinct spec, in order. With parallelism above 1 up to that
// many specs are resolved at once.
func (o *VerificationOrchestrator) ResolveIdes(ctx context.Context, specs []entities.IdeSpec, parallelism int) ([]entities.ResolvedArtifact, error) {
	specs = distinct(specs)
	resolved := make([]entities.ResolvedArtifact, len(specs))

	if parallelism <= 1 {
		for i, spec := range specs {
			artifact, err := o.ides.Resolve(ctx, spec)
			if err != nil {
				return nil, err
			}
			resolved[i] = *artifact
		}
		return resolved, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for i, spec := range specs {
		i, spec := i, spec
		g.Go(func() error {
			artifact, err := o.ides.Resolve(gctx, spec)
			if err != nil {
				return err
			}
			resolved[i] = *artifact
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return resolved, nil
}

func distinct(specs []entities.IdeSpec) []entities.IdeSpec {
	seen := make(map[string]bool, len(specs))
	out := make([]entities.IdeSpec, 0, len(specs))
	for _, spec := range specs {
		if seen[spec.Key()] {
			continue
		}
		seen[spec.Key()] = true
		out = append(out, spec)
	}
	return out
}

func directories(ides []entities.ResolvedArtifact) []string {
	dirs := make([]string, 0, len(ides))
	for _, ide := range ides {
		dirs = append(dirs, ide.Directory)
	}
	return dirs
}

// absolutePaths makes local IDE paths independent of the working directory
func absolutePaths(paths []string) ([]string, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	abs := make([]string, 0, len(paths))
	for _, p := range paths {
		a, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve local IDE path %s: %w", p, err)
		}
		abs = append(abs, a)
	}
	return abs, nil
}

func firstTarget(ides []entities.ResolvedArtifact, localPaths []string) string {
	if len(ides) > 0 {
		return ides[0].Directory
	}
	if len(localPaths) > 0 {
		return localPaths[0]
	}
	return ""
}

// GetVerificationSummary returns a human-readable summary of a run
func GetVerificationSummary(r *entities.VerificationResult, err error) string {
	if r == nil {
		return fmt.Sprintf("Verification failed: %v", err)
	}

	var b strings.Builder
	if r.Passed {
		b.WriteString("Verification passed!\n")
	} else {
		fmt.Fprintf(&b, "Verification failed: %v\n", err)
	}
	fmt.Fprintf(&b, "Run: %s\n", r.RunID)
	if r.VerifierPath != "" {
		fmt.Fprintf(&b, "Verifier: %s\n", r.VerifierPath)
	}
	for _, ide := range r.Ides {
		fmt.Fprintf(&b, "IDE: %s (%s)\n", ide.Spec, ide.Directory)
	}
	if len(r.ReportedLevels) > 0 {
		names := make([]string, 0, len(r.ReportedLevels))
		for _, level := range r.ReportedLevels {
			names = append(names, level.String())
		}
		fmt.Fprintf(&b, "Reported: %s\n", strings.Join(names, ", "))
	}
	if r.Runtime.JavaHome != "" {
		fmt.Fprintf(&b, "Runtime: %s [%s]\n", r.Runtime.JavaHome, r.Runtime.Source)
	}
	fmt.Fprintf(&b, "Reports: %s\n", r.ReportsDir)
	fmt.Fprintf(&b, "Total: %v", r.Duration)
	return b.String()
}
