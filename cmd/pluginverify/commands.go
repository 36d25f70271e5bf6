package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ochairo/pluginverify/internal/domain-adapters/gateways"
	orchestrators "github.com/ochairo/pluginverify/internal/domain-orchestrators"
	"github.com/ochairo/pluginverify/internal/domain/entities"
	"github.com/ochairo/pluginverify/internal/domain/services"
)

// VerifyCmd runs the whole resolve-and-verify pipeline.
type VerifyCmd struct {
	Plugin string `arg:"" help:"Plugin distribution (zip or jar) to verify"`
}

func (c *VerifyCmd) Run(globals *Globals) error {
	ctx, stop := signalContext()
	defer stop()

	a, err := newApp(globals)
	if err != nil {
		return err
	}
	result, err := a.orchestrator().Verify(ctx, c.Plugin, a.cfg)
	if result != nil && result.VerifierPath != "" {
		fmt.Fprintln(os.Stderr, orchestrators.GetVerificationSummary(result, err))
	}
	return err
}

// ResolveIdeCmd downloads IDEs into the cache.
type ResolveIdeCmd struct {
	Specs []string `arg:"" help:"IDE identifiers such as IC-2020.2.3 or 203.7148.57"`
}

func (c *ResolveIdeCmd) Run(globals *Globals) error {
	ctx, stop := signalContext()
	defer stop()

	a, err := newApp(globals)
	if err != nil {
		return err
	}
	specs, err := services.ParseIdeSpecs(c.Specs)
	if err != nil {
		return err
	}

	resolver := a.ideResolver()
	for _, spec := range specs {
		ide, err := resolver.Resolve(ctx, spec)
		if err != nil {
			return err
		}
		fmt.Printf("%s\t%s\n", spec, ide.Directory)
	}
	return nil
}

// ResolveVerifierCmd resolves the verifier jar.
type ResolveVerifierCmd struct{}

func (c *ResolveVerifierCmd) Run(globals *Globals) error {
	ctx, stop := signalContext()
	defer stop()

	a, err := newApp(globals)
	if err != nil {
		return err
	}
	path, err := a.verifierResolver().Resolve(ctx, a.cfg.Verifier, a.cfg.Offline)
	if err != nil {
		return err
	}
	fmt.Println(path)
	return nil
}

// ResolveRuntimeCmd prints the runtime chosen by the precedence chain.
type ResolveRuntimeCmd struct {
	Ide string `name:"ide-dir" help:"IDE installation whose bundled runtime is considered" type:"path"`
}

func (c *ResolveRuntimeCmd) Run(globals *Globals) error {
	ctx, stop := signalContext()
	defer stop()

	a, err := newApp(globals)
	if err != nil {
		return err
	}

	ideDir := c.Ide
	if ideDir == "" && len(a.cfg.LocalPaths) > 0 {
		ideDir = a.cfg.LocalPaths[0]
	}
	runtime := a.runtimeResolver().Resolve(ctx, entities.RuntimeRequest{
		ExplicitDir:      a.cfg.RuntimeDir,
		ExplicitVersion:  a.cfg.JbrVersion,
		FirstResolvedIde: ideDir,
	})
	fmt.Printf("%s\t%s\n", runtime.JavaHome, runtime.Source)
	return nil
}

// CompilerClasspathCmd prints the instrumentation compiler classpath.
type CompilerClasspathCmd struct {
	CompilerVersion string `name:"compiler-version" help:"java-compiler-ant-tasks version, usually the IDE build number"`
	Javac2          string `name:"javac2" help:"Local javac2.jar" type:"path"`
	Ide             string `name:"ide-dir" help:"IDE installation providing the javac2 libraries" type:"path"`
}

func (c *CompilerClasspathCmd) Run(globals *Globals) error {
	ctx, stop := signalContext()
	defer stop()

	a, err := newApp(globals)
	if err != nil {
		return err
	}
	classpath, err := gateways.NewCompilerResolver(a.artifactResolver(), a.logger).Classpath(ctx, entities.CompilerRequest{
		IdeDir:             c.Ide,
		Javac2:             c.Javac2,
		Version:            c.CompilerVersion,
		IntellijRepository: a.cfg.Endpoints.IntellijRepository,
	})
	if err != nil {
		return err
	}
	fmt.Println(strings.Join(classpath, string(os.PathListSeparator)))
	return nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
