package main

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/ochairo/pluginverify/internal/domain-adapters/cache"
	"github.com/ochairo/pluginverify/internal/domain-adapters/gateways"
	orchestrators "github.com/ochairo/pluginverify/internal/domain-orchestrators"
	"github.com/ochairo/pluginverify/internal/domain/entities"
	"github.com/ochairo/pluginverify/internal/domain/interfaces"
	"github.com/ochairo/pluginverify/internal/domain/services"
	"github.com/ochairo/pluginverify/internal/external-adapters/archive"
	"github.com/ochairo/pluginverify/internal/external-adapters/gpg"
)

// app wires the adapters for one command invocation
type app struct {
	cfg        *entities.Config
	logger     interfaces.Logger
	httpClient *http.Client
	downloader *gateways.Downloader
	extractor  *archive.Extractor
}

func newApp(globals *Globals) (*app, error) {
	logger, err := globals.Logger()
	if err != nil {
		return nil, err
	}
	cfg, err := globals.LoadConfig()
	if err != nil {
		return nil, err
	}

	client := &http.Client{}
	return &app{
		cfg:        cfg,
		logger:     logger,
		httpClient: client,
		downloader: gateways.NewDownloaderWithClient(client, cfg.Endpoints.MirrorURL, logger),
		extractor:  archive.NewExtractor(logger),
	}, nil
}

func (a *app) ideResolver() *gateways.IdeResolver {
	return gateways.NewIdeResolver(
		a.downloader,
		a.extractor,
		cache.New(a.cfg.DownloadDir, a.logger),
		gateways.IdeResolverConfig{DownloadURL: a.cfg.Endpoints.IdeDownloadURL, Offline: a.cfg.Offline},
		a.logger,
	)
}

// artifactResolver builds the Maven resolver. A configured keyring is only imported once an
// artifact is actually downloaded.
func (a *app) artifactResolver() *gateways.MavenResolver {
	var signatures *gpg.Verifier
	if a.cfg.VerifierKeyring != "" {
		signatures = gpg.NewVerifier(a.httpClient)
	}

	mavenDir, _ := services.CacheDirs(a.cfg)
	return gateways.NewMavenResolver(
		a.downloader,
		gateways.NewIntegrityVerifier(signatures, a.cfg.VerifierKeyring, a.logger),
		gateways.MavenResolverConfig{CacheDir: mavenDir, Offline: a.cfg.Offline},
		a.logger,
	)
}

func (a *app) verifierResolver() *gateways.VerifierResolver {
	return gateways.NewVerifierResolver(
		gateways.NewVersionFetcher(a.httpClient, a.logger),
		a.artifactResolver(),
		a.cfg.Endpoints,
		a.logger,
	)
}

func (a *app) runtimeResolver() *gateways.RuntimeResolver {
	_, jbrDir := services.CacheDirs(a.cfg)
	jbr := gateways.NewJbrResolver(
		a.downloader,
		a.extractor,
		cache.New(jbrDir, a.logger),
		gateways.JbrResolverConfig{Repository: a.cfg.JbrRepository, Offline: a.cfg.Offline},
		a.logger,
	)
	return gateways.NewRuntimeResolver(jbr, nil, a.logger)
}

func (a *app) orchestrator() *orchestrators.VerificationOrchestrator {
	return orchestrators.NewVerificationOrchestrator(
		a.ideResolver(),
		a.verifierResolver(),
		a.runtimeResolver(),
		gateways.NewJavaRunner(hostJava(), a.logger),
		orchestrators.VerificationOrchestratorConfig{Output: os.Stdout},
		a.logger,
	)
}

// hostJava returns the java executable of the host runtime, or "" to use java on PATH
func hostJava() string {
	home := gateways.HostJavaHome()
	if home == "" {
		return ""
	}
	java := filepath.Join(home, "bin", "java")
	if _, err := os.Stat(java); err != nil {
		return ""
	}
	return java
}
