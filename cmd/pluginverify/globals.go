package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ochairo/pluginverify/internal/domain/entities"
	domainerrors "github.com/ochairo/pluginverify/internal/domain/errors"
	"github.com/ochairo/pluginverify/internal/domain/interfaces"
	"github.com/ochairo/pluginverify/internal/domain/services"
	"github.com/ochairo/pluginverify/internal/external-adapters/logging"
	"github.com/ochairo/pluginverify/internal/external-adapters/yaml"
)

// Globals are accepted by every command. Settings can also come from PLUGIN_VERIFIER_*
// variables; command-line values win over them, and both win over the config file.
type Globals struct {
	Config    string `name:"config" short:"c" help:"YAML config file (default: pluginverify.yml in the working directory)" type:"path" env:"PLUGIN_VERIFIER_CONFIG"`
	LogLevel  string `name:"log-level" help:"Log level (${enum})" enum:"debug,info,warn,error" default:"info" env:"PLUGIN_VERIFIER_LOG_LEVEL"`
	LogFormat string `name:"log-format" help:"Log format (${enum})" enum:"text,json" default:"text" env:"PLUGIN_VERIFIER_LOG_FORMAT"`

	Settings Settings `embed:""`
}

// Settings mirror the keys of the config file
type Settings struct {
	FailureLevels []string `name:"failure-level" help:"Failure levels that fail the run (ALL, NONE or level names)" sep:"," env:"PLUGIN_VERIFIER_FAILURE_LEVELS"`
	IdeVersions   []string `name:"ide" help:"IDE to verify against, e.g. IC-2020.2.3" sep:"," env:"PLUGIN_VERIFIER_IDE_VERSIONS"`
	LocalPaths    []string `name:"local-path" help:"Local IDE installation to verify against" sep:"," env:"PLUGIN_VERIFIER_LOCAL_PATHS"`

	VerifierVersion string `name:"verifier-version" help:"Verifier version or latest" env:"PLUGIN_VERIFIER_VERSION"`
	VerifierPath    string `name:"verifier-path" help:"Pre-downloaded verifier jar" type:"path" env:"PLUGIN_VERIFIER_PATH"`

	ReportsDir  string `name:"reports-dir" help:"Directory for verification reports" type:"path" env:"PLUGIN_VERIFIER_REPORTS_DIR"`
	DownloadDir string `name:"download-dir" help:"Directory for downloaded IDEs" type:"path" env:"PLUGIN_VERIFIER_DOWNLOAD_DIR"`
	HomeDir     string `name:"home-dir" help:"Verifier home holding all caches" type:"path" env:"PLUGIN_VERIFIER_HOME_DIR"`

	RuntimeDir    string `name:"runtime-dir" help:"Java runtime to verify against" type:"path" env:"PLUGIN_VERIFIER_RUNTIME_DIR"`
	JbrVersion    string `name:"jbr-version" help:"JetBrains Runtime version to download, e.g. 11_0_10b1145.77" env:"PLUGIN_VERIFIER_JBR_VERSION"`
	JbrRepository string `name:"jbr-repository" help:"Repository serving JetBrains Runtime archives" env:"PLUGIN_VERIFIER_JBR_REPOSITORY"`

	ExternalPrefixes  []string `name:"external-prefix" help:"Package prefixes of classes provided by the runtime environment" sep:"," env:"PLUGIN_VERIFIER_EXTERNAL_PREFIXES"`
	TeamCityOutput    bool     `name:"team-city" help:"Emit TeamCity service messages" env:"PLUGIN_VERIFIER_TEAM_CITY_OUTPUT"`
	SubsystemsToCheck string   `name:"subsystems" help:"Subsystems to check: all, android-only or without-android" env:"PLUGIN_VERIFIER_SUBSYSTEMS_TO_CHECK"`
	Offline           bool     `name:"offline" help:"Never access the network" env:"PLUGIN_VERIFIER_OFFLINE"`

	IdeDownloadURL      string `name:"ide-download-url" help:"IDE download service" env:"PLUGIN_VERIFIER_IDE_DOWNLOAD_URL"`
	MirrorURL           string `name:"mirror-url" help:"Caching mirror that download URLs are rewritten to" env:"PLUGIN_VERIFIER_MIRROR_URL"`
	NoMirror            bool   `name:"no-mirror" help:"Download from the original hosts" env:"PLUGIN_VERIFIER_NO_MIRROR"`
	VerifierMetadataURL string `name:"verifier-metadata-url" help:"maven-metadata.xml of the verifier" env:"PLUGIN_VERIFIER_METADATA_URL"`
	IntellijRepository  string `name:"intellij-repository" help:"IntelliJ artifact repository" env:"PLUGIN_VERIFIER_INTELLIJ_REPOSITORY"`

	VerifierKeyring string        `name:"verifier-keyring" help:"Armored keyring file or URL; enables signature checks of downloaded jars" env:"PLUGIN_VERIFIER_KEYRING"`
	Java            string        `name:"java" help:"Java executable running the verifier" env:"PLUGIN_VERIFIER_JAVA"`
	Parallelism     int           `name:"parallelism" help:"IDE downloads running at once" env:"PLUGIN_VERIFIER_PARALLELISM"`
	Timeout         time.Duration `name:"timeout" help:"Limit for the verifier process, e.g. 30m" env:"PLUGIN_VERIFIER_TIMEOUT"`
}

// Layer converts the command-line and environment settings to a configuration layer
func (s Settings) Layer() entities.ConfigLayer {
	return entities.ConfigLayer{
		FailureLevels:       s.FailureLevels,
		IdeVersions:         s.IdeVersions,
		LocalPaths:          s.LocalPaths,
		VerifierVersion:     s.VerifierVersion,
		VerifierPath:        s.VerifierPath,
		ReportsDir:          s.ReportsDir,
		DownloadDir:         s.DownloadDir,
		HomeDir:             s.HomeDir,
		RuntimeDir:          s.RuntimeDir,
		JbrVersion:          s.JbrVersion,
		JbrRepository:       s.JbrRepository,
		ExternalPrefixes:    s.ExternalPrefixes,
		TeamCityOutput:      s.TeamCityOutput,
		SubsystemsToCheck:   s.SubsystemsToCheck,
		Offline:             s.Offline,
		IdeDownloadURL:      s.IdeDownloadURL,
		MirrorURL:           s.MirrorURL,
		DisableMirror:       s.NoMirror,
		VerifierMetadataURL: s.VerifierMetadataURL,
		IntellijRepository:  s.IntellijRepository,
		VerifierKeyring:     s.VerifierKeyring,
		Java:                s.Java,
		Parallelism:         s.Parallelism,
		Timeout:             s.Timeout,
	}
}

// Logger builds the stderr logger selected by the log flags
func (g *Globals) Logger() (interfaces.Logger, error) {
	level, err := logging.ParseLevel(g.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domainerrors.ErrInvalidInput, err)
	}
	return logging.New(os.Stderr, level, logging.Format(g.LogFormat)), nil
}

// LoadConfig merges command-line and environment settings over the config file and defaults
func (g *Globals) LoadConfig() (*entities.Config, error) {
	layers := []entities.ConfigLayer{g.Settings.Layer()}

	path := g.Config
	if path == "" {
		path = yaml.FindConfigFile(".")
	}
	if path != "" {
		file, err := yaml.NewConfigParser().ParseFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domainerrors.ErrInvalidInput, err)
		}
		layers = append(layers, file)
	}

	cfg, err := services.ResolveConfig(layers...)
	if err != nil {
		return nil, err
	}
	if cfg.DownloadDir, err = filepath.Abs(cfg.DownloadDir); err != nil {
		return nil, fmt.Errorf("failed to resolve download directory: %w", err)
	}
	return cfg, nil
}
