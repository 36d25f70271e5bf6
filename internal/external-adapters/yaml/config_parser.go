// Package yaml reads verification settings from YAML configuration files.
package yaml

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ochairo/pluginverify/internal/domain/entities"
)

// ConfigFileNames are looked up, in order, when no config file is named explicitly
var ConfigFileNames = []string{"pluginverify.yml", "pluginverify.yaml", ".pluginverify.yml"}

// yamlConfig represents the raw YAML structure
type yamlConfig struct {
	FailureLevels []string `yaml:"failure_levels"`
	IdeVersions   []string `yaml:"ide_versions"`
	LocalPaths    []string `yaml:"local_paths"`

	VerifierVersion string `yaml:"verifier_version"`
	VerifierPath    string `yaml:"verifier_path"`

	ReportsDir  string `yaml:"verification_reports_dir"`
	DownloadDir string `yaml:"download_dir"`
	HomeDir     string `yaml:"home_dir"`

	RuntimeDir    string `yaml:"runtime_dir"`
	JbrVersion    string `yaml:"jbr_version"`
	JbrRepository string `yaml:"jbr_repository"`

	ExternalPrefixes  []string `yaml:"external_prefixes"`
	TeamCityOutput    bool     `yaml:"team_city_output"`
	SubsystemsToCheck string   `yaml:"subsystems_to_check"`
	Offline           bool     `yaml:"offline"`

	Endpoints yamlEndpoints `yaml:",inline"`

	VerifierKeyring string `yaml:"verifier_keyring"`
	Java            string `yaml:"java"`
	Parallelism     int    `yaml:"parallelism"`
	Timeout         string `yaml:"timeout"`
}

type yamlEndpoints struct {
	IdeDownloadURL string `yaml:"ide_download_url"`
	// Pointer so that an explicit empty value can disable the mirror
	MirrorURL           *string `yaml:"mirror_url"`
	VerifierMetadataURL string  `yaml:"verifier_metadata_url"`
	VerifierRepository  string  `yaml:"verifier_repository"`
	LegacyRepository    string  `yaml:"legacy_repository"`
	IntellijRepository  string  `yaml:"intellij_repository"`
}

// ConfigParser parses YAML configuration files
type ConfigParser struct{}

// NewConfigParser creates a new YAML parser
func NewConfigParser() *ConfigParser {
	return &ConfigParser{}
}

// FindConfigFile returns the first of ConfigFileNames present in dir, or "" when there is none
func FindConfigFile(dir string) string {
	for _, name := range ConfigFileNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// ParseFile parses a YAML config file into a configuration layer
func (p *ConfigParser) ParseFile(filePath string) (entities.ConfigLayer, error) {
	//nolint:gosec // G304: filePath is the user's configuration file
	data, err := os.ReadFile(filePath)
	if err != nil {
		return entities.ConfigLayer{}, fmt.Errorf("failed to read file %s: %w", filePath, err)
	}

	layer, err := p.Parse(data)
	if err != nil {
		return entities.ConfigLayer{}, fmt.Errorf("%s: %w", filePath, err)
	}
	return layer, nil
}

// Parse parses YAML bytes into a configuration layer. Unknown keys are rejected.
func (p *ConfigParser) Parse(data []byte) (entities.ConfigLayer, error) {
	var raw yamlConfig
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return entities.ConfigLayer{}, fmt.Errorf("failed to parse YAML: %w", err)
	}

	var timeout time.Duration
	if raw.Timeout != "" {
		d, err := time.ParseDuration(raw.Timeout)
		if err != nil {
			return entities.ConfigLayer{}, fmt.Errorf("invalid timeout %q: %w", raw.Timeout, err)
		}
		timeout = d
	}

	// Convert to domain entity
	layer := entities.ConfigLayer{
		FailureLevels:       raw.FailureLevels,
		IdeVersions:         raw.IdeVersions,
		LocalPaths:          raw.LocalPaths,
		VerifierVersion:     raw.VerifierVersion,
		VerifierPath:        raw.VerifierPath,
		ReportsDir:          raw.ReportsDir,
		DownloadDir:         raw.DownloadDir,
		HomeDir:             raw.HomeDir,
		RuntimeDir:          raw.RuntimeDir,
		JbrVersion:          raw.JbrVersion,
		JbrRepository:       raw.JbrRepository,
		ExternalPrefixes:    raw.ExternalPrefixes,
		TeamCityOutput:      raw.TeamCityOutput,
		SubsystemsToCheck:   raw.SubsystemsToCheck,
		Offline:             raw.Offline,
		IdeDownloadURL:      raw.Endpoints.IdeDownloadURL,
		VerifierMetadataURL: raw.Endpoints.VerifierMetadataURL,
		VerifierRepository:  raw.Endpoints.VerifierRepository,
		LegacyRepository:    raw.Endpoints.LegacyRepository,
		IntellijRepository:  raw.Endpoints.IntellijRepository,
		VerifierKeyring:     raw.VerifierKeyring,
		Java:                raw.Java,
		Parallelism:         raw.Parallelism,
		Timeout:             timeout,
	}
	if raw.Endpoints.MirrorURL != nil {
		layer.MirrorURL = *raw.Endpoints.MirrorURL
		layer.DisableMirror = *raw.Endpoints.MirrorURL == ""
	}

	return layer, nil
}
