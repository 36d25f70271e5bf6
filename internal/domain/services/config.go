package services

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ochairo/pluginverify/internal/domain/entities"
	domainerrors "github.com/ochairo/pluginverify/internal/domain/errors"
)

// HomeDirEnv overrides the verifier home directory
const HomeDirEnv = "PLUGIN_VERIFIER_HOME_DIR"

// VerifierHomeDir returns $PLUGIN_VERIFIER_HOME_DIR, else ~/.pluginVerifier, else a directory under the temp dir
func VerifierHomeDir() string {
	if dir := os.Getenv(HomeDirEnv); dir != "" {
		return dir
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return filepath.Join(home, ".pluginVerifier")
	}
	return filepath.Join(os.TempDir(), ".pluginVerifier")
}

// ResolveConfig merges layers, highest precedence first, applies defaults and validates the result
func ResolveConfig(layers ...entities.ConfigLayer) (*entities.Config, error) {
	pickString := func(get func(entities.ConfigLayer) string) string {
		for _, l := range layers {
			if v := get(l); v != "" {
				return v
			}
		}
		return ""
	}
	pickList := func(get func(entities.ConfigLayer) []string) []string {
		for _, l := range layers {
			if v := get(l); v != nil {
				return v
			}
		}
		return nil
	}
	anyTrue := func(get func(entities.ConfigLayer) bool) bool {
		for _, l := range layers {
			if get(l) {
				return true
			}
		}
		return false
	}

	cfg := &entities.Config{
		IdeVersions:       pickList(func(l entities.ConfigLayer) []string { return l.IdeVersions }),
		LocalPaths:        pickList(func(l entities.ConfigLayer) []string { return l.LocalPaths }),
		ReportsDir:        pickString(func(l entities.ConfigLayer) string { return l.ReportsDir }),
		DownloadDir:       pickString(func(l entities.ConfigLayer) string { return l.DownloadDir }),
		HomeDir:           pickString(func(l entities.ConfigLayer) string { return l.HomeDir }),
		RuntimeDir:        pickString(func(l entities.ConfigLayer) string { return l.RuntimeDir }),
		JbrVersion:        pickString(func(l entities.ConfigLayer) string { return l.JbrVersion }),
		JbrRepository:     pickString(func(l entities.ConfigLayer) string { return l.JbrRepository }),
		ExternalPrefixes:  pickList(func(l entities.ConfigLayer) []string { return l.ExternalPrefixes }),
		TeamCityOutput:    anyTrue(func(l entities.ConfigLayer) bool { return l.TeamCityOutput }),
		SubsystemsToCheck: pickString(func(l entities.ConfigLayer) string { return l.SubsystemsToCheck }),
		Offline:           anyTrue(func(l entities.ConfigLayer) bool { return l.Offline }),
		VerifierKeyring:   pickString(func(l entities.ConfigLayer) string { return l.VerifierKeyring }),
		Java:              pickString(func(l entities.ConfigLayer) string { return l.Java }),
		Verifier: entities.VerifierSpec{
			ExplicitPath: pickString(func(l entities.ConfigLayer) string { return l.VerifierPath }),
			Version:      pickString(func(l entities.ConfigLayer) string { return l.VerifierVersion }),
		},
	}

	endpoints := entities.DefaultEndpoints()
	override := func(dst *string, get func(entities.ConfigLayer) string) {
		if v := pickString(get); v != "" {
			*dst = v
		}
	}
	override(&endpoints.IdeDownloadURL, func(l entities.ConfigLayer) string { return l.IdeDownloadURL })
	override(&endpoints.MirrorURL, func(l entities.ConfigLayer) string { return l.MirrorURL })
	override(&endpoints.VerifierMetadataURL, func(l entities.ConfigLayer) string { return l.VerifierMetadataURL })
	override(&endpoints.VerifierRepository, func(l entities.ConfigLayer) string { return l.VerifierRepository })
	override(&endpoints.LegacyRepository, func(l entities.ConfigLayer) string { return l.LegacyRepository })
	override(&endpoints.IntellijRepository, func(l entities.ConfigLayer) string { return l.IntellijRepository })
	if anyTrue(func(l entities.ConfigLayer) bool { return l.DisableMirror }) {
		endpoints.MirrorURL = ""
	}
	cfg.Endpoints = endpoints

	levelNames := pickList(func(l entities.ConfigLayer) []string { return l.FailureLevels })
	if levelNames == nil {
		levelNames = []string{entities.CompatibilityProblems.String()}
	}
	levels, err := entities.ParseFailureLevels(levelNames)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domainerrors.ErrInvalidInput, err)
	}
	cfg.FailureLevels = levels

	for _, l := range layers {
		if l.Parallelism < 0 {
			return nil, fmt.Errorf("%w: parallelism must not be negative, got %d", domainerrors.ErrInvalidInput, l.Parallelism)
		}
		if l.Timeout < 0 {
			return nil, fmt.Errorf("%w: timeout must not be negative, got %s", domainerrors.ErrInvalidInput, l.Timeout)
		}
		if cfg.Parallelism == 0 && l.Parallelism > 0 {
			cfg.Parallelism = l.Parallelism
		}
		if cfg.Timeout == 0 && l.Timeout > 0 {
			cfg.Timeout = l.Timeout
		}
	}

	switch cfg.SubsystemsToCheck {
	case "", entities.SubsystemsAll, entities.SubsystemsAndroidOnly, entities.SubsystemsWithoutAndroid:
	default:
		return nil, fmt.Errorf("%w: unknown subsystems %q, expected %s, %s or %s", domainerrors.ErrInvalidInput,
			cfg.SubsystemsToCheck, entities.SubsystemsAll, entities.SubsystemsAndroidOnly, entities.SubsystemsWithoutAndroid)
	}

	applyDefaults(cfg)
	return cfg, nil
}

func applyDefaults(cfg *entities.Config) {
	if cfg.Verifier.Version == "" {
		cfg.Verifier.Version = entities.VerifierVersionLatest
	}
	if cfg.ReportsDir == "" {
		cfg.ReportsDir = entities.DefaultReportsDir
	}
	if cfg.HomeDir == "" {
		cfg.HomeDir = VerifierHomeDir()
	}
	if cfg.DownloadDir == "" {
		cfg.DownloadDir = filepath.Join(cfg.HomeDir, "ides")
	}
	if cfg.JbrRepository == "" {
		cfg.JbrRepository = entities.DefaultJbrRepository
	}
	if cfg.Parallelism == 0 {
		cfg.Parallelism = 1
	}
}

// CacheDirs returns the Maven and JBR cache directories under the verifier home
func CacheDirs(cfg *entities.Config) (maven, jbr string) {
	return filepath.Join(cfg.HomeDir, "cache"), filepath.Join(cfg.HomeDir, "jbr")
}
