package gateways

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ochairo/pluginverify/internal/domain/entities"
	domainerrors "github.com/ochairo/pluginverify/internal/domain/errors"
)

// repoArtifactResolver serves artifacts only from the repositories it knows
type repoArtifactResolver struct {
	paths map[string]string
	tried []string
}

func (m *repoArtifactResolver) ResolveArtifact(_ context.Context, _, repositoryURL string) (string, error) {
	m.tried = append(m.tried, repositoryURL)
	if path, ok := m.paths[repositoryURL]; ok {
		return path, nil
	}
	return "", errors.New("404 Not Found")
}

func TestCompilerResolver_LocalJavac2(t *testing.T) {
	ide := t.TempDir()
	lib := filepath.Join(ide, "lib")
	require.NoError(t, os.MkdirAll(filepath.Join(lib, "forms-dir"), 0750))
	for _, name := range []string{"jdom.jar", "asm-all-7.0.1.jar", "forms-1.1.jar", "jgoodies-forms.jar", "util.jar", "asm.jar"} {
		require.NoError(t, os.WriteFile(filepath.Join(lib, name), []byte("jar"), 0600))
	}
	javac2 := filepath.Join(ide, "javac2.jar")
	require.NoError(t, os.WriteFile(javac2, []byte("jar"), 0600))

	artifacts := &repoArtifactResolver{}
	classpath, err := NewCompilerResolver(artifacts, nil).Classpath(context.Background(), entities.CompilerRequest{
		IdeDir:  ide,
		Javac2:  javac2,
		Version: "203.7717.56",
	})

	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(lib, "asm-all-7.0.1.jar"),
		filepath.Join(lib, "forms-1.1.jar"),
		filepath.Join(lib, "jdom.jar"),
		filepath.Join(lib, "jgoodies-forms.jar"),
		javac2,
	}, classpath)
	assert.Empty(t, artifacts.tried)
}

func TestCompilerResolver_Maven(t *testing.T) {
	tests := []struct {
		name      string
		version   string
		paths     map[string]string
		wantTried []string
		wantJar   string
	}{
		{
			name:      "release from intellij repository",
			version:   "203.7717.56",
			paths:     map[string]string{"https://repo.example/releases": "/cache/tasks.jar"},
			wantTried: []string{"https://repo.example/releases"},
			wantJar:   "/cache/tasks.jar",
		},
		{
			name:      "snapshot falls back to the asm repository",
			version:   "211-EAP-SNAPSHOT",
			paths:     map[string]string{AsmRepositoryURL: "/cache/asm-tasks.jar"},
			wantTried: []string{"https://repo.example/snapshots", AsmRepositoryURL},
			wantJar:   "/cache/asm-tasks.jar",
		},
		{
			name:      "nightly reaches the forms repository",
			version:   "212.1234-SNAPSHOT",
			paths:     map[string]string{FormsRepositoryURL: "/cache/forms-tasks.jar"},
			wantTried: []string{"https://repo.example/nightly", AsmRepositoryURL, FormsRepositoryURL},
			wantJar:   "/cache/forms-tasks.jar",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			artifacts := &repoArtifactResolver{paths: tt.paths}
			classpath, err := NewCompilerResolver(artifacts, nil).Classpath(context.Background(), entities.CompilerRequest{
				Javac2:             filepath.Join(t.TempDir(), "missing-javac2.jar"),
				Version:            tt.version,
				IntellijRepository: "https://repo.example/",
			})

			require.NoError(t, err)
			assert.Equal(t, []string{tt.wantJar}, classpath)
			assert.Equal(t, tt.wantTried, artifacts.tried)
		})
	}
}

func TestCompilerResolver_Errors(t *testing.T) {
	resolver := NewCompilerResolver(&repoArtifactResolver{}, nil)

	_, err := resolver.Classpath(context.Background(), entities.CompilerRequest{})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidInput)

	_, err = resolver.Classpath(context.Background(), entities.CompilerRequest{Version: "203.7717.56"})
	assert.ErrorIs(t, err, domainerrors.ErrResolution)
	assert.Contains(t, err.Error(), "java-compiler-ant-tasks:203.7717.56")
}
