package orchestrators

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/ochairo/pluginverify/internal/domain/entities"
	domainerrors "github.com/ochairo/pluginverify/internal/domain/errors"
	"github.com/ochairo/pluginverify/internal/domain/interfaces/gateways"
)

// Mock implementations for testing
type mockIdeResolver struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]error
}

func (m *mockIdeResolver) Resolve(_ context.Context, spec entities.IdeSpec) (*entities.ResolvedArtifact, error) {
	m.mu.Lock()
	m.calls = append(m.calls, spec.Key())
	m.mu.Unlock()
	if err := m.fail[spec.Key()]; err != nil {
		return nil, err
	}
	return &entities.ResolvedArtifact{Spec: spec, Directory: "/ides/" + spec.Key(), Channel: entities.ChannelRelease}, nil
}

type mockVerifierResolver struct {
	path  string
	err   error
	calls int
}

func (m *mockVerifierResolver) Resolve(_ context.Context, _ entities.VerifierSpec, _ bool) (string, error) {
	m.calls++
	return m.path, m.err
}

type mockRuntimeResolver struct {
	req entities.RuntimeRequest
}

func (m *mockRuntimeResolver) Resolve(_ context.Context, req entities.RuntimeRequest) entities.RuntimeSpec {
	m.req = req
	if req.ExplicitDir != "" {
		return entities.RuntimeSpec{JavaHome: req.ExplicitDir, Source: entities.RuntimeExplicitDir}
	}
	return entities.RuntimeSpec{JavaHome: "/jbr", Source: entities.RuntimeBundled}
}

type mockProcessRunner struct {
	output   string
	exitCode int
	err      error
	inv      *gateways.JavaInvocation
}

func (m *mockProcessRunner) InvokeJava(_ context.Context, inv gateways.JavaInvocation) *gateways.ExecuteResult {
	m.inv = &inv
	return &gateways.ExecuteResult{ExitCode: m.exitCode, Output: m.output, Error: m.err}
}

type fixture struct {
	ides     *mockIdeResolver
	verifier *mockVerifierResolver
	runtime  *mockRuntimeResolver
	runner   *mockProcessRunner
	echo     *bytes.Buffer
	orch     *VerificationOrchestrator
	plugin   string
}

func newFixture(t *testing.T, output string) *fixture {
	t.Helper()
	plugin := filepath.Join(t.TempDir(), "plugin-1.0.0.zip")
	if err := os.WriteFile(plugin, []byte("zip"), 0600); err != nil {
		t.Fatal(err)
	}

	f := &fixture{
		ides:     &mockIdeResolver{},
		verifier: &mockVerifierResolver{path: "/cache/verifier-cli-1.255-all.jar"},
		runtime:  &mockRuntimeResolver{},
		runner:   &mockProcessRunner{output: output},
		echo:     &bytes.Buffer{},
		plugin:   plugin,
	}
	f.orch = NewVerificationOrchestrator(f.ides, f.verifier, f.runtime, f.runner,
		VerificationOrchestratorConfig{Output: f.echo}, nil)
	return f
}

func baseConfig() *entities.Config {
	return &entities.Config{
		FailureLevels: []entities.FailureLevel{entities.CompatibilityProblems},
		IdeVersions:   []string{"IC-2020.2.3"},
		ReportsDir:    "build/reports/pluginVerifier",
		Verifier:      entities.VerifierSpec{Version: entities.VerifierVersionLatest},
		Parallelism:   1,
	}
}

const compatibleOutput = "Plugin com.example:1.0.0 against IC-202.7660.26: Compatible\n"

const problemOutput = `Plugin com.example:1.0.0 against IC-202.7660.26: 1 compatibility problem
Compatibility problems (1):
    #Invocation of unresolved method
`

// Test successful verification workflow
func TestVerificationOrchestrator_Verify_Success(t *testing.T) {
	f := newFixture(t, compatibleOutput)
	cfg := baseConfig()
	cfg.LocalPaths = []string{"/opt/idea"}
	cfg.ExternalPrefixes = []string{"com.example", "org.acme"}
	cfg.TeamCityOutput = true

	result, err := f.orch.Verify(context.Background(), f.plugin, cfg)
	if err != nil {
		t.Fatalf("Expected successful verification, got error: %v", err)
	}
	if !result.Passed {
		t.Error("result should pass")
	}
	if result.RunID == "" {
		t.Error("run ID should be set")
	}
	if f.echo.String() != compatibleOutput {
		t.Errorf("echoed output = %q", f.echo.String())
	}

	wantArgs := []string{
		"check-plugin",
		"-verification-reports-dir", "build/reports/pluginVerifier",
		"-runtime-dir", "/jbr",
		"-external-prefixes", "com.example:org.acme",
		"-team-city",
		f.plugin,
		"/ides/IC-2020.2.3",
		"/opt/idea",
	}
	if !reflect.DeepEqual(f.runner.inv.Args, wantArgs) {
		t.Errorf("args = %v, want %v", f.runner.inv.Args, wantArgs)
	}
	if !reflect.DeepEqual(f.runner.inv.Classpath, []string{"/cache/verifier-cli-1.255-all.jar"}) {
		t.Errorf("classpath = %v", f.runner.inv.Classpath)
	}
	if f.runner.inv.MainClass != entities.VerifierMainClass {
		t.Errorf("main class = %v", f.runner.inv.MainClass)
	}
	if f.runtime.req.FirstResolvedIde != "/ides/IC-2020.2.3" {
		t.Errorf("runtime derived from %q, want the first resolved IDE", f.runtime.req.FirstResolvedIde)
	}
}

func TestVerificationOrchestrator_Verify_FailureLevels(t *testing.T) {
	tests := []struct {
		name       string
		fatal      []entities.FailureLevel
		wantPassed bool
	}{
		{"compatibility problems fatal", []entities.FailureLevel{entities.CompatibilityProblems}, false},
		{"only deprecated usages fatal", []entities.FailureLevel{entities.DeprecatedAPIUsages}, true},
		{"nothing fatal", nil, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, problemOutput)
			cfg := baseConfig()
			cfg.FailureLevels = tt.fatal

			result, err := f.orch.Verify(context.Background(), f.plugin, cfg)
			if result.Passed != tt.wantPassed {
				t.Errorf("Passed = %v, want %v", result.Passed, tt.wantPassed)
			}
			if !reflect.DeepEqual(result.ReportedLevels, []entities.FailureLevel{entities.CompatibilityProblems}) {
				t.Errorf("ReportedLevels = %v, advisory levels must be reported whether fatal or not", result.ReportedLevels)
			}
			if f.echo.String() != problemOutput {
				t.Error("output must be echoed before the result is reported")
			}

			if tt.wantPassed {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			var failed *domainerrors.VerificationFailedError
			if !errors.As(err, &failed) {
				t.Fatalf("expected VerificationFailedError, got %v", err)
			}
			if failed.Level != "COMPATIBILITY_PROBLEMS" {
				t.Errorf("Level = %v", failed.Level)
			}
			if result.MatchedLevel == nil || *result.MatchedLevel != entities.CompatibilityProblems {
				t.Errorf("MatchedLevel = %v", result.MatchedLevel)
			}
		})
	}
}

func TestVerificationOrchestrator_Verify_ProcessError(t *testing.T) {
	f := newFixture(t, "Exception in thread \"main\"\n")
	f.runner.exitCode = 1
	f.runner.err = errors.New("exit status 1")

	result, err := f.orch.Verify(context.Background(), f.plugin, baseConfig())

	if !errors.Is(err, domainerrors.ErrProcess) {
		t.Fatalf("expected ProcessError, got %v", err)
	}
	if result.Passed || result.ExitCode != 1 {
		t.Errorf("Passed = %v, ExitCode = %d", result.Passed, result.ExitCode)
	}
	if !strings.Contains(f.echo.String(), "Exception") {
		t.Error("output of a crashed process must still be echoed")
	}
}

func TestVerificationOrchestrator_Verify_Validation(t *testing.T) {
	tests := []struct {
		name    string
		plugin  func(f *fixture) string
		config  func(cfg *entities.Config)
		wantErr error
	}{
		{
			name:    "missing artifact",
			plugin:  func(f *fixture) string { return f.plugin + ".missing" },
			config:  func(_ *entities.Config) {},
			wantErr: domainerrors.ErrMisconfigured,
		},
		{
			name:    "artifact is a directory",
			plugin:  func(f *fixture) string { return filepath.Dir(f.plugin) },
			config:  func(_ *entities.Config) {},
			wantErr: domainerrors.ErrMisconfigured,
		},
		{
			name:    "no targets",
			plugin:  func(f *fixture) string { return f.plugin },
			config:  func(cfg *entities.Config) { cfg.IdeVersions = nil },
			wantErr: domainerrors.ErrMisconfigured,
		},
		{
			name:    "invalid version spec",
			plugin:  func(f *fixture) string { return f.plugin },
			config:  func(cfg *entities.Config) { cfg.IdeVersions = []string{"IU-"} },
			wantErr: domainerrors.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, compatibleOutput)
			cfg := baseConfig()
			tt.config(cfg)

			_, err := f.orch.Verify(context.Background(), tt.plugin(f), cfg)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if f.verifier.calls != 0 || len(f.ides.calls) != 0 || f.runner.inv != nil {
				t.Error("validation must fail before any resolution or process work")
			}
		})
	}
}

func TestVerificationOrchestrator_Verify_ResolutionErrors(t *testing.T) {
	t.Run("verifier", func(t *testing.T) {
		f := newFixture(t, compatibleOutput)
		f.verifier.err = &domainerrors.OfflineVerifierError{}

		_, err := f.orch.Verify(context.Background(), f.plugin, baseConfig())
		if !errors.Is(err, domainerrors.ErrOffline) {
			t.Fatalf("expected offline error, got %v", err)
		}
		if f.runner.inv != nil {
			t.Error("verifier must not run")
		}
	})

	t.Run("ide", func(t *testing.T) {
		f := newFixture(t, compatibleOutput)
		f.ides.fail = map[string]error{"IC-2020.2.3": &domainerrors.IdeResolutionError{Spec: "IC-2020.2.3"}}

		_, err := f.orch.Verify(context.Background(), f.plugin, baseConfig())
		if !errors.Is(err, domainerrors.ErrResolution) {
			t.Fatalf("expected resolution error, got %v", err)
		}
	})
}

func TestVerificationOrchestrator_Verify_LocalPathsOnly(t *testing.T) {
	f := newFixture(t, compatibleOutput)
	cfg := baseConfig()
	cfg.IdeVersions = nil
	cfg.LocalPaths = []string{"/opt/idea", "/opt/pycharm"}
	cfg.RuntimeDir = "/opt/jdk"
	cfg.JbrVersion = "11_0_10b1145.77"

	result, err := f.orch.Verify(context.Background(), f.plugin, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.runtime.req.FirstResolvedIde != "/opt/idea" {
		t.Errorf("runtime derived from %q, want the first local path", f.runtime.req.FirstResolvedIde)
	}
	if result.Runtime.JavaHome != "/opt/jdk" {
		t.Errorf("JavaHome = %q", result.Runtime.JavaHome)
	}
	if len(f.ides.calls) != 0 {
		t.Errorf("no IDE should be downloaded, got %v", f.ides.calls)
	}
}

func TestVerificationOrchestrator_Verify_RelativeLocalPaths(t *testing.T) {
	f := newFixture(t, compatibleOutput)
	chdirForTest(t, t.TempDir())
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}

	cfg := baseConfig()
	cfg.IdeVersions = nil
	cfg.LocalPaths = []string{"ides/idea", "/opt/pycharm"}

	if _, err := f.orch.Verify(context.Background(), f.plugin, cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	idea := filepath.Join(wd, "ides", "idea")
	args := f.runner.inv.Args
	if got := args[len(args)-2:]; !reflect.DeepEqual(got, []string{idea, "/opt/pycharm"}) {
		t.Errorf("local paths passed as %v, want absolute paths", got)
	}
	if f.runtime.req.FirstResolvedIde != idea {
		t.Errorf("runtime derived from %q, want %q", f.runtime.req.FirstResolvedIde, idea)
	}
	if cfg.LocalPaths[0] != "ides/idea" {
		t.Error("configuration must not be modified")
	}
}

func TestVerificationOrchestrator_ResolveIdes(t *testing.T) {
	specs := []entities.IdeSpec{
		{Type: entities.ProductIntellijCommunity, Version: "2020.2.3"},
		{Type: entities.ProductIntellijUltimate, Version: "2021.1"},
		{Type: entities.ProductIntellijCommunity, Version: "2020.2.3"},
		{Type: entities.ProductPyCharm, Version: "2021.1"},
	}
	want := []string{"/ides/IC-2020.2.3", "/ides/IU-2021.1", "/ides/PY-2021.1"}

	for _, parallelism := range []int{1, 3} {
		f := newFixture(t, "")
		resolved, err := f.orch.ResolveIdes(context.Background(), specs, parallelism)
		if err != nil {
			t.Fatalf("parallelism %d: unexpected error: %v", parallelism, err)
		}
		if got := directories(resolved); !reflect.DeepEqual(got, want) {
			t.Errorf("parallelism %d: directories = %v, want %v", parallelism, got, want)
		}
		if len(f.ides.calls) != 3 {
			t.Errorf("parallelism %d: %d resolutions, want 3", parallelism, len(f.ides.calls))
		}
	}

	f := newFixture(t, "")
	f.ides.fail = map[string]error{"IU-2021.1": errors.New("boom")}
	if _, err := f.orch.ResolveIdes(context.Background(), specs, 2); err == nil {
		t.Error("expected the failing spec to fail the batch")
	}
}

func TestGetVerificationSummary(t *testing.T) {
	passed := &entities.VerificationResult{
		RunID:          "run-1",
		Passed:         true,
		VerifierPath:   "/cache/verifier.jar",
		Ides:           []entities.ResolvedArtifact{{Spec: entities.IdeSpec{Type: "IC", Version: "2020.2.3"}, Directory: "/ides/IC-2020.2.3"}},
		Runtime:        entities.RuntimeSpec{JavaHome: "/jbr", Source: entities.RuntimeBundled},
		ReportsDir:     "build/reports/pluginVerifier",
		ReportedLevels: []entities.FailureLevel{entities.CompatibilityProblems, entities.DeprecatedAPIUsages},
	}
	summary := GetVerificationSummary(passed, nil)
	for _, want := range []string{
		"Verification passed!", "run-1", "IC-2020.2.3", "/jbr [ide-bundled]",
		"Reported: COMPATIBILITY_PROBLEMS, DEPRECATED_API_USAGES",
	} {
		if !strings.Contains(summary, want) {
			t.Errorf("summary missing %q:\n%s", want, summary)
		}
	}

	failed := GetVerificationSummary(&entities.VerificationResult{RunID: "run-2"}, &domainerrors.VerificationFailedError{Level: "COMPATIBILITY_PROBLEMS"})
	if !strings.Contains(failed, "Verification failed: COMPATIBILITY_PROBLEMS") {
		t.Errorf("unexpected summary: %s", failed)
	}

	if got := GetVerificationSummary(nil, errors.New("boom")); got != "Verification failed: boom" {
		t.Errorf("unexpected summary: %s", got)
	}
}

// chdirForTest changes the working directory for the duration of the test,
// restoring it on cleanup (equivalent of testing.T.Chdir, which needs Go 1.24).
func chdirForTest(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			t.Fatal(err)
		}
	})
}
