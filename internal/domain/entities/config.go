package entities

import "time"

// Config holds everything a verification run reads from the host environment
type Config struct {
	FailureLevels []FailureLevel
	IdeVersions   []string
	LocalPaths    []string

	Verifier VerifierSpec

	ReportsDir  string
	DownloadDir string
	HomeDir     string

	RuntimeDir    string
	JbrVersion    string
	JbrRepository string

	ExternalPrefixes  []string
	TeamCityOutput    bool
	SubsystemsToCheck string
	Offline           bool

	Endpoints Endpoints

	// VerifierKeyring enables signature checks of downloaded jars when set
	VerifierKeyring string
	Java            string
	Parallelism     int
	Timeout         time.Duration
}

// Endpoints groups the remote services the resolvers talk to
type Endpoints struct {
	IdeDownloadURL      string
	MirrorURL           string
	VerifierMetadataURL string
	VerifierRepository  string
	LegacyRepository    string
	IntellijRepository  string
}

// Default endpoints
const (
	DefaultIdeDownloadURL      = "https://data.services.jetbrains.com/products/download"
	DefaultMirrorURL           = "https://cache-redirector.jetbrains.com"
	DefaultVerifierMetadataURL = "https://cache-redirector.jetbrains.com/packages.jetbrains.team/maven/p/intellij-plugin-verifier/intellij-plugin-verifier/org/jetbrains/intellij/plugins/verifier-cli/maven-metadata.xml"
	DefaultVerifierRepository  = "https://cache-redirector.jetbrains.com/packages.jetbrains.team/maven/p/intellij-plugin-verifier/intellij-plugin-verifier"
	DefaultLegacyRepository    = "https://cache-redirector.jetbrains.com/jetbrains.bintray.com/intellij-plugin-service"
	DefaultIntellijRepository  = "https://cache-redirector.jetbrains.com/www.jetbrains.com/intellij-repository"
	DefaultJbrRepository       = "https://cache-redirector.jetbrains.com/intellij-jbr"
	DefaultReportsDir          = "build/reports/pluginVerifier"
)

// DefaultEndpoints returns the public JetBrains services
func DefaultEndpoints() Endpoints {
	return Endpoints{
		IdeDownloadURL:      DefaultIdeDownloadURL,
		MirrorURL:           DefaultMirrorURL,
		VerifierMetadataURL: DefaultVerifierMetadataURL,
		VerifierRepository:  DefaultVerifierRepository,
		LegacyRepository:    DefaultLegacyRepository,
		IntellijRepository:  DefaultIntellijRepository,
	}
}

// ConfigLayer is one configuration source. Empty strings, nil slices and zero numbers mean
// "not set here"; boolean switches are OR-ed across layers.
type ConfigLayer struct {
	FailureLevels []string
	IdeVersions   []string
	LocalPaths    []string

	VerifierVersion string
	VerifierPath    string

	ReportsDir  string
	DownloadDir string
	HomeDir     string

	RuntimeDir    string
	JbrVersion    string
	JbrRepository string

	ExternalPrefixes  []string
	TeamCityOutput    bool
	SubsystemsToCheck string
	Offline           bool

	IdeDownloadURL      string
	MirrorURL           string
	DisableMirror       bool
	VerifierMetadataURL string
	VerifierRepository  string
	LegacyRepository    string
	IntellijRepository  string

	VerifierKeyring string
	Java            string
	Parallelism     int
	Timeout         time.Duration
}
