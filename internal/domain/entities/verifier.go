package entities

// VerifierVersionLatest resolves to the newest published verifier
const VerifierVersionLatest = "latest"

// VerifierMainClass is the entry point of the verifier-cli jar
const VerifierMainClass = "com.jetbrains.pluginverifier.PluginVerifierMain"

// VerifierSpec selects the verification tool. ExplicitPath wins over Version when both are set.
type VerifierSpec struct {
	ExplicitPath string
	Version      string
}

// WantsLatest reports whether the version must be looked up remotely
func (v VerifierSpec) WantsLatest() bool {
	return v.Version == "" || v.Version == VerifierVersionLatest
}

// CompilerRequest selects the form and nullability instrumentation compiler
type CompilerRequest struct {
	IdeDir             string
	Javac2             string
	Version            string
	IntellijRepository string
}
