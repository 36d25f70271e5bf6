package entities

// RuntimeSource records which rule of the runtime precedence chain won
type RuntimeSource string

// Runtime sources in precedence order
const (
	RuntimeExplicitDir   RuntimeSource = "explicit-dir"
	RuntimePinnedVersion RuntimeSource = "pinned-version"
	RuntimeBundled       RuntimeSource = "ide-bundled"
	RuntimeHost          RuntimeSource = "host"
)

// RuntimeSpec is the Java runtime handed to the verifier
type RuntimeSpec struct {
	JavaHome string
	Source   RuntimeSource
}

// RuntimeRequest carries the inputs of the runtime precedence chain
type RuntimeRequest struct {
	ExplicitDir      string
	ExplicitVersion  string
	FirstResolvedIde string
}
