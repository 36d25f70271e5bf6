// Command pluginverify resolves IDE distributions and the IntelliJ Plugin Verifier and checks
// a plugin artifact against them.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	domainerrors "github.com/ochairo/pluginverify/internal/domain/errors"
)

const version = "0.1.0"

// Exit codes
const (
	exitOK            = 0
	exitFailure       = 1
	exitMisconfigured = 2
)

// CLI defines the command-line interface for pluginverify.
type CLI struct {
	Globals

	Verify            VerifyCmd            `cmd:"" help:"Verify a plugin artifact against the configured IDEs"`
	ResolveIde        ResolveIdeCmd        `cmd:"" help:"Download IDE distributions and print their directories"`
	ResolveVerifier   ResolveVerifierCmd   `cmd:"" help:"Resolve the plugin verifier jar and print its path"`
	ResolveRuntime    ResolveRuntimeCmd    `cmd:"" help:"Print the Java runtime the verifier would check against"`
	CompilerClasspath CompilerClasspathCmd `cmd:"" help:"Print the classpath of the form and nullability instrumentation compiler"`
	Version           VersionCmd           `cmd:"" help:"Print version information"`
}

// VersionCmd prints the version.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Printf("pluginverify version %s\n", version)
	return nil
}

func main() {
	// A .env file only fills variables that are not set already
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: failed to load .env: %v\n", err)
	}

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("pluginverify"),
		kong.Description("Resolve IDEs and the IntelliJ Plugin Verifier, then verify plugin compatibility"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)

	err := ctx.Run(&cli.Globals)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(exitCode(err))
}

// exitCode maps an error to the process exit status: 2 for invalid input or configuration,
// 1 for everything else.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, domainerrors.ErrInvalidInput), errors.Is(err, domainerrors.ErrMisconfigured):
		return exitMisconfigured
	default:
		return exitFailure
	}
}
