package gateways

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/ochairo/pluginverify/internal/domain/interfaces"
	"github.com/ochairo/pluginverify/internal/domain/interfaces/gateways"
)

// JavaRunner runs JVM entry points as child processes
type JavaRunner struct {
	defaultJava string
	logger      interfaces.Logger
}

var _ gateways.ProcessRunner = (*JavaRunner)(nil)

// NewJavaRunner creates a new java runner. defaultJava is used when an invocation names no
// executable and falls back to "java" on PATH.
func NewJavaRunner(defaultJava string, logger interfaces.Logger) *JavaRunner {
	if defaultJava == "" {
		defaultJava = "java"
	}
	return &JavaRunner{
		defaultJava: defaultJava,
		logger:      interfaces.OrNoOp(logger),
	}
}

// InvokeJava runs inv.MainClass with the given classpath. Stdout and stderr are interleaved
// into a single output. A zero timeout means no limit.
func (r *JavaRunner) InvokeJava(ctx context.Context, inv gateways.JavaInvocation) *gateways.ExecuteResult {
	startTime := time.Now()
	result := &gateways.ExecuteResult{}

	java := inv.Java
	if java == "" {
		java = r.defaultJava
	}

	execCtx := ctx
	if inv.Timeout > 0 {
		var cancel context.CancelFunc
		execCtx, cancel = context.WithTimeout(ctx, inv.Timeout)
		defer cancel()
	}

	args := make([]string, 0, len(inv.Args)+3)
	if len(inv.Classpath) > 0 {
		args = append(args, "-cp", strings.Join(inv.Classpath, string(os.PathListSeparator)))
	}
	args = append(args, inv.MainClass)
	args = append(args, inv.Args...)

	//nolint:gosec // G204: the java executable and arguments come from resolved configuration
	cmd := exec.CommandContext(execCtx, java, args...)
	if inv.Dir != "" {
		cmd.Dir = inv.Dir
	}

	env := os.Environ()
	for key, value := range inv.Env {
		env = append(env, fmt.Sprintf("%s=%s", key, value))
	}
	cmd.Env = env

	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output
	cmd.WaitDelay = time.Second

	r.logger.Debug("Invoking java",
		interfaces.F("java", java),
		interfaces.F("main_class", inv.MainClass),
		interfaces.F("args", inv.Args))

	err := cmd.Run()
	result.Duration = time.Since(startTime)
	result.Output = output.String()

	if err != nil {
		result.Error = err
		var exitErr *exec.ExitError
		//nolint:gocritic // ifElseChain: checking different error types, not suitable for switch
		if errors.Is(execCtx.Err(), context.DeadlineExceeded) {
			result.Error = fmt.Errorf("java execution timeout after %v", inv.Timeout)
			result.ExitCode = -1
		} else if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.ExitCode = -1
		}
		return result
	}

	result.ExitCode = 0
	return result
}
