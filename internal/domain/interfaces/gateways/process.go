package gateways

import (
	"context"
	"time"
)

// JavaInvocation describes a JVM entry point to run
type JavaInvocation struct {
	Java      string
	Classpath []string
	MainClass string
	Args      []string
	Env       map[string]string
	Dir       string
	Timeout   time.Duration
}

// ExecuteResult is the outcome of a finished process
type ExecuteResult struct {
	ExitCode int
	Output   string
	Duration time.Duration
	Error    error
}

// ProcessRunner executes a JVM entry point and captures its combined output
type ProcessRunner interface {
	InvokeJava(ctx context.Context, inv JavaInvocation) *ExecuteResult
}
