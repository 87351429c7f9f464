package offtarget

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

const (
	bowtieHomeEnv   = "BOWTIE2_HOME"
	bowtieBuildTool = "bowtie2-build"
	bowtieAlignTool = "bowtie2"
)

// Runner runs an external program to completion.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) error
}

// ExecRunner runs programs with os/exec and reports failures as *ToolError.
type ExecRunner struct{}

// Run blocks until the process exits or ctx is done, in which case the process is killed.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	// bowtie2 is a wrapper script, its children may hold the output open after a kill
	cmd.WaitDelay = time.Second
	rlog.Debugf("Run: %v", cmd)

	start := time.Now()
	output, err := cmd.CombinedOutput()
	observeToolRun(filepath.Base(name), start, err)
	if err == nil {
		return nil
	}

	exitCode := -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		exitCode = exitErr.ExitCode()
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		err = ctxErr
	}
	return &ToolError{
		Tool:     filepath.Base(name),
		Args:     args,
		ExitCode: exitCode,
		Output:   string(output),
		Err:      err,
	}
}

// getExecutable resolves exeName under $exeHomeEnvVar[/binSubDir] or falls back to $PATH lookup.
func getExecutable(exeHomeEnvVar, binSubDir, exeName string) string {
	exeHome := os.Getenv(exeHomeEnvVar)
	if exeHome == "" {
		return exeName
	}
	return filepath.Join(exeHome, binSubDir, exeName)
}

// BowtieBuildExecutable is the bowtie2-build binary to invoke.
func BowtieBuildExecutable() string {
	return getExecutable(bowtieHomeEnv, "", bowtieBuildTool)
}

// BowtieExecutable is the bowtie2 binary to invoke.
func BowtieExecutable() string {
	return getExecutable(bowtieHomeEnv, "", bowtieAlignTool)
}

// withTimeout bounds ctx when timeout is positive.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
