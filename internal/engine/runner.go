package engine

import (
	"context"
	"errors"
	"io"
	"os/exec"
	"runtime"
)

// Runner executes one command line, writing its combined stdout and stderr to out.
type Runner interface {
	Run(ctx context.Context, command string, out io.Writer) error
}

// ShellRunner runs commands through the platform shell (sh -c, or cmd /C on Windows).
type ShellRunner struct{}

// Run implements Runner.
func (ShellRunner) Run(ctx context.Context, command string, out io.Writer) error {
	var cmd *exec.Cmd
	if runtime.GOOS == "windows" {
		cmd = exec.CommandContext(ctx, "cmd", "/C", command)
	} else {
		cmd = exec.CommandContext(ctx, "sh", "-c", command)
	}
	cmd.Stdout = out
	cmd.Stderr = out
	return cmd.Run()
}

// ExitCode extracts a process exit status from err: 0 for nil, the exit
// code when err carries one, and -1 otherwise (for example when the
// executable could not be started).
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var ec interface{ ExitCode() int }
	if errors.As(err, &ec) {
		return ec.ExitCode()
	}
	return -1
}
