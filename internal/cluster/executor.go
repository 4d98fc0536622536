package cluster

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/logquarry/duptrim/pkg/derrors"
)

// ExecOptions controls how a remote command runs.
type ExecOptions struct {
	// Sudo runs the command with elevated privileges.
	Sudo bool
	// LongRunning marks commands expected to run for minutes, for
	// instance write benchmarks and offline tool invocations. Executors
	// must not apply their usual short command timeout to them.
	LongRunning bool
}

// Executor runs a command on a named host and returns its standard output.
// A non-zero exit status is reported as a *CommandError.
type Executor interface {
	Exec(ctx context.Context, host, command string, opts ExecOptions) (stdout string, err error)
}

// CommandError reports a command that exited with a non-zero status.
type CommandError struct {
	Host    string
	Command string
	Code    int
	Output  string
}

var _ error = (*CommandError)(nil)

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %q on host %s: exit status %d: %s", e.Command, e.Host, e.Code, e.Output)
}

func (e *CommandError) Unwrap() error {
	return derrors.ErrOperationFailed
}

// shellExecutor runs commands through the local shell. It serves runs where
// the harness lives on the admin node of the cluster and every target host is
// reachable through the cluster CLI itself; remote transports implement
// Executor elsewhere.
type shellExecutor struct{}

// NewShellExecutor creates an Executor running commands on the local host.
func NewShellExecutor() Executor {
	return &shellExecutor{}
}

func (e *shellExecutor) Exec(ctx context.Context, host, command string, opts ExecOptions) (string, error) {
	if opts.Sudo && !strings.HasPrefix(command, "sudo ") {
		command = "sudo " + command
	}
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		code := -1
		if exitErr, ok := err.(*exec.ExitError); ok {
			code = exitErr.ExitCode()
		}
		output := strings.TrimSpace(stderr.String())
		if len(output) == 0 {
			output = strings.TrimSpace(stdout.String())
		}
		return "", &CommandError{
			Host:    host,
			Command: command,
			Code:    code,
			Output:  output,
		}
	}
	// Warnings on stderr are common for the wrapped CLIs; only stdout is
	// returned so callers can decode it.
	return stdout.String(), nil
}
