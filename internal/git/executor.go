package git

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"gittrack/internal/errors"
)

// CommandExecutor defines an interface for executing commands.
// Tests substitute a fake; production uses ExecExecutor.
type CommandExecutor interface {
	// ExecuteWithContext runs a command, discarding output.
	ExecuteWithContext(ctx context.Context, name string, args ...string) error

	// ExecuteWithContextAndOutput runs a command and returns its stdout.
	ExecuteWithContextAndOutput(ctx context.Context, name string, args ...string) (string, error)
}

// ExecExecutor is the default CommandExecutor that delegates to os/exec.
type ExecExecutor struct{}

// NewExecExecutor creates a new ExecExecutor.
func NewExecExecutor() *ExecExecutor {
	return &ExecExecutor{}
}

// ExecuteWithContext implements CommandExecutor.ExecuteWithContext.
func (e *ExecExecutor) ExecuteWithContext(ctx context.Context, name string, args ...string) error {
	_, err := e.ExecuteWithContextAndOutput(ctx, name, args...)
	return err
}

// ExecuteWithContextAndOutput implements CommandExecutor.ExecuteWithContextAndOutput.
func (e *ExecExecutor) ExecuteWithContextAndOutput(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		wrapped := errors.Wrap(errors.ErrGitOperationFailed, err.Error())
		output := combinedOutput(stdout.String(), stderr.String())
		return "", errors.NewGitError(subcommand(args), args, wrapped, output)
	}

	return stdout.String(), nil
}

// combinedOutput merges the streams of a failed command. Git splits
// diagnostics across both: a merge prints "CONFLICT (content)" and
// "Automatic merge failed" to stdout while push rejections and fetch
// progress go to stderr, so classification must see both.
func combinedOutput(stdout, stderr string) string {
	stdout = strings.TrimSpace(stdout)
	stderr = strings.TrimSpace(stderr)
	switch {
	case stdout == "":
		return stderr
	case stderr == "":
		return stdout
	default:
		return stdout + "\n" + stderr
	}
}

// subcommand extracts the git subcommand from an argument list, skipping
// the -C <path> prefix the client prepends.
func subcommand(args []string) string {
	for i := 0; i < len(args); i++ {
		if args[i] == "-C" {
			i++
			continue
		}
		if !strings.HasPrefix(args[i], "-") {
			return args[i]
		}
	}
	return ""
}
