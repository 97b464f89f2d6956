// Package devcli runs the devcontainer CLI (@devcontainers/cli) for a
// workspace. devc never builds or starts containers itself; it prepares
// devcontainer.json and then hands over to "devcontainer up" and
// "devcontainer exec".
package devcli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/kballard/go-shellquote"

	"github.com/shinji-kodama/devc/internal/model"
)

// DefaultBinary is the devcontainer CLI executable name.
const DefaultBinary = "devcontainer"

// DefaultShell is the command "devc shell" runs when none is given.
var DefaultShell = []string{"bash"}

// Runner invokes the devcontainer CLI for one workspace.
type Runner struct {
	// Binary is the devcontainer CLI executable. Empty means DefaultBinary.
	Binary string

	// DockerPath is passed as --docker-path so the CLI drives the selected
	// runtime (for example the podman binary). Empty leaves the CLI default.
	DockerPath string

	// Workspace is the absolute workspace folder.
	Workspace string

	// Stdin, Stdout and Stderr are connected to the child process. Nil
	// values fall back to the process's own streams.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Log, if set, receives the shell-quoted command line before it runs.
	Log func(format string, args ...interface{})
}

func (r *Runner) binary() string {
	if r.Binary == "" {
		return DefaultBinary
	}
	return r.Binary
}

func (r *Runner) commonArgs() []string {
	args := []string{"--workspace-folder", r.Workspace}
	if r.DockerPath != "" {
		args = append(args, "--docker-path", r.DockerPath)
	}
	return args
}

// UpArgs returns the arguments for "devcontainer up". With rebuild set the
// existing container is removed first, so mount changes take effect.
func (r *Runner) UpArgs(rebuild bool) []string {
	args := append([]string{"up"}, r.commonArgs()...)
	if rebuild {
		args = append(args, "--remove-existing-container")
	}
	return args
}

// ExecArgs returns the arguments for "devcontainer exec" running command,
// or DefaultShell when command is empty.
func (r *Runner) ExecArgs(command []string) []string {
	if len(command) == 0 {
		command = DefaultShell
	}
	args := append([]string{"exec"}, r.commonArgs()...)
	return append(args, command...)
}

// CommandLine renders the full invocation for args as a single line that
// can be pasted into a POSIX shell.
func (r *Runner) CommandLine(args []string) string {
	return shellquote.Join(append([]string{r.binary()}, args...)...)
}

// Up runs "devcontainer up", rebuilding when asked.
func (r *Runner) Up(ctx context.Context, rebuild bool) error {
	return r.Run(ctx, r.UpArgs(rebuild))
}

// Exec runs command inside the workspace container.
func (r *Runner) Exec(ctx context.Context, command []string) error {
	return r.Run(ctx, r.ExecArgs(command))
}

// Run executes the devcontainer CLI with args, streaming its output.
// Failures are returned as CLIErrors with ExitDevcontainerCLI.
func (r *Runner) Run(ctx context.Context, args []string) error {
	bin, err := exec.LookPath(r.binary())
	if err != nil {
		return model.WrapCLIError(
			model.ExitDevcontainerCLI,
			fmt.Sprintf("%s not found on PATH (install it with: npm install -g @devcontainers/cli)", r.binary()),
			err,
		)
	}

	if r.Log != nil {
		r.Log("running: %s", r.CommandLine(args))
	}

	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Dir = r.Workspace
	cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr
	if r.Stdin != nil {
		cmd.Stdin = r.Stdin
	}
	if r.Stdout != nil {
		cmd.Stdout = r.Stdout
	}
	if r.Stderr != nil {
		cmd.Stderr = r.Stderr
	}

	if err := cmd.Run(); err != nil {
		sub := r.binary()
		if len(args) > 0 {
			sub += " " + args[0]
		}
		msg := sub + " failed"
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			msg = fmt.Sprintf("%s exited with status %d", sub, exitErr.ExitCode())
		}
		return model.WrapCLIError(model.ExitDevcontainerCLI, msg, err)
	}
	return nil
}
