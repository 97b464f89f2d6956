package devcli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinji-kodama/devc/internal/model"
)

func TestUpArgs(t *testing.T) {
	r := &Runner{Workspace: "/home/me/my proj"}

	assert.Equal(t,
		[]string{"up", "--workspace-folder", "/home/me/my proj"},
		r.UpArgs(false))
	assert.Equal(t,
		[]string{"up", "--workspace-folder", "/home/me/my proj", "--remove-existing-container"},
		r.UpArgs(true))
}

func TestUpArgs_DockerPath(t *testing.T) {
	r := &Runner{Workspace: "/w", DockerPath: "/usr/bin/podman"}

	assert.Equal(t,
		[]string{"up", "--workspace-folder", "/w", "--docker-path", "/usr/bin/podman"},
		r.UpArgs(false))
}

func TestExecArgs(t *testing.T) {
	r := &Runner{Workspace: "/w"}

	assert.Equal(t, []string{"exec", "--workspace-folder", "/w", "bash"}, r.ExecArgs(nil))
	assert.Equal(t,
		[]string{"exec", "--workspace-folder", "/w", "claude", "--help"},
		r.ExecArgs([]string{"claude", "--help"}))
}

func TestCommandLine(t *testing.T) {
	r := &Runner{Workspace: "/home/me/my proj"}

	assert.Equal(t,
		"devcontainer up --workspace-folder '/home/me/my proj'",
		r.CommandLine(r.UpArgs(false)))

	r.Binary = "/opt/bin/devcontainer"
	assert.Equal(t,
		"/opt/bin/devcontainer exec --workspace-folder '/home/me/my proj' sh -c 'echo $HOME'",
		r.CommandLine(r.ExecArgs([]string{"sh", "-c", "echo $HOME"})))
}

func TestRun_Success(t *testing.T) {
	bin, err := exec.LookPath("echo")
	if err != nil {
		t.Skip("echo not available")
	}

	var out bytes.Buffer
	var logged string
	r := &Runner{
		Binary:    bin,
		Workspace: t.TempDir(),
		Stdout:    &out,
		Log: func(format string, args ...interface{}) {
			logged = fmt.Sprintf(format, args...)
		},
	}

	require.NoError(t, r.Run(context.Background(), []string{"hello", "world"}))
	assert.Equal(t, "hello world\n", out.String())
	assert.Contains(t, logged, "hello world")
}

func TestRun_Failure(t *testing.T) {
	bin, err := exec.LookPath("false")
	if err != nil {
		t.Skip("false not available")
	}

	r := &Runner{Binary: bin, Workspace: t.TempDir()}
	err = r.Up(context.Background(), false)
	require.Error(t, err)

	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, model.ExitDevcontainerCLI, cliErr.Code)
	assert.Contains(t, cliErr.Message, "exited with status 1")
}

func TestRun_BinaryMissing(t *testing.T) {
	r := &Runner{Binary: "devc-test-no-such-binary", Workspace: t.TempDir()}

	err := r.Exec(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, model.ExitDevcontainerCLI, model.ExitCodeOf(err))
	assert.Contains(t, err.Error(), "not found on PATH")
}
