// up.go implements "devc up", "devc rebuild" and "devc shell",
// which hand over to the devcontainer CLI.
//
// up and rebuild refuse to start a container from a configuration that
// grants SYS_ADMIN.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/shinji-kodama/devc/internal/devcli"
	"github.com/shinji-kodama/devc/internal/devcontainer"
	"github.com/shinji-kodama/devc/internal/docker"
)

// NewUpCommand creates the "up" cobra command.
func NewUpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Build and start the devcontainer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := newRunner(cmd, true)
			if err != nil {
				return err
			}
			return r.Up(cmd.Context(), false)
		},
	}
}

// NewRebuildCommand creates the "rebuild" cobra command.
func NewRebuildCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rebuild",
		Short: "Recreate the devcontainer so configuration changes take effect",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := newRunner(cmd, true)
			if err != nil {
				return err
			}
			return r.Up(cmd.Context(), true)
		},
	}
}

// NewShellCommand creates the "shell" cobra command.
func NewShellCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "shell [-- command...]",
		Short: "Run a command (default: bash) in the running devcontainer",
		Long: `Run a command inside the running devcontainer.

Examples:
  devc shell
  devc shell -- claude --dangerously-skip-permissions`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := newRunner(cmd, false)
			if err != nil {
				return err
			}
			return r.Exec(cmd.Context(), args)
		},
	}
}

// newRunner resolves the workspace and runtime and returns a devcontainer
// CLI runner wired to the command's streams. With guard set, the
// configuration is checked for privilege escalation first.
func newRunner(cmd *cobra.Command, guard bool) (*devcli.Runner, error) {
	e, err := loadEnv()
	if err != nil {
		return nil, err
	}

	path, err := devcontainer.FindDevContainerJSON(e.workspace)
	if err != nil {
		return nil, err
	}
	if guard {
		doc, err := devcontainer.LoadDocument(path)
		if err != nil {
			return nil, err
		}
		if err := devcontainer.CheckPrivilegeEscalation(doc, path); err != nil {
			return nil, err
		}
	}

	rt, err := docker.DetectRuntime(e.cfg.Runtime)
	if err != nil {
		return nil, err
	}
	VerboseLog("using %s at %s", rt.Name, rt.Binary)

	return &devcli.Runner{
		Binary:     e.cfg.DevcontainerCLI,
		DockerPath: rt.Binary,
		Workspace:  e.workspace,
		Stdin:      cmd.InOrStdin(),
		Stdout:     cmd.OutOrStdout(),
		Stderr:     cmd.ErrOrStderr(),
		Log:        VerboseLog,
	}, nil
}
