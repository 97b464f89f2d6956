package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/devc/internal/devcontainer"
	"github.com/shinji-kodama/devc/internal/model"
	"github.com/shinji-kodama/devc/internal/workspace"
)

type mountFlags struct {
	readonly bool
}

// NewMountCommand creates the "mount" cobra command.
func NewMountCommand() *cobra.Command {
	flags := &mountFlags{}

	cmd := &cobra.Command{
		Use:   "mount <host-path> <container-path>",
		Short: "Add or replace a bind mount in devcontainer.json",
		Long: `Bind-mount a host path into the container.

An existing mount with the same container path is replaced. The mount is
kept across "devc init". Run "devc rebuild" to apply it.

Examples:
  devc mount ~/datasets /data --readonly
  devc mount ./cache /home/node/.cache`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMount(cmd.Context(), cmd.OutOrStdout(), args[0], args[1], flags)
		},
	}

	cmd.Flags().BoolVar(&flags.readonly, "readonly", false, "Mount read-only")

	return cmd
}

func runMount(_ context.Context, out io.Writer, hostArg, containerPath string, flags *mountFlags) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}

	hostPath, err := workspace.ResolveHostPath(hostArg)
	if err != nil {
		return err
	}

	r, err := e.reconciler()
	if err != nil {
		return err
	}
	if err := r.Upsert(hostPath, containerPath, flags.readonly); err != nil {
		return err
	}

	m := devcontainer.NewBindMount(hostPath, containerPath, flags.readonly)
	if IsJSONOutput() {
		return printJSON(out, mountView(m.String()))
	}
	fmt.Fprintf(out, "Mounted %s\n", m.String())
	fmt.Fprintln(out, `Run "devc rebuild" to apply.`)
	return nil
}

// NewUnmountCommand creates the "unmount" cobra command.
func NewUnmountCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unmount <container-path>",
		Short: "Remove the mount targeting a container path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUnmount(cmd.Context(), cmd.OutOrStdout(), args[0])
		},
	}
}

func runUnmount(_ context.Context, out io.Writer, containerPath string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}

	r, err := e.reconciler()
	if err != nil {
		return err
	}

	removed, err := r.Remove(containerPath)
	if err != nil {
		return err
	}
	if !removed {
		return model.NewCLIError(model.ExitGeneralError,
			fmt.Sprintf("no mount targets %s", containerPath))
	}

	if IsJSONOutput() {
		return printJSON(out, map[string]string{"removed": containerPath})
	}
	fmt.Fprintf(out, "Removed mount at %s\n", containerPath)
	return nil
}
