// Package cli implements the cobra-based CLI commands for devc.
//
// Each subcommand is defined in its own file within this package. This file
// defines the root command that serves as the parent for all subcommands
// and handles global flags, error output and exit codes.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/devc/internal/model"
)

// Global flag variables shared across all subcommands.
// These are bound to cobra persistent flags on the root command,
// which makes them available to every subcommand automatically.
var (
	// jsonOutput controls whether command output is formatted as JSON.
	jsonOutput bool

	// verbose enables detailed logging output on stderr.
	verbose bool

	// workspaceDir is the --workspace flag. Empty means the current
	// directory.
	workspaceDir string

	// runtimeName is the --runtime flag. Empty means the config file value.
	runtimeName string
)

// Version, Commit and Date are set at build time via ldflags.
// They are injected from the main package to display version information.
var (
	// Version is the semantic version of the binary (e.g., "1.0.0").
	Version = "dev"

	// Commit is the Git commit hash the binary was built from.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// NewRootCommand creates and configures the root cobra command.
// The root command itself only provides help text and global flags.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "devc",
		Short: "Sandboxed devcontainers with user mounts that survive template updates",
		Long: `devc writes a sandbox devcontainer template into a workspace and drives
the devcontainer CLI to build and enter it.

Bind mounts added with "devc mount" are kept when "devc init" rewrites
the template. The .devcontainer directory is mounted read-only inside the
container, and devc refuses to touch a configuration that grants
SYS_ADMIN, which would let the container undo that.`,

		// Errors are printed once by Execute, as text or JSON.
		SilenceUsage:  true,
		SilenceErrors: true,

		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),
	}

	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&workspaceDir, "workspace", "w", "",
		"Workspace folder (default: git top level of the current directory)")
	rootCmd.PersistentFlags().StringVar(&runtimeName, "runtime", "",
		"Container runtime: auto, docker, podman (default: from config)")

	rootCmd.AddCommand(NewInitCommand())
	rootCmd.AddCommand(NewMountCommand())
	rootCmd.AddCommand(NewUnmountCommand())
	rootCmd.AddCommand(NewMountsCommand())
	rootCmd.AddCommand(NewUpCommand())
	rootCmd.AddCommand(NewRebuildCommand())
	rootCmd.AddCommand(NewShellCommand())
	rootCmd.AddCommand(NewCheckCommand())

	return rootCmd
}

// Execute runs the root command and exits with the error's exit code.
// This is the main entry point called from main.go.
func Execute(rootCmd *cobra.Command) {
	if err := rootCmd.Execute(); err != nil {
		var cliErr *model.CLIError
		if errors.As(err, &cliErr) && error(cliErr) == err {
			printError(os.Stderr, cliErr.Message, cliErr.Err)
		} else {
			// Wrappers such as PreservedMountsError carry extra detail in
			// their own message.
			printError(os.Stderr, err.Error(), nil)
		}
		os.Exit(int(model.ExitCodeOf(err)))
	}
}

// printError outputs an error message in the appropriate format
// (JSON or text) based on the --json global flag.
func printError(w io.Writer, message string, underlying error) {
	if jsonOutput {
		errObj := map[string]interface{}{
			"message": message,
		}
		if underlying != nil {
			errObj["detail"] = underlying.Error()
		}
		data, _ := json.MarshalIndent(map[string]interface{}{"error": errObj}, "", "  ")
		fmt.Fprintln(w, string(data))
		return
	}

	if underlying != nil {
		fmt.Fprintf(w, "Error: %s: %v\n", message, underlying)
	} else {
		fmt.Fprintf(w, "Error: %s\n", message)
	}
}

// printJSON writes v to w as indented JSON.
func printJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// VerboseLog prints a message to stderr only when verbose mode is enabled.
func VerboseLog(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, "[verbose] "+format+"\n", args...)
	}
}

// IsJSONOutput returns whether the --json flag is set.
func IsJSONOutput() bool {
	return jsonOutput
}
