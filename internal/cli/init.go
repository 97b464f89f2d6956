// init.go implements the "devc init" command.
//
// init writes the sandbox template into <workspace>/.devcontainer. Custom
// mounts already in devcontainer.json are extracted before the template
// overwrites it and merged back afterwards, strictly in that order.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/devc/internal/devcontainer"
	"github.com/shinji-kodama/devc/internal/template"
)

type initFlags struct {
	// force overwrites a configuration that cannot be reconciled
	// (malformed, or granting SYS_ADMIN). Its custom mounts are discarded.
	force bool
}

type initResult struct {
	Workspace      string   `json:"workspace"`
	Files          []string `json:"files"`
	RestoredMounts []string `json:"restoredMounts"`
	Discarded      bool     `json:"discarded,omitempty"`
	Shadowed       string   `json:"shadowed,omitempty"`
}

// NewInitCommand creates the "init" cobra command.
func NewInitCommand() *cobra.Command {
	flags := &initFlags{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the devcontainer template, keeping custom mounts",
		Long: `Write the sandbox devcontainer template into .devcontainer/.

Mounts you added to devcontainer.json (for example with "devc mount") are
kept. Everything else in devcontainer.json is replaced by the template.

Examples:
  devc init
  devc init --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd.Context(), cmd.OutOrStdout(), flags)
		},
	}

	cmd.Flags().BoolVar(&flags.force, "force", false,
		"Overwrite a malformed or privileged configuration, discarding its custom mounts")

	return cmd
}

func runInit(_ context.Context, out io.Writer, flags *initFlags) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}

	// The template always lands in .devcontainer/devcontainer.json, but
	// custom mounts are read from whichever file is in use now, which may
	// be the root-level .devcontainer.json.
	path := devcontainer.DefaultConfigPath(e.workspace)
	r := devcontainer.NewReconciler(path, e.cfg.RemoteUser)

	source := path
	if found, ferr := devcontainer.FindDevContainerJSON(e.workspace); ferr == nil {
		source = found
	}
	src := devcontainer.NewReconciler(source, e.cfg.RemoteUser)
	shadowed := ""
	if source != path {
		shadowed = source
	}

	// Step 1: decide whether the existing document can be reconciled.
	discard := false
	doc, err := devcontainer.LoadDocument(source)
	switch {
	case err == nil:
		if perr := devcontainer.CheckPrivilegeEscalation(doc, source); perr != nil {
			if !flags.force {
				return perr
			}
			discard = true
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		if !flags.force {
			return err
		}
		discard = true
	}

	// Step 2: extract custom mounts before anything is overwritten.
	var preserved []string
	if !discard {
		preserved, err = src.Extract()
		if err != nil {
			if !flags.force {
				return err
			}
			preserved, discard = nil, true
		}
	}
	if discard {
		VerboseLog("--force: discarding existing configuration %s", source)
	} else {
		VerboseLog("preserving %d custom mount(s) from %s", len(preserved), source)
	}

	// Step 3: materialize the template.
	files, err := template.Materialize(e.workspace, template.Data{
		Name:       filepath.Base(e.workspace),
		RemoteUser: e.cfg.RemoteUser,
	})
	if err != nil {
		if len(preserved) > 0 {
			return fmt.Errorf("failed to write template (custom mounts were %v): %w", preserved, err)
		}
		return fmt.Errorf("failed to write template: %w", err)
	}
	for _, f := range files {
		VerboseLog("wrote %s", f)
	}

	// Step 4: merge the preserved mounts back.
	if err := r.Merge(preserved); err != nil {
		return err
	}

	result := initResult{
		Workspace:      e.workspace,
		Files:          files,
		RestoredMounts: preserved,
		Discarded:      discard,
		Shadowed:       shadowed,
	}
	if result.RestoredMounts == nil {
		result.RestoredMounts = []string{}
	}

	if IsJSONOutput() {
		return printJSON(out, result)
	}

	fmt.Fprintf(out, "Initialized devcontainer in %s\n", filepath.Join(e.workspace, ".devcontainer"))
	for _, m := range preserved {
		fmt.Fprintf(out, "  kept mount: %s\n", m)
	}
	if discard {
		fmt.Fprintln(out, "  previous configuration was discarded (--force)")
	}
	if shadowed != "" {
		fmt.Fprintf(out, "  %s is now shadowed by %s and can be removed\n", shadowed, path)
	}
	return nil
}
