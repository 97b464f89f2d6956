package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/devc/internal/devcontainer"
	"github.com/shinji-kodama/devc/internal/model"
)

type mountsFlags struct {
	// all includes the template's default mounts.
	all bool
}

// mountJSON is the JSON representation of one mount.
type mountJSON struct {
	Spec     string `json:"spec"`
	Source   string `json:"source,omitempty"`
	Target   string `json:"target,omitempty"`
	Type     string `json:"type,omitempty"`
	ReadOnly bool   `json:"readonly"`
	Default  bool   `json:"default"`
}

func mountView(spec string) mountJSON {
	v := mountJSON{Spec: spec}
	if m, err := devcontainer.ParseMount(spec); err == nil {
		v.Source = m.Source
		v.Target = m.Target
		v.Type = m.Type
		v.ReadOnly = m.ReadOnly
	}
	return v
}

// NewMountsCommand creates the "mounts" cobra command.
func NewMountsCommand() *cobra.Command {
	flags := &mountsFlags{}

	cmd := &cobra.Command{
		Use:   "mounts",
		Short: "List custom mounts",
		Long: `List the mounts in devcontainer.json that are not part of the template.
These are the mounts "devc init" keeps.

Examples:
  devc mounts
  devc mounts --all --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMounts(cmd.Context(), cmd.OutOrStdout(), flags)
		},
	}

	cmd.Flags().BoolVar(&flags.all, "all", false, "Include the template's default mounts")

	return cmd
}

func runMounts(_ context.Context, out io.Writer, flags *mountsFlags) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	r, err := e.reconciler()
	if err != nil {
		return err
	}

	var views []mountJSON
	if flags.all {
		doc, err := devcontainer.LoadDocument(r.Path)
		if err != nil {
			return err
		}
		specs, _, err := doc.Mounts()
		if err != nil {
			return model.MalformedConfigError(r.Path, err)
		}
		for _, s := range specs {
			v := mountView(s)
			v.Default = devcontainer.IsDefaultMount(s, r.Defaults)
			views = append(views, v)
		}
	} else {
		custom, err := r.CustomMounts()
		if err != nil {
			return err
		}
		for _, s := range custom {
			views = append(views, mountView(s))
		}
	}

	if IsJSONOutput() {
		if views == nil {
			views = []mountJSON{}
		}
		return printJSON(out, views)
	}

	if len(views) == 0 {
		fmt.Fprintln(out, "No custom mounts.")
		return nil
	}
	for _, v := range views {
		if v.Default {
			fmt.Fprintf(out, "%s (default)\n", v.Spec)
		} else {
			fmt.Fprintln(out, v.Spec)
		}
	}
	return nil
}
