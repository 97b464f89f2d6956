// check.go implements the "devc check" command.
//
// check validates devcontainer.json statically and, unless --static is
// given, audits the workspace's containers through the Engine API: what
// the configuration asks for and what the running container actually has
// can differ when a container predates a configuration change.
package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/devc/internal/devcontainer"
	"github.com/shinji-kodama/devc/internal/docker"
	"github.com/shinji-kodama/devc/internal/model"
	"github.com/shinji-kodama/devc/internal/workspace"
)

type checkFlags struct {
	// static skips the runtime audit.
	static bool
}

type checkResult struct {
	Workspace string                         `json:"workspace"`
	Config    string                         `json:"config"`
	Issues    []string                       `json:"issues"`
	Mounts    []devcontainer.ValidationError `json:"mountErrors"`
	Findings  []model.Finding                `json:"findings"`
	Audited   bool                           `json:"audited"`
}

func (r *checkResult) problems() int {
	return len(r.Issues) + len(r.Mounts) + len(r.Findings)
}

// NewCheckCommand creates the "check" cobra command.
func NewCheckCommand() *cobra.Command {
	flags := &checkFlags{}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check the devcontainer configuration and running containers",
		Long: `Check that .devcontainer is mounted read-only, that nothing grants
SYS_ADMIN, and that the files the devcontainer CLI needs exist.

Without --static, the workspace's containers are inspected as well.

Exit codes:
  0  no problems
  5  privilege escalation risk (configuration or container)
  1  other problems`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.Context(), cmd.OutOrStdout(), flags)
		},
	}

	cmd.Flags().BoolVar(&flags.static, "static", false, "Only check files; do not contact the container runtime")

	return cmd
}

func runCheck(ctx context.Context, out io.Writer, flags *checkFlags) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}

	path, err := devcontainer.FindDevContainerJSON(e.workspace)
	if err != nil {
		return err
	}
	doc, err := devcontainer.LoadDocument(path)
	if err != nil {
		return err
	}

	result := &checkResult{
		Workspace: e.workspace,
		Config:    path,
		Issues:    devcontainer.ValidateWorkspaceFiles(e.workspace),
		Mounts:    devcontainer.ValidateMounts(doc),
	}

	if gitDir, ok := workspace.LinkedWorktreeGitDir(e.workspace); ok {
		common := commonGitDir(gitDir)
		result.Issues = append(result.Issues, fmt.Sprintf(
			"workspace is a linked git worktree; git will not work in the container unless %s is mounted at the same path (devc mount %s %s)",
			common, common, common))
	}

	if !flags.static {
		findings, err := auditRuntime(ctx, e)
		if err != nil {
			VerboseLog("runtime audit skipped: %v", err)
		} else {
			result.Findings = findings
			result.Audited = true
		}
	}

	if err := printCheck(out, result); err != nil {
		return err
	}

	_, risky := devcontainer.FindPrivilegeEscalation(doc)
	switch {
	case risky || model.HasCritical(result.Findings):
		return model.WrapCLIError(model.ExitPrivilegeEscalation,
			"check failed", model.ErrPrivilegeEscalationRisk)
	case result.problems() > 0:
		return model.NewCLIError(model.ExitGeneralError,
			fmt.Sprintf("check found %d problem(s)", result.problems()))
	}
	return nil
}

// commonGitDir returns the repository's .git directory for a worktree git
// directory of the form <repo>/.git/worktrees/<name>.
func commonGitDir(gitDir string) string {
	if filepath.Base(filepath.Dir(gitDir)) == "worktrees" {
		return filepath.Dir(filepath.Dir(gitDir))
	}
	return gitDir
}

func auditRuntime(ctx context.Context, e *env) ([]model.Finding, error) {
	rt, err := docker.DetectRuntime(e.cfg.Runtime)
	if err != nil {
		return nil, err
	}

	client, err := docker.NewClient(rt.Name)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	if err := client.Ping(ctx); err != nil {
		return nil, err
	}
	return docker.AuditWorkspace(ctx, client, e.workspace)
}

func printCheck(out io.Writer, r *checkResult) error {
	if IsJSONOutput() {
		if r.Issues == nil {
			r.Issues = []string{}
		}
		if r.Mounts == nil {
			r.Mounts = []devcontainer.ValidationError{}
		}
		if r.Findings == nil {
			r.Findings = []model.Finding{}
		}
		return printJSON(out, r)
	}

	fmt.Fprintf(out, "Configuration: %s\n", r.Config)
	for _, issue := range r.Issues {
		fmt.Fprintf(out, "  %s\n", issue)
	}
	for _, v := range r.Mounts {
		fmt.Fprintf(out, "  %s\n", v.Error())
	}
	if r.Audited {
		fmt.Fprintln(out, "Containers:")
		for _, f := range r.Findings {
			fmt.Fprintf(out, "  %s\n", f)
		}
	} else {
		fmt.Fprintln(out, "Containers: not audited")
	}
	if r.problems() == 0 {
		fmt.Fprintln(out, "OK")
	}
	return nil
}
