// Package workspace resolves the paths devc works with: the workspace root
// whose .devcontainer directory is managed, and host paths the user wants
// mounted into the container.
//
// The workspace root is found with `git rev-parse --show-toplevel` so devc
// can be run from any subdirectory of a repository. Outside a repository
// the given directory itself is the workspace. We shell out to git rather
// than using a Go git library because only this single plumbing query is
// needed.
package workspace

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/shinji-kodama/devc/internal/model"
)

// Resolve returns the absolute workspace root for dir.
//
// If dir is inside a git working tree, the top level of that tree is
// returned. Otherwise dir itself, made absolute, is the workspace. dir
// must exist.
func Resolve(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve workspace %s: %w", dir, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", model.InvalidPathError(abs, err)
	}
	if !info.IsDir() {
		return "", model.WrapCLIError(model.ExitInvalidPath, fmt.Sprintf("workspace %s is not a directory", abs), model.ErrInvalidPath)
	}

	top, err := GitTopLevel(abs)
	if err != nil {
		// Not a git repository (or git is not installed): the directory
		// itself is the workspace.
		return abs, nil
	}
	return top, nil
}

// GitTopLevel returns the top-level directory of the git working tree
// containing dir.
func GitTopLevel(dir string) (string, error) {
	output, err := runGit(dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", err
	}
	return filepath.Clean(strings.TrimSpace(output)), nil
}

// ResolveHostPath turns a user-supplied host path into an absolute, clean
// path that exists. A leading "~" is expanded to the home directory.
//
// Returns a CLIError wrapping model.ErrInvalidPath if the path does not
// exist.
func ResolveHostPath(p string) (string, error) {
	if p == "" {
		return "", model.WrapCLIError(model.ExitInvalidPath, "host path must not be empty", model.ErrInvalidPath)
	}

	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to expand %s: %w", p, err)
		}
		p = filepath.Join(home, strings.TrimPrefix(p, "~"))
	}

	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", p, err)
	}

	if _, err := os.Stat(abs); err != nil {
		return "", model.InvalidPathError(abs, err)
	}
	return abs, nil
}

// LinkedWorktreeGitDir reports whether ws is a linked git worktree and
// returns the git directory its .git file points to.
//
// A linked worktree has a .git FILE containing "gitdir: <path>" instead of
// a .git directory. That path lies outside the workspace, so git does not
// work inside a container that only mounts the workspace.
func LinkedWorktreeGitDir(ws string) (string, bool) {
	gitPath := filepath.Join(ws, ".git")

	// Lstat: a .git symlink to a directory is not a worktree pointer.
	info, err := os.Lstat(gitPath)
	if err != nil || info.IsDir() {
		return "", false
	}

	content, err := os.ReadFile(gitPath)
	if err != nil {
		return "", false
	}
	rest, ok := strings.CutPrefix(string(content), "gitdir:")
	if !ok {
		return "", false
	}

	dir := strings.TrimSpace(rest)
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(ws, dir)
	}
	return filepath.Clean(dir), true
}

// runGit executes a git command in dir and returns its stdout.
//
// On failure it returns a model.CLIError with ExitGitError that includes
// git's stderr for diagnostics.
func runGit(dir string, args ...string) (string, error) {
	// -C makes git change into dir itself, so the process working
	// directory is never touched.
	fullArgs := append([]string{"-C", dir}, args...)

	// #nosec G204 -- args are constructed internally
	cmd := exec.Command("git", fullArgs...)

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		stderrStr := strings.TrimSpace(stderr.String())
		message := fmt.Sprintf("git %s failed", strings.Join(args, " "))
		if stderrStr != "" {
			message = fmt.Sprintf("%s: %s", message, stderrStr)
		}
		return "", model.WrapCLIError(model.ExitGitError, message, err)
	}

	return stdout.String(), nil
}
