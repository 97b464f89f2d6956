// container.go finds the containers the devcontainer CLI created for a
// workspace and audits their effective runtime settings.
//
// devc never creates containers through the SDK; "devcontainer up" does.
// The SDK is used read-only, to confirm that the running container honours
// the read-only .devcontainer mount the configuration asks for.
package docker

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/docker/docker/api/types/container"

	"github.com/shinji-kodama/devc/internal/devcontainer"
	"github.com/shinji-kodama/devc/internal/model"
)

// ListWorkspaceContainers returns every container, running or stopped,
// labelled as created for workspace.
func ListWorkspaceContainers(ctx context.Context, cli *Client, workspace string) ([]model.ContainerInfo, error) {
	containers, err := cli.inner.ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: WorkspaceFilter(workspace),
	})
	if err != nil {
		return nil, model.WrapCLIError(
			model.ExitRuntimeUnavailable,
			"failed to list containers",
			err,
		)
	}

	result := make([]model.ContainerInfo, 0, len(containers))
	for _, c := range containers {
		result = append(result, containerToInfo(c))
	}
	return result, nil
}

// containerToInfo converts an API summary to model.ContainerInfo. The API
// returns names with a leading "/", which is stripped.
func containerToInfo(c container.Summary) model.ContainerInfo {
	name := ""
	if len(c.Names) > 0 {
		name = strings.TrimPrefix(c.Names[0], "/")
	}

	return model.ContainerInfo{
		ContainerID:   c.ID,
		ContainerName: name,
		Status:        string(c.State),
		Labels:        c.Labels,
	}
}

// AuditWorkspace inspects every container of workspace and returns the
// combined findings of AuditContainer. No containers means no findings.
func AuditWorkspace(ctx context.Context, cli *Client, workspace string) ([]model.Finding, error) {
	containers, err := ListWorkspaceContainers(ctx, cli, workspace)
	if err != nil {
		return nil, err
	}

	var findings []model.Finding
	for _, c := range containers {
		info, err := cli.inner.ContainerInspect(ctx, c.ContainerID)
		if err != nil {
			return nil, model.WrapCLIError(
				model.ExitRuntimeUnavailable,
				fmt.Sprintf("failed to inspect container %q", c.ContainerName),
				err,
			)
		}

		var hostConfig *container.HostConfig
		if info.ContainerJSONBase != nil {
			hostConfig = info.HostConfig
		}
		findings = append(findings, AuditContainer(c.ContainerID, info.Mounts, hostConfig)...)
	}
	return findings, nil
}

// AuditContainer checks the effective mounts and host configuration of one
// container. It reports:
//   - critical: .devcontainer mounted writable, or writable through a
//     parent mount such as the workspace mount
//   - critical: the container is privileged or has SYS_ADMIN (or ALL) added
//   - critical: a container runtime socket is mounted
//   - warning: .devcontainer is not visible in the container at all
func AuditContainer(id string, mounts []container.MountPoint, hostConfig *container.HostConfig) []model.Finding {
	var findings []model.Finding
	add := func(sev model.Severity, format string, args ...interface{}) {
		findings = append(findings, model.Finding{
			ContainerID: id,
			Severity:    sev,
			Message:     fmt.Sprintf(format, args...),
		})
	}

	target := devcontainer.DevcontainerTarget
	var exact *container.MountPoint
	var parent *container.MountPoint
	for i := range mounts {
		m := &mounts[i]
		dest := path.Clean(m.Destination)
		switch {
		case dest == target:
			exact = m
		case isParentDir(dest, target):
			// The deepest parent wins, as it does in the mount table.
			if parent == nil || len(dest) > len(path.Clean(parent.Destination)) {
				parent = m
			}
		}

		if isRuntimeSocket(m.Source) {
			add(model.SeverityCritical, "container runtime socket %s is mounted at %s", m.Source, m.Destination)
		}
	}

	switch {
	case exact != nil && exact.RW:
		add(model.SeverityCritical, "%s is mounted read-write", target)
	case exact == nil && parent != nil && parent.RW:
		add(model.SeverityCritical, "%s is writable through the %s mount", target, path.Clean(parent.Destination))
	case exact == nil && parent == nil:
		add(model.SeverityWarning, "%s is not mounted", target)
	}

	if hostConfig != nil {
		if hostConfig.Privileged {
			add(model.SeverityCritical, "container is privileged")
		}
		for _, c := range hostConfig.CapAdd {
			if devcontainer.GrantsForbiddenCapability(c) {
				add(model.SeverityCritical, "capability %s is added", c)
			}
		}
	}

	return findings
}

// isParentDir reports whether dir is a proper ancestor of p. Both are
// cleaned container paths.
func isParentDir(dir, p string) bool {
	if dir == "/" {
		return p != "/"
	}
	return strings.HasPrefix(p, dir+"/")
}

func isRuntimeSocket(source string) bool {
	switch filepath.Base(source) {
	case "docker.sock", "podman.sock":
		return true
	}
	return false
}
