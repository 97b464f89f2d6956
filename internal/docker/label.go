package docker

import (
	"github.com/docker/docker/api/types/filters"
)

// Labels the devcontainer CLI puts on the containers it creates. devc
// never sets labels itself; it only reads these to find a workspace's
// containers.
const (
	// LabelLocalFolder holds the absolute host path of the workspace.
	LabelLocalFolder = "devcontainer.local_folder"

	// LabelConfigFile holds the absolute host path of devcontainer.json.
	LabelConfigFile = "devcontainer.config_file"
)

// WorkspaceFilter returns an Engine API filter matching containers created
// for workspace.
func WorkspaceFilter(workspace string) filters.Args {
	return filters.NewArgs(
		filters.Arg("label", LabelLocalFolder+"="+workspace),
	)
}
