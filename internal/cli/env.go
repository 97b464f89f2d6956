package cli

import (
	"github.com/shinji-kodama/devc/internal/config"
	"github.com/shinji-kodama/devc/internal/devcontainer"
	"github.com/shinji-kodama/devc/internal/model"
	"github.com/shinji-kodama/devc/internal/workspace"
)

// env is the resolved configuration of one invocation: the config file
// merged with global flags, and the workspace root. Commands build it once
// and pass its values down.
type env struct {
	cfg       *config.Config
	workspace string
}

func loadEnv() (*env, error) {
	cfg, err := config.LoadDefault()
	if err != nil {
		return nil, model.WrapCLIError(model.ExitGeneralError, "failed to load configuration", err)
	}

	if runtimeName != "" {
		rt, err := model.ParseRuntime(runtimeName)
		if err != nil {
			return nil, model.WrapCLIError(model.ExitGeneralError, "invalid --runtime", err)
		}
		cfg.Runtime = rt
	}

	dir := workspaceDir
	if dir == "" {
		dir = "."
	}
	ws, err := workspace.Resolve(dir)
	if err != nil {
		return nil, err
	}

	VerboseLog("workspace: %s", ws)
	VerboseLog("remote user: %s, runtime: %s", cfg.RemoteUser, cfg.Runtime)
	return &env{cfg: cfg, workspace: ws}, nil
}

// reconciler locates the workspace's devcontainer.json and returns a
// Reconciler for it.
func (e *env) reconciler() (*devcontainer.Reconciler, error) {
	path, err := devcontainer.FindDevContainerJSON(e.workspace)
	if err != nil {
		return nil, err
	}
	VerboseLog("configuration: %s", path)
	return devcontainer.NewReconciler(path, e.cfg.RemoteUser), nil
}
