package docker

import (
	"fmt"
	"os/exec"

	"github.com/shinji-kodama/devc/internal/model"
)

// lookPath is exec.LookPath, replaceable in tests.
var lookPath = exec.LookPath

// Runtime is a resolved container runtime: which one, and the path of its
// CLI binary. The devcontainer CLI receives Binary as --docker-path.
type Runtime struct {
	Name   model.Runtime
	Binary string
}

// DetectRuntime resolves preferred to a concrete runtime.
//
// An explicit docker or podman preference must be installed. With
// RuntimeAuto, docker is tried first, then podman.
func DetectRuntime(preferred model.Runtime) (Runtime, error) {
	candidates := []model.Runtime{model.RuntimeDocker, model.RuntimePodman}
	if preferred != model.RuntimeAuto && preferred != "" {
		if !preferred.IsValid() {
			return Runtime{}, fmt.Errorf("invalid runtime %q", preferred)
		}
		candidates = []model.Runtime{preferred}
	}

	for _, rt := range candidates {
		if path, err := lookPath(rt.String()); err == nil {
			return Runtime{Name: rt, Binary: path}, nil
		}
	}

	return Runtime{}, model.NewCLIError(
		model.ExitRuntimeUnavailable,
		fmt.Sprintf("no container runtime found on PATH (looked for %v)", candidates),
	)
}
