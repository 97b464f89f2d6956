package model

import (
	"fmt"
	"strings"
)

// Runtime identifies the container runtime the devcontainer CLI drives.
// The value is resolved once per invocation (config file, then --runtime
// flag, then auto-detection) and passed explicitly to each component.
type Runtime string

const (
	// RuntimeAuto asks devc to detect the runtime from the binaries on PATH.
	RuntimeAuto Runtime = "auto"

	// RuntimeDocker uses the docker CLI and Docker Engine socket.
	RuntimeDocker Runtime = "docker"

	// RuntimePodman uses the podman CLI and its Docker-compatible API socket.
	RuntimePodman Runtime = "podman"
)

// String returns the string representation of Runtime.
func (r Runtime) String() string {
	return string(r)
}

// IsValid checks whether the Runtime value is one of the predefined values.
func (r Runtime) IsValid() bool {
	switch r {
	case RuntimeAuto, RuntimeDocker, RuntimePodman:
		return true
	default:
		return false
	}
}

// ParseRuntime converts a string to a Runtime. An empty string means auto.
func ParseRuntime(s string) (Runtime, error) {
	if s == "" {
		return RuntimeAuto, nil
	}
	rt := Runtime(strings.ToLower(s))
	if !rt.IsValid() {
		return "", fmt.Errorf("invalid runtime: %q (valid: auto, docker, podman)", s)
	}
	return rt, nil
}

// ContainerInfo holds runtime information about a container that belongs
// to a workspace. It is fetched from the Docker API, never persisted.
type ContainerInfo struct {
	// ContainerID is the container identifier.
	ContainerID string `json:"containerId"`

	// ContainerName is the human-readable container name without the
	// leading "/" the Docker API adds.
	ContainerName string `json:"containerName"`

	// Status is the container state (e.g., "running", "exited").
	Status string `json:"status"`

	// Labels is the full set of labels on the container. The devcontainer
	// CLI sets devcontainer.local_folder and devcontainer.config_file.
	Labels map[string]string `json:"labels,omitempty"`
}

// Severity grades an audit finding.
type Severity string

const (
	// SeverityWarning marks a finding that weakens isolation but is not
	// directly exploitable.
	SeverityWarning Severity = "warning"

	// SeverityCritical marks a finding that lets a process inside the
	// container alter the configuration used for the next rebuild.
	SeverityCritical Severity = "critical"
)

// Finding is one problem reported by the runtime audit of a workspace
// container.
type Finding struct {
	// ContainerID identifies the audited container.
	ContainerID string `json:"containerId"`

	// Severity grades the finding.
	Severity Severity `json:"severity"`

	// Message describes the problem.
	Message string `json:"message"`
}

// String formats the finding for text output.
func (f Finding) String() string {
	id := f.ContainerID
	if len(id) > 12 {
		id = id[:12]
	}
	return fmt.Sprintf("[%s] %s: %s", f.Severity, id, f.Message)
}

// HasCritical reports whether any finding is critical.
func HasCritical(findings []Finding) bool {
	for _, f := range findings {
		if f.Severity == SeverityCritical {
			return true
		}
	}
	return false
}
