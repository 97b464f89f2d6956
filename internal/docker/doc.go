// Package docker talks to the container runtime on behalf of devc.
//
// This package handles:
//   - Runtime selection (docker or podman) from explicit configuration or
//     the binaries on PATH, passed to callers as a value rather than kept
//     in process-wide state
//   - Engine API client initialization with socket detection for both
//     Docker and Podman's Docker-compatible API
//   - Finding the containers the devcontainer CLI created for a workspace,
//     via the devcontainer.local_folder label
//   - Auditing those containers for settings that would let a process
//     inside rewrite the read-only devcontainer configuration
//
// The package uses github.com/docker/docker/client as the underlying SDK,
// with API version negotiation enabled so it also works against Podman.
package docker
