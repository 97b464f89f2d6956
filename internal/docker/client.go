package docker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/docker/docker/client"

	"github.com/shinji-kodama/devc/internal/model"
)

// defaultPingTimeout is the maximum duration to wait for the daemon to
// answer a Ping. Docker Desktop and podman machine can be slow to respond.
const defaultPingTimeout = 5 * time.Second

// Client wraps the Engine API client.
//
// Usage:
//
//	c, err := docker.NewClient(rt)
//	if err != nil { /* handle */ }
//	defer c.Close()
//	if err := c.Ping(ctx); err != nil { /* runtime not running */ }
type Client struct {
	inner *client.Client
}

// NewClient creates an Engine API client for the given runtime.
//
// The host is chosen in this order:
//  1. DOCKER_HOST, or CONTAINER_HOST for podman, if set
//  2. The first existing socket among the runtime's well-known paths
//
// Returns a model.CLIError with ExitRuntimeUnavailable if no socket is
// found or the client cannot be created.
func NewClient(rt model.Runtime) (*Client, error) {
	if host := hostFromEnv(rt); host != "" {
		return newClientWithHost(host)
	}

	host, err := detectUnixSocket(socketCandidates(rt))
	if err != nil {
		return nil, model.WrapCLIError(
			model.ExitRuntimeUnavailable,
			fmt.Sprintf("%s socket not found", rt),
			err,
		)
	}
	return newClientWithHost(host)
}

func hostFromEnv(rt model.Runtime) string {
	if rt == model.RuntimePodman {
		if h := os.Getenv("CONTAINER_HOST"); h != "" {
			return h
		}
	}
	return os.Getenv("DOCKER_HOST")
}

// newClientWithHost creates a client connected to host. API version
// negotiation keeps it compatible with older daemons and with Podman.
func newClientWithHost(host string) (*Client, error) {
	c, err := client.NewClientWithOpts(
		client.WithHost(host),
		client.WithAPIVersionNegotiation(),
	)
	if err != nil {
		return nil, model.WrapCLIError(
			model.ExitRuntimeUnavailable,
			fmt.Sprintf("failed to create container runtime client for host %q", host),
			err,
		)
	}
	return &Client{inner: c}, nil
}

// socketCandidates lists the well-known socket paths for rt, most
// preferred first.
func socketCandidates(rt model.Runtime) []string {
	home, _ := os.UserHomeDir()

	if rt == model.RuntimePodman {
		var paths []string
		if xdg := os.Getenv("XDG_RUNTIME_DIR"); xdg != "" {
			paths = append(paths, filepath.Join(xdg, "podman", "podman.sock"))
		}
		paths = append(paths, "/run/podman/podman.sock")
		if runtime.GOOS == "darwin" && home != "" {
			paths = append(paths, filepath.Join(home, ".local", "share", "containers", "podman", "machine", "podman.sock"))
		}
		return paths
	}

	paths := []string{"/var/run/docker.sock"}
	if runtime.GOOS == "darwin" && home != "" {
		paths = append(paths, filepath.Join(home, ".docker", "run", "docker.sock"))
	}
	return paths
}

// detectUnixSocket returns the host URI of the first existing path.
// Existence is checked rather than connectivity; Ping verifies the daemon.
func detectUnixSocket(paths []string) (string, error) {
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return "unix://" + path, nil
		}
	}
	return "", fmt.Errorf("no socket found at any of: %v (is the runtime running?)", paths)
}

// Ping verifies that the daemon is reachable.
func (c *Client) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer cancel()

	if _, err := c.inner.Ping(pingCtx); err != nil {
		return model.WrapCLIError(
			model.ExitRuntimeUnavailable,
			"container runtime is not responding (is it running?)",
			err,
		)
	}
	return nil
}

// Close releases the client's resources. Safe to call more than once.
func (c *Client) Close() error {
	if c.inner != nil {
		return c.inner.Close()
	}
	return nil
}
