// Package config loads the optional devc user configuration file.
//
// The file is YAML and every key is optional:
//
//	remoteUser: node
//	runtime: auto
//	devcontainerCli: devcontainer
//
// Values are resolved once per invocation and handed to the components that
// need them; nothing here is cached in package-level state.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/shinji-kodama/devc/internal/model"
)

// Defaults applied when the file or a key is absent.
const (
	DefaultRemoteUser      = "node"
	DefaultDevcontainerCLI = "devcontainer"
)

// EnvConfigPath overrides the config file location.
const EnvConfigPath = "DEVC_CONFIG"

// userRegex limits remote user names to what can safely be substituted
// into /home/<user> paths and mount specifications.
var userRegex = regexp.MustCompile(`^[a-z_][a-z0-9_-]{0,31}$`)

// Config is the devc user configuration.
type Config struct {
	// RemoteUser is the user inside the container. It determines the home
	// paths in the default mount set and the template.
	RemoteUser string `yaml:"remoteUser"`

	// Runtime selects docker, podman, or auto-detection.
	Runtime model.Runtime `yaml:"runtime"`

	// DevcontainerCLI is the devcontainer CLI binary name or path.
	DevcontainerCLI string `yaml:"devcontainerCli"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		RemoteUser:      DefaultRemoteUser,
		Runtime:         model.RuntimeAuto,
		DevcontainerCLI: DefaultDevcontainerCLI,
	}
}

// Path returns the config file location: $DEVC_CONFIG, else
// $XDG_CONFIG_HOME/devc/config.yaml, else ~/.config/devc/config.yaml.
func Path() (string, error) {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p, nil
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "devc", "config.yaml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", "devc", "config.yaml"), nil
}

// Load reads the config file at path. A missing file yields Default().
// Keys absent from the file keep their default values.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	// An explicit empty value in the file means "use the default".
	if cfg.RemoteUser == "" {
		cfg.RemoteUser = DefaultRemoteUser
	}
	if cfg.Runtime == "" {
		cfg.Runtime = model.RuntimeAuto
	}
	if cfg.DevcontainerCLI == "" {
		cfg.DevcontainerCLI = DefaultDevcontainerCLI
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadDefault loads the config from Path().
func LoadDefault() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return Load(path)
}

// Validate checks field values.
func (c *Config) Validate() error {
	if !userRegex.MatchString(c.RemoteUser) {
		return fmt.Errorf("remoteUser %q is not a valid user name", c.RemoteUser)
	}
	if !c.Runtime.IsValid() {
		return fmt.Errorf("runtime %q is not one of auto, docker, podman", c.Runtime)
	}
	return nil
}
