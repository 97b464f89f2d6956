package devcontainer

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

// MountTypeBind is the only mount type devc creates.
const MountTypeBind = "bind"

// Mount is a parsed mount specification string such as
//
//	source=/home/me/data,target=/data,type=bind,readonly
//
// Target is the identity key: two specifications describe the same mount
// when their targets are equal, whatever their source, type or flags.
type Mount struct {
	// Source is the host path (bind) or volume name (volume).
	Source string

	// Target is the path inside the container.
	Target string

	// Type is the mount type, e.g. "bind" or "volume".
	Type string

	// ReadOnly is set by a bare "readonly" (or "ro") component.
	ReadOnly bool

	// Extra holds components devc does not interpret (e.g. "consistency=cached"),
	// in their original form and order.
	Extra []string
}

// ErrNoTarget is returned by ParseMount for a specification without a
// target component.
var ErrNoTarget = errors.New("mount specification has no target")

// ErrDefaultTarget is returned when a mount operation names a target the
// template owns.
var ErrDefaultTarget = errors.New("target belongs to the template")

// ParseMount splits a mount specification into its comma-separated
// key=value components.
//
// The docker --mount aliases are accepted on input: "src" for source and
// "dst"/"destination" for target.
func ParseMount(spec string) (Mount, error) {
	var m Mount
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		key, value, hasValue := strings.Cut(part, "=")
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "source", "src":
			m.Source = value
		case "target", "dst", "destination":
			m.Target = value
		case "type":
			m.Type = value
		case "readonly", "ro":
			m.ReadOnly = !hasValue || value == "true" || value == "1"
		default:
			m.Extra = append(m.Extra, part)
		}
	}

	if m.Target == "" {
		return Mount{}, fmt.Errorf("%w: %q", ErrNoTarget, spec)
	}
	return m, nil
}

// NewBindMount builds a bind mount from a host path to a container path.
func NewBindMount(hostPath, containerPath string, readonly bool) Mount {
	return Mount{
		Source:   hostPath,
		Target:   containerPath,
		Type:     MountTypeBind,
		ReadOnly: readonly,
	}
}

// String formats the mount as source=...,target=...,type=...[,readonly].
// Components in Extra are emitted between type and readonly.
func (m Mount) String() string {
	parts := make([]string, 0, 4+len(m.Extra))
	if m.Source != "" {
		parts = append(parts, "source="+m.Source)
	}
	parts = append(parts, "target="+m.Target)

	typ := m.Type
	if typ == "" {
		typ = MountTypeBind
	}
	parts = append(parts, "type="+typ)
	parts = append(parts, m.Extra...)

	if m.ReadOnly {
		parts = append(parts, "readonly")
	}
	return strings.Join(parts, ",")
}

// Validate checks that a mount devc is about to write is well-formed:
// both paths absolute and free of commas, which would break the
// comma-separated grammar.
func (m Mount) Validate() error {
	for _, p := range []struct{ name, value string }{
		{"host path", m.Source},
		{"container path", m.Target},
	} {
		if p.value == "" {
			return fmt.Errorf("%s must not be empty", p.name)
		}
		if !path.IsAbs(p.value) {
			return fmt.Errorf("%s %q must be absolute", p.name, p.value)
		}
		if strings.Contains(p.value, ",") {
			return fmt.Errorf("%s %q must not contain a comma", p.name, p.value)
		}
	}
	return nil
}

// SameTarget reports whether the mount's target is the container path p.
// Both sides are cleaned so "/data/" and "/data" match, but
// "/workspace/.devcontainer-extra" never matches "/workspace/.devcontainer".
func (m Mount) SameTarget(p string) bool {
	return cleanTarget(m.Target) == cleanTarget(p)
}

// TargetOf returns the target of a mount specification string, or false
// if it has none.
func TargetOf(spec string) (string, bool) {
	m, err := ParseMount(spec)
	if err != nil {
		return "", false
	}
	return m.Target, true
}

func cleanTarget(p string) string {
	if p == "" {
		return ""
	}
	return path.Clean(p)
}

// DevcontainerTarget is where the template mounts the workspace's
// .devcontainer directory, read-only.
const DevcontainerTarget = "/workspace/.devcontainer"

// DefaultTargets returns the container paths the template always mounts
// for the given remote user. Mounts with these targets are regenerated by
// the template and are never preserved as custom mounts.
func DefaultTargets(user string) []string {
	home := "/home/" + user
	return []string{
		"/commandhistory",
		home + "/.claude",
		home + "/.config/gh",
		home + "/.gitconfig",
		DevcontainerTarget,
	}
}

// IsDefaultMount reports whether spec targets one of defaults.
// Specifications without a target are never default.
func IsDefaultMount(spec string, defaults []string) bool {
	target, ok := TargetOf(spec)
	if !ok {
		return false
	}
	return IsDefaultTarget(target, defaults)
}

// IsDefaultTarget reports whether the container path p is one of defaults.
func IsDefaultTarget(p string, defaults []string) bool {
	p = cleanTarget(p)
	for _, d := range defaults {
		if cleanTarget(d) == p {
			return true
		}
	}
	return false
}
