package devcontainer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParseMount verifies component parsing, aliases, and flag handling.
func TestParseMount(t *testing.T) {
	tests := []struct {
		name string
		spec string
		want Mount
	}{
		{
			name: "bind",
			spec: "source=/h1,target=/data,type=bind",
			want: Mount{Source: "/h1", Target: "/data", Type: "bind"},
		},
		{
			name: "readonly flag",
			spec: "source=/h1,target=/data,type=bind,readonly",
			want: Mount{Source: "/h1", Target: "/data", Type: "bind", ReadOnly: true},
		},
		{
			name: "components in any order",
			spec: "type=bind,readonly,target=/data,source=/h1",
			want: Mount{Source: "/h1", Target: "/data", Type: "bind", ReadOnly: true},
		},
		{
			name: "docker aliases",
			spec: "type=bind,src=/h1,dst=/data,ro=true",
			want: Mount{Source: "/h1", Target: "/data", Type: "bind", ReadOnly: true},
		},
		{
			name: "extra components kept",
			spec: "source=/h1,target=/data,type=bind,consistency=cached",
			want: Mount{Source: "/h1", Target: "/data", Type: "bind", Extra: []string{"consistency=cached"}},
		},
		{
			name: "volume with variable source",
			spec: "source=claude-code-bashhistory-${devcontainerId},target=/commandhistory,type=volume",
			want: Mount{Source: "claude-code-bashhistory-${devcontainerId}", Target: "/commandhistory", Type: "volume"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMount(tt.spec)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestParseMount_NoTarget verifies that a specification without a target
// is rejected.
func TestParseMount_NoTarget(t *testing.T) {
	for _, spec := range []string{"", "source=/h1,type=bind", "garbage"} {
		_, err := ParseMount(spec)
		assert.ErrorIs(t, err, ErrNoTarget, spec)
	}
}

// TestMount_String verifies the canonical output format.
func TestMount_String(t *testing.T) {
	assert.Equal(t, "source=/data,target=/data,type=bind",
		NewBindMount("/data", "/data", false).String())
	assert.Equal(t, "source=/h,target=/c,type=bind,readonly",
		NewBindMount("/h", "/c", true).String())
	assert.Equal(t, "source=/h,target=/c,type=bind,consistency=cached,readonly",
		Mount{Source: "/h", Target: "/c", ReadOnly: true, Extra: []string{"consistency=cached"}}.String())
}

// TestMount_Validate covers the grammar restrictions on written mounts.
func TestMount_Validate(t *testing.T) {
	assert.NoError(t, NewBindMount("/home/me/data", "/data", false).Validate())

	assert.Error(t, NewBindMount("relative/path", "/data", false).Validate())
	assert.Error(t, NewBindMount("/home/me/data", "data", false).Validate())
	assert.Error(t, NewBindMount("/home/me/a,b", "/data", false).Validate())
	assert.Error(t, NewBindMount("/home/me/data", "/da,ta", false).Validate())
	assert.Error(t, NewBindMount("", "/data", false).Validate())
}

// TestDefaultTargets verifies the user is substituted into home paths.
func TestDefaultTargets(t *testing.T) {
	assert.Equal(t, []string{
		"/commandhistory",
		"/home/vscode/.claude",
		"/home/vscode/.config/gh",
		"/home/vscode/.gitconfig",
		"/workspace/.devcontainer",
	}, DefaultTargets("vscode"))
}

// TestIsDefaultMount verifies exact target matching, including the prefix
// collision cases plain substring matching would get wrong.
func TestIsDefaultMount(t *testing.T) {
	defaults := DefaultTargets("node")

	tests := []struct {
		spec string
		want bool
	}{
		{"source=/h,target=/workspace/.devcontainer,type=bind,readonly", true},
		{"source=/h,type=bind,target=/workspace/.devcontainer", true},
		{"source=/h,target=/workspace/.devcontainer/,type=bind", true},
		{"source=/h,target=/home/node/.claude,type=bind", true},
		{"source=/h,target=/workspace/.devcontainer-custom,type=bind", false},
		{"source=/h,target=/workspace/.devcontainer-extra,type=bind", false},
		{"source=/h,target=/home/node/.claude-backup,type=bind", false},
		{"source=/workspace/.devcontainer,target=/mnt/dc,type=bind", false},
		{"source=/h,target=/home/other/.claude,type=bind", false},
		{"not a mount", false},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			assert.Equal(t, tt.want, IsDefaultMount(tt.spec, defaults))
		})
	}
}

func TestIsDefaultTarget(t *testing.T) {
	defaults := DefaultTargets("node")

	assert.True(t, IsDefaultTarget("/workspace/.devcontainer", defaults))
	assert.True(t, IsDefaultTarget("/workspace/.devcontainer/", defaults))
	assert.True(t, IsDefaultTarget("/workspace/./.devcontainer", defaults))
	assert.True(t, IsDefaultTarget("/commandhistory", defaults))
	assert.False(t, IsDefaultTarget("/workspace/.devcontainer-extra", defaults))
	assert.False(t, IsDefaultTarget("/data", defaults))
	assert.False(t, IsDefaultTarget("", defaults))
}
