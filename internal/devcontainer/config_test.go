package devcontainer

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinji-kodama/devc/internal/model"
)

// fixturePath returns the devcontainer.json of a testdata workspace.
func fixturePath(t *testing.T, fixture string) string {
	t.Helper()
	return filepath.Join("testdata", fixture, ".devcontainer", "devcontainer.json")
}

// writeConfig writes content to <tmp>/.devcontainer/devcontainer.json and
// returns the path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := DefaultConfigPath(t.TempDir())
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// TestLoadDocument_JSONC verifies that comments and trailing commas are
// tolerated and that all fields are loaded.
func TestLoadDocument_JSONC(t *testing.T) {
	doc, err := LoadDocument(fixturePath(t, "jsonc"))
	require.NoError(t, err)

	assert.Equal(t, "sandbox", doc["name"])

	mounts, present, err := doc.Mounts()
	require.NoError(t, err)
	assert.True(t, present)
	require.Len(t, mounts, 6)
	assert.Equal(t, "source=/srv/datasets,target=/data,type=bind,readonly", mounts[5])
}

// TestLoadDocument_NotFound verifies the exit code and that the not-exist
// cause stays reachable.
func TestLoadDocument_NotFound(t *testing.T) {
	_, err := LoadDocument(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)

	assert.Equal(t, model.ExitDevContainerNotFound, model.ExitCodeOf(err))
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

// TestLoadDocument_Malformed covers inputs that are not a single JSON object.
func TestLoadDocument_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"truncated", `{"mounts": [`},
		{"array at top level", `["source=/a,target=/a,type=bind"]`},
		{"null", `null`},
		{"trailing object", `{"name": "a"} {"name": "b"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadDocument(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.ErrorIs(t, err, model.ErrMalformedConfiguration)
			assert.Equal(t, model.ExitMalformedConfig, model.ExitCodeOf(err))
		})
	}
}

// TestDocument_Mounts verifies type checking of the mounts field.
func TestDocument_Mounts(t *testing.T) {
	t.Run("absent", func(t *testing.T) {
		mounts, present, err := Document{"name": "x"}.Mounts()
		require.NoError(t, err)
		assert.False(t, present)
		assert.Nil(t, mounts)
	})

	t.Run("not an array", func(t *testing.T) {
		doc, err := ParseDocument([]byte(`{"mounts": "source=/a,target=/a,type=bind"}`))
		require.NoError(t, err)
		_, _, err = doc.Mounts()
		assert.ErrorIs(t, err, model.ErrMalformedConfiguration)
	})

	t.Run("object entry", func(t *testing.T) {
		doc, err := ParseDocument([]byte(`{"mounts": [{"source": "/a", "target": "/a", "type": "bind"}]}`))
		require.NoError(t, err)
		_, _, err = doc.Mounts()
		assert.ErrorIs(t, err, model.ErrMalformedConfiguration)
		assert.Contains(t, err.Error(), "mounts[0] is an object")
	})
}

// TestWriteDocument_PreservesUnknownFields verifies that a load/store cycle
// keeps fields devc does not model, numeric precision, and characters that
// encoding/json would otherwise HTML-escape.
func TestWriteDocument_PreservesUnknownFields(t *testing.T) {
	doc, err := LoadDocument(fixturePath(t, "jsonc"))
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), ".devcontainer", "devcontainer.json")
	require.NoError(t, WriteDocument(out, doc))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	text := string(data)

	assert.Contains(t, text, `"memory": 8589934592`)
	assert.Contains(t, text, `"postCreateCommand": "sudo /usr/local/bin/init-firewall.sh && echo ready"`)
	assert.Contains(t, text, `"TZ": "Europe/Berlin"`)
	assert.Equal(t, byte('\n'), data[len(data)-1], "file should end with a newline")

	reloaded, err := LoadDocument(out)
	require.NoError(t, err)
	assert.Equal(t, doc, reloaded)
}

// TestWriteDocument_KeepsFileMode verifies that replacing an existing file
// does not reset its permissions.
func TestWriteDocument_KeepsFileMode(t *testing.T) {
	path := writeConfig(t, `{"mounts": []}`)
	require.NoError(t, os.Chmod(path, 0o600))

	require.NoError(t, WriteDocument(path, Document{"mounts": []interface{}{}}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

// TestFindDevContainerJSON verifies the search order and the not-found error.
func TestFindDevContainerJSON(t *testing.T) {
	t.Run("standard location", func(t *testing.T) {
		path := writeConfig(t, `{}`)
		workspace := filepath.Dir(filepath.Dir(path))

		found, err := FindDevContainerJSON(workspace)
		require.NoError(t, err)
		assert.Equal(t, path, found)
	})

	t.Run("root-level file", func(t *testing.T) {
		workspace := t.TempDir()
		path := filepath.Join(workspace, ".devcontainer.json")
		require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o644))

		found, err := FindDevContainerJSON(workspace)
		require.NoError(t, err)
		assert.Equal(t, path, found)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := FindDevContainerJSON(t.TempDir())
		require.Error(t, err)
		assert.Equal(t, model.ExitDevContainerNotFound, model.ExitCodeOf(err))
	})
}
