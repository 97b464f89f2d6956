package devcontainer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/tidwall/jsonc"

	"github.com/shinji-kodama/devc/internal/model"
)

// Document is a parsed devcontainer.json. A generic map is used instead of
// a struct so that fields devc does not model survive a load/store cycle.
type Document map[string]interface{}

// Field names devc reads from the document.
const (
	FieldMounts     = "mounts"
	FieldRunArgs    = "runArgs"
	FieldCapAdd     = "capAdd"
	FieldPrivileged = "privileged"
)

// LoadDocument reads devcontainer.json from path and parses it.
//
// Returns a CLIError with ExitDevContainerNotFound if the file does not
// exist (the chain still satisfies errors.Is(err, fs.ErrNotExist)), and a
// CLIError wrapping model.ErrMalformedConfiguration if it cannot be parsed.
func LoadDocument(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, model.WrapCLIError(
				model.ExitDevContainerNotFound,
				fmt.Sprintf("devcontainer.json not found: %s", path),
				err,
			)
		}
		return nil, fmt.Errorf("failed to read devcontainer.json: %w", err)
	}

	doc, err := ParseDocument(data)
	if err != nil {
		return nil, model.MalformedConfigError(path, err)
	}
	return doc, nil
}

// ParseDocument strips JSONC comments and trailing commas from data and
// decodes the result into a Document.
//
// Numbers are decoded as json.Number so that they are written back exactly
// as they were read.
func ParseDocument(data []byte) (Document, error) {
	dec := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
	dec.UseNumber()

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if doc == nil {
		return nil, errors.New("top-level value must be an object")
	}

	// A second value after the object means the file is not a single
	// JSON document.
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after top-level object")
	}

	return doc, nil
}

// Mounts returns the document's "mounts" list.
//
// The boolean reports whether the field is present. A present field that
// is not an array of strings is a malformed configuration.
func (d Document) Mounts() ([]string, bool, error) {
	raw, ok := d[FieldMounts]
	if !ok || raw == nil {
		return nil, false, nil
	}

	arr, ok := raw.([]interface{})
	if !ok {
		return nil, true, fmt.Errorf("%w: %q is %s, not an array", model.ErrMalformedConfiguration, FieldMounts, jsonKind(raw))
	}

	mounts := make([]string, 0, len(arr))
	for i, item := range arr {
		s, ok := item.(string)
		if !ok {
			return nil, true, fmt.Errorf("%w: %s[%d] is %s, not a string", model.ErrMalformedConfiguration, FieldMounts, i, jsonKind(item))
		}
		mounts = append(mounts, s)
	}
	return mounts, true, nil
}

// SetMounts replaces the document's "mounts" list.
func (d Document) SetMounts(mounts []string) {
	arr := make([]interface{}, 0, len(mounts))
	for _, m := range mounts {
		arr = append(arr, m)
	}
	d[FieldMounts] = arr
}

// jsonKind names the JSON type of a decoded value for error messages.
func jsonKind(v interface{}) string {
	switch v.(type) {
	case string:
		return "a string"
	case json.Number, float64:
		return "a number"
	case bool:
		return "a boolean"
	case []interface{}:
		return "an array"
	case map[string]interface{}:
		return "an object"
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// FindDevContainerJSON searches for devcontainer.json in the standard
// locations within a workspace.
//
// The search order follows the devcontainer CLI:
//  1. <workspace>/.devcontainer/devcontainer.json
//  2. <workspace>/.devcontainer.json
//
// Returns the path to the first found file, or a CLIError with
// ExitDevContainerNotFound if neither location contains the file.
func FindDevContainerJSON(workspace string) (string, error) {
	candidates := []string{
		DefaultConfigPath(workspace),
		filepath.Join(workspace, ".devcontainer.json"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", model.NewCLIError(
		model.ExitDevContainerNotFound,
		fmt.Sprintf("devcontainer.json not found in %s (searched .devcontainer/devcontainer.json and .devcontainer.json); run \"devc init\" first", workspace),
	)
}

// DefaultConfigPath returns <workspace>/.devcontainer/devcontainer.json.
func DefaultConfigPath(workspace string) string {
	return filepath.Join(workspace, ".devcontainer", "devcontainer.json")
}
