package devcontainer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/moby/sys/atomicwriter"
)

// defaultFileMode is used when devcontainer.json does not exist yet.
const defaultFileMode os.FileMode = 0o644

// EncodeDocument serializes doc with two-space indentation and a trailing
// newline. HTML escaping is disabled so values such as "a&&b" in
// postCreateCommand are written as they were read.
func EncodeDocument(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("failed to serialize devcontainer.json: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteDocument atomically replaces the file at path with doc.
//
// The data is written to a temporary file in the same directory and
// renamed over the original, so readers see either the old or the new
// document and never a partial write. An existing file keeps its mode.
func WriteDocument(path string, doc Document) error {
	data, err := EncodeDocument(doc)
	if err != nil {
		return err
	}

	mode := defaultFileMode
	if info, statErr := os.Stat(path); statErr == nil {
		mode = info.Mode().Perm()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", filepath.Dir(path), err)
	}

	if err := atomicwriter.WriteFile(path, data, mode); err != nil {
		return fmt.Errorf("failed to write devcontainer.json to %s: %w", path, err)
	}
	return nil
}
