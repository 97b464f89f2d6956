// Package template materializes the sandbox devcontainer template into a
// workspace's .devcontainer directory.
//
// The template always writes the default mount set and mounts the
// .devcontainer directory read-only. Materializing overwrites the existing
// devcontainer.json; callers that want to keep user-added mounts bracket it
// with devcontainer.Reconciler.Extract and Merge.
package template

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"text/template"

	securejoin "github.com/cyphar/filepath-securejoin"
	"github.com/moby/sys/atomicwriter"
)

//go:embed files/*.tmpl
var files embed.FS

// templateSuffix is stripped from embedded file names on output.
const templateSuffix = ".tmpl"

// executableFiles are written with mode 0755.
var executableFiles = map[string]bool{
	"init-firewall.sh": true,
}

// Data is the input to the template.
type Data struct {
	// Name is the devcontainer display name, usually the workspace
	// directory name.
	Name string

	// RemoteUser is the container user.
	RemoteUser string
}

// Home is the remote user's home directory inside the container.
func (d Data) Home() string {
	return "/home/" + d.RemoteUser
}

var funcs = template.FuncMap{
	// json renders a string as a quoted JSON string.
	"json": func(s string) (string, error) {
		b, err := json.Marshal(s)
		return string(b), err
	},
}

// Render renders every template file and returns the contents keyed by
// output file name.
func Render(data Data) (map[string][]byte, error) {
	entries, err := fs.ReadDir(files, "files")
	if err != nil {
		return nil, fmt.Errorf("failed to list template files: %w", err)
	}

	out := make(map[string][]byte, len(entries))
	for _, e := range entries {
		raw, err := fs.ReadFile(files, path.Join("files", e.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read template %s: %w", e.Name(), err)
		}

		tmpl, err := template.New(e.Name()).Funcs(funcs).Option("missingkey=error").Parse(string(raw))
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", e.Name(), err)
		}

		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, data); err != nil {
			return nil, fmt.Errorf("failed to render template %s: %w", e.Name(), err)
		}
		out[strings.TrimSuffix(e.Name(), templateSuffix)] = buf.Bytes()
	}
	return out, nil
}

// Materialize renders the template and writes it into
// <workspace>/.devcontainer, replacing files of the same name. Other files
// in the directory are left alone. It returns the written paths, sorted.
//
// Each file is written atomically. Output paths are joined with
// securejoin so a symlink planted inside .devcontainer cannot redirect a
// write outside it.
func Materialize(workspace string, data Data) ([]string, error) {
	rendered, err := Render(data)
	if err != nil {
		return nil, err
	}

	dir, err := securejoin.SecureJoin(workspace, ".devcontainer")
	if err != nil {
		return nil, fmt.Errorf("failed to resolve .devcontainer in %s: %w", workspace, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", dir, err)
	}

	names := make([]string, 0, len(rendered))
	for name := range rendered {
		names = append(names, name)
	}
	sort.Strings(names)

	written := make([]string, 0, len(names))
	for _, name := range names {
		target, err := securejoin.SecureJoin(dir, name)
		if err != nil {
			return written, fmt.Errorf("failed to resolve %s: %w", name, err)
		}

		mode := os.FileMode(0o644)
		if executableFiles[name] {
			mode = 0o755
		}
		if err := atomicwriter.WriteFile(target, rendered[name], mode); err != nil {
			return written, fmt.Errorf("failed to write %s: %w", target, err)
		}
		written = append(written, target)
	}
	return written, nil
}
