// validate.go checks a devcontainer.json against the invariants devc relies
// on: one mount per target, well-formed mount specifications, and a
// read-only .devcontainer mount. It is used by "devc check", which reports
// problems instead of failing on the first one.
package devcontainer

import (
	"fmt"
	"os"
	"path/filepath"
)

// ValidationError represents a specific validation failure in a
// devcontainer.json file.
type ValidationError struct {
	// Field is the JSON field path that failed validation (e.g., "mounts[2]").
	Field string `json:"field"`

	// Message describes what's wrong with the field value.
	Message string `json:"message"`
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("devcontainer.json validation error: %s: %s", e.Field, e.Message)
}

// ValidateMounts checks the mounts list of doc. It returns every problem
// found; an empty result means the list is valid.
//
// Checks performed:
//   - "mounts" is an array of strings
//   - every entry has a target
//   - no two entries share a target
//   - the .devcontainer directory is mounted, and mounted read-only
//   - the launch settings do not grant the forbidden capability
func ValidateMounts(doc Document) []ValidationError {
	var errs []ValidationError

	mounts, _, err := doc.Mounts()
	if err != nil {
		return []ValidationError{{Field: FieldMounts, Message: err.Error()}}
	}

	devcontainerMounted := false
	for i, spec := range mounts {
		field := fmt.Sprintf("%s[%d]", FieldMounts, i)

		m, perr := ParseMount(spec)
		if perr != nil {
			errs = append(errs, ValidationError{Field: field, Message: perr.Error()})
			continue
		}

		if m.SameTarget(DevcontainerTarget) {
			devcontainerMounted = true
			if !m.ReadOnly {
				errs = append(errs, ValidationError{
					Field:   field,
					Message: fmt.Sprintf("%s must be mounted readonly so the container cannot change its own configuration", DevcontainerTarget),
				})
			}
		}
	}

	for _, target := range ConflictingTargets(mounts) {
		errs = append(errs, ValidationError{
			Field:   FieldMounts,
			Message: fmt.Sprintf("target %s is mounted more than once", target),
		})
	}

	if !devcontainerMounted {
		errs = append(errs, ValidationError{
			Field:   FieldMounts,
			Message: fmt.Sprintf("no readonly mount for %s", DevcontainerTarget),
		})
	}

	if token, found := FindPrivilegeEscalation(doc); found {
		errs = append(errs, ValidationError{
			Field:   FieldRunArgs,
			Message: fmt.Sprintf("%q grants %s; mutating commands will refuse to run", token, ForbiddenCapability),
		})
	}

	return errs
}

// ValidateWorkspaceFiles checks that the workspace has the files the
// devcontainer CLI needs: the .devcontainer directory, a parseable
// devcontainer.json, and the Dockerfile it references, if any.
func ValidateWorkspaceFiles(workspace string) []string {
	var issues []string

	devcontainerDir := filepath.Join(workspace, ".devcontainer")
	if _, err := os.Stat(devcontainerDir); os.IsNotExist(err) {
		issues = append(issues, ".devcontainer directory not found")
		return issues
	}

	data, err := os.ReadFile(filepath.Join(devcontainerDir, "devcontainer.json"))
	if err != nil {
		issues = append(issues, ".devcontainer/devcontainer.json not found")
		return issues
	}

	doc, err := ParseDocument(data)
	if err != nil {
		issues = append(issues, fmt.Sprintf("devcontainer.json is not valid JSON: %v", err))
		return issues
	}

	if buildConfig, ok := doc["build"].(map[string]interface{}); ok {
		if dockerfile, ok := buildConfig["dockerfile"].(string); ok {
			if _, err := os.Stat(filepath.Join(devcontainerDir, dockerfile)); os.IsNotExist(err) {
				issues = append(issues, fmt.Sprintf("referenced Dockerfile not found: %s", dockerfile))
			}
		}
	}

	return issues
}
