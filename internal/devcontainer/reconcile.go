package devcontainer

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/shinji-kodama/devc/internal/model"
)

// ExtractCustomMounts returns the mounts in doc whose target is not in
// defaults, in document order.
//
// A nil document, a missing "mounts" field, and a list holding only
// default mounts all return nil: there is nothing to preserve. Entries
// without a parseable target are never default, so they are kept.
func ExtractCustomMounts(doc Document, defaults []string) ([]string, error) {
	if doc == nil {
		return nil, nil
	}

	mounts, _, err := doc.Mounts()
	if err != nil {
		return nil, err
	}

	var custom []string
	for _, m := range mounts {
		if IsDefaultMount(m, defaults) {
			continue
		}
		custom = append(custom, m)
	}

	if len(custom) == 0 {
		return nil, nil
	}
	return custom, nil
}

// MergeCustomMounts appends preserved to doc's mounts and removes exact
// duplicates, keeping the first occurrence. The result order is the
// existing mounts followed by the new preserved ones.
//
// Duplicates are detected by whole-string equality, not by target: two
// specifications for the same target that differ in source or flags both
// survive. doc is modified in place and returned.
func MergeCustomMounts(doc Document, preserved []string) (Document, error) {
	if len(preserved) == 0 {
		return doc, nil
	}
	if doc == nil {
		doc = Document{}
	}

	existing, _, err := doc.Mounts()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(existing)+len(preserved))
	merged := make([]string, 0, len(existing)+len(preserved))
	for _, m := range append(existing, preserved...) {
		if seen[m] {
			continue
		}
		seen[m] = true
		merged = append(merged, m)
	}

	doc.SetMounts(merged)
	return doc, nil
}

// UpsertMount removes every mount in doc whose target equals m.Target and
// appends m. Applying it twice with the same mount yields the same list.
// doc is modified in place and returned.
func UpsertMount(doc Document, m Mount) (Document, error) {
	if doc == nil {
		doc = Document{}
	}
	existing, _, err := doc.Mounts()
	if err != nil {
		return nil, err
	}

	kept := make([]string, 0, len(existing)+1)
	for _, spec := range existing {
		if parsed, perr := ParseMount(spec); perr == nil && parsed.SameTarget(m.Target) {
			continue
		}
		kept = append(kept, spec)
	}
	kept = append(kept, m.String())

	doc.SetMounts(kept)
	return doc, nil
}

// ConflictingTargets returns targets that occur in more than one mount
// specification. MergeCustomMounts can produce these because it
// deduplicates by exact string.
func ConflictingTargets(mounts []string) []string {
	counts := make(map[string]int)
	var order []string
	for _, spec := range mounts {
		target, ok := TargetOf(spec)
		if !ok {
			continue
		}
		target = cleanTarget(target)
		if counts[target] == 0 {
			order = append(order, target)
		}
		counts[target]++
	}

	var dup []string
	for _, t := range order {
		if counts[t] > 1 {
			dup = append(dup, t)
		}
	}
	return dup
}

// Reconciler applies the mount operations to one devcontainer.json file.
// Each call is a complete load, transform, store cycle; nothing is cached
// between calls.
type Reconciler struct {
	// Path is the devcontainer.json file.
	Path string

	// Defaults are the template's mount targets.
	Defaults []string
}

// NewReconciler creates a Reconciler for path whose default mount set is
// derived from remoteUser.
func NewReconciler(path, remoteUser string) *Reconciler {
	return &Reconciler{
		Path:     path,
		Defaults: DefaultTargets(remoteUser),
	}
}

// Extract returns the custom mounts currently in the file. A missing file
// is not an error and yields nil.
func (r *Reconciler) Extract() ([]string, error) {
	doc, err := LoadDocument(r.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	custom, err := ExtractCustomMounts(doc, r.Defaults)
	if err != nil {
		return nil, model.MalformedConfigError(r.Path, err)
	}
	return custom, nil
}

// CustomMounts is Extract for display purposes: it requires the file to
// exist.
func (r *Reconciler) CustomMounts() ([]string, error) {
	doc, err := LoadDocument(r.Path)
	if err != nil {
		return nil, err
	}
	custom, err := ExtractCustomMounts(doc, r.Defaults)
	if err != nil {
		return nil, model.MalformedConfigError(r.Path, err)
	}
	return custom, nil
}

// Merge re-applies preserved mounts to the file, typically right after
// the template rewrote it. With nothing to merge the file is not touched.
//
// Any failure is returned as a *model.PreservedMountsError listing the
// mounts, since at this point they exist nowhere else.
func (r *Reconciler) Merge(preserved []string) error {
	if len(preserved) == 0 {
		return nil
	}

	fail := func(err error) error {
		return &model.PreservedMountsError{Mounts: preserved, Err: err}
	}

	doc, err := LoadDocument(r.Path)
	if err != nil {
		return fail(err)
	}
	if err := CheckPrivilegeEscalation(doc, r.Path); err != nil {
		return fail(err)
	}

	doc, err = MergeCustomMounts(doc, preserved)
	if err != nil {
		return fail(model.MalformedConfigError(r.Path, err))
	}
	if err := WriteDocument(r.Path, doc); err != nil {
		return fail(err)
	}
	return nil
}

// Upsert adds a bind mount from hostPath to containerPath, replacing any
// mount that already targets containerPath.
//
// hostPath must already be resolved and checked for existence by the
// caller (see workspace.ResolveHostPath).
func (r *Reconciler) Upsert(hostPath, containerPath string, readonly bool) error {
	m := NewBindMount(hostPath, containerPath, readonly)
	if err := m.Validate(); err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "invalid mount", err)
	}

	doc, err := LoadDocument(r.Path)
	if err != nil {
		return err
	}
	if err := CheckPrivilegeEscalation(doc, r.Path); err != nil {
		return err
	}
	if err := r.checkNotDefault(containerPath, "replaced"); err != nil {
		return err
	}

	doc, err = UpsertMount(doc, m)
	if err != nil {
		return model.MalformedConfigError(r.Path, err)
	}
	return WriteDocument(r.Path, doc)
}

// Remove deletes every mount targeting containerPath. It reports whether
// anything was removed; the file is only rewritten when it was.
func (r *Reconciler) Remove(containerPath string) (bool, error) {
	doc, err := LoadDocument(r.Path)
	if err != nil {
		return false, err
	}
	if err := CheckPrivilegeEscalation(doc, r.Path); err != nil {
		return false, err
	}
	if err := r.checkNotDefault(containerPath, "removed"); err != nil {
		return false, err
	}

	mounts, _, err := doc.Mounts()
	if err != nil {
		return false, model.MalformedConfigError(r.Path, err)
	}

	kept := make([]string, 0, len(mounts))
	for _, spec := range mounts {
		if parsed, perr := ParseMount(spec); perr == nil && parsed.SameTarget(containerPath) {
			continue
		}
		kept = append(kept, spec)
	}
	if len(kept) == len(mounts) {
		return false, nil
	}

	doc.SetMounts(kept)
	if err := WriteDocument(r.Path, doc); err != nil {
		return false, fmt.Errorf("failed to remove mount %s: %w", containerPath, err)
	}
	return true, nil
}

// checkNotDefault refuses to replace or remove a template mount. This
// keeps the .devcontainer mount read-only.
func (r *Reconciler) checkNotDefault(containerPath, verb string) error {
	if !IsDefaultTarget(containerPath, r.Defaults) {
		return nil
	}
	return model.WrapCLIError(
		model.ExitGeneralError,
		fmt.Sprintf("%s is part of the template and cannot be %s", containerPath, verb),
		ErrDefaultTarget,
	)
}
