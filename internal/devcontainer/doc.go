// Package devcontainer reads, reconciles, and writes the workspace's
// devcontainer.json for the devc CLI.
//
// The file is owned by the devcontainer ecosystem, so devc treats it as a
// generic JSON object (Document) and only ever touches the "mounts" field.
// Every other field, including ones devc does not understand, is written
// back unchanged.
//
// The package provides:
//
//   - Document loading (JSONC tolerated via github.com/tidwall/jsonc) and
//     atomic storing via github.com/moby/sys/atomicwriter
//   - Mount specification parsing keyed by target path
//   - The mount reconciler: ExtractCustomMounts, MergeCustomMounts and
//     UpsertMount, plus the file-level Reconciler that sequences them
//   - The privilege-escalation guard that every mutating operation runs
//     first, because the .devcontainer directory is mounted read-only into
//     the container and that protection is void if the container may
//     remount it
package devcontainer
