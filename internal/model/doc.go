// Package model defines the domain types and value objects for the devc CLI.
//
// This package contains pure data structures with no external dependencies.
// Nothing here is persisted by itself: the only durable state devc touches is
// the workspace's devcontainer.json, which is owned by the devcontainer
// ecosystem and read/written by the devcontainer package.
//
// The package also defines exit codes (ExitCode), the sentinel error kinds
// surfaced by the mount reconciler, and a custom error type (CLIError) that
// carries exit codes for proper OS process exit handling.
package model
