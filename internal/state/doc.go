// Package state records which alert-policy workspaces have been applied.
//
// The apply engine keeps its own remote state; this package models the
// tool's view of it as an explicit record store injected into the apply
// step, rather than ambient global state. One record per workspace (one
// workspace per policy, one policy per condition type in the reference
// deployment), upserted on every apply with a fingerprint of the rendered
// resource so unchanged applies are detectable.
//
// Two implementations: SQLite (modernc.org/sqlite, WAL mode, migrate on
// open) for the CLI, and Memory for tests and dry runs.
package state
