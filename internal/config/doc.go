// Package config loads and watches the backupwatch configuration file
// (config.yaml).
//
// Top-level types:
//   - Config — project, output_dir, state_db, job_categories, policies []
//   - Policy — name, condition (FAILURE|SUCCESS), message,
//     notification_channels (comma-separated channel resource paths)
//
// Load(path) reads the YAML file, applies defaults (out/ output dir,
// backupwatch.db state file), then validates required fields: the condition
// literal, unique policy names, and a non-empty channel list with no empty
// segments. The generator itself keeps the raw split-and-trim semantics;
// refusing empty channel entries is this layer's job.
//
// Watch(ctx, path, onChange) uses fsnotify to detect file changes and calls
// onChange with the newly parsed Config. It handles the rename→create
// pattern used by atomic-save editors by re-adding the watch after a change.
package config
