// Package apply turns a loaded configuration into the on-disk artifacts the
// declarative apply engine consumes.
//
// Run generates every configured policy, renders them into one Terraform
// JSON document, writes it under the output directory, and upserts one
// workspace record per policy into the injected state store. Generation
// errors abort before anything is written: a run either fully succeeds or
// leaves disk and state untouched.
package apply
