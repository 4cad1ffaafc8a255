// Package policy generates log-based alert policies for Backup and DR
// backup/restore jobs.
//
// One template covers two mutually exclusive alerting modes:
//   - FAILURE — notify when a job ends in any state other than SUCCESSFUL,
//     excluding jobs that are still RUNNING
//   - SUCCESS — notify when a job ends SUCCESSFUL
//
// Generate is a pure function: the same Request always produces the same
// Policy, with no I/O, clock, or randomness involved. The only error it can
// return is a *ValidationError for a condition string that is not exactly
// "FAILURE" or "SUCCESS"; every other field is passed through as an opaque
// string and validated (if at all) by the monitoring backend.
package policy
