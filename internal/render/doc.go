// Package render serializes generated alert policies into the documents the
// outside world consumes.
//
// TerraformJSON produces a .tf.json document with one
// google_monitoring_alert_policy resource per policy, for the declarative
// apply engine. APIJSON produces the Cloud Monitoring AlertPolicy JSON
// shape for a single policy, used by the -print inspection mode.
//
// Output is byte-deterministic: resources are keyed by policy name and
// encoding/json sorts map keys, so identical policies always render to
// identical documents. That property is what the apply step's fingerprints
// rely on.
package render
