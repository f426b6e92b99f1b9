// Package schema is the registry of the AOT telemetry format.
//
// It defines the eighteen AOT tables, the ordered fields of each table with
// their value-kinds and units, the mandatory/secondary table taxonomy, the
// vocabulary of cross-table reference fields and the top-level header
// keywords. The registry is built once and never mutated; every lookup and
// validation function is safe for concurrent use.
//
// Validation functions report *ValidationError values that unwrap to one of
// the Err* sentinels. Under the CollectAll policy they return
// ValidationErrors instead of stopping at the first violation.
package schema
