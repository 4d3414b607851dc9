// Package diagnostic provides structured errors, warnings, and notes
// collected while validating and converting content packs.
//
// Key capabilities:
//   - Input path findings collected across all packs before any mutation
//   - Per-file warnings for records that could not be classified
//   - A single combined error rendering for reporting several findings at once
package diagnostic
