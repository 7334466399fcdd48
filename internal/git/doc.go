// Package git is the repository store behind gitly.
//
// It wraps go-git and exposes the operations the GUI needs as serializable data:
//   - Repository lifecycle (open, init, scoped acquisition)
//   - Branch management (list, create, delete, checkout, current)
//   - Commit queries (single-branch log, commit graph across all branches)
//
// Failures are tagged with kinds from internal/errors so callers can branch on
// them without string matching.
package git
