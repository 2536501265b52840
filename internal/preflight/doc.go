// Package preflight provides readiness checks for the filesystem paths,
// scene store, and backend API that Reverie depends on.
//
// The CLI "reverie status" command runs RunAll and prints each Result. The
// individual checks are exported so other commands can probe a single
// dependency, for example verifying the backend before a compile.
package preflight
