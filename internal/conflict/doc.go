// Package conflict drives per-file resolution of a diverged repository.
//
// A Record is created from the unmerged paths git reports, each path is
// resolved in any order (keep local, take remote, or defer to a manual
// edit), and Finalize commits the result and re-attempts the push once
// nothing remains unresolved.
package conflict
