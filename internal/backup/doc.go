// Package backup snapshots and restores the encrypted config store.
//
// Backups are timestamped, immutable pairs of the encrypted config and
// the key that opens it, kept independent of git history. Carrying the
// key copy means a snapshot stays restorable even after a reset rotates
// the active key.
package backup
