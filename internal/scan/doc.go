// Package scan decides whether a commit is warranted by comparing
// working-tree snapshots of tracked paths between ticks.
//
// A Snapshot is ephemeral: rebuilt from the filesystem on each tick,
// owned by the caller for the lifetime of that tick, never persisted.
// Fingerprints are mtime+size; content hashing is deliberately avoided
// because the scan runs on every tick and git deduplicates identical
// content at commit time anyway.
package scan
