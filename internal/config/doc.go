// Package config defines the persisted tracking configuration and its
// encrypted on-disk store.
//
// TrackingConfig is loaded once at startup and passed by reference to
// the components that need it; every mutation funnels back through
// Store.Save, which serializes to JSON, seals with AES-256-GCM (the AEAD
// key derived from a per-repository master key via HKDF-SHA256) and
// writes atomically: temp file, sync, rename. A crash mid-write can
// never corrupt the previous blob.
//
// The master key lives in a separate owner-only file. Losing it makes
// the blob permanently opaque; there is deliberately no recovery path.
// Store.Reset rotates the key and rewrites defaults.
package config
