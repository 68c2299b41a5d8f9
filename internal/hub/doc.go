// Package hub is a minimal GitHub API client for creating the remote
// repository the daemon pushes to and identifying the token owner.
package hub
