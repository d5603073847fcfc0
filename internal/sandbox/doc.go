// Package sandbox enforces the containment boundary for every filesystem
// operation.
//
// The Guard holds the configured allowed roots, fully resolved at
// construction time, and Resolve is the single choke point every component
// must pass a path through before touching the filesystem. Resolution follows
// symlinks and collapses ".." segments; a path that cannot be resolved
// unambiguously is rejected rather than assumed safe.
package sandbox
