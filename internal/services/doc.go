// Package services defines shared error classification used across the
// folder engine components.
//
// Key responsibilities:
//   - Sentinel error markers that tag failures with the engine's error
//     taxonomy (sandbox violation, missing path, conflict, per-item I/O).
//   - The Wrap helper that attaches component/operation context while
//     preserving the marker for later classification.
//   - ErrorType, which maps any engine error to the stable wire-level
//     errorType string reported at the public boundary.
//
// Use these helpers when wiring new engine logic so error handling stays
// uniform across components.
package services
