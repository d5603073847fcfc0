// Package classifier wraps the opaque decision providers used by category
// organization: a per-file include/exclude classifier and a rename-conflict
// resolver.
//
// Both providers are treated as slow, unreliable, and non-deterministic. The
// engine never lets them weaken a safety invariant: decisions are re-matched
// to files by exact filename, files missing from a response are excluded,
// and any resolver failure collapses to "skip". The production
// implementation talks to an OpenAI-compatible JSON-only chat completions
// endpoint with bounded retries.
package classifier
