// Package plan defines rename/move plans and the two-phase executor that
// applies them.
//
// A plan is a list of per-entry rename proposals produced by a planner
// (normalization, type organization). Applying a plan always runs the same
// validation pipeline: re-resolve source and destination through the sandbox
// guard, confirm the source still exists, and confirm the destination does
// not. In dry-run mode the mutation itself is skipped but the result has the
// same shape as a committed run, so callers can diff the two structurally.
// Items are independent; one failure never rolls back or blocks the others.
package plan
