package ipc

import (
	"folio/internal/audit"
	"folio/internal/engine"
	"folio/internal/plan"
)

// Every response carries either a success payload or a structured error;
// RPC-level Go errors are reserved for transport failures.

// ListRequest asks for a directory snapshot.
type ListRequest struct {
	Path string `json:"path"`
}

// ListResponse carries the snapshot or a structured error.
type ListResponse struct {
	Result *engine.ListResult   `json:"result,omitempty"`
	Err    *engine.ErrorPayload `json:"error,omitempty"`
}

// DuplicatesRequest asks for a duplicate scan.
type DuplicatesRequest struct {
	Path      string `json:"path"`
	Recursive bool   `json:"recursive"`
}

// DuplicatesResponse carries the duplicate groups or a structured error.
type DuplicatesResponse struct {
	Result *engine.DuplicatesResult `json:"result,omitempty"`
	Err    *engine.ErrorPayload     `json:"error,omitempty"`
}

// PlanRequest asks for a normalization plan.
type PlanRequest struct {
	Path string `json:"path"`
}

// PlanResponse carries the generated plan or a structured error.
type PlanResponse struct {
	Result *engine.PlanResult   `json:"result,omitempty"`
	Err    *engine.ErrorPayload `json:"error,omitempty"`
}

// ApplyRequest executes (or dry-runs) a rename plan.
type ApplyRequest struct {
	Path   string      `json:"path"`
	Items  []plan.Item `json:"items"`
	DryRun bool        `json:"dry_run"`
}

// ApplyResponse carries the per-item execution result or a structured error.
type ApplyResponse struct {
	Result *engine.ApplyResult  `json:"result,omitempty"`
	Err    *engine.ErrorPayload `json:"error,omitempty"`
}

// OrganizeByTypeRequest organizes top-level files by extension.
type OrganizeByTypeRequest struct {
	Path   string `json:"path"`
	DryRun bool   `json:"dry_run"`
}

// OrganizeByCategoryRequest organizes top-level files by a described
// category.
type OrganizeByCategoryRequest struct {
	Path        string `json:"path"`
	Description string `json:"description"`
	DryRun      bool   `json:"dry_run"`
}

// OrganizeResponse carries either organize flow's result or a structured
// error.
type OrganizeResponse struct {
	Result *engine.OrganizeResult `json:"result,omitempty"`
	Err    *engine.ErrorPayload   `json:"error,omitempty"`
}

// AuditRequest asks for recent journal entries.
type AuditRequest struct {
	Limit int `json:"limit"`
}

// AuditResponse carries journal entries or a structured error.
type AuditResponse struct {
	Entries []audit.Entry        `json:"entries,omitempty"`
	Err     *engine.ErrorPayload `json:"error,omitempty"`
}

// StatusRequest fetches daemon status.
type StatusRequest struct{}

// StatusResponse describes the running daemon.
type StatusResponse struct {
	Running      bool     `json:"running"`
	PID          int      `json:"pid"`
	Roots        []string `json:"roots"`
	SocketPath   string   `json:"socket_path"`
	AuditEnabled bool     `json:"audit_enabled"`
}

// ShutdownRequest asks the daemon to exit.
type ShutdownRequest struct{}

// ShutdownResponse acknowledges a shutdown request.
type ShutdownResponse struct {
	Stopping bool `json:"stopping"`
}
