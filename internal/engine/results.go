package engine

import (
	"folio/internal/dedupe"
	"folio/internal/lister"
	"folio/internal/organizer"
	"folio/internal/plan"
	"folio/internal/services"
)

// ListResult is the payload of a directory listing.
type ListResult struct {
	Path    string         `json:"path"`
	Entries []lister.Entry `json:"entries"`
}

// DuplicatesResult is the payload of a duplicate scan.
type DuplicatesResult struct {
	Path      string         `json:"path"`
	Recursive bool           `json:"recursive"`
	Groups    []dedupe.Group `json:"groups"`
}

// PlanResult is the payload of plan generation.
type PlanResult struct {
	Plan plan.Document `json:"plan"`
}

// ApplyResult is the payload of plan execution.
type ApplyResult struct {
	Path   string      `json:"path"`
	Result plan.Result `json:"result"`
}

// OrganizeResult is the payload of either organize flow. Category is empty
// for by-type organization.
type OrganizeResult struct {
	Path     string           `json:"path"`
	Category string           `json:"category,omitempty"`
	Result   organizer.Result `json:"result"`
}

// ErrorPayload is the structured error shape crossing the public boundary.
// No unstructured error ever escapes the engine surface.
type ErrorPayload struct {
	Error        bool   `json:"error"`
	ErrorType    string `json:"errorType"`
	ErrorMessage string `json:"errorMessage"`
}

// NewErrorPayload maps an engine error onto the wire taxonomy.
func NewErrorPayload(err error) ErrorPayload {
	return ErrorPayload{
		Error:        true,
		ErrorType:    services.ErrorType(err),
		ErrorMessage: err.Error(),
	}
}
