package classifier

import (
	"context"
	"errors"
	"strings"
)

// FileInfo describes one candidate file sent to the classifier.
type FileInfo struct {
	Name      string `json:"name"`
	Path      string `json:"path"`
	Size      int64  `json:"size"`
	Extension string `json:"extension,omitempty"`
}

// Decision is the classifier's verdict for a single file.
type Decision struct {
	Filename  string `json:"filename"`
	Include   bool   `json:"include"`
	Rationale string `json:"rationale,omitempty"`
}

// ConflictAction enumerates how a destination-name conflict is handled.
type ConflictAction string

const (
	ActionSkip    ConflictAction = "skip"
	ActionRename  ConflictAction = "rename"
	ActionReplace ConflictAction = "replace"
)

// ConflictDecision is the resolver's verdict when a destination name is
// already taken. NewName is only meaningful for ActionRename.
type ConflictDecision struct {
	Action  ConflictAction `json:"action"`
	NewName string         `json:"new_name,omitempty"`
}

// Service is the opaque decision provider consumed by category organization.
type Service interface {
	Classify(ctx context.Context, files []FileInfo, categoryDescription string) ([]Decision, error)
	ResolveConflict(ctx context.Context, existing, incoming string) (ConflictDecision, error)
}

// ErrDisabled is returned when no classifier is configured.
var ErrDisabled = errors.New("classifier disabled")

// Disabled is a Service that always refuses; wired when the classifier
// section is not enabled.
type Disabled struct{}

func (Disabled) Classify(context.Context, []FileInfo, string) ([]Decision, error) {
	return nil, ErrDisabled
}

func (Disabled) ResolveConflict(context.Context, string, string) (ConflictDecision, error) {
	return ConflictDecision{}, ErrDisabled
}

// DecisionsByFile re-associates raw decisions with the submitted files by
// exact filename match. Every submitted file gets exactly one entry; files
// the provider did not mention, or mentioned with an unknown name, are
// excluded by default.
func DecisionsByFile(files []FileInfo, decisions []Decision) map[string]Decision {
	known := make(map[string]Decision, len(decisions))
	for _, decision := range decisions {
		name := strings.TrimSpace(decision.Filename)
		if name == "" {
			continue
		}
		if _, dup := known[name]; dup {
			continue
		}
		known[name] = decision
	}

	out := make(map[string]Decision, len(files))
	for _, file := range files {
		if decision, ok := known[file.Name]; ok {
			out[file.Name] = decision
			continue
		}
		out[file.Name] = Decision{
			Filename:  file.Name,
			Include:   false,
			Rationale: "no decision returned; excluded by default",
		}
	}
	return out
}

// SafeConflict normalizes a resolver outcome. Errors, unknown actions, and
// rename decisions without a usable name all collapse to skip.
func SafeConflict(decision ConflictDecision, err error) ConflictDecision {
	if err != nil {
		return ConflictDecision{Action: ActionSkip}
	}
	switch decision.Action {
	case ActionSkip, ActionReplace:
		return ConflictDecision{Action: decision.Action}
	case ActionRename:
		name := strings.TrimSpace(decision.NewName)
		if name == "" || strings.ContainsAny(name, "/\\") {
			return ConflictDecision{Action: ActionSkip}
		}
		return ConflictDecision{Action: ActionRename, NewName: name}
	default:
		return ConflictDecision{Action: ActionSkip}
	}
}
