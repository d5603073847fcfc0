package services_test

import (
	"errors"
	"fmt"
	"testing"

	"folio/internal/services"
)

func TestWrapPreservesMarkerAndCause(t *testing.T) {
	cause := errors.New("boom")
	err := services.Wrap(services.ErrConflict, "applier", "rename", "destination exists", cause)
	if !errors.Is(err, services.ErrConflict) {
		t.Fatalf("expected conflict marker, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
}

func TestWrapDefaultsToIOMarker(t *testing.T) {
	err := services.Wrap(nil, "lister", "read dir", "", nil)
	if !errors.Is(err, services.ErrIO) {
		t.Fatalf("expected io marker fallback, got %v", err)
	}
}

func TestErrorType(t *testing.T) {
	cases := []struct {
		marker error
		want   string
	}{
		{services.ErrSandbox, "SecurityError"},
		{services.ErrNotFound, "NotFoundError"},
		{services.ErrNotDirectory, "NotADirectoryError"},
		{services.ErrConflict, "Conflict"},
		{services.ErrConfiguration, "ConfigurationError"},
		{services.ErrIO, "IOFailure"},
		{errors.New("unclassified"), "IOFailure"},
	}
	for _, tc := range cases {
		wrapped := fmt.Errorf("outer: %w", tc.marker)
		if got := services.ErrorType(wrapped); got != tc.want {
			t.Errorf("ErrorType(%v) = %q, want %q", tc.marker, got, tc.want)
		}
	}
}

func TestFatalClassification(t *testing.T) {
	if !services.Fatal(services.Wrap(services.ErrSandbox, "guard", "resolve", "outside roots", nil)) {
		t.Fatal("sandbox errors must abort the call")
	}
	if services.Fatal(services.Wrap(services.ErrConflict, "applier", "rename", "exists", nil)) {
		t.Fatal("conflicts are per-item, not fatal")
	}
	if services.Fatal(services.Wrap(services.ErrIO, "dedupe", "hash", "unreadable", nil)) {
		t.Fatal("io failures are per-item, not fatal")
	}
}
