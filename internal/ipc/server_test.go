package ipc

import (
	"context"
	"path/filepath"
	"testing"

	"folio/internal/engine"
	"folio/internal/logging"
	"folio/internal/testsupport"
)

func startServer(t *testing.T) (*Client, string) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	eng, err := engine.New(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	t.Cleanup(func() { _ = eng.Close() })

	server, err := NewServer(context.Background(), cfg.Daemon.SocketPath, eng, logging.NewNop(), nil)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	server.Serve()
	t.Cleanup(server.Close)

	client, err := Dial(cfg.Daemon.SocketPath)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client, testsupport.SandboxRoot(cfg)
}

func TestListOverSocket(t *testing.T) {
	client, root := startServer(t)
	testsupport.WriteContent(t, filepath.Join(root, "notes.txt"), []byte("n"))

	resp, err := client.List("")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if resp.Err != nil {
		t.Fatalf("unexpected error payload: %+v", resp.Err)
	}
	if len(resp.Result.Entries) != 1 || resp.Result.Entries[0].Name != "notes.txt" {
		t.Fatalf("unexpected entries: %+v", resp.Result.Entries)
	}
}

func TestSandboxViolationReturnsStructuredError(t *testing.T) {
	client, _ := startServer(t)

	resp, err := client.List(t.TempDir())
	if err != nil {
		t.Fatalf("transport must not fail: %v", err)
	}
	if resp.Result != nil {
		t.Fatalf("expected no result, got %+v", resp.Result)
	}
	if resp.Err == nil || !resp.Err.Error || resp.Err.ErrorType != "SecurityError" {
		t.Fatalf("unexpected error payload: %+v", resp.Err)
	}
}

func TestPlanAndApplyOverSocket(t *testing.T) {
	client, root := startServer(t)
	testsupport.WriteContent(t, filepath.Join(root, "My Notes.PDF"), []byte("pdf"))

	planResp, err := client.PlanAlpha("")
	if err != nil {
		t.Fatalf("PlanAlpha: %v", err)
	}
	if planResp.Err != nil || planResp.Result.Plan.Changes() != 1 {
		t.Fatalf("unexpected plan response: %+v", planResp)
	}

	applyResp, err := client.ApplyPlan("", planResp.Result.Plan.Items, false)
	if err != nil {
		t.Fatalf("ApplyPlan: %v", err)
	}
	if applyResp.Err != nil || len(applyResp.Result.Result.Applied) != 1 {
		t.Fatalf("unexpected apply response: %+v", applyResp)
	}
}

func TestStatusOverSocket(t *testing.T) {
	client, root := startServer(t)

	status, err := client.Status()
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if !status.Running || status.PID == 0 {
		t.Fatalf("unexpected status: %+v", status)
	}
	if len(status.Roots) != 1 || status.Roots[0] != root {
		t.Fatalf("unexpected roots: %+v", status.Roots)
	}
}
