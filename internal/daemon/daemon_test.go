package daemon

import (
	"context"
	"testing"
	"time"

	"folio/internal/engine"
	"folio/internal/ipc"
	"folio/internal/logging"
	"folio/internal/testsupport"
)

func newTestDaemon(t *testing.T) *Daemon {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	eng, err := engine.New(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	d, err := New(cfg, eng, logging.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func TestStartServesAndStopReleasesLock(t *testing.T) {
	d := newTestDaemon(t)
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !d.Running() {
		t.Fatal("daemon should report running")
	}

	client, err := ipc.Dial(d.cfg.Daemon.SocketPath)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	status, err := client.Status()
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if !status.Running {
		t.Fatalf("unexpected status: %+v", status)
	}
	_ = client.Close()

	d.Stop()
	if d.Running() {
		t.Fatal("daemon should be stopped")
	}
	select {
	case <-d.Done():
	default:
		t.Fatal("Done must be closed after Stop")
	}
}

func TestSecondInstanceIsRejected(t *testing.T) {
	first := newTestDaemon(t)
	if err := first.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	second, err := New(first.cfg, first.engine, logging.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := second.Start(context.Background()); err == nil {
		second.Stop()
		t.Fatal("second instance must fail to acquire the lock")
	}
}

func TestShutdownRequestClosesDone(t *testing.T) {
	d := newTestDaemon(t)
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	client, err := ipc.Dial(d.cfg.Daemon.SocketPath)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer client.Close()
	resp, err := client.Shutdown()
	if err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if !resp.Stopping {
		t.Fatalf("unexpected response: %+v", resp)
	}

	select {
	case <-d.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("Done was not closed after shutdown request")
	}
}
