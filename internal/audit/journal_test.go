package audit

import (
	"context"
	"path/filepath"
	"testing"
)

func TestJournalRecordAndRecent(t *testing.T) {
	journal, err := Open(filepath.Join(t.TempDir(), "audit.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer journal.Close()

	ctx := context.Background()
	entries := []Entry{
		{OperationID: "op-1", Operation: "apply_plan", Root: "/data", Action: "rename", Source: "A.txt", Destination: "a.txt"},
		{OperationID: "op-2", Operation: "organize_by_type", Root: "/data", Action: "move", Source: "b.pdf", Destination: "PDF/b.pdf"},
	}
	for _, entry := range entries {
		if err := journal.Record(ctx, entry); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	recent, err := journal.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(recent))
	}
	if recent[0].OperationID != "op-2" {
		t.Fatalf("expected newest first, got %+v", recent[0])
	}
	if recent[1].Destination != "a.txt" {
		t.Fatalf("unexpected entry: %+v", recent[1])
	}
	for _, entry := range recent {
		if entry.RecordedAt.IsZero() {
			t.Fatal("recorded_at must be stamped")
		}
	}
}

func TestJournalReopenKeepsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.db")
	journal, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	ctx := context.Background()
	if err := journal.Record(ctx, Entry{OperationID: "op-1", Operation: "apply_plan", Root: "/data", Action: "rename", Source: "x"}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := journal.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	recent, err := reopened.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 1 {
		t.Fatalf("expected 1 entry after reopen, got %d", len(recent))
	}
}
