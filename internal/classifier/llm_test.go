package classifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"folio/internal/logging"
)

func newTestClient(t *testing.T, serverURL string, opts ...Option) *Client {
	t.Helper()
	cfg := ClientConfig{
		APIKey:  "test-key",
		BaseURL: serverURL,
		Model:   "test-model",
		Timeout: 5 * time.Second,
	}
	opts = append(opts, WithSleeper(func(context.Context, time.Duration) error { return nil }))
	client, err := NewClient(cfg, logging.NewNop(), opts...)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func chatReply(t *testing.T, w http.ResponseWriter, content string) {
	t.Helper()
	response := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		t.Fatalf("encode reply: %v", err)
	}
}

func TestClassifyParsesDecisions(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		var req chatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Errorf("unexpected messages: %+v", req.Messages)
		}
		chatReply(t, w, `{"decisions":[{"filename":"invoice.pdf","include":true,"rationale":"tax document"}]}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	decisions, err := client.Classify(context.Background(), []FileInfo{{Name: "invoice.pdf", Size: 128}}, "tax documents")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if gotAuth != "Bearer test-key" {
		t.Fatalf("unexpected Authorization header %q", gotAuth)
	}
	if len(decisions) != 1 || decisions[0].Filename != "invoice.pdf" || !decisions[0].Include {
		t.Fatalf("unexpected decisions: %+v", decisions)
	}
}

func TestClassifyStripsCodeFence(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		chatReply(t, w, "```json\n{\"decisions\":[{\"filename\":\"a.txt\",\"include\":false}]}\n```")
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	decisions, err := client.Classify(context.Background(), []FileInfo{{Name: "a.txt"}}, "anything")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if len(decisions) != 1 || decisions[0].Include {
		t.Fatalf("unexpected decisions: %+v", decisions)
	}
}

func TestClassifyRetriesOnTooManyRequests(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		chatReply(t, w, `{"decisions":[{"filename":"a.txt","include":true}]}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	decisions, err := client.Classify(context.Background(), []FileInfo{{Name: "a.txt"}}, "anything")
	if err != nil {
		t.Fatalf("Classify after retry: %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 attempts, got %d", calls.Load())
	}
	if len(decisions) != 1 || !decisions[0].Include {
		t.Fatalf("unexpected decisions: %+v", decisions)
	}
}

func TestClassifyDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	if _, err := client.Classify(context.Background(), []FileInfo{{Name: "a.txt"}}, "anything"); err == nil {
		t.Fatal("expected error for unauthorized response")
	}
	if calls.Load() != 1 {
		t.Fatalf("expected 1 attempt, got %d", calls.Load())
	}
}

func TestResolveConflictDecodesDecision(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		chatReply(t, w, `{"action":"rename","new_name":"report_copy.pdf"}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	decision, err := client.ResolveConflict(context.Background(), "report.pdf", "report.pdf")
	if err != nil {
		t.Fatalf("ResolveConflict: %v", err)
	}
	if decision.Action != ActionRename || decision.NewName != "report_copy.pdf" {
		t.Fatalf("unexpected decision: %+v", decision)
	}
}

func TestDecodeJSONRejectsProseOnlyPayload(t *testing.T) {
	var out ConflictDecision
	if err := DecodeJSON("I cannot decide.", &out); err == nil {
		t.Fatal("expected error for payload without JSON")
	}
}
