package mcp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog"

	"github.com/hpungsan/loam/internal/config"
	"github.com/hpungsan/loam/internal/errors"
	"github.com/hpungsan/loam/internal/srptd"
)

const sampleSession = `{"type":"init","cwd":"/home/dev/api","project":"api"}
{"type":"user","content":"please add request logging","timestamp":"2025-03-01T09:00:00Z"}
{"type":"assistant","content":"adding request logging middleware","timestamp":"2025-03-01T09:05:00Z"}
{"type":"tool_use","name":"Edit","id":"tu_1","input":{"path":"middleware.go"}}
`

const sampleDoc = `## Trigger

> Fixed a flaky integration test caused by shared state.

## Workflow

1. Reproduce the failure
2. Isolate the shared fixture
3. Rerun the suite

## Tags

Languages: go
Domains: testing
Patterns: test-isolation
`

// testSetup creates a temp-dir-backed config for testing.
func testSetup(t *testing.T) *config.Config {
	t.Helper()

	tmpDir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.LogsPath = filepath.Join(tmpDir, "logs")
	cfg.ExtractionsDir = filepath.Join(tmpDir, "extractions")
	cfg.CardsDir = filepath.Join(tmpDir, "cards")
	cfg.BucketsDir = filepath.Join(tmpDir, "buckets")

	if err := os.MkdirAll(cfg.LogsPath, 0755); err != nil {
		t.Fatalf("mkdir logs: %v", err)
	}

	return cfg
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// makeRequest creates a CallToolRequest with the given arguments.
func makeRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

func decodePayload(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()

	if len(result.Content) == 0 {
		t.Fatal("no content in result")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatal("content is not TextContent")
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(text.Text), &payload); err != nil {
		t.Fatalf("failed to unmarshal result payload: %v", err)
	}
	return payload
}

func assertErrorCode(t *testing.T, result *mcp.CallToolResult, expectedCode string) {
	t.Helper()

	if !result.IsError {
		t.Fatal("expected IsError=true")
	}

	payload := decodePayload(t, result)
	errorObj, ok := payload["error"].(map[string]any)
	if !ok {
		t.Fatal("no error object in payload")
	}
	if code, _ := errorObj["code"].(string); code != expectedCode {
		t.Errorf("got error code %q, want %q", code, expectedCode)
	}
}

func TestHandleSessionList(t *testing.T) {
	cfg := testSetup(t)
	writeFile(t, filepath.Join(cfg.LogsPath, "abc123.jsonl"), sampleSession)
	writeFile(t, filepath.Join(cfg.LogsPath, "notes.md"), "not a session")

	h := NewHandlers(cfg, zerolog.Nop())
	ctx := context.Background()

	result, err := h.HandleSessionList(ctx, makeRequest(map[string]any{}))
	if err != nil {
		t.Fatalf("HandleSessionList() error: %v", err)
	}
	if result.IsError {
		t.Fatal("expected success result")
	}

	payload := decodePayload(t, result)
	if count, _ := payload["count"].(float64); count != 1 {
		t.Errorf("count = %v, want 1", payload["count"])
	}
	sessions, _ := payload["sessions"].([]any)
	if len(sessions) != 1 {
		t.Fatalf("sessions length = %d, want 1", len(sessions))
	}
	session := sessions[0].(map[string]any)
	if session["session_id"] != "abc123" {
		t.Errorf("session_id = %v, want abc123", session["session_id"])
	}
}

func TestHandleSessionParse(t *testing.T) {
	cfg := testSetup(t)
	path := writeFile(t, filepath.Join(cfg.LogsPath, "abc123.jsonl"), sampleSession)

	h := NewHandlers(cfg, zerolog.Nop())
	ctx := context.Background()

	tests := []struct {
		name      string
		args      map[string]any
		wantError bool
		errorCode string
	}{
		{
			name: "parse existing session",
			args: map[string]any{"path": path},
		},
		{
			name:      "missing path argument",
			args:      map[string]any{},
			wantError: true,
			errorCode: "INVALID_REQUEST",
		},
		{
			name:      "nonexistent file",
			args:      map[string]any{"path": filepath.Join(cfg.LogsPath, "missing.jsonl")},
			wantError: true,
			errorCode: "NOT_FOUND",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := h.HandleSessionParse(ctx, makeRequest(tt.args))
			if err != nil {
				t.Fatalf("HandleSessionParse() error: %v", err)
			}
			if tt.wantError {
				assertErrorCode(t, result, tt.errorCode)
				return
			}
			if result.IsError {
				t.Fatal("expected success result")
			}

			payload := decodePayload(t, result)
			conv, ok := payload["conversation"].(map[string]any)
			if !ok {
				t.Fatal("no conversation in payload")
			}
			if conv["session_id"] != "abc123" {
				t.Errorf("session_id = %v, want abc123", conv["session_id"])
			}
			tools, _ := payload["unique_tools"].([]any)
			if len(tools) != 1 || tools[0] != "Edit" {
				t.Errorf("unique_tools = %v, want [Edit]", payload["unique_tools"])
			}
			if payload["complexity"] == "" {
				t.Error("complexity is empty")
			}
		})
	}
}

func TestHandleSessionParse_EmptySession(t *testing.T) {
	cfg := testSetup(t)
	// Only insubstantial content: parses cleanly, assembles to no conversation.
	path := writeFile(t, filepath.Join(cfg.LogsPath, "empty1.jsonl"), `{"type":"user","content":"hi"}`+"\n")

	h := NewHandlers(cfg, zerolog.Nop())

	result, err := h.HandleSessionParse(context.Background(), makeRequest(map[string]any{"path": path}))
	if err != nil {
		t.Fatalf("HandleSessionParse() error: %v", err)
	}
	if result.IsError {
		t.Fatalf("expected success result, got %v", result.Content)
	}

	payload := decodePayload(t, result)
	if empty, _ := payload["empty"].(bool); !empty {
		t.Errorf("empty = %v, want true", payload["empty"])
	}
	if payload["conversation"] != nil {
		t.Errorf("conversation = %v, want null", payload["conversation"])
	}
	tools, ok := payload["unique_tools"].([]any)
	if !ok || len(tools) != 0 {
		t.Errorf("unique_tools = %v, want []", payload["unique_tools"])
	}
}

func TestHandleDocExtract(t *testing.T) {
	cfg := testSetup(t)
	path := writeFile(t, filepath.Join(t.TempDir(), "SR-PTD-flaky-test.md"), sampleDoc)

	h := NewHandlers(cfg, zerolog.Nop())
	ctx := context.Background()

	result, err := h.HandleDocExtract(ctx, makeRequest(map[string]any{"path": path}))
	if err != nil {
		t.Fatalf("HandleDocExtract() error: %v", err)
	}
	if result.IsError {
		t.Fatal("expected success result")
	}

	payload := decodePayload(t, result)
	if payload["doc_id"] == "" {
		t.Error("doc_id is empty")
	}
	if payload["format_detected"] != "quick" {
		t.Errorf("format_detected = %v, want quick", payload["format_detected"])
	}

	result, err = h.HandleDocExtract(ctx, makeRequest(map[string]any{}))
	if err != nil {
		t.Fatalf("HandleDocExtract() error: %v", err)
	}
	assertErrorCode(t, result, "INVALID_REQUEST")

	result, err = h.HandleDocExtract(ctx, makeRequest(map[string]any{"path": "/nonexistent/doc.md"}))
	if err != nil {
		t.Fatalf("HandleDocExtract() error: %v", err)
	}
	assertErrorCode(t, result, "DOC_LOAD_FAILED")
}

func TestHandleCardsBuildAndBucketSummary(t *testing.T) {
	cfg := testSetup(t)

	// Seed one extraction JSON the way the batch pipeline writes it.
	ext := srptd.NewExtractor(zerolog.Nop()).Extract("SR-PTD-flaky-test.md", sampleDoc)
	data, err := json.MarshalIndent(ext, "", "  ")
	if err != nil {
		t.Fatalf("marshal extraction: %v", err)
	}
	writeFile(t, filepath.Join(cfg.ExtractionsDir, ext.DocID+".json"), string(data))

	h := NewHandlers(cfg, zerolog.Nop())
	ctx := context.Background()

	result, err := h.HandleCardsBuild(ctx, makeRequest(map[string]any{}))
	if err != nil {
		t.Fatalf("HandleCardsBuild() error: %v", err)
	}
	if result.IsError {
		t.Fatalf("expected success result, got %v", result.Content)
	}
	payload := decodePayload(t, result)
	if processed, _ := payload["processed"].(float64); processed != 1 {
		t.Errorf("processed = %v, want 1", payload["processed"])
	}

	result, err = h.HandleBucketSummary(ctx, makeRequest(map[string]any{}))
	if err != nil {
		t.Fatalf("HandleBucketSummary() error: %v", err)
	}
	if result.IsError {
		t.Fatalf("expected success result, got %v", result.Content)
	}
	payload = decodePayload(t, result)
	stats, ok := payload["statistics"].(map[string]any)
	if !ok {
		t.Fatal("no statistics in payload")
	}
	if docs, _ := stats["total_documents"].(float64); docs != 1 {
		t.Errorf("total_documents = %v, want 1", stats["total_documents"])
	}
	buckets, _ := payload["buckets"].(map[string]any)
	if _, ok := buckets["testing__test-isolation"]; !ok {
		t.Errorf("buckets = %v, want testing__test-isolation present", payload["buckets"])
	}
}

func TestServerRegistration(t *testing.T) {
	cfg := testSetup(t)
	s := NewServer(cfg, "test", zerolog.Nop())
	if s == nil {
		t.Fatal("NewServer() = nil")
	}
}

func TestServerRegistration_WithDisabledTools(t *testing.T) {
	cfg := testSetup(t)
	cfg.DisabledTools = []string{"cards_build", "bucket_summary"}
	s := NewServer(cfg, "test", zerolog.Nop())
	if s == nil {
		t.Fatal("NewServer() = nil")
	}
}

func TestValidateDisabledTools(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  int
	}{
		{"all known", []string{"session_list", "doc_extract"}, 0},
		{"one unknown", []string{"session_list", "nope"}, 1},
		{"all unknown", []string{"foo", "bar"}, 2},
		{"empty", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unknown := ValidateDisabledTools(tt.input)
			if len(unknown) != tt.want {
				t.Errorf("ValidateDisabledTools(%v) = %v, want %d unknown", tt.input, unknown, tt.want)
			}
		})
	}
}

func TestAllToolNames(t *testing.T) {
	names := AllToolNames()
	if len(names) != len(toolRegistry) {
		t.Fatalf("AllToolNames() length = %d, want %d", len(names), len(toolRegistry))
	}
	seen := make(map[string]bool)
	for _, name := range names {
		if seen[name] {
			t.Errorf("duplicate tool name %q", name)
		}
		seen[name] = true
	}
	for _, want := range []string{"session_list", "session_parse", "doc_extract", "cards_build", "bucket_summary"} {
		if !seen[want] {
			t.Errorf("missing tool name %q", want)
		}
	}
}

func TestErrorResult_InternalDoesNotExposeDetails(t *testing.T) {
	r := errorResult(errors.NewInternal("write summary", fmt.Errorf("open /tmp/secret: permission denied")))
	if !r.IsError {
		t.Fatal("expected IsError=true")
	}

	payload := decodePayload(t, r)
	errObj := payload["error"].(map[string]any)

	if errObj["code"] != string(errors.ErrInternal) {
		t.Fatalf("code=%v, want %v", errObj["code"], errors.ErrInternal)
	}
	if _, ok := errObj["details"]; ok {
		t.Fatal("expected INTERNAL errors to omit details")
	}
}

func TestErrorResult_NonLoamErrorIsOpaque(t *testing.T) {
	r := errorResult(fmt.Errorf("raw failure"))
	if !r.IsError {
		t.Fatal("expected IsError=true")
	}

	payload := decodePayload(t, r)
	errObj := payload["error"].(map[string]any)
	if errObj["code"] != "INTERNAL" {
		t.Fatalf("code=%v, want INTERNAL", errObj["code"])
	}
	if errObj["message"] == "raw failure" {
		t.Error("raw error message should not be exposed")
	}
}

func TestErrorResult_NonInternalIncludesDetails(t *testing.T) {
	r := errorResult(errors.NewDocLoadFailed("/tmp/doc.md", fmt.Errorf("no such file")))
	payload := decodePayload(t, r)
	errObj := payload["error"].(map[string]any)

	if errObj["code"] != string(errors.ErrDocLoadFailed) {
		t.Fatalf("code=%v, want %v", errObj["code"], errors.ErrDocLoadFailed)
	}
	details, ok := errObj["details"].(map[string]any)
	if !ok {
		t.Fatal("expected details for DOC_LOAD_FAILED")
	}
	if details["path"] != "/tmp/doc.md" {
		t.Errorf("details.path = %v, want /tmp/doc.md", details["path"])
	}
}
