package transcript

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func testNormalizer() *Normalizer {
	return NewNormalizer(zerolog.Nop())
}

func TestClassifyRecord(t *testing.T) {
	tests := []struct {
		name  string
		entry map[string]any
		want  recordShape
	}{
		{
			name:  "type discriminator wins",
			entry: map[string]any{"type": "user", "role": "assistant", "content": "x"},
			want:  shapeTyped,
		},
		{
			name:  "role field",
			entry: map[string]any{"role": "user", "content": "x"},
			want:  shapeRole,
		},
		{
			name:  "nested message",
			entry: map[string]any{"message": map[string]any{"role": "user"}},
			want:  shapeNested,
		},
		{
			name:  "bare content",
			entry: map[string]any{"content": "hello"},
			want:  shapeContent,
		},
		{
			name:  "unrecognized",
			entry: map[string]any{"uuid": "abc"},
			want:  shapeUnrecognized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyRecord(tt.entry); got != tt.want {
				t.Errorf("classifyRecord() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNormalize_ToolUseRecord(t *testing.T) {
	// A tool_use record must always yield a message whose single tool use
	// carries the given name and id, regardless of optional fields.
	tests := []struct {
		name     string
		entry    map[string]any
		wantName string
		wantID   string
	}{
		{
			name:     "full fields",
			entry:    map[string]any{"type": "tool_use", "name": "Bash", "id": "tu_1", "input": map[string]any{"command": "ls"}},
			wantName: "Bash",
			wantID:   "tu_1",
		},
		{
			name:     "alternate field names",
			entry:    map[string]any{"type": "tool_use", "tool_name": "Read", "tool_id": "tu_2", "parameters": map[string]any{"path": "a.go"}},
			wantName: "Read",
			wantID:   "tu_2",
		},
		{
			name:     "missing name defaults to unknown",
			entry:    map[string]any{"type": "tool_use", "id": "tu_3"},
			wantName: "unknown",
			wantID:   "tu_3",
		},
		{
			name:     "no optional fields at all",
			entry:    map[string]any{"type": "tool_use"},
			wantName: "unknown",
			wantID:   "",
		},
	}

	n := testNormalizer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := n.Normalize(tt.entry)
			if msg == nil {
				t.Fatal("Normalize() = nil, want message")
			}
			if msg.Role != RoleTool {
				t.Errorf("Role = %q, want %q", msg.Role, RoleTool)
			}
			if len(msg.ToolUses) != 1 {
				t.Fatalf("len(ToolUses) = %d, want 1", len(msg.ToolUses))
			}
			if msg.ToolUses[0].Name != tt.wantName {
				t.Errorf("ToolUses[0].Name = %q, want %q", msg.ToolUses[0].Name, tt.wantName)
			}
			if msg.ToolUses[0].ID != tt.wantID {
				t.Errorf("ToolUses[0].ID = %q, want %q", msg.ToolUses[0].ID, tt.wantID)
			}
		})
	}
}

func TestNormalize_TypedRoles(t *testing.T) {
	n := testNormalizer()

	tests := []struct {
		name      string
		entryType string
		wantRole  Role
	}{
		{"human maps to user", "human", RoleUser},
		{"user", "user", RoleUser},
		{"assistant", "assistant", RoleAssistant},
		{"ai maps to assistant", "ai", RoleAssistant},
		{"tool_result", "tool_result", RoleToolResult},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := n.Normalize(map[string]any{"type": tt.entryType, "content": "some message content"})
			if msg == nil {
				t.Fatal("Normalize() = nil, want message")
			}
			if msg.Role != tt.wantRole {
				t.Errorf("Role = %q, want %q", msg.Role, tt.wantRole)
			}
		})
	}
}

func TestNormalize_MetadataRecordsYieldNoMessage(t *testing.T) {
	n := testNormalizer()

	for _, entryType := range []string{"summary", "init"} {
		if msg := n.Normalize(map[string]any{"type": entryType, "text": "ignored"}); msg != nil {
			t.Errorf("Normalize(type=%q) = %+v, want nil", entryType, msg)
		}
	}
}

func TestNormalize_NestedMessage(t *testing.T) {
	n := testNormalizer()

	t.Run("nested object recurses", func(t *testing.T) {
		msg := n.Normalize(map[string]any{
			"message": map[string]any{"role": "assistant", "content": "a longer nested response"},
		})
		if msg == nil {
			t.Fatal("Normalize() = nil, want message")
		}
		if msg.Role != RoleAssistant {
			t.Errorf("Role = %q, want %q", msg.Role, RoleAssistant)
		}
		if msg.Content != "a longer nested response" {
			t.Errorf("Content = %q", msg.Content)
		}
	})

	t.Run("nested string becomes user content", func(t *testing.T) {
		msg := n.Normalize(map[string]any{"message": "fix the login page please"})
		if msg == nil {
			t.Fatal("Normalize() = nil, want message")
		}
		if msg.Role != RoleUser {
			t.Errorf("Role = %q, want %q", msg.Role, RoleUser)
		}
	})
}

func TestNormalize_ContentEntryRoleInference(t *testing.T) {
	n := testNormalizer()

	tests := []struct {
		name  string
		entry map[string]any
		want  Role
	}{
		{
			name:  "defaults to user",
			entry: map[string]any{"content": "please update the schema"},
			want:  RoleUser,
		},
		{
			name:  "isAssistant flag",
			entry: map[string]any{"content": "updating the schema now", "isAssistant": true},
			want:  RoleAssistant,
		},
		{
			name:  "sender hint",
			entry: map[string]any{"content": "updating the schema now", "sender": "Assistant-2"},
			want:  RoleAssistant,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := n.Normalize(tt.entry)
			if msg == nil {
				t.Fatal("Normalize() = nil, want message")
			}
			if msg.Role != tt.want {
				t.Errorf("Role = %q, want %q", msg.Role, tt.want)
			}
		})
	}
}

func TestNormalize_EmptyContentEntry(t *testing.T) {
	if msg := testNormalizer().Normalize(map[string]any{"content": ""}); msg != nil {
		t.Errorf("Normalize() = %+v, want nil for empty content", msg)
	}
}

func TestExtractContent(t *testing.T) {
	tests := []struct {
		name  string
		entry map[string]any
		want  string
	}{
		{
			name:  "flat string",
			entry: map[string]any{"content": "plain text"},
			want:  "plain text",
		},
		{
			name: "typed part list",
			entry: map[string]any{"content": []any{
				map[string]any{"type": "text", "text": "first"},
				map[string]any{"type": "tool_use", "name": "Bash"},
				map[string]any{"type": "text", "text": "second"},
			}},
			want: "first\n[Tool: Bash]\nsecond",
		},
		{
			name:  "string items in list",
			entry: map[string]any{"content": []any{"one", "two"}},
			want:  "one\ntwo",
		},
		{
			name:  "base64 fallback",
			entry: map[string]any{"content_base64": base64.StdEncoding.EncodeToString([]byte("decoded text"))},
			want:  "decoded text",
		},
		{
			name:  "message field fallback",
			entry: map[string]any{"message": "from message field"},
			want:  "from message field",
		},
		{
			name:  "text field fallback",
			entry: map[string]any{"text": "from text field"},
			want:  "from text field",
		},
		{
			name:  "nothing",
			entry: map[string]any{},
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractContent(tt.entry); got != tt.want {
				t.Errorf("extractContent() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractToolUses_BothSources(t *testing.T) {
	entry := map[string]any{
		"content": []any{
			map[string]any{"type": "text", "text": "running the tool"},
			map[string]any{"type": "tool_use", "name": "Bash", "id": "a", "input": map[string]any{"command": "go test"}},
		},
		"tool_uses": []any{
			map[string]any{"tool_name": "Edit", "tool_id": "b"},
		},
	}

	tools := extractToolUses(entry)
	if len(tools) != 2 {
		t.Fatalf("len(tools) = %d, want 2", len(tools))
	}
	if tools[0].Name != "Bash" || tools[0].ID != "a" {
		t.Errorf("tools[0] = %+v", tools[0])
	}
	if tools[1].Name != "Edit" || tools[1].ID != "b" {
		t.Errorf("tools[1] = %+v", tools[1])
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  *time.Time
	}{
		{
			name:  "epoch seconds",
			input: float64(1700000000),
			want:  timePtr(time.Unix(1700000000, 0).UTC()),
		},
		{
			name:  "epoch milliseconds by magnitude",
			input: float64(1700000000000),
			want:  timePtr(time.UnixMilli(1700000000000).UTC()),
		},
		{
			name:  "ISO-8601",
			input: "2025-03-01T12:30:00Z",
			want:  timePtr(time.Date(2025, 3, 1, 12, 30, 0, 0, time.UTC)),
		},
		{
			name:  "ISO-8601 with offset",
			input: "2025-03-01T12:30:00+02:00",
			want:  timePtr(time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC)),
		},
		{
			name:  "ISO-8601 without zone",
			input: "2025-03-01T12:30:00",
			want:  timePtr(time.Date(2025, 3, 1, 12, 30, 0, 0, time.UTC)),
		},
		{
			name:  "garbage string",
			input: "yesterday",
			want:  nil,
		},
		{
			name:  "nil",
			input: nil,
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseTimestamp(tt.input)
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("parseTimestamp(%v) = %v, want %v", tt.input, got, tt.want)
			}
			if got != nil && !got.Equal(*tt.want) {
				t.Errorf("parseTimestamp(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestExtractTokenCount(t *testing.T) {
	t.Run("direct field", func(t *testing.T) {
		tc := extractTokenCount(map[string]any{"token_count": float64(42)})
		if tc == nil || *tc != 42 {
			t.Errorf("extractTokenCount() = %v, want 42", tc)
		}
	})

	t.Run("usage output_tokens", func(t *testing.T) {
		tc := extractTokenCount(map[string]any{"usage": map[string]any{"output_tokens": float64(7)}})
		if tc == nil || *tc != 7 {
			t.Errorf("extractTokenCount() = %v, want 7", tc)
		}
	})

	t.Run("absent", func(t *testing.T) {
		if tc := extractTokenCount(map[string]any{}); tc != nil {
			t.Errorf("extractTokenCount() = %v, want nil", tc)
		}
	})
}

func TestMessage_Substantial(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
		want bool
	}{
		{
			name: "long content",
			msg:  Message{Content: "this is a long enough message"},
			want: true,
		},
		{
			name: "short content no tools",
			msg:  Message{Content: "ok"},
			want: false,
		},
		{
			name: "short content with tool",
			msg:  Message{Content: "ok", ToolUses: []ToolUse{{Name: "Bash"}}},
			want: true,
		},
		{
			name: "empty content with tool",
			msg:  Message{ToolUses: []ToolUse{{Name: "Bash"}}},
			want: true,
		},
		{
			name: "whitespace padding does not count",
			msg:  Message{Content: "   hi   \n\n\t    "},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.msg.Substantial(); got != tt.want {
				t.Errorf("Substantial() = %v, want %v", got, tt.want)
			}
		})
	}
}

func timePtr(t time.Time) *time.Time {
	return &t
}
