package transcript

import (
	"strings"
	"time"
)

// Role identifies the sender of a message.
type Role string

const (
	RoleUser       Role = "user"
	RoleAssistant  Role = "assistant"
	RoleSystem     Role = "system"
	RoleTool       Role = "tool"
	RoleToolResult Role = "tool_result"
)

// roleTable maps record role strings to Roles.
var roleTable = map[string]Role{
	"user":        RoleUser,
	"assistant":   RoleAssistant,
	"system":      RoleSystem,
	"tool_use":    RoleTool,
	"tool_result": RoleToolResult,
}

// ToolUse represents a tool invocation in the conversation.
// A ToolUse is owned exclusively by its Message.
type ToolUse struct {
	Name       string         `json:"name"`
	ID         string         `json:"id"`
	Parameters map[string]any `json:"parameters"`
	Result     *string        `json:"result,omitempty"`
	Success    bool           `json:"success"`
	Timestamp  *time.Time     `json:"timestamp,omitempty"`
}

// Message represents a single message in the conversation.
type Message struct {
	Role       Role           `json:"role"`
	Content    string         `json:"content"`
	Timestamp  *time.Time     `json:"timestamp,omitempty"`
	ToolUses   []ToolUse      `json:"tool_uses,omitempty"`
	Thinking   *string        `json:"thinking,omitempty"`
	TokenCount *int           `json:"token_count,omitempty"`
	RawData    map[string]any `json:"-"`
}

// Substantial reports whether the message carries content worth keeping:
// at least one tool use, or trimmed content longer than 10 characters.
func (m *Message) Substantial() bool {
	if m.Content == "" {
		return len(m.ToolUses) > 0
	}
	return len(strings.TrimSpace(m.Content)) > 10 || len(m.ToolUses) > 0
}
