package transcript

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// recordShape classifies a raw transcript record into one of the recognized
// shapes. Classification is a closed match: anything that fits none of the
// known shapes is shapeUnrecognized and produces no Message.
type recordShape int

const (
	shapeTyped        recordShape = iota // explicit "type" discriminator
	shapeRole                            // "role" field
	shapeNested                          // nested "message" object or string
	shapeContent                         // bare "content" field
	shapeUnrecognized                    // none of the above
)

// classifyRecord determines the shape of a raw record. First match wins,
// in the same order the dispatch applies them.
func classifyRecord(entry map[string]any) recordShape {
	if _, ok := entry["type"]; ok {
		return shapeTyped
	}
	if _, ok := entry["role"]; ok {
		return shapeRole
	}
	if _, ok := entry["message"]; ok {
		return shapeNested
	}
	if _, ok := entry["content"]; ok {
		return shapeContent
	}
	return shapeUnrecognized
}

// Normalizer converts raw transcript records into Messages.
// Malformed records are skipped and logged, never fatal.
type Normalizer struct {
	log zerolog.Logger
}

// NewNormalizer creates a Normalizer that logs skipped records to the given logger.
func NewNormalizer(log zerolog.Logger) *Normalizer {
	return &Normalizer{log: log}
}

// Normalize parses a single record into a Message.
// Returns nil for records that carry no message (session metadata,
// unrecognized shapes, empty content).
func (n *Normalizer) Normalize(entry map[string]any) *Message {
	switch classifyRecord(entry) {
	case shapeTyped:
		return n.normalizeTyped(entry)
	case shapeRole:
		return n.normalizeRole(entry)
	case shapeNested:
		return n.normalizeNested(entry)
	case shapeContent:
		return n.normalizeContent(entry)
	default:
		n.log.Debug().Strs("keys", mapKeys(entry)).Msg("unrecognized record shape")
		return nil
	}
}

// normalizeTyped handles records with an explicit type discriminator.
func (n *Normalizer) normalizeTyped(entry map[string]any) *Message {
	entryType := strings.ToLower(getString(entry, "type"))

	switch entryType {
	case "human", "user":
		return n.newMessage(RoleUser, extractContent(entry), entry, nil, "")
	case "assistant", "ai":
		return n.newMessage(RoleAssistant, extractContent(entry), entry, extractToolUses(entry), getString(entry, "thinking"))
	case "tool_use":
		tu := ToolUse{
			Name:       firstString(entry, "name", "tool_name"),
			ID:         firstString(entry, "id", "tool_id"),
			Parameters: firstMap(entry, "input", "parameters"),
			Success:    true,
		}
		if tu.Name == "" {
			tu.Name = "unknown"
		}
		return n.newMessage(RoleTool, fmt.Sprintf("Tool: %s", tu.Name), entry, []ToolUse{tu}, "")
	case "tool_result":
		return n.newMessage(RoleToolResult, extractContent(entry), entry, nil, "")
	case "summary", "init":
		// Session metadata, handled by the assembler. Not a message.
		return nil
	}

	return nil
}

// normalizeRole handles records with a role field.
func (n *Normalizer) normalizeRole(entry map[string]any) *Message {
	role, ok := roleTable[strings.ToLower(getString(entry, "role"))]
	if !ok {
		return nil
	}
	return n.newMessage(role, extractContent(entry), entry, extractToolUses(entry), getString(entry, "thinking"))
}

// normalizeNested handles records with a nested message object or string.
func (n *Normalizer) normalizeNested(entry map[string]any) *Message {
	switch msg := entry["message"].(type) {
	case map[string]any:
		return n.Normalize(msg)
	case string:
		// Content is directly in the field; sender is unspecified.
		return n.newMessage(RoleUser, msg, entry, nil, "")
	}
	return nil
}

// normalizeContent handles records with only a content field. The role is
// inferred from a sender/flag side channel, defaulting to user.
func (n *Normalizer) normalizeContent(entry map[string]any) *Message {
	content := extractContent(entry)
	if content == "" {
		return nil
	}

	role := RoleUser
	if isTruthy(entry["isAssistant"]) || strings.Contains(strings.ToLower(fmt.Sprint(entry["sender"])), "assistant") {
		role = RoleAssistant
	}

	return n.newMessage(role, content, entry, nil, "")
}

// newMessage assembles a Message with timestamp and token count from the record.
func (n *Normalizer) newMessage(role Role, content string, entry map[string]any, toolUses []ToolUse, thinking string) *Message {
	m := &Message{
		Role:     role,
		Content:  content,
		ToolUses: toolUses,
		RawData:  entry,
	}

	if ts := parseTimestamp(entry["timestamp"]); ts != nil {
		m.Timestamp = ts
	}
	if thinking != "" {
		m.Thinking = &thinking
	}
	if tc := extractTokenCount(entry); tc != nil {
		m.TokenCount = tc
	}

	return m
}

// extractContent pulls text content from the record, trying each known
// carrier in order and returning the first non-empty result.
func extractContent(entry map[string]any) string {
	if s, ok := entry["content"].(string); ok {
		return s
	}

	// Content as a list of typed parts.
	if items, ok := entry["content"].([]any); ok {
		var parts []string
		for _, item := range items {
			switch v := item.(type) {
			case string:
				parts = append(parts, v)
			case map[string]any:
				switch v["type"] {
				case "text":
					parts = append(parts, getString(v, "text"))
				case "tool_use":
					name := getString(v, "name")
					if name == "" {
						name = "unknown"
					}
					parts = append(parts, fmt.Sprintf("[Tool: %s]", name))
				}
			}
		}
		return strings.Join(parts, "\n")
	}

	if b64 := getString(entry, "content_base64"); b64 != "" {
		if decoded, err := base64.StdEncoding.DecodeString(b64); err == nil {
			return string(decoded)
		}
	}

	if s, ok := entry["message"].(string); ok {
		return s
	}

	return getString(entry, "text")
}

// extractToolUses scans both the typed content-part list and an explicit
// tool_uses array for tool invocations.
func extractToolUses(entry map[string]any) []ToolUse {
	var tools []ToolUse

	if items, ok := entry["content"].([]any); ok {
		for _, item := range items {
			part, ok := item.(map[string]any)
			if !ok || part["type"] != "tool_use" {
				continue
			}
			name := getString(part, "name")
			if name == "" {
				name = "unknown"
			}
			tools = append(tools, ToolUse{
				Name:       name,
				ID:         getString(part, "id"),
				Parameters: firstMap(part, "input"),
				Success:    true,
			})
		}
	}

	if items, ok := entry["tool_uses"].([]any); ok {
		for _, item := range items {
			tu, ok := item.(map[string]any)
			if !ok {
				continue
			}
			name := firstString(tu, "name", "tool_name")
			if name == "" {
				name = "unknown"
			}
			tools = append(tools, ToolUse{
				Name:       name,
				ID:         firstString(tu, "id", "tool_id"),
				Parameters: firstMap(tu, "input", "parameters"),
				Success:    true,
			})
		}
	}

	return tools
}

// parseTimestamp accepts epoch seconds, epoch milliseconds (disambiguated by
// magnitude), or ISO-8601 text. Anything unparsable leaves the timestamp unset.
func parseTimestamp(v any) *time.Time {
	switch ts := v.(type) {
	case float64:
		if ts > 1e12 {
			t := time.UnixMilli(int64(ts)).UTC()
			return &t
		}
		t := time.Unix(int64(ts), 0).UTC()
		return &t
	case string:
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			t = t.UTC()
			return &t
		}
		// Zone-less ISO-8601, read as UTC.
		if t, err := time.Parse("2006-01-02T15:04:05", ts); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

// extractTokenCount reads token_count or usage.output_tokens.
func extractTokenCount(entry map[string]any) *int {
	if f, ok := entry["token_count"].(float64); ok {
		n := int(f)
		return &n
	}
	if usage, ok := entry["usage"].(map[string]any); ok {
		if f, ok := usage["output_tokens"].(float64); ok {
			n := int(f)
			return &n
		}
	}
	return nil
}

// Helpers

func getString(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func firstMap(m map[string]any, keys ...string) map[string]any {
	for _, k := range keys {
		if v, ok := m[k].(map[string]any); ok {
			return v
		}
	}
	return map[string]any{}
}

func isTruthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0
	}
	return false
}

func mapKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}
