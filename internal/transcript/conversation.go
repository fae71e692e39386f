package transcript

import (
	"time"

	"github.com/rs/zerolog"
)

// Conversation represents a complete session. It is immutable after assembly;
// the filtered views below are computed, never stored.
type Conversation struct {
	SessionID        string     `json:"session_id"`
	ProjectPath      *string    `json:"project_path,omitempty"`
	WorkingDirectory *string    `json:"working_directory,omitempty"`
	StartTime        *time.Time `json:"start_time,omitempty"`
	EndTime          *time.Time `json:"end_time,omitempty"`
	Messages         []Message  `json:"messages"`
	Summary          *string    `json:"summary,omitempty"`
	TotalTokens      int        `json:"total_tokens"`
	SourceFile       string     `json:"source_file,omitempty"`
}

// Duration returns the conversation duration, or false when either
// timestamp is unknown.
func (c *Conversation) Duration() (time.Duration, bool) {
	if c.StartTime == nil || c.EndTime == nil {
		return 0, false
	}
	return c.EndTime.Sub(*c.StartTime), true
}

// UserMessages returns only the user messages.
func (c *Conversation) UserMessages() []Message {
	return c.filterByRole(RoleUser)
}

// AssistantMessages returns only the assistant messages.
func (c *Conversation) AssistantMessages() []Message {
	return c.filterByRole(RoleAssistant)
}

func (c *Conversation) filterByRole(role Role) []Message {
	var out []Message
	for _, m := range c.Messages {
		if m.Role == role {
			out = append(out, m)
		}
	}
	return out
}

// AllToolUses returns every tool use across all messages, in message order.
func (c *Conversation) AllToolUses() []ToolUse {
	var tools []ToolUse
	for _, m := range c.Messages {
		tools = append(tools, m.ToolUses...)
	}
	return tools
}

// UniqueTools returns the distinct tool names used, in first-use order.
func (c *Conversation) UniqueTools() []string {
	seen := make(map[string]bool)
	var names []string
	for _, tu := range c.AllToolUses() {
		if !seen[tu.Name] {
			seen[tu.Name] = true
			names = append(names, tu.Name)
		}
	}
	return names
}

// EstimateComplexity buckets the conversation into High/Medium/Low based on
// message, tool-use, and unique-tool counts.
func (c *Conversation) EstimateComplexity() string {
	msgCount := len(c.Messages)
	toolCount := len(c.AllToolUses())
	uniqueTools := len(c.UniqueTools())

	switch {
	case msgCount > 30 || toolCount > 20 || uniqueTools > 5:
		return "High"
	case msgCount > 15 || toolCount > 10 || uniqueTools > 3:
		return "Medium"
	default:
		return "Low"
	}
}

// Assembler folds an ordered record stream into one Conversation.
// It applies the Normalizer to each record, keeps only substantial messages,
// and tracks the init/summary side channels without emitting messages for them.
type Assembler struct {
	normalizer *Normalizer
	log        zerolog.Logger

	sessionID        string
	sourceFile       string
	projectPath      *string
	workingDirectory *string
	summary          *string
	messages         []Message
	startTime        *time.Time
	endTime          *time.Time
}

// NewAssembler creates an Assembler for one session.
func NewAssembler(sessionID string, log zerolog.Logger) *Assembler {
	return &Assembler{
		normalizer: NewNormalizer(log),
		log:        log,
		sessionID:  sessionID,
	}
}

// SetSourceFile records the path the session was read from.
func (a *Assembler) SetSourceFile(path string) {
	a.sourceFile = path
}

// Add consumes one raw record. Init and summary records update session
// metadata; everything else goes through the Normalizer and is kept only
// when substantial.
func (a *Assembler) Add(entry map[string]any) {
	switch getString(entry, "type") {
	case "init":
		if wd := firstString(entry, "cwd", "workingDirectory"); wd != "" {
			a.workingDirectory = &wd
		}
		if project := getString(entry, "project"); project != "" {
			a.projectPath = &project
		}
		return
	case "summary":
		if s := firstString(entry, "summary", "text"); s != "" {
			a.summary = &s
		}
		return
	}

	msg := a.normalizer.Normalize(entry)
	if msg == nil || !msg.Substantial() {
		return
	}

	a.messages = append(a.messages, *msg)

	if msg.Timestamp != nil {
		if a.startTime == nil || msg.Timestamp.Before(*a.startTime) {
			a.startTime = msg.Timestamp
		}
		if a.endTime == nil || msg.Timestamp.After(*a.endTime) {
			a.endTime = msg.Timestamp
		}
	}
}

// Conversation produces the assembled Conversation, or nil when the session
// held no substantial messages. An empty session is not an error.
func (a *Assembler) Conversation() *Conversation {
	if len(a.messages) == 0 {
		a.log.Debug().Str("session", a.sessionID).Msg("no substantial messages")
		return nil
	}

	totalTokens := 0
	for _, m := range a.messages {
		if m.TokenCount != nil {
			totalTokens += *m.TokenCount
		}
	}

	return &Conversation{
		SessionID:        a.sessionID,
		ProjectPath:      a.projectPath,
		WorkingDirectory: a.workingDirectory,
		StartTime:        a.startTime,
		EndTime:          a.endTime,
		Messages:         a.messages,
		Summary:          a.summary,
		TotalTokens:      totalTokens,
		SourceFile:       a.sourceFile,
	}
}
