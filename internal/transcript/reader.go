package transcript

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/hpungsan/loam/internal/errors"
)

// maxLineBytes bounds a single transcript line. Assistant turns with large
// tool results can run to megabytes.
const maxLineBytes = 16 * 1024 * 1024

// SessionInfo describes one discovered session log file.
type SessionInfo struct {
	SessionID    string  `json:"session_id"`
	FilePath     string  `json:"file_path"`
	ModifiedTime string  `json:"modified_time"`
	SizeKB       float64 `json:"size_kb"`
	Project      string  `json:"project,omitempty"`
}

// Reader finds and parses session transcript files.
type Reader struct {
	logsPath string
	log      zerolog.Logger
}

// NewReader creates a Reader rooted at logsPath. An empty logsPath falls back
// to the default locations.
func NewReader(logsPath string, log zerolog.Logger) *Reader {
	return &Reader{
		logsPath: resolveLogsPath(logsPath, log),
		log:      log,
	}
}

// LogsPath returns the resolved transcript directory, which may be empty when
// no location exists.
func (r *Reader) LogsPath() string {
	return r.logsPath
}

// resolveLogsPath resolves the transcript directory, checking the default
// locations when none is configured.
func resolveLogsPath(logsPath string, log zerolog.Logger) string {
	if logsPath != "" {
		if expanded, err := expandHome(logsPath); err == nil {
			logsPath = expanded
		}
		if _, err := os.Stat(logsPath); err == nil {
			return logsPath
		}
		log.Warn().Str("path", logsPath).Msg("configured logs path does not exist")
	}

	for _, candidate := range defaultLogLocations() {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	log.Warn().Msg("no session logs found in default locations")
	return ""
}

// defaultLogLocations returns the platform default transcript directories.
func defaultLogLocations() []string {
	var paths []string
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".claude", "projects"))
	}
	if profile := os.Getenv("USERPROFILE"); profile != "" {
		paths = append(paths, filepath.Join(profile, ".claude", "projects"))
	}
	return paths
}

// expandHome expands a leading ~ to the user's home directory.
func expandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path, err
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// FindLogFiles finds all JSONL files under path (or the resolved logs path),
// sorted by modification time, newest first.
func (r *Reader) FindLogFiles(path string) []string {
	searchPath := path
	if searchPath == "" {
		searchPath = r.logsPath
	}
	if searchPath == "" {
		return nil
	}

	info, err := os.Stat(searchPath)
	if err != nil {
		return nil
	}

	var files []string
	if !info.IsDir() {
		if strings.HasSuffix(searchPath, ".jsonl") {
			files = append(files, searchPath)
		}
		return files
	}

	_ = filepath.WalkDir(searchPath, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() && strings.HasSuffix(p, ".jsonl") {
			files = append(files, p)
		}
		return nil
	})

	sort.Slice(files, func(i, j int) bool {
		return fileModTime(files[i]).After(fileModTime(files[j]))
	})

	r.log.Info().Int("count", len(files)).Msg("found session log files")
	return files
}

func fileModTime(path string) time.Time {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}

// ListSessions lists discovered sessions with metadata, newest first.
func (r *Reader) ListSessions(path string) []SessionInfo {
	files := r.FindLogFiles(path)
	sessions := make([]SessionInfo, 0, len(files))
	for _, f := range files {
		info, err := os.Stat(f)
		if err != nil {
			continue
		}
		sessions = append(sessions, SessionInfo{
			SessionID:    sessionID(f),
			FilePath:     f,
			ModifiedTime: info.ModTime().UTC().Format(time.RFC3339),
			SizeKB:       float64(info.Size()) / 1024,
			Project:      filepath.Base(filepath.Dir(f)),
		})
	}
	return sessions
}

// sessionID derives the session identifier from the file name.
func sessionID(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

// ParseFile parses a single JSONL transcript into a Conversation.
// Returns nil with no error when the session has no substantial messages.
func (r *Reader) ParseFile(path string) (*Conversation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewNotFound(path)
	}
	defer f.Close()

	r.log.Info().Str("file", filepath.Base(path)).Msg("parsing session")

	conv := r.ParseStream(sessionID(path), f)
	if conv != nil {
		conv.SourceFile = path
		r.log.Info().
			Int("messages", len(conv.Messages)).
			Int("user", len(conv.UserMessages())).
			Int("assistant", len(conv.AssistantMessages())).
			Int("tool_uses", len(conv.AllToolUses())).
			Msg("parsed session")
	}
	return conv, nil
}

// ParseStream folds a line-delimited record stream into a Conversation.
// Malformed lines are skipped with a logged warning; nothing aborts the stream.
func (r *Reader) ParseStream(sessionID string, reader io.Reader) *Conversation {
	assembler := NewAssembler(sessionID, r.log)

	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			r.log.Debug().Int("line", lineNum).Err(err).Msg("invalid JSON record")
			continue
		}

		assembler.Add(entry)
	}
	if err := scanner.Err(); err != nil {
		r.log.Warn().Err(err).Str("session", sessionID).Msg("stream read error")
	}

	return assembler.Conversation()
}

// ParseDirectory parses all JSONL files under path. Conversations with fewer
// than minMessages substantial messages are dropped; this filter is caller
// policy, not part of assembly. maxFiles of 0 means no cap.
func (r *Reader) ParseDirectory(path string, maxFiles, minMessages int) []*Conversation {
	files := r.FindLogFiles(path)
	if maxFiles > 0 && len(files) > maxFiles {
		files = files[:maxFiles]
	}

	var conversations []*Conversation
	for _, f := range files {
		conv, err := r.ParseFile(f)
		if err != nil {
			r.log.Warn().Err(err).Str("file", f).Msg("failed to read session file")
			continue
		}
		if conv != nil && len(conv.Messages) >= minMessages {
			conversations = append(conversations, conv)
		}
	}

	r.log.Info().
		Int("conversations", len(conversations)).
		Int("files", len(files)).
		Msg("parsed session directory")

	return conversations
}

// ParseRecent parses only session files modified in the last days days.
func (r *Reader) ParseRecent(days, maxConversations, minMessages int) []*Conversation {
	cutoff := time.Now().AddDate(0, 0, -days)

	var recent []string
	for _, f := range r.FindLogFiles("") {
		if fileModTime(f).After(cutoff) {
			recent = append(recent, f)
		}
	}
	if maxConversations > 0 && len(recent) > maxConversations {
		recent = recent[:maxConversations]
	}

	var conversations []*Conversation
	for _, f := range recent {
		conv, err := r.ParseFile(f)
		if err != nil {
			continue
		}
		if conv != nil && len(conv.Messages) >= minMessages {
			conversations = append(conversations, conv)
		}
	}
	return conversations
}
