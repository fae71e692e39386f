package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// Config holds application configuration.
type Config struct {
	// LogsPath is the directory containing session transcript JSONL files.
	// Empty means search the default locations (~/.claude/projects).
	LogsPath string `json:"logs_path,omitempty"`

	// ExtractionsDir is the output directory for extraction JSON files.
	ExtractionsDir string `json:"extractions_dir,omitempty"`

	// CardsDir is the output directory for doc card JSON files.
	CardsDir string `json:"cards_dir,omitempty"`

	// BucketsDir is the output directory for bucket JSON files.
	BucketsDir string `json:"buckets_dir,omitempty"`

	// MinMessages is the minimum substantial-message count for a conversation
	// to be kept by directory parsing. The conversation assembler itself never
	// applies this filter.
	MinMessages int `json:"min_messages,omitempty"`

	// MaxFiles caps how many session files a directory parse will read.
	// 0 means no cap.
	MaxFiles int `json:"max_files,omitempty"`

	// DocPrefixes lists filename prefixes recognized as post-task documents.
	DocPrefixes []string `json:"doc_prefixes,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// Unknown tool names are ignored with a logged warning.
	DisabledTools []string `json:"disabled_tools,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		ExtractionsDir: "extractions",
		CardsDir:       "cards",
		BucketsDir:     "buckets",
		MinMessages:    3,
		DocPrefixes:    []string{"SR-PTD", "task_doc"},
	}
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.loam.
func Load(baseDir string) (*Config, error) {
	return loadFile(filepath.Join(baseDir, "config.json"))
}

// LoadWithRepo loads configuration from both global (~/.loam) and repo (.loam)
// directories. Repo config is found by walking upward from startDir to find the
// nearest .loam/config.json. Repo config takes precedence for scalar values;
// arrays are merged (deduplicated). Either or both configs may be missing.
func LoadWithRepo(globalDir, startDir string) (*Config, error) {
	global, err := loadFileRaw(filepath.Join(globalDir, "config.json"))
	if err != nil {
		return nil, err
	}

	repo, err := loadFileRaw(FindRepoConfig(startDir))
	if err != nil {
		return nil, err
	}

	return Merge(Merge(DefaultConfig(), global), repo), nil
}

// FindRepoConfig walks upward from startDir to find the nearest .loam/config.json.
// Returns the path if found, or empty string if not found.
func FindRepoConfig(startDir string) string {
	dir := startDir
	for {
		configPath := filepath.Join(dir, ".loam", "config.json")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile loads configuration from a specific file path.
// Returns default config if the file doesn't exist.
func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	result.LogsPath = overlay.LogsPath
	if result.LogsPath == "" {
		result.LogsPath = base.LogsPath
	}

	result.ExtractionsDir = overlay.ExtractionsDir
	if result.ExtractionsDir == "" {
		result.ExtractionsDir = base.ExtractionsDir
	}

	result.CardsDir = overlay.CardsDir
	if result.CardsDir == "" {
		result.CardsDir = base.CardsDir
	}

	result.BucketsDir = overlay.BucketsDir
	if result.BucketsDir == "" {
		result.BucketsDir = base.BucketsDir
	}

	result.MinMessages = overlay.MinMessages
	if result.MinMessages == 0 {
		result.MinMessages = base.MinMessages
	}

	result.MaxFiles = overlay.MaxFiles
	if result.MaxFiles == 0 {
		result.MaxFiles = base.MaxFiles
	}

	result.DocPrefixes = mergeStringSlice(base.DocPrefixes, overlay.DocPrefixes)
	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)

	return result
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range a {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}
	for _, s := range b {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
