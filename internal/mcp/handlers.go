package mcp

import (
	"context"

	json "github.com/goccy/go-json"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog"

	"github.com/hpungsan/loam/internal/batch"
	"github.com/hpungsan/loam/internal/config"
	"github.com/hpungsan/loam/internal/errors"
	"github.com/hpungsan/loam/internal/srptd"
	"github.com/hpungsan/loam/internal/transcript"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	cfg       *config.Config
	reader    *transcript.Reader
	extractor *srptd.Extractor
	runner    *batch.Runner
	log       zerolog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(cfg *config.Config, log zerolog.Logger) *Handlers {
	return &Handlers{
		cfg:       cfg,
		reader:    transcript.NewReader(cfg.LogsPath, log),
		extractor: srptd.NewExtractor(log),
		runner:    batch.NewRunner(cfg.DocPrefixes, log),
		log:       log,
	}
}

// Request types for each tool

// SessionListRequest represents the arguments for session_list.
type SessionListRequest struct {
	Path string `json:"path,omitempty"`
}

// SessionParseRequest represents the arguments for session_parse.
type SessionParseRequest struct {
	Path string `json:"path"`
}

// DocExtractRequest represents the arguments for doc_extract.
type DocExtractRequest struct {
	Path string `json:"path"`
}

// CardsBuildRequest represents the arguments for cards_build.
type CardsBuildRequest struct {
	ExtractionsDir string `json:"extractions_dir,omitempty"`
	CardsDir       string `json:"cards_dir,omitempty"`
}

// BucketSummaryRequest represents the arguments for bucket_summary.
type BucketSummaryRequest struct {
	CardsDir   string `json:"cards_dir,omitempty"`
	BucketsDir string `json:"buckets_dir,omitempty"`
}

// SessionListResult is the response for session_list.
type SessionListResult struct {
	Sessions []transcript.SessionInfo `json:"sessions"`
	Count    int                      `json:"count"`
}

// SessionParseResult is the response for session_parse. Empty marks a
// readable session with no substantial messages.
type SessionParseResult struct {
	Conversation *transcript.Conversation `json:"conversation"`
	UniqueTools  []string                 `json:"unique_tools"`
	Complexity   string                   `json:"complexity"`
	Empty        bool                     `json:"empty"`
}

// Tool handlers

// HandleSessionList handles the session_list tool.
func (h *Handlers) HandleSessionList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SessionListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	path := input.Path
	if path == "" {
		path = h.reader.LogsPath()
	}

	sessions := h.reader.ListSessions(path)
	return successResult(SessionListResult{Sessions: sessions, Count: len(sessions)})
}

// HandleSessionParse handles the session_parse tool.
func (h *Handlers) HandleSessionParse(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SessionParseRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.Path == "" {
		return errorResult(errors.NewInvalidRequest("path is required")), nil
	}

	conv, err := h.reader.ParseFile(input.Path)
	if err != nil {
		return errorResult(err), nil
	}
	// A session with no substantial messages parses to nil, not an error.
	if conv == nil {
		return successResult(SessionParseResult{UniqueTools: []string{}, Empty: true})
	}

	return successResult(SessionParseResult{
		Conversation: conv,
		UniqueTools:  conv.UniqueTools(),
		Complexity:   conv.EstimateComplexity(),
	})
}

// HandleDocExtract handles the doc_extract tool.
func (h *Handlers) HandleDocExtract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[DocExtractRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.Path == "" {
		return errorResult(errors.NewInvalidRequest("path is required")), nil
	}

	ext, err := h.extractor.ExtractFile(input.Path)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(ext)
}

// HandleCardsBuild handles the cards_build tool.
func (h *Handlers) HandleCardsBuild(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CardsBuildRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	extractionsDir := input.ExtractionsDir
	if extractionsDir == "" {
		extractionsDir = h.cfg.ExtractionsDir
	}
	cardsDir := input.CardsDir
	if cardsDir == "" {
		cardsDir = h.cfg.CardsDir
	}

	result, err := h.runner.BuildCards(extractionsDir, cardsDir)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleBucketSummary handles the bucket_summary tool.
func (h *Handlers) HandleBucketSummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[BucketSummaryRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	cardsDir := input.CardsDir
	if cardsDir == "" {
		cardsDir = h.cfg.CardsDir
	}
	bucketsDir := input.BucketsDir
	if bucketsDir == "" {
		bucketsDir = h.cfg.BucketsDir
	}

	summary, err := h.runner.BuildBuckets(cardsDir, bucketsDir)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(summary)
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Note: Internal error details are not exposed to prevent leaking sensitive info.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if loamErr, ok := err.(*errors.LoamError); ok {
		errorObj := map[string]any{
			"code":    loamErr.Code,
			"message": loamErr.Message,
			"status":  loamErr.Status,
		}
		// Only include details for non-internal errors to avoid leaking
		// sensitive info like filesystem paths
		if loamErr.Code != errors.ErrInternal && loamErr.Details != nil {
			errorObj["details"] = loamErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
