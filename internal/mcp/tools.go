package mcp

import (
	mcplib "github.com/mark3labs/mcp-go/mcp"
)

var sessionListToolDef = mcplib.NewTool("session_list",
	mcplib.WithDescription(`List discovered session transcript files.

Scans the configured logs directory (or the given path) for .jsonl session
logs and returns one entry per file with session id, path, modified time,
and size. Newest files first.`),
	mcplib.WithReadOnlyHintAnnotation(true),
	mcplib.WithIdempotentHintAnnotation(true),
	mcplib.WithString("path",
		mcplib.Description("Directory to scan. Defaults to the configured logs path."),
	),
)

var sessionParseToolDef = mcplib.NewTool("session_parse",
	mcplib.WithDescription(`Parse one session transcript file into a conversation.

Reads a .jsonl transcript, normalizes every record the format recognizes,
and returns the assembled conversation: messages, tool uses, timestamps,
token totals, and derived views (unique tools, complexity estimate).
Malformed lines are skipped, not fatal.`),
	mcplib.WithReadOnlyHintAnnotation(true),
	mcplib.WithIdempotentHintAnnotation(true),
	mcplib.WithString("path",
		mcplib.Description("Path to the .jsonl session log."),
		mcplib.Required(),
	),
)

var docExtractToolDef = mcplib.NewTool("doc_extract",
	mcplib.WithDescription(`Extract a post-task document into the canonical schema.

Parses a markdown post-task doc (quick, full, or legacy format), splits its
sections, and returns the full extraction: metadata, trigger, workflow steps
and decisions, code blocks, artifacts, issues, verification, skill
assessment, and normalized tags. Missing fields are reported as
parse_warnings, never as errors.`),
	mcplib.WithReadOnlyHintAnnotation(true),
	mcplib.WithIdempotentHintAnnotation(true),
	mcplib.WithString("path",
		mcplib.Description("Path to the markdown document."),
		mcplib.Required(),
	),
)

var cardsBuildToolDef = mcplib.NewTool("cards_build",
	mcplib.WithDescription(`Build compact doc cards from stored extraction JSON files.

Reads every extraction in the extractions directory, reduces each to a card
(scores, tags, trigger, capped step/artifact/issue lists, bucket key), and
writes one card file per document to the cards directory.`),
	mcplib.WithIdempotentHintAnnotation(true),
	mcplib.WithString("extractions_dir",
		mcplib.Description("Directory holding extraction JSON files. Defaults to the configured extractions dir."),
	),
	mcplib.WithString("cards_dir",
		mcplib.Description("Output directory for card JSON files. Defaults to the configured cards dir."),
	),
)

var bucketSummaryToolDef = mcplib.NewTool("bucket_summary",
	mcplib.WithDescription(`Group doc cards into buckets and summarize them.

Groups cards by their domain__pattern bucket key, writes one bucket file per
key to the buckets directory, and returns the bucket summary: totals,
average and extreme bucket sizes, singleton count, and the size of the
unknown__unknown bucket.`),
	mcplib.WithIdempotentHintAnnotation(true),
	mcplib.WithString("cards_dir",
		mcplib.Description("Directory holding card JSON files. Defaults to the configured cards dir."),
	),
	mcplib.WithString("buckets_dir",
		mcplib.Description("Output directory for bucket JSON files. Defaults to the configured buckets dir."),
	),
)
