package srptd

import (
	"os"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/hpungsan/loam/internal/errors"
)

// Extractor orchestrates the per-section extractors into one Extraction.
type Extractor struct {
	log zerolog.Logger
}

// NewExtractor creates an Extractor.
func NewExtractor(log zerolog.Logger) *Extractor {
	return &Extractor{log: log}
}

// ExtractFile loads a document from disk and extracts it.
func (e *Extractor) ExtractFile(path string) (*Extraction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewDocLoadFailed(path, err)
	}
	return e.Extract(path, string(data)), nil
}

// Extract runs the full extraction pipeline over a document. The pipeline is
// deterministic: the same content always yields the same Extraction apart
// from nothing at all (no timestamps, no randomness).
func (e *Extractor) Extract(sourcePath, content string) *Extraction {
	format := DetectFormat(content)
	ext := NewExtraction(DocID(sourcePath, content), sourcePath, string(format))

	sections := SplitSections(content, format)
	ext.RawSections = sections

	// Metadata lives in the header section, but quick capture documents put
	// inline fields near the top of the body too.
	ext.Metadata = extractMetadata(sections["header"] + "\n" + head(content, 1000))

	contextContent := sections["context"]
	if contextContent == "" {
		contextContent = sections["header"]
	}
	ext.ContextInputs = extractContext(contextContent)

	triggerContent := sections["trigger"]
	if triggerContent == "" {
		triggerContent = sections["header"]
	}
	ext.Trigger = extractTrigger(triggerContent)

	// Trigger fallback chain: a blockquote near the top of the document,
	// then the objective, then the requirements field.
	if ext.Trigger.WhatTriggered == nil {
		if quote := FirstBlockquote(head(content, 2000)); quote != "" {
			ext.Trigger.WhatTriggered = strPtr(quote)
		}
	}
	if ext.Trigger.WhatTriggered == nil && ext.ContextInputs.Objective != nil {
		ext.Trigger.WhatTriggered = ext.ContextInputs.Objective
	}
	if ext.Trigger.WhatTriggered == nil && ext.ContextInputs.Requirements != nil {
		ext.Trigger.WhatTriggered = ext.ContextInputs.Requirements
	}

	ext.Workflow = extractWorkflow(e.workflowContent(sections, format))

	if decisions := sections["decisions"]; decisions != "" {
		ext.Workflow.DecisionPoints = append(ext.Workflow.DecisionPoints,
			extractWorkflow(decisions).DecisionPoints...)
	}

	ext.KnowledgeAccessed = extractKnowledge(sections["knowledge"])

	// Code blocks come from the code section first, then a whole-document
	// pass catches blocks outside it. Duplicates collapse by content hash.
	ext.CodeWritten = CodeWritten{
		Blocks: MergeCodeBlocks(extractCodeBlocks(sections["code"]), extractCodeBlocks(content)),
	}

	ext.OutputsProduced = Outputs{Artifacts: extractArtifacts(outputsContent(sections))}
	ext.IssuesAndFixes = Issues{Items: extractIssues(sections["issues"])}

	ext.Verification = extractVerification(sections["verification"])
	for _, key := range sortedKeys(sections) {
		lower := strings.ToLower(key)
		if strings.Contains(lower, "expected") || strings.Contains(lower, "result") {
			v := extractVerification(sections[key])
			ext.Verification.ExpectedResults = append(ext.Verification.ExpectedResults, v.ExpectedResults...)
		}
	}

	ext.SkillAssessment = extractAssessment(assessmentContent(sections, content))

	ext.Tags = extractTags(sections["tags"] + "\n" + tail(content, 1000))

	ext.ParseWarnings = warnings(ext)

	e.log.Debug().
		Str("doc_id", ext.DocID).
		Str("format", ext.FormatDetected).
		Int("sections", len(sections)).
		Int("warnings", len(ext.ParseWarnings)).
		Msg("extracted document")

	return ext
}

// workflowContent resolves where the workflow steps live. Legacy documents
// sometimes keep numbered steps in the header.
func (e *Extractor) workflowContent(sections map[string]string, format Format) string {
	if wf := sections["workflow"]; wf != "" {
		return wf
	}
	for _, key := range sortedKeys(sections) {
		lower := strings.ToLower(key)
		if strings.Contains(lower, "work") || strings.Contains(lower, "step") {
			return sections[key]
		}
	}
	if format == FormatLegacy {
		if header := sections["header"]; strings.Contains(header, "1. ") {
			return header
		}
	}
	return ""
}

// outputsContent gathers every section that can hold artifacts.
func outputsContent(sections map[string]string) string {
	content := sections["outputs"]
	if content == "" {
		content = sections["artifacts"]
	}
	for _, key := range sortedKeys(sections) {
		lower := strings.ToLower(key)
		if strings.Contains(lower, "file") || strings.Contains(lower, "artifact") ||
			strings.Contains(lower, "modified") {
			content += "\n" + sections[key]
		}
	}
	return content
}

// assessmentContent gathers everything that can hold skill scores, falling
// back to the whole document when it carries a scoring table.
func assessmentContent(sections map[string]string, content string) string {
	assessment := sections["skill_assessment"]
	if assessment == "" {
		assessment = sections["skill_potential"]
	}
	for _, key := range sortedKeys(sections) {
		lower := strings.ToLower(key)
		if strings.Contains(lower, "skill") || strings.Contains(lower, "reusab") ||
			strings.Contains(lower, "tags") {
			assessment += "\n" + sections[key]
		}
	}
	if strings.Contains(content, "Dimension") && strings.Contains(content, "Score") {
		assessment += "\n" + content
	}
	return assessment
}

// warnings flags missing fields that downstream grouping depends on.
func warnings(ext *Extraction) []string {
	var w []string
	if ext.Metadata.Date == nil {
		w = append(w, "Missing: metadata.date")
	}
	if ext.Trigger.WhatTriggered == nil {
		w = append(w, "Missing: trigger.what_triggered")
	}
	if len(ext.Workflow.HighLevelSteps) == 0 {
		w = append(w, "Missing: workflow.high_level_steps")
	}
	if len(ext.CodeWritten.Blocks) == 0 {
		w = append(w, "Empty: code_written.blocks")
	}
	if len(ext.Tags.Languages) == 0 {
		w = append(w, "Missing: tags.languages")
	}
	if len(ext.Tags.Domains) == 0 {
		w = append(w, "Missing: tags.domains")
	}
	if w == nil {
		w = []string{}
	}
	return w
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func head(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func tail(s string, n int) string {
	if len(s) > n {
		return s[len(s)-n:]
	}
	return s
}
