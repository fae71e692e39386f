// Package cards condenses full extractions into compact doc cards and
// groups them into coarse buckets by primary domain and pattern.
package cards

import (
	"strings"
	"time"

	"github.com/hpungsan/loam/internal/srptd"
)

const (
	maxKeywords   = 10
	maxSteps      = 5
	maxArtifacts  = 5
	maxIssues     = 5
	maxIssueChars = 80
)

// Scores carries the skill assessment dimensions onto the card.
type Scores struct {
	ReusabilityTotal   *int    `json:"reusability_total"`
	FrequencyScore     *int    `json:"frequency_score"`
	ConsistencyScore   *int    `json:"consistency_score"`
	ComplexityScore    *int    `json:"complexity_score"`
	CodifiabilityScore *int    `json:"codifiability_score"`
	ToolabilityScore   *int    `json:"toolability_score"`
	ExtractionPriority *string `json:"extraction_priority"`
}

// CardTags are the card-level normalized tag lists.
type CardTags struct {
	Domains    []string `json:"domains"`
	Patterns   []string `json:"patterns"`
	Frameworks []string `json:"frameworks"`
	Languages  []string `json:"languages"`
	Tools      []string `json:"tools"`
}

// CardTrigger is the condensed trigger block.
type CardTrigger struct {
	WhatTriggered string   `json:"what_triggered"`
	Keywords      []string `json:"keywords"`
	DraftTrigger  string   `json:"draft_trigger"`
}

// Card is the compact representation of one extracted document.
type Card struct {
	DocID          string      `json:"doc_id"`
	FormatDetected string      `json:"format_detected"`
	Scores         Scores      `json:"scores"`
	Tags           CardTags    `json:"tags"`
	Trigger        CardTrigger `json:"trigger"`
	WorkflowSteps  []string    `json:"workflow_steps"`
	Artifacts      []string    `json:"artifacts"`
	Issues         []string    `json:"issues"`
	BucketKey      string      `json:"bucket_key"`
	CreatedAt      string      `json:"created_at"`
}

// NewCard condenses an extraction into a card. The bucket key is
// "{primary domain}__{primary pattern}" where primary means first tag in
// the category, with "unknown" standing in for empty categories. Everything
// except created_at is a pure function of the extraction.
func NewCard(ext *srptd.Extraction, now time.Time) Card {
	tags := CardTags{
		Domains:    normalizeCardTags(ext.Tags.Domains),
		Patterns:   normalizeCardTags(ext.Tags.Patterns),
		Frameworks: normalizeCardTags(ext.Tags.Frameworks),
		Languages:  normalizeCardTags(ext.Tags.Languages),
		Tools:      normalizeCardTags(ext.Tags.Tools),
	}

	primaryDomain := "unknown"
	if len(tags.Domains) > 0 {
		primaryDomain = tags.Domains[0]
	}
	primaryPattern := "unknown"
	if len(tags.Patterns) > 0 {
		primaryPattern = tags.Patterns[0]
	}

	artifacts := []string{}
	for _, a := range capArtifacts(ext.OutputsProduced.Artifacts) {
		artifacts = append(artifacts, a.Name)
	}

	issues := []string{}
	for _, item := range ext.IssuesAndFixes.Items {
		if len(issues) == maxIssues {
			break
		}
		issues = append(issues, truncate(item.Issue, maxIssueChars))
	}

	return Card{
		DocID:          ext.DocID,
		FormatDetected: ext.FormatDetected,
		Scores: Scores{
			ReusabilityTotal:   ext.SkillAssessment.ReusabilityScore,
			FrequencyScore:     ext.SkillAssessment.FrequencyScore,
			ConsistencyScore:   ext.SkillAssessment.ConsistencyScore,
			ComplexityScore:    ext.SkillAssessment.ComplexityScore,
			CodifiabilityScore: ext.SkillAssessment.CodifiabilityScore,
			ToolabilityScore:   ext.SkillAssessment.ToolabilityScore,
			ExtractionPriority: ext.SkillAssessment.ExtractionPriority,
		},
		Tags: tags,
		Trigger: CardTrigger{
			WhatTriggered: deref(ext.Trigger.WhatTriggered),
			Keywords:      capStrings(ext.Trigger.KeywordsPhrases, maxKeywords),
			DraftTrigger:  deref(ext.Trigger.DraftSkillTrigger),
		},
		WorkflowSteps: capStrings(ext.Workflow.HighLevelSteps, maxSteps),
		Artifacts:     artifacts,
		Issues:        issues,
		BucketKey:     primaryDomain + "__" + primaryPattern,
		CreatedAt:     now.Format(time.RFC3339),
	}
}

// normalizeCardTags lowercases and dashes tags, dropping empties, the
// "unknown" sentinel, and duplicates while preserving order.
func normalizeCardTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := []string{}
	for _, tag := range tags {
		t := strings.ReplaceAll(strings.TrimSpace(strings.ToLower(tag)), " ", "-")
		if t == "" || t == "unknown" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

func capStrings(items []string, n int) []string {
	if len(items) > n {
		items = items[:n]
	}
	out := make([]string, len(items))
	copy(out, items)
	return out
}

func capArtifacts(items []srptd.Artifact) []srptd.Artifact {
	if len(items) > maxArtifacts {
		return items[:maxArtifacts]
	}
	return items
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
