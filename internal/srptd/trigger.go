package srptd

import (
	"regexp"
	"strings"
)

var (
	blockquoteLineRe = regexp.MustCompile(`(?m)^>\s*(.+)$`)
	whatTriggeredRe  = regexp.MustCompile(`(?i)\*\*What triggered[^*]*\*\*[:\s]*`)
	draftTriggerRe   = regexp.MustCompile(`(?i)\*\*Draft Skill Trigger\*\*[:\s]*`)
	keywordsBlockRe  = regexp.MustCompile(`(?i)\*\*Keywords?[^*]*\*\*[:\s]*\n?((?:>?\s*-[^\n]+\n?)+|[^\n*]+)`)
	markersBlockRe   = regexp.MustCompile(`(?i)\*\*Context Markers?\*\*[:\s]*\n?((?:>?\s*-[^\n]+\n?)+|[^\n*]+)`)
	keywordItemRe    = regexp.MustCompile(`[-*>]\s*"?([^"\n]+)"?`)
	markerItemRe     = regexp.MustCompile(`[-*>]\s*([^\n]+)`)
)

// extractTrigger pulls trigger information. A blockquote is the default
// trigger text; an explicit "**What triggered**" field overrides it.
func extractTrigger(content string) Trigger {
	trigger := Trigger{
		KeywordsPhrases: []string{},
		ContextMarkers:  []string{},
	}

	if quoted := joinBlockquotes(content); quoted != "" {
		trigger.WhatTriggered = strPtr(quoted)
	}

	setIfFound(&trigger.WhatTriggered, captureAfter(whatTriggeredRe, content))

	if block := firstGroup(keywordsBlockRe, content); block != "" {
		for _, m := range keywordItemRe.FindAllStringSubmatch(block, -1) {
			if item := strings.Trim(m[1], ` "'`); item != "" {
				trigger.KeywordsPhrases = append(trigger.KeywordsPhrases, item)
			}
		}
	}

	if block := firstGroup(markersBlockRe, content); block != "" {
		for _, m := range markerItemRe.FindAllStringSubmatch(block, -1) {
			if item := strings.TrimSpace(m[1]); item != "" {
				trigger.ContextMarkers = append(trigger.ContextMarkers, item)
			}
		}
	}

	setIfFound(&trigger.DraftSkillTrigger, captureAfter(draftTriggerRe, content))

	return trigger
}

// joinBlockquotes collects every "> " line and joins the quoted text with
// spaces, so a multi-line quote reads as one trigger sentence.
func joinBlockquotes(content string) string {
	matches := blockquoteLineRe.FindAllStringSubmatch(content, -1)
	if len(matches) == 0 {
		return ""
	}
	parts := make([]string, 0, len(matches))
	for _, m := range matches {
		if text := strings.TrimSpace(m[1]); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

// FirstBlockquote returns the first blockquote run in text, used as a
// trigger fallback when no trigger section exists. Consecutive quote lines
// join into one sentence; a later, separate quote is not part of the run.
func FirstBlockquote(text string) string {
	var parts []string
	inRun := false
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, ">") {
			inRun = true
			if quoted := strings.TrimSpace(strings.TrimPrefix(trimmed, ">")); quoted != "" {
				parts = append(parts, quoted)
			}
			continue
		}
		if inRun {
			break
		}
	}
	return strings.Join(parts, " ")
}
