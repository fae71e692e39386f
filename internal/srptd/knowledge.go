package srptd

import (
	"regexp"
	"strings"
)

var (
	knowledgeDBRe       = regexp.MustCompile(`(?i)\*\*(?:DB|Database)[^*]*\*\*:\s*`)
	knowledgeAPIRe      = regexp.MustCompile(`(?i)\*\*API[^*]*\*\*:\s*`)
	knowledgeCodebaseRe = regexp.MustCompile(`(?i)\*\*(?:Code(?:base)?|Code patterns?)[^*]*\*\*:\s*`)
	knowledgeBulletRe   = regexp.MustCompile(`-\s*\*\*([^*]+)\*\*:\s*([^\n]+)`)
)

// wellKnownKnowledgeCategories are covered by the dedicated fields above and
// are excluded from the generic bullet scan.
var wellKnownKnowledgeCategories = map[string]bool{
	"db": true, "database": true, "api": true,
	"code": true, "codebase": true, "code patterns": true,
}

// extractKnowledge pulls the knowledge sources consulted during the task.
// Database, API, and codebase knowledge get dedicated fields and also appear
// in the sources list; any other bold category bullet becomes a generic source.
func extractKnowledge(content string) Knowledge {
	k := Knowledge{Sources: []KnowledgeSource{}}

	if detail := captureContinuation(knowledgeDBRe, content); detail != "" {
		k.DBKnowledge = strPtr(detail)
		k.Sources = append(k.Sources, KnowledgeSource{Type: "database", Detail: detail})
	}
	if detail := captureContinuation(knowledgeAPIRe, content); detail != "" {
		k.APIKnowledge = strPtr(detail)
		k.Sources = append(k.Sources, KnowledgeSource{Type: "api", Detail: detail})
	}
	if detail := captureContinuation(knowledgeCodebaseRe, content); detail != "" {
		k.CodebaseKnowledge = strPtr(detail)
		k.Sources = append(k.Sources, KnowledgeSource{Type: "codebase", Detail: detail})
	}

	for _, m := range knowledgeBulletRe.FindAllStringSubmatch(content, -1) {
		category := strings.ToLower(strings.TrimSpace(m[1]))
		if wellKnownKnowledgeCategories[category] {
			continue
		}
		k.Sources = append(k.Sources, KnowledgeSource{
			Type:   category,
			Detail: strings.TrimSpace(m[2]),
		})
	}

	return k
}
