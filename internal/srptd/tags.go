package srptd

import (
	"regexp"
	"strings"
)

var (
	tagLanguagesRe  = regexp.MustCompile(`(?i)(?:\*\*)?Languages?(?:\*\*)?:\s*([^|\n]+)`)
	tagFrameworksRe = regexp.MustCompile(`(?i)(?:\*\*)?Frameworks?(?:/Libs?)?(?:\*\*)?:\s*([^|\n]+)`)
	tagDomainsRe    = regexp.MustCompile(`(?i)(?:\*\*)?Domains?(?:\*\*)?:\s*([^|\n]+)`)
	tagServicesRe   = regexp.MustCompile(`(?i)(?:\*\*)?(?:External\s*)?Services?(?:\*\*)?:\s*([^|\n]+)`)
	tagPatternsRe   = regexp.MustCompile(`(?i)(?:\*\*)?Patterns?(?:\*\*)?:\s*([^|\n]+)`)
	tagToolsRe      = regexp.MustCompile(`(?i)(?:\*\*)?(?:Tools?|Operational)(?:\*\*)?:\s*([^|\n]+)`)
	tagSplitRe      = regexp.MustCompile(`[,;]`)
)

// extractTags pulls the per-category tag lines, normalizes each tag, and
// deduplicates within each category. A literal "none" under services is
// dropped.
func extractTags(content string) Tags {
	tags := Tags{
		Languages:  tagList(tagLanguagesRe, content, false),
		Frameworks: tagList(tagFrameworksRe, content, false),
		Domains:    tagList(tagDomainsRe, content, false),
		Services:   tagList(tagServicesRe, content, true),
		Patterns:   tagList(tagPatternsRe, content, false),
		Tools:      tagList(tagToolsRe, content, false),
	}
	return tags
}

func tagList(re *regexp.Regexp, content string, skipNone bool) []string {
	raw := firstGroup(re, content)
	if raw == "" {
		return []string{}
	}

	out := []string{}
	for _, part := range tagSplitRe.Split(raw, -1) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if skipNone && strings.EqualFold(part, "none") {
			continue
		}
		if tag := NormalizeTag(part); tag != "" {
			out = append(out, tag)
		}
	}
	return Deduplicate(out)
}
