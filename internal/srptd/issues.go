package srptd

import (
	"regexp"
	"strings"
)

// skipWords mark table rows and bullets that name document scaffolding
// rather than real issues.
var skipWords = []string{
	"tests", "validation", "success criteria", "pr/diff", "scripts",
	"snippets", "configs", "docs updated", "template", "utility",
	"storage", "saved as", "location", "artifacts", "modified files",
	"environment", "starting state",
}

var (
	issueTableRe   = regexp.MustCompile(`\|\s*([^|]+)\s*\|\s*([^|]+)\s*\|\s*([^|]+)\s*\|`)
	issueSectionRe = regexp.MustCompile(`(?is)##\s*Issues?[^#]*`)
	issueBulletRe  = regexp.MustCompile(`-\s*([^->:\n]+)\s*(?:->|:)\s*([^->\n]+)(?:\s*->\s*([^\n]+))?`)
)

// extractIssues pulls issue/fix entries from three-column tables and from
// "- issue -> fix -> prevention" bullets inside an Issues section.
func extractIssues(content string) []IssueItem {
	var issues []IssueItem

	for _, row := range issueTableRe.FindAllStringSubmatch(content, -1) {
		issue := strings.TrimSpace(row[1])
		issueLower := strings.ToLower(issue)
		if strings.Contains(issueLower, "issue") || strings.Contains(issue, "---") ||
			strings.Contains(issueLower, "symptom") {
			continue
		}
		if !validIssue(issue) {
			continue
		}
		issues = append(issues, IssueItem{
			Issue:      issue,
			Cause:      strPtr(strings.TrimSpace(row[2])),
			Fix:        strPtr(strings.TrimSpace(row[3])),
			References: []string{},
		})
	}

	if section := issueSectionRe.FindString(content); section != "" {
		for _, m := range issueBulletRe.FindAllStringSubmatch(section, -1) {
			issue := strings.TrimSpace(m[1])
			if !validIssue(issue) {
				continue
			}
			item := IssueItem{
				Issue:      issue,
				Fix:        strPtr(strings.TrimSpace(m[2])),
				References: []string{},
			}
			if prevention := strings.TrimSpace(m[3]); prevention != "" {
				item.Prevention = strPtr(prevention)
			}
			issues = append(issues, item)
		}
	}

	return issues
}

// validIssue rejects bold field labels, scaffolding rows, and fragments too
// short to describe anything.
func validIssue(text string) bool {
	lower := strings.ToLower(strings.TrimSpace(text))
	if strings.HasPrefix(lower, "**") {
		return false
	}
	for _, skip := range skipWords {
		if strings.Contains(lower, skip) {
			return false
		}
	}
	return len(text) > 5
}
