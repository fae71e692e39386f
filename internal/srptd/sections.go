package srptd

import (
	"regexp"
	"strings"
)

// Format identifies the document dialect.
type Format string

const (
	FormatFull   Format = "full"   // Section A-J layout
	FormatQuick  Format = "quick"  // quick capture with inline metadata header
	FormatLegacy Format = "legacy" // old task_doc layout
)

type sectionPattern struct {
	name string
	re   *regexp.Regexp
}

// Pattern order matters: the first matching pattern names the section.
var fullSectionPatterns = []sectionPattern{
	{"header", regexp.MustCompile(`(?i)^#\s*(?:Section\s*A[:.]?|SR-PTD|Task Doc).*?(?:Header|Skill Trigger)`)},
	{"context", regexp.MustCompile(`(?i)^(?:##\s*(?:Section\s*B[:.]?|Context|Inputs)|##\s*Problem Statement)`)},
	{"workflow", regexp.MustCompile(`(?i)^##\s*(?:Section\s*C[:.]?|Workflow|Work Performed)`)},
	{"knowledge", regexp.MustCompile(`(?i)^##\s*(?:Section\s*D[:.]?|Knowledge|Knowledge Used|Knowledge Accessed)`)},
	{"code", regexp.MustCompile(`(?i)^##\s*(?:Section\s*E[:.]?|Code|Code Written)`)},
	{"outputs", regexp.MustCompile(`(?i)^##\s*(?:Section\s*F[:.]?|Output|Artifacts|Files)`)},
	{"issues", regexp.MustCompile(`(?i)^##\s*(?:Section\s*G[:.]?|Issue|Issues|Problems)`)},
	{"verification", regexp.MustCompile(`(?i)^##\s*(?:Section\s*H[:.]?|Verification|Validation|Test)`)},
	{"skill_assessment", regexp.MustCompile(`(?i)^##\s*(?:Section\s*I[:.]?|Skill.*Assessment|Reusability)`)},
	{"tags", regexp.MustCompile(`(?i)^##\s*(?:Section\s*J[:.]?|Tags)`)},
}

// Quick capture and legacy documents share simpler headers.
var quickSectionPatterns = []sectionPattern{
	{"trigger", regexp.MustCompile(`(?i)^##\s*Trigger`)},
	{"workflow", regexp.MustCompile(`(?i)^##\s*Workflow`)},
	{"decisions", regexp.MustCompile(`(?i)^##\s*Key Decisions`)},
	{"knowledge", regexp.MustCompile(`(?i)^##\s*Knowledge`)},
	{"code", regexp.MustCompile(`(?i)^##\s*Code`)},
	{"outputs", regexp.MustCompile(`(?i)^##\s*Output`)},
	{"issues", regexp.MustCompile(`(?i)^##\s*Issues`)},
	{"skill_potential", regexp.MustCompile(`(?i)^##\s*Skill Potential`)},
	{"tags", regexp.MustCompile(`(?i)^##\s*Tags`)},
}

// DetectFormat classifies a document into one of the three dialects.
// Classification is ordered: full markers win over quick markers, and the
// fallback for an unclassifiable document is quick.
func DetectFormat(content string) Format {
	lower := strings.ToLower(content)

	if strings.Contains(lower, "section a") || strings.Contains(lower, "skill trigger profile") {
		return FormatFull
	}

	head := content
	if len(head) > 500 {
		head = head[:500]
	}
	if strings.Contains(lower, "| **type**:") || strings.Contains(head, "**Date**:") {
		if strings.Contains(lower, "## trigger") && strings.Contains(lower, "## workflow") {
			return FormatQuick
		}
	}

	head200 := content
	if len(head200) > 200 {
		head200 = head200[:200]
	}
	if strings.Contains(lower, "task doc") || strings.Contains(head200, "- **Date**:") {
		return FormatLegacy
	}

	return FormatQuick
}

// SplitSections walks the document line by line and buckets content under
// the most recent matching section header. Text before the first header
// lands in an implicit "header" section. When a document repeats a section
// header, the last occurrence wins.
func SplitSections(content string, format Format) map[string]string {
	patterns := quickSectionPatterns
	if format == FormatFull {
		patterns = fullSectionPatterns
	}

	sections := make(map[string]string)
	current := "header"
	var buf []string

	flush := func() {
		if len(buf) > 0 {
			sections[current] = strings.TrimSpace(strings.Join(buf, "\n"))
		}
	}

	for _, line := range strings.Split(content, "\n") {
		if name := matchSectionHeader(line, patterns); name != "" {
			flush()
			current = name
			buf = []string{line}
			continue
		}
		buf = append(buf, line)
	}
	flush()

	return sections
}

func matchSectionHeader(line string, patterns []sectionPattern) string {
	for _, p := range patterns {
		if p.re.MatchString(line) {
			return p.name
		}
	}
	return ""
}
