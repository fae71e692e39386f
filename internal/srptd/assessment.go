package srptd

import (
	"regexp"
	"strconv"
	"strings"
)

var dimensionScoreRes = []struct {
	assign func(*SkillAssessment, int)
	re     *regexp.Regexp
}{
	{func(a *SkillAssessment, v int) { a.FrequencyScore = intPtr(v) }, regexp.MustCompile(`(?i)Frequency[^|]*\|\s*(\d)`)},
	{func(a *SkillAssessment, v int) { a.ConsistencyScore = intPtr(v) }, regexp.MustCompile(`(?i)Consistency[^|]*\|\s*(\d)`)},
	{func(a *SkillAssessment, v int) { a.ComplexityScore = intPtr(v) }, regexp.MustCompile(`(?i)Complexity[^|]*\|\s*(\d)`)},
	{func(a *SkillAssessment, v int) { a.CodifiabilityScore = intPtr(v) }, regexp.MustCompile(`(?i)Codifiability[^|]*\|\s*(\d)`)},
	{func(a *SkillAssessment, v int) { a.ToolabilityScore = intPtr(v) }, regexp.MustCompile(`(?i)Tool-?ability[^|]*\|\s*(\d)`)},
}

var (
	totalScoreRe     = regexp.MustCompile(`(?:TOTAL|Total)[^|]*\|\s*(\d+)`)
	priorityCheckRe  = regexp.MustCompile(`(?i)\[x\]\s*\*?\*?(\w+)\s*Priority`)
	skillPotentialRe = regexp.MustCompile(`(?i)Skill Potential:\s*(\w+)`)
	assessmentNoteRe = regexp.MustCompile(`(?i)\*\*Notes?\*\*:\s*`)
)

// extractAssessment pulls the per-dimension scores from the scoring table,
// the total, and the extraction priority. A plain "Skill Potential: high"
// line maps onto the priority when the checkbox form is absent, with
// anything besides high/medium collapsing to low.
func extractAssessment(content string) SkillAssessment {
	var a SkillAssessment

	for _, dim := range dimensionScoreRes {
		if s := firstGroup(dim.re, content); s != "" {
			if v, err := strconv.Atoi(s); err == nil {
				dim.assign(&a, v)
			}
		}
	}

	if s := firstGroup(totalScoreRe, content); s != "" {
		if v, err := strconv.Atoi(s); err == nil {
			a.ReusabilityScore = intPtr(v)
		}
	}

	if p := firstGroup(priorityCheckRe, content); p != "" {
		a.ExtractionPriority = strPtr(strings.ToLower(p))
	}

	if p := strings.ToLower(firstGroup(skillPotentialRe, content)); p != "" {
		switch p {
		case "high", "medium":
			a.ExtractionPriority = strPtr(p)
		default:
			a.ExtractionPriority = strPtr("low")
		}
	}

	setIfFound(&a.Notes, captureContinuation(assessmentNoteRe, content))

	return a
}
