package srptd

import (
	"regexp"
	"strings"
)

var (
	checkLineRe      = regexp.MustCompile(`(?m)-\s*([^:\n]+):\s*([^\n]+)`)
	criterionLineRe  = regexp.MustCompile(`(?i)-\s*\[([x ])\]\s*(.+)`)
	expectedBlockRe  = regexp.MustCompile(`(?i)\*\*(?:After fix|Expected)\*\*:\s*\n?((?:-[^\n]+\n?)+)`)
	expectedBulletRe = regexp.MustCompile(`-\s*(.+)`)
)

// extractVerification pulls test checks, success criteria checkboxes, and
// expected-result bullets.
func extractVerification(content string) Verification {
	v := Verification{
		Checks:             []VerificationCheck{},
		ExpectedResults:    []string{},
		SuccessCriteriaMet: []SuccessCriterion{},
	}

	for _, m := range checkLineRe.FindAllStringSubmatch(content, -1) {
		v.Checks = append(v.Checks, VerificationCheck{
			Test:   strings.TrimSpace(m[1]),
			Result: strings.TrimSpace(m[2]),
		})
	}

	for _, m := range criterionLineRe.FindAllStringSubmatch(content, -1) {
		v.SuccessCriteriaMet = append(v.SuccessCriteriaMet, SuccessCriterion{
			Criterion: strings.TrimSpace(m[2]),
			Met:       strings.EqualFold(m[1], "x"),
		})
	}

	if block := firstGroup(expectedBlockRe, content); block != "" {
		for _, m := range expectedBulletRe.FindAllStringSubmatch(block, -1) {
			v.ExpectedResults = append(v.ExpectedResults, strings.TrimSpace(m[1]))
		}
	}

	return v
}
