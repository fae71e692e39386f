package srptd

import (
	"regexp"
	"strings"
)

// firstGroup returns the first capture group of the first match, trimmed,
// or "" when the pattern does not match.
func firstGroup(re *regexp.Regexp, content string) string {
	m := re.FindStringSubmatch(content)
	if m == nil || len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// captureAfter finds the marker and returns the text that follows it, cut at
// the first blank line or bold field marker. Regex lookahead is unavailable
// here, so the stop scan is done by hand.
func captureAfter(marker *regexp.Regexp, content string) string {
	loc := marker.FindStringIndex(content)
	if loc == nil {
		return ""
	}
	rest := content[loc[1]:]
	end := len(rest)
	for _, stop := range []string{"\n\n", "\n**"} {
		if i := strings.Index(rest, stop); i >= 0 && i < end {
			end = i
		}
	}
	return strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(rest[:end]), "> "))
}

// captureContinuation finds the marker, takes the remainder of its line, and
// extends the capture over following non-empty lines that do not open a new
// bold field.
func captureContinuation(marker *regexp.Regexp, content string) string {
	loc := marker.FindStringIndex(content)
	if loc == nil {
		return ""
	}
	rest := content[loc[1]:]
	lines := strings.Split(rest, "\n")
	if len(lines) == 0 {
		return ""
	}

	captured := []string{lines[0]}
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "**") {
			break
		}
		captured = append(captured, line)
	}
	return strings.TrimSpace(strings.Join(captured, "\n"))
}

func strPtr(s string) *string {
	return &s
}

func intPtr(i int) *int {
	return &i
}

// setIfFound assigns target only when value is non-empty.
func setIfFound(target **string, value string) {
	if value != "" {
		*target = &value
	}
}
