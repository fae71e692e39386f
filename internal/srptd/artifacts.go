package srptd

import (
	"regexp"
	"strings"
)

var (
	artifactTableRe = regexp.MustCompile("\\|\\s*`?([^|`]+)`?\\s*\\|\\s*([^|]+)\\s*\\|\\s*([^|]+)\\s*\\|(?:\\s*([^|]+)\\s*\\|)?")
	modifiedFileRe  = regexp.MustCompile("-\\s*`?([^`\n:]+?\\.(?:go|py|js|ts|html|css|json|md|yaml|yml|xml|sql|sh|toml))`?(?:\\s*[-:]?\\s*([^\n]+))?")
)

// extractArtifacts pulls produced files from tables and modified-file
// bullets. Table rows look like
// "| filename | format | purpose | template potential |"; the fourth column
// is optional. Bullet entries must look like filenames (have an extension).
func extractArtifacts(content string) []Artifact {
	var artifacts []Artifact

	for _, row := range artifactTableRe.FindAllStringSubmatch(content, -1) {
		name := strings.TrimSpace(row[1])
		if name == "" || strings.Contains(name, "---") {
			continue
		}
		nameLower := strings.ToLower(name)
		if strings.Contains(nameLower, "filename") {
			continue
		}
		if strings.Contains(nameLower, "file") && strings.Contains(strings.ToLower(row[2]), "change") {
			continue
		}

		templatePotential := false
		if col := strings.ToLower(row[4]); col != "" {
			templatePotential = strings.Contains(col, "[x]") || strings.Contains(col, "yes")
		}

		a := Artifact{
			Name:              name,
			Type:              strPtr(strings.TrimSpace(row[2])),
			TemplatePotential: templatePotential,
		}
		if notes := strings.TrimSpace(row[3]); notes != "" {
			a.Notes = strPtr(notes)
		}
		artifacts = append(artifacts, a)
	}

	for _, m := range modifiedFileRe.FindAllStringSubmatch(content, -1) {
		name := strings.TrimSpace(m[1])
		if name == "" || !strings.Contains(name, ".") {
			continue
		}
		a := Artifact{
			Name:     name,
			Type:     strPtr("modified_file"),
			PathHint: strPtr(name),
		}
		if notes := strings.TrimSpace(m[2]); notes != "" {
			a.Notes = strPtr(notes)
		}
		artifacts = append(artifacts, a)
	}

	return artifacts
}
