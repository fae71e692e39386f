package srptd

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	workflowTypeRe  = regexp.MustCompile(`(?i)\*\*Workflow Type\*\*:\s*(\w+)`)
	stepStartRe     = regexp.MustCompile(`(?m)^\s*(\d+)\.\s+`)
	stepLineRe      = regexp.MustCompile(`(?m)^(\d+)\.\s*(.+)$`)
	decisionTableRe = regexp.MustCompile(`\|\s*([^|]+)\s*\|\s*([^|]+)\s*\|\s*([^|]+)\s*\|\s*([^|]+)\s*\|`)
	arrowDecisionRe = regexp.MustCompile(`-\s*\*?\*?([^*\n]+?)\*?\*?\s*->\s*([^->]+)(?:\s*->\s*(.+))?`)
)

type numberedStep struct {
	num  int
	text string
}

// extractWorkflow pulls the ordered steps and decision points. Steps come
// from numbered lists; decisions come from four-column tables and from
// "- decision -> choice -> rationale" arrow bullets.
func extractWorkflow(content string) Workflow {
	wf := Workflow{
		HighLevelSteps:  []string{},
		DetailedStepLog: []StepLogEntry{},
		DecisionPoints:  []DecisionPoint{},
	}

	setIfFound(&wf.WorkflowType, firstGroup(workflowTypeRe, content))

	steps := numberedSteps(content)
	if len(steps) == 0 {
		steps = numberedLines(content)
	}
	steps = dedupeSteps(steps)

	for _, step := range steps {
		if step.text == "" {
			continue
		}
		wf.HighLevelSteps = append(wf.HighLevelSteps, step.text)
		wf.DetailedStepLog = append(wf.DetailedStepLog, StepLogEntry{
			StepNumber: step.num,
			Action:     step.text,
		})
	}

	for _, row := range decisionTableRe.FindAllStringSubmatch(content, -1) {
		decision := strings.TrimSpace(row[1])
		if strings.Contains(strings.ToLower(decision), "decision") || strings.Contains(decision, "---") {
			continue
		}
		wf.DecisionPoints = append(wf.DecisionPoints, DecisionPoint{
			Decision:  decision,
			Options:   strPtr(strings.TrimSpace(row[2])),
			Choice:    strPtr(strings.TrimSpace(row[3])),
			Rationale: strPtr(strings.TrimSpace(row[4])),
		})
	}

	for _, m := range arrowDecisionRe.FindAllStringSubmatch(content, -1) {
		dp := DecisionPoint{
			Decision: strings.TrimSpace(m[1]),
			Choice:   strPtr(strings.TrimSpace(m[2])),
		}
		if strings.TrimSpace(m[3]) != "" {
			dp.Rationale = strPtr(strings.TrimSpace(m[3]))
		}
		wf.DecisionPoints = append(wf.DecisionPoints, dp)
	}

	return wf
}

// numberedSteps finds numbered list items where each item spans to the next
// numbered line. Only the first line of a multi-line item is kept, and items
// whose text opens a sub-bullet are dropped.
func numberedSteps(content string) []numberedStep {
	starts := stepStartRe.FindAllStringSubmatchIndex(content, -1)
	if len(starts) == 0 {
		return nil
	}

	var steps []numberedStep
	for i, loc := range starts {
		num, err := strconv.Atoi(content[loc[2]:loc[3]])
		if err != nil {
			continue
		}

		end := len(content)
		if i+1 < len(starts) {
			end = starts[i+1][0]
		}
		body := content[loc[1]:end]
		text := strings.TrimSpace(strings.SplitN(body, "\n", 2)[0])
		if text == "" || strings.HasPrefix(text, "-") {
			continue
		}
		steps = append(steps, numberedStep{num: num, text: text})
	}
	return steps
}

// numberedLines is the looser single-line fallback used when the spanning
// pattern found nothing.
func numberedLines(content string) []numberedStep {
	var steps []numberedStep
	for _, m := range stepLineRe.FindAllStringSubmatch(content, -1) {
		num, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		steps = append(steps, numberedStep{num: num, text: strings.TrimSpace(m[2])})
	}
	return steps
}

// dedupeSteps removes exact (number, text) duplicates and sorts by step
// number, keeping the document's relative order for equal numbers.
func dedupeSteps(steps []numberedStep) []numberedStep {
	seen := make(map[numberedStep]bool, len(steps))
	unique := make([]numberedStep, 0, len(steps))
	for _, s := range steps {
		if !seen[s] {
			seen[s] = true
			unique = append(unique, s)
		}
	}
	sort.SliceStable(unique, func(i, j int) bool {
		return unique[i].num < unique[j].num
	})
	return unique
}
