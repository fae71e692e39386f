// Package srptd extracts structured data from post-task documentation
// written in markdown. No LLM is involved; everything is deterministic
// pattern matching, so the same document always yields the same extraction.
package srptd

// Extraction is the complete structured output for one document.
type Extraction struct {
	DocID             string            `json:"doc_id"`
	SourcePath        string            `json:"source_path"`
	FormatDetected    string            `json:"format_detected"`
	Metadata          Metadata          `json:"metadata"`
	Trigger           Trigger           `json:"trigger"`
	ContextInputs     ContextInputs     `json:"context_inputs"`
	Workflow          Workflow          `json:"workflow"`
	KnowledgeAccessed Knowledge         `json:"knowledge_accessed"`
	CodeWritten       CodeWritten       `json:"code_written"`
	OutputsProduced   Outputs           `json:"outputs_produced"`
	IssuesAndFixes    Issues            `json:"issues_and_fixes"`
	Verification      Verification      `json:"verification"`
	SkillAssessment   SkillAssessment   `json:"skill_assessment"`
	Tags              Tags              `json:"tags"`
	RawSections       map[string]string `json:"raw_sections"`
	ParseWarnings     []string          `json:"parse_warnings"`
}

// Metadata holds the document header fields.
type Metadata struct {
	Date       *string `json:"date"`
	TaskID     *string `json:"task_id"`
	TaskType   *string `json:"task_type"`
	Domain     *string `json:"domain"`
	Complexity *string `json:"complexity"`
	TimeSpent  *string `json:"time_spent"`
	RepoBranch *string `json:"repo_branch"`
}

// Trigger describes what initiated the task.
type Trigger struct {
	WhatTriggered     *string  `json:"what_triggered"`
	KeywordsPhrases   []string `json:"keywords_phrases"`
	ContextMarkers    []string `json:"context_markers"`
	DraftSkillTrigger *string  `json:"draft_skill_trigger"`
}

// ContextInputs captures the starting conditions of the task.
type ContextInputs struct {
	ProblemStatement *string  `json:"problem_statement"`
	StartingState    *string  `json:"starting_state"`
	Environment      *string  `json:"environment"`
	Constraints      *string  `json:"constraints"`
	Objective        *string  `json:"objective"`
	Requirements     *string  `json:"requirements"`
	SuccessCriteria  []string `json:"success_criteria"`
}

// StepLogEntry is one entry in the detailed workflow log. Only the step
// number and action are extractable from text; tool/input/output stay null
// for downstream enrichment.
type StepLogEntry struct {
	StepNumber  int     `json:"step_number"`
	Action      string  `json:"action"`
	ToolCommand *string `json:"tool_command"`
	Input       *string `json:"input"`
	Output      *string `json:"output"`
}

// DecisionPoint is a decision recorded in a table or arrow bullet.
type DecisionPoint struct {
	Decision  string  `json:"decision"`
	Options   *string `json:"options,omitempty"`
	Choice    *string `json:"choice"`
	Rationale *string `json:"rationale"`
}

// Workflow holds the ordered task steps and decisions.
type Workflow struct {
	WorkflowType    *string         `json:"workflow_type"`
	HighLevelSteps  []string        `json:"high_level_steps"`
	DetailedStepLog []StepLogEntry  `json:"detailed_step_log"`
	DecisionPoints  []DecisionPoint `json:"decision_points"`
}

// KnowledgeSource is one source consulted during the task.
type KnowledgeSource struct {
	Type   string `json:"type"`
	Detail string `json:"detail"`
}

// Knowledge holds what external knowledge the task drew on.
type Knowledge struct {
	Sources           []KnowledgeSource `json:"sources"`
	DBKnowledge       *string           `json:"db_knowledge"`
	APIKnowledge      *string           `json:"api_knowledge"`
	CodebaseKnowledge *string           `json:"codebase_knowledge"`
	Notes             *string           `json:"notes"`
}

// CodeBlock is a fenced code block found in the document.
type CodeBlock struct {
	Language  *string `json:"language"`
	Code      string  `json:"code"`
	Heading   *string `json:"heading"`
	ReuseFlag bool    `json:"reuse_flag"`
	Notes     *string `json:"notes"`
}

// CodeWritten wraps the extracted code blocks.
type CodeWritten struct {
	Blocks []CodeBlock `json:"blocks"`
}

// Artifact is a produced or modified file.
type Artifact struct {
	Name              string  `json:"name"`
	Type              *string `json:"type"`
	PathHint          *string `json:"path_hint"`
	TemplatePotential bool    `json:"template_potential"`
	Notes             *string `json:"notes"`
}

// Outputs wraps the extracted artifacts.
type Outputs struct {
	Artifacts []Artifact `json:"artifacts"`
}

// IssueItem is one issue/fix pair.
type IssueItem struct {
	Issue      string   `json:"issue"`
	Cause      *string  `json:"cause"`
	Fix        *string  `json:"fix"`
	Prevention *string  `json:"prevention"`
	References []string `json:"references"`
}

// Issues wraps the extracted issue items.
type Issues struct {
	Items []IssueItem `json:"items"`
}

// VerificationCheck is one test-name/result pair.
type VerificationCheck struct {
	Test   string `json:"test"`
	Result string `json:"result"`
}

// SuccessCriterion is a checklist item with its met state.
type SuccessCriterion struct {
	Criterion string `json:"criterion"`
	Met       bool   `json:"met"`
}

// Verification holds how the work was validated.
type Verification struct {
	Checks             []VerificationCheck `json:"checks"`
	ExpectedResults    []string            `json:"expected_results"`
	SuccessCriteriaMet []SuccessCriterion  `json:"success_criteria_met"`
}

// SkillAssessment holds the reusability scoring dimensions.
type SkillAssessment struct {
	ReusabilityScore   *int    `json:"reusability_score"`
	FrequencyScore     *int    `json:"frequency_score"`
	ConsistencyScore   *int    `json:"consistency_score"`
	ComplexityScore    *int    `json:"complexity_score"`
	CodifiabilityScore *int    `json:"codifiability_score"`
	ToolabilityScore   *int    `json:"toolability_score"`
	ExtractionPriority *string `json:"extraction_priority"`
	Notes              *string `json:"notes"`
}

// Tags holds the normalized tag lists by category.
type Tags struct {
	Languages  []string `json:"languages"`
	Frameworks []string `json:"frameworks"`
	Tools      []string `json:"tools"`
	Domains    []string `json:"domains"`
	Patterns   []string `json:"patterns"`
	Services   []string `json:"services"`
	SafetyRisk *string  `json:"safety_risk"`
}

// NewExtraction creates an Extraction with all collection fields initialized
// so the JSON output carries empty arrays rather than nulls.
func NewExtraction(docID, sourcePath, format string) *Extraction {
	return &Extraction{
		DocID:          docID,
		SourcePath:     sourcePath,
		FormatDetected: format,
		Trigger: Trigger{
			KeywordsPhrases: []string{},
			ContextMarkers:  []string{},
		},
		ContextInputs: ContextInputs{
			SuccessCriteria: []string{},
		},
		Workflow: Workflow{
			HighLevelSteps:  []string{},
			DetailedStepLog: []StepLogEntry{},
			DecisionPoints:  []DecisionPoint{},
		},
		KnowledgeAccessed: Knowledge{
			Sources: []KnowledgeSource{},
		},
		CodeWritten: CodeWritten{
			Blocks: []CodeBlock{},
		},
		OutputsProduced: Outputs{
			Artifacts: []Artifact{},
		},
		IssuesAndFixes: Issues{
			Items: []IssueItem{},
		},
		Verification: Verification{
			Checks:             []VerificationCheck{},
			ExpectedResults:    []string{},
			SuccessCriteriaMet: []SuccessCriterion{},
		},
		Tags: Tags{
			Languages:  []string{},
			Frameworks: []string{},
			Tools:      []string{},
			Domains:    []string{},
			Patterns:   []string{},
			Services:   []string{},
		},
		RawSections:   map[string]string{},
		ParseWarnings: []string{},
	}
}
