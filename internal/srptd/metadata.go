package srptd

import "regexp"

var (
	metaDateRe       = regexp.MustCompile(`\*\*Date\*\*:\s*(\d{4}-\d{2}-\d{2})`)
	metaTypeRe       = regexp.MustCompile(`\*\*Type\*\*:\s*([^|*\n]+)`)
	metaDomainRe     = regexp.MustCompile(`\*\*Domain(?:/Module)?\*\*:\s*([^|*\n]+)`)
	metaComplexityRe = regexp.MustCompile(`\*\*Complexity\*\*:\s*(\w+)`)
	metaTimeRe       = regexp.MustCompile(`\*\*Time Spent\*\*:\s*([^\n]+)`)
	metaBulletDateRe = regexp.MustCompile(`-\s*\*\*Date\*\*:\s*(\d{4}-\d{2}-\d{2})`)
	metaRepoRe       = regexp.MustCompile(`\*\*Repo/Branch(?:/PR/Commits)?\*\*:\s*([^\n]+)`)
)

// extractMetadata pulls the header fields. The inline "**Date**:" form wins
// over the legacy bullet form; the bullet date never overwrites an inline one.
func extractMetadata(content string) Metadata {
	var md Metadata

	setIfFound(&md.Date, firstGroup(metaDateRe, content))
	setIfFound(&md.TaskType, firstGroup(metaTypeRe, content))
	setIfFound(&md.Domain, firstGroup(metaDomainRe, content))
	setIfFound(&md.Complexity, firstGroup(metaComplexityRe, content))
	setIfFound(&md.TimeSpent, firstGroup(metaTimeRe, content))

	if md.Date == nil {
		setIfFound(&md.Date, firstGroup(metaBulletDateRe, content))
	}

	setIfFound(&md.RepoBranch, firstGroup(metaRepoRe, content))

	return md
}

var (
	ctxObjectiveRe    = regexp.MustCompile(`\*\*Objective\*\*:\s*([^\n]+)`)
	ctxProblemRe      = regexp.MustCompile(`(?i)(?:Problem Statement|Requirements/Problem)[:\s]*\n?\*?\*?([^\n*]+(?:\n[^\n*]+)*)`)
	ctxStateRe        = regexp.MustCompile(`(?i)\*\*Starting state\*\*:\s*\n?((?:\s*-[^\n]+\n?)+|[^\n*]+)`)
	ctxEnvRe          = regexp.MustCompile(`(?i)\*\*Environment(?:/Versions?)?\*\*:\s*\n?((?:\s*-[^\n]+\n?)+|[^\n*]+)`)
	ctxConstraintsRe  = regexp.MustCompile(`(?i)\*\*Constraints?(?:/Dependencies)?\*\*:\s*\n?((?:\s*-[^\n]+\n?)+|[^\n*]+)`)
	ctxRequirementsRe = regexp.MustCompile(`\*\*Requirements?(?:/Problem)?\*\*:\s*([^\n]+)`)
)

// extractContext pulls the context/inputs fields.
func extractContext(content string) ContextInputs {
	var ctx ContextInputs

	setIfFound(&ctx.Objective, firstGroup(ctxObjectiveRe, content))
	setIfFound(&ctx.ProblemStatement, firstGroup(ctxProblemRe, content))
	setIfFound(&ctx.StartingState, firstGroup(ctxStateRe, content))
	setIfFound(&ctx.Environment, firstGroup(ctxEnvRe, content))
	setIfFound(&ctx.Constraints, firstGroup(ctxConstraintsRe, content))
	setIfFound(&ctx.Requirements, firstGroup(ctxRequirementsRe, content))

	if ctx.SuccessCriteria == nil {
		ctx.SuccessCriteria = []string{}
	}

	return ctx
}
