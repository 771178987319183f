package scenario

import (
	"context"

	"github.com/dyluth/errand/internal/usecase"
)

// StepResult pairs a step with the result it produced
type StepResult struct {
	Index  int // 1-based
	Step   Step
	Result usecase.Result
}

// Matched reports whether the result satisfies the step's expectation.
// Steps without an expectation always match.
func (sr StepResult) Matched() bool {
	if sr.Step.Expect == "" {
		return true
	}
	want, err := usecase.ParseOutcome(sr.Step.Expect)
	return err == nil && want == sr.Result.Outcome
}

// Report is the outcome of a whole script run
type Report struct {
	Results []StepResult
}

// Mismatches returns the steps whose outcome differed from their expectation
func (r *Report) Mismatches() []StepResult {
	var out []StepResult
	for _, sr := range r.Results {
		if !sr.Matched() {
			out = append(out, sr)
		}
	}
	return out
}

// Run executes every step in order through h. A failing step does not stop the
// run; only context cancellation does. onStep, if not nil, sees each result as it
// is produced.
func Run(ctx context.Context, h usecase.Handler, s usecase.Session, script *Script, onStep func(StepResult)) *Report {
	report := &Report{Results: make([]StepResult, 0, len(script.Steps))}

	for i, step := range script.Steps {
		if ctx.Err() != nil {
			break
		}

		sr := StepResult{Index: i + 1, Step: step, Result: h.Handle(ctx, s, step.Request())}
		report.Results = append(report.Results, sr)
		if onStep != nil {
			onStep(sr)
		}
	}

	return report
}
