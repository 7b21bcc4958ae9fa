// Package scoring maps raw run output onto the 0-3 rubric. One strategy per
// suite kind, resolved once at suite registration. Every strategy is a pure
// function of the case and the run result, so scoring the same input twice
// always yields the same tier.
package scoring

import (
	"fmt"
	"strings"

	"github.com/modelbench/modelbench/internal/inference"
	"github.com/modelbench/modelbench/internal/models"
)

// Reason codes attached to every score.
const (
	ReasonExactMatch     = "exact_match"
	ReasonLooseMatch     = "loose_match"
	ReasonSecondaryMatch = "secondary_match"
	ReasonWrongLabel     = "wrong_label"
	ReasonWrongValue     = "wrong_value"
	ReasonForbiddenTerm  = "forbidden_term"
	ReasonEmpty          = "empty"
	ReasonRunNotOK       = "run_not_ok"
	ReasonSchemaMatch    = "schema_match"
	ReasonSchemaMismatch = "schema_mismatch"
	ReasonAlmostJSON     = "almost_json"
	ReasonUnparseable    = "unparseable"
	ReasonSchemaError    = "schema_error"
	ReasonArgsMatch      = "args_match"
	ReasonArgsPartial    = "args_partial"
	ReasonArgsWrong      = "args_wrong"
	ReasonChecksPassed   = "checks_passed"
	ReasonChecksPartial  = "checks_partial"
	ReasonChecksFailed   = "checks_failed"
	ReasonCodeComplete   = "code_complete"
	ReasonCodePartial    = "code_partial"
	ReasonNotCode        = "not_code"
)

// Strategy scores one run of one case. Implementations must not consult any
// state outside their arguments.
type Strategy interface {
	Kind() models.SuiteKind
	Score(cs models.CaseSpec, rr models.RunResult) (models.Score, string)
}

// Selector resolves the strategy for a suite kind. Built once at startup;
// resolution happens per suite, not per case.
type Selector struct {
	strategies map[models.SuiteKind]Strategy
}

// NewSelector returns a selector with every built-in strategy registered.
func NewSelector() *Selector {
	s := &Selector{strategies: make(map[models.SuiteKind]Strategy)}
	for _, strat := range []Strategy{
		exactStrategy{},
		jsonStrategy{},
		argumentsStrategy{},
		codeStrategy{},
		instructionStrategy{},
	} {
		s.strategies[strat.Kind()] = strat
	}
	return s
}

// ForSuite returns the strategy for a kind. Exempt suites are never scored
// and must not reach here.
func (s *Selector) ForSuite(kind models.SuiteKind) (Strategy, error) {
	strat, ok := s.strategies[kind]
	if !ok {
		return nil, fmt.Errorf("no scoring strategy for suite kind %q", kind)
	}
	return strat, nil
}

// Score applies the rules shared by every strategy: a run that produced no
// usable output scores 0 regardless of its text, and a forbidden-term match
// caps the tier at 1 even when the primary expectation also matched.
func Score(strat Strategy, cs models.CaseSpec, rr models.RunResult) (models.Score, string) {
	if rr.Status != models.StatusOK {
		return models.ScoreUnusable, ReasonRunNotOK
	}
	score, reason := strat.Score(cs, rr)
	if score > models.ScoreWrong && hasForbiddenTerm(cs.Expect, rr.Output) {
		return models.ScoreWrong, ReasonForbiddenTerm
	}
	return score, reason
}

func hasForbiddenTerm(e models.Expectation, output string) bool {
	if len(e.Forbidden) == 0 {
		return false
	}
	lower := strings.ToLower(output)
	for _, term := range e.Forbidden {
		if strings.Contains(lower, strings.ToLower(term)) {
			return true
		}
	}
	return false
}

// answerText extracts the graded portion of the output: fences stripped,
// and when the case declares an answer prefix, only the text after its
// last occurrence.
func answerText(e models.Expectation, raw string) string {
	body := inference.StripMarkdownFences(raw)
	if e.AnswerPrefix != "" {
		lower := strings.ToLower(body)
		prefix := strings.ToLower(e.AnswerPrefix)
		if idx := strings.LastIndex(lower, prefix); idx >= 0 {
			body = body[idx+len(prefix):]
		}
	}
	return strings.TrimSpace(body)
}
