package scoring

import (
	"strings"

	"github.com/modelbench/modelbench/internal/models"
)

// exactStrategy grades classification, selection, recall, and reasoning
// cases against a single expected string. Matching is case-insensitive and
// whitespace-normalized; the expected answer appearing anywhere in the
// graded text counts as correct so a model may phrase around it.
type exactStrategy struct{}

func (exactStrategy) Kind() models.SuiteKind { return models.KindExact }

func (exactStrategy) Score(cs models.CaseSpec, rr models.RunResult) (models.Score, string) {
	out := models.NormalizeOutput(answerText(cs.Expect, rr.Output))
	if out == "" {
		return models.ScoreUnusable, ReasonEmpty
	}

	primary := models.NormalizeOutput(cs.Expect.Exact)
	if primary != "" {
		if out == primary {
			return models.ScoreCorrect, ReasonExactMatch
		}
		if strings.Contains(out, primary) {
			return models.ScoreCorrect, ReasonLooseMatch
		}
	}

	if secondary := models.NormalizeOutput(cs.Expect.Secondary); secondary != "" {
		if out == secondary || strings.Contains(out, secondary) {
			return models.ScorePartial, ReasonSecondaryMatch
		}
	}

	if allContained(out, cs.Expect.Contains) {
		return models.ScoreCorrect, ReasonLooseMatch
	}

	// A wrong answer drawn from the known label set is still a usable
	// classification; anything else is graded as a wrong value.
	if len(cs.Expect.Labels) > 0 {
		for _, label := range cs.Expect.Labels {
			if out == models.NormalizeOutput(label) {
				return models.ScoreWrong, ReasonWrongLabel
			}
		}
		return models.ScoreUnusable, ReasonWrongValue
	}

	return models.ScoreWrong, ReasonWrongValue
}

func allContained(out string, terms []string) bool {
	if len(terms) == 0 {
		return false
	}
	for _, term := range terms {
		if !strings.Contains(out, models.NormalizeOutput(term)) {
			return false
		}
	}
	return true
}
