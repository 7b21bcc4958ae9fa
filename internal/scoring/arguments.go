package scoring

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/modelbench/modelbench/internal/inference"
	"github.com/modelbench/modelbench/internal/models"
)

// floatTolerance absorbs formatting drift in numeric arguments, e.g. a
// model emitting 72.0 for 72.
const floatTolerance = 0.01

// argumentsStrategy grades tool-argument extraction. The output must be a
// JSON object; every expected key matching yields 3, at least half yields 2,
// and any parseable object yields 1.
type argumentsStrategy struct{}

func (argumentsStrategy) Kind() models.SuiteKind { return models.KindArguments }

func (argumentsStrategy) Score(cs models.CaseSpec, rr models.RunResult) (models.Score, string) {
	body := strings.TrimSpace(inference.StripMarkdownFences(rr.Output))
	if body == "" {
		return models.ScoreUnusable, ReasonEmpty
	}

	var got map[string]any
	if err := json.Unmarshal([]byte(body), &got); err != nil {
		if looksLikeJSON(body) {
			return models.ScoreWrong, ReasonAlmostJSON
		}
		return models.ScoreUnusable, ReasonUnparseable
	}

	want := cs.Expect.Arguments
	if len(want) == 0 {
		return models.ScoreCorrect, ReasonArgsMatch
	}

	matched := 0
	for key, expected := range want {
		if actual, ok := got[key]; ok && argumentMatches(expected, actual) {
			matched++
		}
	}
	switch {
	case matched == len(want):
		return models.ScoreCorrect, ReasonArgsMatch
	case matched*2 >= len(want):
		return models.ScorePartial, ReasonArgsPartial
	default:
		return models.ScoreWrong, ReasonArgsWrong
	}
}

// argumentMatches compares one expected argument value against what the
// model produced. Numbers compare within tolerance, strings compare by
// case-insensitive containment so "Tokyo, Japan" satisfies "tokyo", and
// everything else compares structurally.
func argumentMatches(expected, actual any) bool {
	if ef, ok := asFloat(expected); ok {
		af, ok := asFloat(actual)
		return ok && math.Abs(ef-af) <= floatTolerance
	}
	if es, ok := expected.(string); ok {
		as, ok := actual.(string)
		return ok && strings.Contains(strings.ToLower(as), strings.ToLower(es))
	}
	ej, err1 := json.Marshal(expected)
	aj, err2 := json.Marshal(actual)
	return err1 == nil && err2 == nil && string(ej) == string(aj)
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
