package scoring

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/modelbench/modelbench/internal/inference"
	"github.com/modelbench/modelbench/internal/models"
)

// instructionStrategy grades formatting compliance by evaluating each
// declared check against the raw output. All checks passing is correct, at
// least half is partial, fewer is a wrong answer. A single-check case is
// all-or-nothing.
type instructionStrategy struct{}

func (instructionStrategy) Kind() models.SuiteKind { return models.KindInstruction }

func (instructionStrategy) Score(cs models.CaseSpec, rr models.RunResult) (models.Score, string) {
	body := strings.TrimSpace(inference.StripMarkdownFences(rr.Output))
	if body == "" {
		return models.ScoreUnusable, ReasonEmpty
	}

	checks := cs.Expect.Checks
	if len(checks) == 0 {
		return models.ScoreCorrect, ReasonChecksPassed
	}

	passed := 0
	for _, chk := range checks {
		if evalCheck(chk, body) {
			passed++
		}
	}
	switch {
	case passed == len(checks):
		return models.ScoreCorrect, ReasonChecksPassed
	case len(checks) > 1 && passed*2 >= len(checks):
		return models.ScorePartial, ReasonChecksPartial
	default:
		return models.ScoreWrong, ReasonChecksFailed
	}
}

func evalCheck(chk models.Check, out string) bool {
	switch chk.Kind {
	case models.CheckWordCount:
		return len(strings.Fields(out)) == chk.N
	case models.CheckLineCount:
		return countLines(out) == chk.N
	case models.CheckUppercase:
		return out == strings.ToUpper(out) && strings.ToLower(out) != out
	case models.CheckNumberedList:
		for i := 1; i <= chk.N; i++ {
			if !strings.Contains(out, fmt.Sprintf("%d.", i)) {
				return false
			}
		}
		return true
	case models.CheckExactReply:
		return strings.EqualFold(strings.TrimSpace(out), chk.Value)
	case models.CheckIntegerRange:
		v, err := strconv.Atoi(strings.TrimSpace(out))
		return err == nil && v >= chk.N && v <= chk.Max
	case models.CheckCommaItems:
		items := 0
		for _, item := range strings.Split(out, ",") {
			if strings.TrimSpace(item) != "" {
				items++
			}
		}
		return items == chk.N
	case models.CheckEndsWith:
		return strings.HasSuffix(strings.TrimSpace(out), chk.Value)
	case models.CheckStartsWith:
		return strings.HasPrefix(strings.TrimSpace(out), chk.Value)
	case models.CheckMatchesRegex:
		// Patterns are compile-checked at suite validation time.
		re, err := regexp.Compile(chk.Value)
		return err == nil && re.MatchString(out)
	default:
		return false
	}
}

func countLines(s string) int {
	n := 0
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			n++
		}
	}
	return n
}
