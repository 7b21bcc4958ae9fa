package scoring

import (
	"strings"

	"github.com/modelbench/modelbench/internal/inference"
	"github.com/modelbench/modelbench/internal/models"
)

// codeStrategy grades code generation without executing anything. The case
// lists required tokens (a function signature, a call, a keyword); all
// present in code-shaped output is correct, some present is partial, and
// code-shaped output missing every token is a wrong answer.
type codeStrategy struct{}

func (codeStrategy) Kind() models.SuiteKind { return models.KindCode }

func (codeStrategy) Score(cs models.CaseSpec, rr models.RunResult) (models.Score, string) {
	body := strings.TrimSpace(inference.StripMarkdownFences(rr.Output))
	if body == "" {
		return models.ScoreUnusable, ReasonEmpty
	}
	if !looksLikeCode(body) {
		return models.ScoreUnusable, ReasonNotCode
	}

	required := cs.Expect.Contains
	if len(required) == 0 {
		return models.ScoreCorrect, ReasonCodeComplete
	}

	lower := strings.ToLower(body)
	found := 0
	for _, token := range required {
		if strings.Contains(lower, strings.ToLower(token)) {
			found++
		}
	}
	switch {
	case found == len(required):
		return models.ScoreCorrect, ReasonCodeComplete
	case found > 0:
		return models.ScorePartial, ReasonCodePartial
	default:
		return models.ScoreWrong, ReasonWrongValue
	}
}

var codeMarkers = []string{
	"def ", "return", "func ", "function ", "class ", "import ",
	"print(", "=>", "const ", "let ", "var ", "#include",
}

func looksLikeCode(s string) bool {
	lower := strings.ToLower(s)
	for _, marker := range codeMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	// An assignment or a block opener is enough when no keyword appears.
	return strings.Contains(s, " = ") || strings.Contains(s, "{") || strings.Contains(s, ":")
}
