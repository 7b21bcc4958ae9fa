package suites

import (
	"fmt"
	"strings"

	"github.com/modelbench/modelbench/internal/models"
)

// detailedPrompts are the full per-kind system prompts used by the
// "detailed" system style.
var detailedPrompts = map[models.SuiteKind]string{
	models.KindExact: "You are a precise assistant. Answer with exactly the requested " +
		"value and nothing else. No explanations, no punctuation beyond the answer itself.",
	models.KindJSON: "You are a structured-data assistant. Respond with a single valid " +
		"JSON document and nothing else. No markdown fences, no commentary before or after.",
	models.KindArguments: "You are a function-calling assistant. Extract the arguments " +
		"for the requested function from the user's message and respond with a single " +
		"JSON object mapping argument names to values. Nothing else.",
	models.KindCode: "You are a programming assistant. Respond with code only. " +
		"Do not explain the code unless asked.",
	models.KindInstruction: "You are a careful assistant. Follow the formatting " +
		"instructions in the user's message exactly, even when they seem arbitrary.",
	models.KindLatency: "You are a helpful assistant. Answer concisely.",
}

const minimalPrompt = "Answer exactly as asked. Output only the answer."

// SystemPrompt returns the system prompt for a suite kind under a system
// style. Style "none" returns empty; the case's instruction prefix is folded
// into the user turn instead.
func SystemPrompt(kind models.SuiteKind, style models.SystemStyle) string {
	switch style {
	case models.StyleDetailed:
		return detailedPrompts[kind]
	case models.StyleMinimal:
		return minimalPrompt
	default:
		return ""
	}
}

// wordsPerToken approximates prose density: filler text runs about 0.75
// words per token, and 60% of the window is left for the document after
// prompt and response overhead.
const (
	usableWindowFraction = 0.6
	wordsPerToken        = 0.75
)

var fillerSentences = []string{
	"The quarterly review covered staffing, vendor contracts, and the revised travel policy.",
	"Facilities reported that the east wing renovation remains on schedule for completion.",
	"The finance team circulated updated expense guidelines ahead of the audit window.",
	"Several departments flagged overlapping booking requests for the main conference room.",
	"Procurement confirmed that replacement laptops will arrive during the next fiscal cycle.",
	"The onboarding committee proposed consolidating orientation sessions into a single week.",
	"Marketing shared early engagement numbers from the regional campaign pilot.",
	"Legal requested two additional weeks to review the revised partnership agreement.",
	"The operations group documented seasonal demand patterns across all three warehouses.",
	"An internal survey showed broad support for extending the flexible scheduling program.",
}

// HaystackWords returns the target document length in words for a context
// window, after scaling. Scale zero means the full usable window.
func HaystackWords(numCtx int, scale float64) int {
	if scale <= 0 {
		scale = 1.0
	}
	words := int(float64(numCtx) * usableWindowFraction * wordsPerToken * scale)
	if words < 50 {
		words = 50
	}
	return words
}

// BuildHaystack generates a filler document of roughly targetWords words
// with the needle sentence embedded at the given fractional position. The
// output is deterministic for a given input.
func BuildHaystack(needle string, position float64, targetWords int) string {
	if position < 0 {
		position = 0
	}
	if position > 1 {
		position = 1
	}

	var b strings.Builder
	words := 0
	insertAt := int(float64(targetWords) * position)
	inserted := false
	for i := 0; words < targetWords; i++ {
		if !inserted && words >= insertAt {
			b.WriteString(needle)
			if !strings.HasSuffix(needle, ".") {
				b.WriteString(".")
			}
			b.WriteString(" ")
			inserted = true
		}
		sentence := fillerSentences[i%len(fillerSentences)]
		b.WriteString(sentence)
		b.WriteString(" ")
		words += len(strings.Fields(sentence))
	}
	if !inserted {
		b.WriteString(needle)
	}
	return strings.TrimSpace(b.String())
}

// Materialize resolves a case for a concrete configuration: needle cases
// get their context document generated and sized against the configuration's
// window. Cases without a context fraction pass through unchanged.
func Materialize(cs models.CaseSpec, cfg models.ConfigSpec) models.CaseSpec {
	if cs.ContextFraction <= 0 || cs.ContextText == "" {
		return cs
	}
	out := cs
	out.ContextText = fmt.Sprintf(
		"Reference document:\n\n%s",
		BuildHaystack(cs.ContextText, cs.ContextFraction, HaystackWords(cfg.NumCtx, cs.ContextScale)),
	)
	return out
}
