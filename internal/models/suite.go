package models

import (
	"fmt"
	"regexp"
	"strings"
)

// SuiteKind selects the scoring strategy for a suite. Every case in a suite
// shares its suite's kind.
type SuiteKind string

const (
	KindExact       SuiteKind = "exact"       // single-token answers: classification, selection, recall
	KindJSON        SuiteKind = "json"        // structured output validated against a JSON schema
	KindArguments   SuiteKind = "arguments"   // tool-argument extraction as a JSON object
	KindCode        SuiteKind = "code"        // code generation, shape-checked statically
	KindInstruction SuiteKind = "instruction" // formatting instructions checked by predicates
	KindLatency     SuiteKind = "latency"     // timing only, exempt from scoring
)

// CheckKind names one structural predicate an instruction case can demand.
type CheckKind string

const (
	CheckWordCount    CheckKind = "word_count"
	CheckLineCount    CheckKind = "line_count"
	CheckUppercase    CheckKind = "uppercase"
	CheckNumberedList CheckKind = "numbered_list"
	CheckExactReply   CheckKind = "exact_reply"
	CheckIntegerRange CheckKind = "integer_range"
	CheckCommaItems   CheckKind = "comma_items"
	CheckEndsWith     CheckKind = "ends_with"
	CheckStartsWith   CheckKind = "starts_with"
	CheckMatchesRegex CheckKind = "matches_regex"
)

// Check is one declarative structural predicate.
type Check struct {
	Kind  CheckKind `yaml:"kind" json:"kind"`
	Value string    `yaml:"value,omitempty" json:"value,omitempty"`
	N     int       `yaml:"n,omitempty" json:"n,omitempty"`
	Max   int       `yaml:"max,omitempty" json:"max,omitempty"`
}

// Expectation describes what a correct response looks like. Exactly how the
// fields are interpreted depends on the suite kind; Validate enforces the
// combinations that are internally consistent.
type Expectation struct {
	// Exact is the primary expected answer, matched case-insensitively after
	// whitespace normalization.
	Exact string `yaml:"exact,omitempty" json:"exact,omitempty"`
	// Secondary is a defensible alternate answer. Matching it scores 2, never 3.
	Secondary string `yaml:"secondary,omitempty" json:"secondary,omitempty"`
	// Contains lists substrings that must all appear (case-insensitive).
	Contains []string `yaml:"contains,omitempty" json:"contains,omitempty"`
	// Forbidden lists terms whose presence caps the score at 1.
	Forbidden []string `yaml:"forbidden,omitempty" json:"forbidden,omitempty"`
	// Labels is the closed label set for classification-style cases. A
	// response inside the set but not matching Exact is structurally right
	// but wrong, scoring 1.
	Labels []string `yaml:"labels,omitempty" json:"labels,omitempty"`
	// Schema is an inline JSON schema for structured-output cases.
	Schema map[string]any `yaml:"schema,omitempty" json:"schema,omitempty"`
	// Arguments maps expected argument names to expected values for
	// tool-argument cases.
	Arguments map[string]any `yaml:"arguments,omitempty" json:"arguments,omitempty"`
	// Checks are structural predicates for instruction-following cases.
	Checks []Check `yaml:"checks,omitempty" json:"checks,omitempty"`
	// AnswerPrefix, when set, extracts the graded answer from the text after
	// the last occurrence of this prefix (e.g. "ANSWER:").
	AnswerPrefix string `yaml:"answer_prefix,omitempty" json:"answer_prefix,omitempty"`
}

// Empty reports whether the expectation declares nothing checkable.
func (e Expectation) Empty() bool {
	return e.Exact == "" && len(e.Contains) == 0 && len(e.Schema) == 0 &&
		len(e.Arguments) == 0 && len(e.Checks) == 0
}

// Validate rejects internally inconsistent expectations. An inconsistent
// expectation is a suite-authoring defect and is fatal at registration time.
func (e Expectation) Validate(kind SuiteKind) error {
	if kind == KindLatency {
		return nil
	}
	if e.Empty() {
		return fmt.Errorf("expectation declares nothing to check")
	}
	for _, f := range e.Forbidden {
		if strings.EqualFold(f, e.Exact) {
			return fmt.Errorf("term %q is both expected and forbidden", f)
		}
		for _, c := range e.Contains {
			if strings.EqualFold(f, c) {
				return fmt.Errorf("term %q is both required and forbidden", f)
			}
		}
	}
	if e.Secondary != "" && strings.EqualFold(e.Secondary, e.Exact) {
		return fmt.Errorf("secondary answer %q duplicates the primary", e.Secondary)
	}
	for _, chk := range e.Checks {
		switch chk.Kind {
		case CheckWordCount, CheckLineCount, CheckNumberedList, CheckCommaItems:
			if chk.N <= 0 {
				return fmt.Errorf("check %s requires n > 0", chk.Kind)
			}
		case CheckExactReply, CheckEndsWith, CheckStartsWith:
			if chk.Value == "" {
				return fmt.Errorf("check %s requires a value", chk.Kind)
			}
		case CheckIntegerRange:
			if chk.Max < chk.N {
				return fmt.Errorf("check %s requires max >= n", chk.Kind)
			}
		case CheckMatchesRegex:
			if chk.Value == "" {
				return fmt.Errorf("check %s requires a value", chk.Kind)
			}
			if _, err := regexp.Compile(chk.Value); err != nil {
				return fmt.Errorf("check %s pattern: %w", chk.Kind, err)
			}
		case CheckUppercase:
		default:
			return fmt.Errorf("unknown check kind %q", chk.Kind)
		}
	}
	return nil
}

// CaseSpec is one test case belonging to a suite.
type CaseSpec struct {
	ID string `yaml:"id" json:"id"`
	// Prompt is the user-turn payload. Empty when Turns is set.
	Prompt string `yaml:"prompt,omitempty" json:"prompt,omitempty"`
	// Turns is a prior conversation ending in the user turn to answer.
	// Used by multi-turn coherence cases.
	Turns []Turn `yaml:"turns,omitempty" json:"turns,omitempty"`
	// ContextText is injected as a system-turn document. When ContextFraction
	// is positive it holds the needle sentence instead, and the suite embeds
	// it in a generated document at that fractional position at build time.
	ContextText     string  `yaml:"context_text,omitempty" json:"context_text,omitempty"`
	ContextFraction float64 `yaml:"context_fraction,omitempty" json:"context_fraction,omitempty"`
	// ContextScale shrinks the generated document to a fraction of the
	// configuration's usable window. Zero means the full usable window.
	ContextScale float64 `yaml:"context_scale,omitempty" json:"context_scale,omitempty"`
	// InstructionPrefix is folded into the user turn for style "none".
	InstructionPrefix string      `yaml:"instruction_prefix,omitempty" json:"instruction_prefix,omitempty"`
	MaxTokens         int         `yaml:"max_tokens,omitempty" json:"max_tokens,omitempty"`
	Expect            Expectation `yaml:"expect" json:"expect"`
}

// Turn is one message of a multi-turn case.
type Turn struct {
	Role    string `yaml:"role" json:"role"`
	Content string `yaml:"content" json:"content"`
}

// SuiteSpec is a named collection of cases testing one capability.
type SuiteSpec struct {
	ID     string    `yaml:"id" json:"id"`
	Kind   SuiteKind `yaml:"kind" json:"kind"`
	Weight float64   `yaml:"weight" json:"weight"`
	// Exempt marks pure performance-measurement suites. They report timing
	// instead of scores and never enter the composite denominator.
	Exempt bool       `yaml:"exempt,omitempty" json:"exempt,omitempty"`
	Cases  []CaseSpec `yaml:"cases" json:"cases"`
}

// Validate checks the suite and every case expectation. Any defect here is
// broken test data, surfaced before a single case executes.
func (s SuiteSpec) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("suite has no id")
	}
	if s.Weight < 0 {
		return fmt.Errorf("suite %q: weight must not be negative", s.ID)
	}
	if len(s.Cases) == 0 {
		return fmt.Errorf("suite %q has no cases", s.ID)
	}
	switch s.Kind {
	case KindExact, KindJSON, KindArguments, KindCode, KindInstruction, KindLatency:
	default:
		return fmt.Errorf("suite %q: unknown kind %q", s.ID, s.Kind)
	}
	seen := make(map[string]bool, len(s.Cases))
	for _, cs := range s.Cases {
		if cs.ID == "" {
			return fmt.Errorf("suite %q: case with empty id", s.ID)
		}
		if seen[cs.ID] {
			return fmt.Errorf("suite %q: duplicate case id %q", s.ID, cs.ID)
		}
		seen[cs.ID] = true
		if err := cs.Expect.Validate(s.Kind); err != nil {
			return fmt.Errorf("suite %q case %q: %w", s.ID, cs.ID, err)
		}
	}
	return nil
}

// EffectiveWeight returns the suite weight, defaulting to 1.0.
func (s SuiteSpec) EffectiveWeight() float64 {
	if s.Weight <= 0 {
		return 1.0
	}
	return s.Weight
}
