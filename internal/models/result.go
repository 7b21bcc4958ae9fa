package models

import (
	"strings"
	"time"
)

// RunStatus is the terminal status of one executor invocation.
type RunStatus string

const (
	StatusOK             RunStatus = "ok"
	StatusTimeout        RunStatus = "timeout"
	StatusTransportError RunStatus = "transport-error"
	StatusMalformed      RunStatus = "malformed"
)

// Score is one rubric tier. The closed 0-3 range is shared by every scoring
// strategy so composites stay comparable across suites.
type Score int

const (
	ScoreUnusable Score = 0 // absent or unusable output
	ScoreWrong    Score = 1 // right kind of answer, fails correctness
	ScorePartial  Score = 2 // right approach or structure, wrong detail
	ScoreCorrect  Score = 3 // strict match against the primary expectation
)

// MaxScore is the top of the rubric, used to normalize suite means onto 0-1.
const MaxScore = 3.0

// RunResult is the outcome of one executor invocation. Created by the
// executor, consumed by scoring, never mutated afterward.
type RunResult struct {
	RepeatIndex      int       `json:"repeat_index"`
	Status           RunStatus `json:"status"`
	Output           string    `json:"output"`
	DurationMs       int64     `json:"duration_ms"`
	PromptTokens     int       `json:"prompt_tokens,omitempty"`
	CompletionTokens int       `json:"completion_tokens,omitempty"`
	ErrorMsg         string    `json:"error_msg,omitempty"`
}

// TokensPerSecond returns the completion throughput of this run, or 0 when
// duration or token counts are unavailable.
func (r RunResult) TokensPerSecond() float64 {
	if r.DurationMs <= 0 || r.CompletionTokens <= 0 {
		return 0
	}
	return float64(r.CompletionTokens) / (float64(r.DurationMs) / 1000.0)
}

// RepeatKind labels why a case is repeated: averaging sampling noise at
// positive temperature, or checking determinism at temperature zero. The
// aggregator keys its divergence check off this label.
type RepeatKind string

const (
	RepeatSampling    RepeatKind = "sampling"
	RepeatDeterminism RepeatKind = "determinism"
)

// RepeatPolicy is the repeat plan for one configuration.
type RepeatPolicy struct {
	Kind  RepeatKind `json:"kind"`
	Count int        `json:"count"`
}

// CaseStat is the aggregated outcome of one case under one configuration.
type CaseStat struct {
	CaseID string   `json:"case_id"`
	Scores []Score  `json:"scores"`
	Reasons []string `json:"reasons,omitempty"`
	Mean   float64  `json:"mean"`
	StdDev float64  `json:"std_dev"`
	// IdempotencyFailure is only meaningful under the determinism repeat
	// policy: the raw outputs diverged, whether or not the scores did.
	IdempotencyFailure bool  `json:"idempotency_failure"`
	AvgDurationMs      int64 `json:"avg_duration_ms"`
	// Partial marks a stat built from fewer runs than the policy demanded
	// (run aborted mid-flight).
	Partial bool `json:"partial,omitempty"`
	// AvgTokensPerSecond is populated for exempt (timing) suites.
	AvgTokensPerSecond float64 `json:"avg_tokens_per_second,omitempty"`
}

// SuiteResult is the aggregated outcome of one suite for one matrix cell.
type SuiteResult struct {
	SuiteID string     `json:"suite_id"`
	Kind    SuiteKind  `json:"kind"`
	Weight  float64    `json:"weight"`
	Exempt  bool       `json:"exempt,omitempty"`
	Cases   []CaseStat `json:"cases"`
	Mean    float64    `json:"mean"`
	// CI95Lo/CI95Hi bound the suite mean via bootstrap when repeats > 1.
	CI95Lo  float64 `json:"ci95_lo,omitempty"`
	CI95Hi  float64 `json:"ci95_hi,omitempty"`
	Partial bool    `json:"partial,omitempty"`
	// Timing is populated instead of Mean for exempt suites.
	Timing *SuiteTiming `json:"timing,omitempty"`
}

// SuiteTiming carries raw performance metrics for scoring-exempt suites.
type SuiteTiming struct {
	AvgDurationMs      int64   `json:"avg_duration_ms"`
	AvgTokensPerSecond float64 `json:"avg_tokens_per_second"`
}

// CompositeScore is the terminal entity for one matrix cell.
type CompositeScore struct {
	Model  string        `json:"model"`
	Config ConfigSpec    `json:"config"`
	Suites []SuiteResult `json:"suites"`
	// Score is the weighted composite on 0-1. Valid only when HasScore is
	// true; a cell whose suites are all exempt or absent has no composite,
	// not a zero.
	Score    float64 `json:"score"`
	HasScore bool    `json:"has_score"`
}

// CellKey returns the (model, config) identity of this cell.
func (c CompositeScore) CellKey() string {
	return c.Config.Label(c.Model)
}

// Suite returns the named suite result, or nil when absent.
func (c CompositeScore) Suite(id string) *SuiteResult {
	for i := range c.Suites {
		if c.Suites[i].SuiteID == id {
			return &c.Suites[i]
		}
	}
	return nil
}

// RegressionClass classifies one suite's movement against the baseline.
type RegressionClass string

const (
	ClassImproved  RegressionClass = "improved"
	ClassStable    RegressionClass = "stable"
	ClassRegressed RegressionClass = "regressed"
	// ClassNew marks a suite present only in the current run.
	ClassNew RegressionClass = "new"
	// ClassMissing marks a suite present only in the baseline.
	ClassMissing RegressionClass = "missing"
)

// RegressionVerdict is the comparison outcome for one (model, config, suite)
// key. Never mutated once built.
type RegressionVerdict struct {
	Model         string          `json:"model"`
	ConfigTag     string          `json:"config_tag"`
	SuiteID       string          `json:"suite_id"`
	Baseline      float64         `json:"baseline"`
	Current       float64         `json:"current"`
	RelativeDelta float64         `json:"relative_delta"`
	Class         RegressionClass `json:"class"`
}

// Snapshot is one run's aggregated tree, the unit the baseline store
// persists and the comparator consumes.
type Snapshot struct {
	RunID     string           `json:"run_id"`
	Timestamp time.Time        `json:"timestamp"`
	Cells     []CompositeScore `json:"cells"`
}

// Cell returns the composite for a (model, configTag) pair, or nil.
func (s *Snapshot) Cell(model, configTag string) *CompositeScore {
	for i := range s.Cells {
		if s.Cells[i].Model == model && s.Cells[i].Config.Tag == configTag {
			return &s.Cells[i]
		}
	}
	return nil
}

// NormalizeOutput canonicalizes raw model output for divergence comparison:
// case-insensitive with runs of whitespace collapsed.
func NormalizeOutput(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
