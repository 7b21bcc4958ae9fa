// Package aggregate folds per-run results into case, suite, and composite
// statistics. It consumes immutable run results and produces immutable
// stats; nothing here talks to the network.
package aggregate

import (
	"sort"

	"github.com/modelbench/modelbench/internal/models"
	"github.com/modelbench/modelbench/internal/scoring"
	"github.com/modelbench/modelbench/internal/statistics"
)

// ConfidenceLevel is the level used for suite-mean bootstrap intervals.
const ConfidenceLevel = 0.95

// Case scores every run of one case and folds them into a CaseStat. Runs
// are ordered by repeat index first so the outcome is independent of
// completion order. Under the determinism policy the raw outputs of the
// usable runs are compared pairwise; any divergence sets IdempotencyFailure
// even when the scores agree.
func Case(cs models.CaseSpec, runs []models.RunResult, policy models.RepeatPolicy, strat scoring.Strategy) models.CaseStat {
	ordered := make([]models.RunResult, len(runs))
	copy(ordered, runs)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].RepeatIndex < ordered[j].RepeatIndex
	})

	stat := models.CaseStat{
		CaseID:  cs.ID,
		Scores:  make([]models.Score, 0, len(ordered)),
		Reasons: make([]string, 0, len(ordered)),
		Partial: len(ordered) < policy.Count,
	}

	values := make([]float64, 0, len(ordered))
	var totalMs int64
	var tokRates []float64
	var okOutputs []string
	for _, run := range ordered {
		score, reason := scoring.Score(strat, cs, run)
		stat.Scores = append(stat.Scores, score)
		stat.Reasons = append(stat.Reasons, reason)
		values = append(values, float64(score))
		totalMs += run.DurationMs
		if run.Status == models.StatusOK {
			okOutputs = append(okOutputs, models.NormalizeOutput(run.Output))
			if tps := run.TokensPerSecond(); tps > 0 {
				tokRates = append(tokRates, tps)
			}
		}
	}

	stat.Mean = statistics.Mean(values)
	stat.StdDev = statistics.StdDev(values)
	if len(ordered) > 0 {
		stat.AvgDurationMs = totalMs / int64(len(ordered))
	}
	stat.AvgTokensPerSecond = statistics.Mean(tokRates)

	if policy.Kind == models.RepeatDeterminism {
		for i := 1; i < len(okOutputs); i++ {
			if okOutputs[i] != okOutputs[0] {
				stat.IdempotencyFailure = true
				break
			}
		}
	}
	return stat
}

// TimingCase folds the runs of a scoring-exempt case. No strategy is
// involved; only duration and throughput survive.
func TimingCase(cs models.CaseSpec, runs []models.RunResult, policy models.RepeatPolicy) models.CaseStat {
	stat := models.CaseStat{
		CaseID:  cs.ID,
		Partial: len(runs) < policy.Count,
	}
	if len(runs) == 0 {
		return stat
	}
	var totalMs int64
	var rates []float64
	for _, run := range runs {
		totalMs += run.DurationMs
		if tps := run.TokensPerSecond(); tps > 0 {
			rates = append(rates, tps)
		}
	}
	stat.AvgDurationMs = totalMs / int64(len(runs))
	stat.AvgTokensPerSecond = statistics.Mean(rates)
	return stat
}

// Suite folds case stats into a suite result. The suite mean is the
// unweighted mean of case means; a bootstrap interval is attached when the
// policy repeated each case, since a single run per case has no sampling
// distribution to resample.
func Suite(spec models.SuiteSpec, caseStats []models.CaseStat, policy models.RepeatPolicy) models.SuiteResult {
	result := models.SuiteResult{
		SuiteID: spec.ID,
		Kind:    spec.Kind,
		Weight:  spec.EffectiveWeight(),
		Exempt:  spec.Exempt,
		Cases:   caseStats,
		Partial: len(caseStats) < len(spec.Cases),
	}

	means := make([]float64, 0, len(caseStats))
	for _, cs := range caseStats {
		means = append(means, cs.Mean)
		if cs.Partial {
			result.Partial = true
		}
	}

	if spec.Exempt {
		result.Timing = suiteTiming(caseStats)
		return result
	}

	result.Mean = statistics.Mean(means)
	if policy.Count > 1 && len(means) > 1 {
		ci := statistics.BootstrapCI(means, ConfidenceLevel)
		result.CI95Lo = ci.Lower
		result.CI95Hi = ci.Upper
	}
	return result
}

func suiteTiming(caseStats []models.CaseStat) *models.SuiteTiming {
	if len(caseStats) == 0 {
		return &models.SuiteTiming{}
	}
	var totalMs int64
	rates := make([]float64, 0, len(caseStats))
	for _, cs := range caseStats {
		totalMs += cs.AvgDurationMs
		if cs.AvgTokensPerSecond > 0 {
			rates = append(rates, cs.AvgTokensPerSecond)
		}
	}
	return &models.SuiteTiming{
		AvgDurationMs:      totalMs / int64(len(caseStats)),
		AvgTokensPerSecond: statistics.Mean(rates),
	}
}

// Compose reduces one cell's suite results to a weighted composite on 0-1.
// Exempt suites never contribute. A cell with no contributing suites has no
// composite at all rather than a zero.
func Compose(model string, cfg models.ConfigSpec, suites []models.SuiteResult) models.CompositeScore {
	composite := models.CompositeScore{
		Model:  model,
		Config: cfg,
		Suites: suites,
	}

	var weighted, totalWeight float64
	for _, sr := range suites {
		if sr.Exempt || sr.Weight <= 0 {
			continue
		}
		weighted += (sr.Mean / models.MaxScore) * sr.Weight
		totalWeight += sr.Weight
	}
	if totalWeight > 0 {
		composite.Score = weighted / totalWeight
		composite.HasScore = true
	}
	return composite
}
