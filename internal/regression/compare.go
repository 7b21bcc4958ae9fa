// Package regression compares a run's aggregated snapshot against a stored
// baseline and classifies per-suite movement.
package regression

import (
	"sort"

	"github.com/modelbench/modelbench/internal/models"
)

// Threshold is the relative-delta band treated as noise. Movement beyond it
// in either direction is a real change.
const Threshold = 0.10

// Report is the full comparison outcome for one baseline/current pair.
type Report struct {
	Verdicts []models.RegressionVerdict `json:"verdicts"`
}

// AnyRegressed reports whether at least one suite regressed, the signal the
// CLI turns into a failing exit code.
func (r Report) AnyRegressed() bool {
	for _, v := range r.Verdicts {
		if v.Class == models.ClassRegressed {
			return true
		}
	}
	return false
}

// Regressed returns only the regressed verdicts.
func (r Report) Regressed() []models.RegressionVerdict {
	var out []models.RegressionVerdict
	for _, v := range r.Verdicts {
		if v.Class == models.ClassRegressed {
			out = append(out, v)
		}
	}
	return out
}

type cellKey struct {
	model   string
	config  string
	suiteID string
}

// Compare aligns the two snapshots by (model, config tag, suite id) and
// classifies every key found in either. Exempt suites carry timing rather
// than scores and are skipped. Verdicts come back in a stable order.
func Compare(baseline, current *models.Snapshot) Report {
	baseMeans := suiteMeans(baseline)
	currMeans := suiteMeans(current)

	keys := make(map[cellKey]struct{}, len(baseMeans)+len(currMeans))
	for k := range baseMeans {
		keys[k] = struct{}{}
	}
	for k := range currMeans {
		keys[k] = struct{}{}
	}

	report := Report{Verdicts: make([]models.RegressionVerdict, 0, len(keys))}
	for k := range keys {
		base, inBase := baseMeans[k]
		curr, inCurr := currMeans[k]
		v := models.RegressionVerdict{
			Model:     k.model,
			ConfigTag: k.config,
			SuiteID:   k.suiteID,
			Baseline:  base,
			Current:   curr,
		}
		switch {
		case !inBase:
			v.Class = models.ClassNew
		case !inCurr:
			v.Class = models.ClassMissing
		default:
			v.RelativeDelta, v.Class = classify(base, curr)
		}
		report.Verdicts = append(report.Verdicts, v)
	}

	sort.Slice(report.Verdicts, func(i, j int) bool {
		a, b := report.Verdicts[i], report.Verdicts[j]
		if a.Model != b.Model {
			return a.Model < b.Model
		}
		if a.ConfigTag != b.ConfigTag {
			return a.ConfigTag < b.ConfigTag
		}
		return a.SuiteID < b.SuiteID
	})
	return report
}

// classify computes the relative delta (positive means the current run is
// worse) and maps it onto a class. A zero baseline cannot anchor a ratio:
// any recovery from zero is an improvement, staying at zero is stable, and
// a drop to zero from a positive baseline is a full regression.
func classify(base, curr float64) (float64, models.RegressionClass) {
	if base == 0 {
		if curr > 0 {
			return -1.0, models.ClassImproved
		}
		return 0, models.ClassStable
	}
	delta := (base - curr) / base
	switch {
	case delta > Threshold:
		return delta, models.ClassRegressed
	case delta < -Threshold:
		return delta, models.ClassImproved
	default:
		return delta, models.ClassStable
	}
}

func suiteMeans(snap *models.Snapshot) map[cellKey]float64 {
	means := make(map[cellKey]float64)
	if snap == nil {
		return means
	}
	for _, cell := range snap.Cells {
		for _, sr := range cell.Suites {
			if sr.Exempt {
				continue
			}
			means[cellKey{cell.Model, cell.Config.Tag, sr.SuiteID}] = sr.Mean
		}
	}
	return means
}
