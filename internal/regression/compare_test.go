package regression

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/modelbench/modelbench/internal/models"
)

func snapshot(cells ...models.CompositeScore) *models.Snapshot {
	return &models.Snapshot{
		RunID:     uuid.NewString(),
		Timestamp: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		Cells:     cells,
	}
}

func cell(model, tag string, suites ...models.SuiteResult) models.CompositeScore {
	return models.CompositeScore{
		Model:  model,
		Config: models.ConfigSpec{Tag: tag},
		Suites: suites,
	}
}

func TestCompare(t *testing.T) {
	t.Run("classification thresholds", func(t *testing.T) {
		baseline := snapshot(cell("llama3", "precise",
			models.SuiteResult{SuiteID: "regressed", Mean: 3.0},
			models.SuiteResult{SuiteID: "stable", Mean: 2.5},
			models.SuiteResult{SuiteID: "improved", Mean: 2.0},
		))
		current := snapshot(cell("llama3", "precise",
			models.SuiteResult{SuiteID: "regressed", Mean: 2.4},
			models.SuiteResult{SuiteID: "stable", Mean: 2.3},
			models.SuiteResult{SuiteID: "improved", Mean: 2.5},
		))

		report := Compare(baseline, current)
		require.Len(t, report.Verdicts, 3)

		byID := map[string]models.RegressionVerdict{}
		for _, v := range report.Verdicts {
			byID[v.SuiteID] = v
		}

		require.Equal(t, models.ClassRegressed, byID["regressed"].Class)
		require.InDelta(t, 0.2, byID["regressed"].RelativeDelta, 1e-9)

		require.Equal(t, models.ClassStable, byID["stable"].Class)
		require.InDelta(t, 0.08, byID["stable"].RelativeDelta, 1e-9)

		require.Equal(t, models.ClassImproved, byID["improved"].Class)
		require.InDelta(t, -0.25, byID["improved"].RelativeDelta, 1e-9)

		require.True(t, report.AnyRegressed())
		require.Len(t, report.Regressed(), 1)
	})

	t.Run("movement exactly at the threshold is stable", func(t *testing.T) {
		baseline := snapshot(cell("m", "c", models.SuiteResult{SuiteID: "s", Mean: 2.5}))
		current := snapshot(cell("m", "c", models.SuiteResult{SuiteID: "s", Mean: 2.25}))
		report := Compare(baseline, current)
		require.Equal(t, models.ClassStable, report.Verdicts[0].Class)
	})

	t.Run("new and missing keys", func(t *testing.T) {
		baseline := snapshot(cell("m", "c",
			models.SuiteResult{SuiteID: "old", Mean: 2.0},
			models.SuiteResult{SuiteID: "shared", Mean: 2.0},
		))
		current := snapshot(cell("m", "c",
			models.SuiteResult{SuiteID: "shared", Mean: 2.0},
			models.SuiteResult{SuiteID: "fresh", Mean: 3.0},
		))

		report := Compare(baseline, current)
		byID := map[string]models.RegressionClass{}
		for _, v := range report.Verdicts {
			byID[v.SuiteID] = v.Class
		}
		require.Equal(t, models.ClassMissing, byID["old"])
		require.Equal(t, models.ClassNew, byID["fresh"])
		require.Equal(t, models.ClassStable, byID["shared"])
		require.False(t, report.AnyRegressed())
	})

	t.Run("zero baseline guards", func(t *testing.T) {
		baseline := snapshot(cell("m", "c",
			models.SuiteResult{SuiteID: "recovered", Mean: 0},
			models.SuiteResult{SuiteID: "flat", Mean: 0},
			models.SuiteResult{SuiteID: "collapsed", Mean: 2.0},
		))
		current := snapshot(cell("m", "c",
			models.SuiteResult{SuiteID: "recovered", Mean: 1.5},
			models.SuiteResult{SuiteID: "flat", Mean: 0},
			models.SuiteResult{SuiteID: "collapsed", Mean: 0},
		))

		report := Compare(baseline, current)
		byID := map[string]models.RegressionVerdict{}
		for _, v := range report.Verdicts {
			byID[v.SuiteID] = v
		}
		require.Equal(t, models.ClassImproved, byID["recovered"].Class)
		require.Equal(t, models.ClassStable, byID["flat"].Class)
		require.Equal(t, models.ClassRegressed, byID["collapsed"].Class)
		require.InDelta(t, 1.0, byID["collapsed"].RelativeDelta, 1e-9)
	})

	t.Run("score swap flips the class and the delta sign", func(t *testing.T) {
		high := snapshot(cell("m", "c", models.SuiteResult{SuiteID: "s", Mean: 0.9}))
		low := snapshot(cell("m", "c", models.SuiteResult{SuiteID: "s", Mean: 0.7}))

		forward := Compare(high, low).Verdicts[0]
		require.Equal(t, models.ClassRegressed, forward.Class)
		require.InDelta(t, 0.2/0.9, forward.RelativeDelta, 1e-9)

		swapped := Compare(low, high).Verdicts[0]
		require.Equal(t, models.ClassImproved, swapped.Class)
		require.InDelta(t, -0.2/0.7, swapped.RelativeDelta, 1e-9)

		// The delta is relative to whichever score is the baseline, so
		// the two magnitudes share a sign boundary but not a value; both
		// must clear the threshold for the classes to flip.
		require.Greater(t, forward.RelativeDelta, Threshold)
		require.Less(t, swapped.RelativeDelta, -Threshold)
	})

	t.Run("exempt suites are skipped", func(t *testing.T) {
		baseline := snapshot(cell("m", "c",
			models.SuiteResult{SuiteID: "latency", Exempt: true},
		))
		current := snapshot(cell("m", "c",
			models.SuiteResult{SuiteID: "latency", Exempt: true},
		))
		report := Compare(baseline, current)
		require.Empty(t, report.Verdicts)
	})

	t.Run("verdicts come back sorted", func(t *testing.T) {
		baseline := snapshot(
			cell("b", "x", models.SuiteResult{SuiteID: "s2", Mean: 1}),
			cell("a", "y", models.SuiteResult{SuiteID: "s1", Mean: 1}),
			cell("a", "x", models.SuiteResult{SuiteID: "s1", Mean: 1}),
		)
		report := Compare(baseline, baseline)
		require.Equal(t, "a", report.Verdicts[0].Model)
		require.Equal(t, "x", report.Verdicts[0].ConfigTag)
		require.Equal(t, "y", report.Verdicts[1].ConfigTag)
		require.Equal(t, "b", report.Verdicts[2].Model)
	})
}

func TestStore(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)

	t.Run("empty store has no latest", func(t *testing.T) {
		snap, err := store.LoadLatest()
		require.NoError(t, err)
		require.Nil(t, snap)
	})

	t.Run("save and load round trip", func(t *testing.T) {
		snap := snapshot(cell("llama3", "precise", models.SuiteResult{SuiteID: "intent", Mean: 2.5}))
		path, err := store.Save(snap)
		require.NoError(t, err)
		require.FileExists(t, path)

		loaded, err := store.Load(path)
		require.NoError(t, err)
		require.Equal(t, snap.RunID, loaded.RunID)
		require.Equal(t, snap.Cells, loaded.Cells)
	})

	t.Run("latest picks the newest timestamp", func(t *testing.T) {
		older := snapshot(cell("m", "c"))
		older.Timestamp = time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
		newer := snapshot(cell("m", "c"))
		newer.Timestamp = time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC)

		_, err := store.Save(older)
		require.NoError(t, err)
		_, err = store.Save(newer)
		require.NoError(t, err)

		latest, err := store.LoadLatest()
		require.NoError(t, err)
		require.Equal(t, newer.RunID, latest.RunID)
	})
}
