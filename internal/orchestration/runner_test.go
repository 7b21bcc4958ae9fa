package orchestration

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/modelbench/modelbench/internal/executor"
	"github.com/modelbench/modelbench/internal/inference"
	"github.com/modelbench/modelbench/internal/models"
)

func TestPlanRepeats(t *testing.T) {
	deterministic := models.ConfigSpec{Tag: "precise", Temperature: 0}
	sampling := models.ConfigSpec{Tag: "creative", Temperature: 0.7}

	t.Run("zero temperature plans determinism repeats", func(t *testing.T) {
		policy := PlanRepeats(deterministic, 0)
		require.Equal(t, models.RepeatDeterminism, policy.Kind)
		require.Equal(t, DeterminismRepeats, policy.Count)
	})

	t.Run("positive temperature plans sampling repeats", func(t *testing.T) {
		policy := PlanRepeats(sampling, 0)
		require.Equal(t, models.RepeatSampling, policy.Kind)
		require.Equal(t, SamplingRepeats, policy.Count)
	})

	t.Run("override replaces the count but keeps the kind", func(t *testing.T) {
		policy := PlanRepeats(deterministic, 7)
		require.Equal(t, models.RepeatDeterminism, policy.Kind)
		require.Equal(t, 7, policy.Count)

		policy = PlanRepeats(sampling, 1)
		require.Equal(t, models.RepeatSampling, policy.Kind)
		require.Equal(t, 1, policy.Count)
	})
}

func testSuite() models.SuiteSpec {
	return models.SuiteSpec{
		ID:   "capitals",
		Kind: models.KindExact,
		Cases: []models.CaseSpec{
			{ID: "france", Prompt: "Capital of France?", Expect: models.Expectation{Exact: "paris"}},
			{ID: "japan", Prompt: "Capital of Japan?", Expect: models.Expectation{Exact: "tokyo"}},
		},
	}
}

func testMatrix() MatrixSpec {
	return MatrixSpec{
		Models: []models.ModelSpec{{Name: "llama3", ContextWindow: 8192}},
		Configs: []models.ConfigSpec{
			{Tag: "precise", Temperature: 0, TopP: 1, NumCtx: 4096, SystemStyle: models.StyleDetailed},
			{Tag: "creative", Temperature: 0.7, TopP: 0.9, NumCtx: 4096, SystemStyle: models.StyleDetailed},
		},
		Suites: []models.SuiteSpec{testSuite()},
	}
}

func scriptedRunner(t *testing.T, opts ...RunnerOption) *Runner {
	t.Helper()
	client := inference.NewMockClient()
	client.Responses["France"] = "Paris"
	client.Responses["Japan"] = "Tokyo"
	return NewRunner(executor.New(client), opts...)
}

func TestRunnerRun(t *testing.T) {
	t.Run("full matrix", func(t *testing.T) {
		runner := scriptedRunner(t)
		snap, err := runner.Run(context.Background(), testMatrix())
		require.NoError(t, err)
		require.NotEmpty(t, snap.RunID)
		require.Len(t, snap.Cells, 2)

		for _, cell := range snap.Cells {
			require.True(t, cell.HasScore)
			require.InDelta(t, 1.0, cell.Score, 1e-9, "cell %s", cell.CellKey())

			suite := cell.Suite("capitals")
			require.NotNil(t, suite)
			wantRepeats := DeterminismRepeats
			if cell.Config.Tag == "creative" {
				wantRepeats = SamplingRepeats
			}
			for _, cs := range suite.Cases {
				require.Len(t, cs.Scores, wantRepeats)
				require.False(t, cs.Partial)
			}
		}
	})

	t.Run("no suites is fatal", func(t *testing.T) {
		runner := scriptedRunner(t)
		spec := testMatrix()
		spec.Suites = nil
		_, err := runner.Run(context.Background(), spec)
		require.ErrorIs(t, err, ErrNoSuites)
	})

	t.Run("exclusions remove cells", func(t *testing.T) {
		runner := scriptedRunner(t)
		spec := testMatrix()
		spec.Exclusions = []Exclusion{{Model: "llama3", ConfigTag: "creative"}}
		snap, err := runner.Run(context.Background(), spec)
		require.NoError(t, err)
		require.Len(t, snap.Cells, 1)
		require.Equal(t, "precise", snap.Cells[0].Config.Tag)
	})

	t.Run("model-wide exclusion", func(t *testing.T) {
		runner := scriptedRunner(t)
		spec := testMatrix()
		spec.Exclusions = []Exclusion{{Model: "llama3"}}
		_, err := runner.Run(context.Background(), spec)
		require.ErrorContains(t, err, "every cell excluded")
	})

	t.Run("progress events cover every repeat", func(t *testing.T) {
		var mu sync.Mutex
		var events []ProgressEvent
		listener := func(ev ProgressEvent) {
			mu.Lock()
			events = append(events, ev)
			mu.Unlock()
		}

		runner := scriptedRunner(t, WithProgressListener(listener), WithWorkers(2))
		snap, err := runner.Run(context.Background(), testMatrix())
		require.NoError(t, err)
		require.Len(t, snap.Cells, 2)

		// 2 cases x (2 determinism + 5 sampling) repeats
		require.Len(t, events, 14)
		for _, ev := range events {
			require.Equal(t, int64(14), ev.Total)
			require.Equal(t, models.StatusOK, ev.Status)
		}
	})

	t.Run("repeat override applies everywhere", func(t *testing.T) {
		runner := scriptedRunner(t, WithRepeatOverride(3))
		snap, err := runner.Run(context.Background(), testMatrix())
		require.NoError(t, err)
		for _, cell := range snap.Cells {
			for _, cs := range cell.Suite("capitals").Cases {
				require.Len(t, cs.Scores, 3)
			}
		}
	})

	t.Run("cancellation returns partial results", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		var once sync.Once
		runner := scriptedRunner(t,
			WithWorkers(1),
			WithProgressListener(func(ProgressEvent) {
				once.Do(cancel)
			}))

		snap, err := runner.Run(ctx, testMatrix())
		require.ErrorIs(t, err, context.Canceled)
		require.NotNil(t, snap)
		require.Len(t, snap.Cells, 2)
	})

	t.Run("transport failures surface as zero scores", func(t *testing.T) {
		client := inference.NewMockClient()
		client.Err = errors.New("connection refused")
		runner := NewRunner(executor.New(client))

		spec := testMatrix()
		spec.Configs = spec.Configs[:1]
		snap, err := runner.Run(context.Background(), spec)
		require.NoError(t, err)

		cell := snap.Cells[0]
		require.True(t, cell.HasScore)
		require.Zero(t, cell.Score)
		for _, cs := range cell.Suite("capitals").Cases {
			for _, score := range cs.Scores {
				require.Equal(t, models.ScoreUnusable, score)
			}
		}
	})

	t.Run("exempt suites report timing and stay out of the composite", func(t *testing.T) {
		spec := testMatrix()
		spec.Configs = spec.Configs[:1]
		spec.Suites = append(spec.Suites, models.SuiteSpec{
			ID:     "latency",
			Kind:   models.KindLatency,
			Exempt: true,
			Cases:  []models.CaseSpec{{ID: "ping", Prompt: "Reply with ready.", MaxTokens: 8}},
		})

		runner := scriptedRunner(t)
		snap, err := runner.Run(context.Background(), spec)
		require.NoError(t, err)

		cell := snap.Cells[0]
		require.True(t, cell.HasScore)
		require.InDelta(t, 1.0, cell.Score, 1e-9)

		latency := cell.Suite("latency")
		require.NotNil(t, latency)
		require.NotNil(t, latency.Timing)
		require.Zero(t, latency.Mean)
	})
}
