package models

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfigSpec(t *testing.T) {
	t.Run("deterministic at zero temperature", func(t *testing.T) {
		require.True(t, ConfigSpec{Temperature: 0}.Deterministic())
		require.False(t, ConfigSpec{Temperature: 0.7}.Deterministic())
	})

	t.Run("label", func(t *testing.T) {
		cfg := ConfigSpec{Tag: "precise"}
		require.Equal(t, "llama3:latest | precise", cfg.Label("llama3:latest"))
	})

	t.Run("validate", func(t *testing.T) {
		valid := ConfigSpec{Tag: "precise", Temperature: 0, TopP: 1, NumCtx: 4096, SystemStyle: StyleDetailed}
		require.NoError(t, valid.Validate())

		for name, cfg := range map[string]ConfigSpec{
			"no tag":        {Temperature: 0, NumCtx: 4096, SystemStyle: StyleDetailed},
			"negative temp": {Tag: "t", Temperature: -1, NumCtx: 4096, SystemStyle: StyleDetailed},
			"zero ctx":      {Tag: "t", SystemStyle: StyleDetailed},
			"bad style":     {Tag: "t", NumCtx: 4096, SystemStyle: "verbose"},
		} {
			t.Run(name, func(t *testing.T) {
				require.Error(t, cfg.Validate())
			})
		}
	})
}

func TestLoadCatalog(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "models.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
models:
  - name: llama3:latest
    size_b: 8
    context_window_tokens: 8192
    primary_role: [general, code]
    recommended_quantizations: [q4_K_M, q8_0]
  - name: phi3:mini
    size_b: 3.8
    context_window_tokens: 4096
`), 0o644))

	catalog, err := LoadCatalog(path)
	require.NoError(t, err)
	require.Len(t, catalog.Models, 2)
	require.Equal(t, []string{"llama3:latest", "phi3:mini"}, catalog.Names())

	spec := catalog.ByName("phi3:mini")
	require.NotNil(t, spec)
	require.Equal(t, 4096, spec.ContextWindow)
	require.Nil(t, catalog.ByName("mistral"))

	require.Equal(t, []string{"q4_K_M", "q8_0"},
		catalog.ByName("llama3:latest").RecommendedQuantizations)

	t.Run("duplicate names rejected", func(t *testing.T) {
		dup := filepath.Join(dir, "dup.yaml")
		require.NoError(t, os.WriteFile(dup, []byte(`
models:
  - {name: a, context_window_tokens: 4096}
  - {name: a, context_window_tokens: 4096}
`), 0o644))
		_, err := LoadCatalog(dup)
		require.Error(t, err)
	})
}

func TestExpectationValidate(t *testing.T) {
	t.Run("forbidden overlap with expected", func(t *testing.T) {
		e := Expectation{Exact: "Paris", Forbidden: []string{"paris"}}
		require.ErrorContains(t, e.Validate(KindExact), "both expected and forbidden")
	})

	t.Run("forbidden overlap with contains", func(t *testing.T) {
		e := Expectation{Contains: []string{"def main"}, Forbidden: []string{"DEF MAIN"}}
		require.ErrorContains(t, e.Validate(KindCode), "both required and forbidden")
	})

	t.Run("secondary duplicating primary", func(t *testing.T) {
		e := Expectation{Exact: "paris", Secondary: "Paris"}
		require.ErrorContains(t, e.Validate(KindExact), "duplicates the primary")
	})

	t.Run("empty expectation", func(t *testing.T) {
		require.ErrorContains(t, Expectation{}.Validate(KindExact), "nothing to check")
	})

	t.Run("latency skips expectation checks", func(t *testing.T) {
		require.NoError(t, Expectation{}.Validate(KindLatency))
	})

	t.Run("check parameter defects", func(t *testing.T) {
		for name, chk := range map[string]Check{
			"word_count without n":      {Kind: CheckWordCount},
			"exact_reply without value": {Kind: CheckExactReply},
			"inverted range":            {Kind: CheckIntegerRange, N: 10, Max: 1},
			"regex without value":       {Kind: CheckMatchesRegex},
			"regex that cannot compile": {Kind: CheckMatchesRegex, Value: "([unclosed"},
			"unknown kind":              {Kind: "rhymes"},
		} {
			t.Run(name, func(t *testing.T) {
				e := Expectation{Checks: []Check{chk}}
				require.Error(t, e.Validate(KindInstruction))
			})
		}
	})
}

func TestSuiteSpecValidate(t *testing.T) {
	valid := SuiteSpec{
		ID:   "s",
		Kind: KindExact,
		Cases: []CaseSpec{
			{ID: "c1", Prompt: "p", Expect: Expectation{Exact: "x"}},
		},
	}
	require.NoError(t, valid.Validate())
	require.Equal(t, 1.0, valid.EffectiveWeight())

	t.Run("duplicate case ids", func(t *testing.T) {
		s := valid
		s.Cases = append(s.Cases, s.Cases[0])
		require.ErrorContains(t, s.Validate(), "duplicate case id")
	})

	t.Run("unknown kind", func(t *testing.T) {
		s := valid
		s.Kind = "riddles"
		require.ErrorContains(t, s.Validate(), "unknown kind")
	})

	t.Run("negative weight", func(t *testing.T) {
		s := valid
		s.Weight = -1
		require.Error(t, s.Validate())
	})
}

func TestNormalizeOutput(t *testing.T) {
	require.Equal(t, "paris", NormalizeOutput("  Paris \n"))
	require.Equal(t, "the answer is 42", NormalizeOutput("The  answer\tis\n42"))
	require.Equal(t, "", NormalizeOutput("   \n\t "))
}

func TestRunResult(t *testing.T) {
	t.Run("tokens per second", func(t *testing.T) {
		r := RunResult{DurationMs: 2000, CompletionTokens: 100}
		require.InDelta(t, 50.0, r.TokensPerSecond(), 1e-9)
	})

	t.Run("zero when unavailable", func(t *testing.T) {
		require.Zero(t, RunResult{DurationMs: 0, CompletionTokens: 10}.TokensPerSecond())
		require.Zero(t, RunResult{DurationMs: 100, CompletionTokens: 0}.TokensPerSecond())
	})
}

func TestSnapshotCell(t *testing.T) {
	snap := Snapshot{Cells: []CompositeScore{
		{Model: "llama3", Config: ConfigSpec{Tag: "precise"}},
		{Model: "llama3", Config: ConfigSpec{Tag: "creative"}},
	}}
	require.NotNil(t, snap.Cell("llama3", "creative"))
	require.Nil(t, snap.Cell("phi3", "precise"))
}
