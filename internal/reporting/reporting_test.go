package reporting

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/require"

	"github.com/modelbench/modelbench/internal/models"
	"github.com/modelbench/modelbench/internal/regression"
)

func init() {
	// keep assertions on plain text
	color.NoColor = true
}

func sampleSnapshot() *models.Snapshot {
	return &models.Snapshot{
		RunID:     "run-1",
		Timestamp: time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC),
		Cells: []models.CompositeScore{
			{
				Model:  "llama3",
				Config: models.ConfigSpec{Tag: "precise"},
				Suites: []models.SuiteResult{
					{SuiteID: "intent", Mean: 2.8, Weight: 1, Cases: []models.CaseStat{
						{CaseID: "c1", IdempotencyFailure: true},
					}},
					{SuiteID: "latency", Exempt: true, Timing: &models.SuiteTiming{AvgDurationMs: 120, AvgTokensPerSecond: 42}},
				},
				Score:    0.93,
				HasScore: true,
			},
			{
				Model:  "phi3",
				Config: models.ConfigSpec{Tag: "precise"},
				Suites: []models.SuiteResult{
					{SuiteID: "latency", Exempt: true},
				},
			},
		},
	}
}

func TestInterpretComposite(t *testing.T) {
	require.Equal(t, "excellent", InterpretComposite(0.95))
	require.Equal(t, "good", InterpretComposite(0.75))
	require.Equal(t, "needs work", InterpretComposite(0.55))
	require.Equal(t, "poor", InterpretComposite(0.2))
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	PrintSummary(&buf, sampleSnapshot())
	out := buf.String()

	require.Contains(t, out, "run-1")
	require.Contains(t, out, "llama3")
	require.Contains(t, out, "93.0%")
	require.Contains(t, out, "no composite")
}

func TestPrintCellDetail(t *testing.T) {
	var buf bytes.Buffer
	PrintCellDetail(&buf, sampleSnapshot().Cells[0])
	out := buf.String()

	require.Contains(t, out, "intent")
	require.Contains(t, out, "2.80 / 3")
	require.Contains(t, out, "120 ms avg")
}

func TestPrintIdempotencyFailures(t *testing.T) {
	var buf bytes.Buffer
	PrintIdempotencyFailures(&buf, sampleSnapshot())
	out := buf.String()

	require.Contains(t, out, "1 determinism violation(s)")
	require.Contains(t, out, "llama3 | precise / intent / c1")
}

func TestPrintRegressions(t *testing.T) {
	report := regression.Report{Verdicts: []models.RegressionVerdict{
		{Model: "llama3", ConfigTag: "precise", SuiteID: "intent",
			Baseline: 3.0, Current: 2.4, RelativeDelta: 0.2, Class: models.ClassRegressed},
		{Model: "llama3", ConfigTag: "precise", SuiteID: "needle",
			Baseline: 2.0, Current: 2.0, Class: models.ClassStable},
	}}

	var buf bytes.Buffer
	PrintRegressions(&buf, report)
	out := buf.String()

	require.Contains(t, out, "regressed")
	require.Contains(t, out, "-20.0%")
	require.Contains(t, out, "1 suite(s) regressed")
}

func TestWriteJSON(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "reports", "snapshot.json")
	require.NoError(t, WriteSnapshotJSON(path, sampleSnapshot()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `"run_id": "run-1"`)
}

func TestWriteCaseCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "cases.csv")
	require.NoError(t, WriteCaseCSV(path, sampleSnapshot()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")

	// header plus one row for the single non-empty case list
	require.Len(t, lines, 2)
	require.Equal(t, strings.Join(csvHeader, ","), lines[0])
	require.Contains(t, lines[1], "llama3,precise,intent,")
	require.Contains(t, lines[1], ",c1,")
	require.Contains(t, lines[1], ",true,")
}

func TestJUnit(t *testing.T) {
	report := regression.Report{Verdicts: []models.RegressionVerdict{
		{Model: "llama3", ConfigTag: "precise", SuiteID: "intent",
			Baseline: 3.0, Current: 2.4, RelativeDelta: 0.2, Class: models.ClassRegressed},
		{Model: "llama3", ConfigTag: "precise", SuiteID: "needle",
			Baseline: 2.0, Current: 2.0, Class: models.ClassStable},
		{Model: "llama3", ConfigTag: "precise", SuiteID: "fresh",
			Current: 2.5, Class: models.ClassNew},
	}}
	ts := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)

	t.Run("mapping", func(t *testing.T) {
		suites := ConvertToJUnit(report, ts)
		require.Equal(t, 3, suites.Tests)
		require.Equal(t, 1, suites.Failures)
		require.Len(t, suites.TestSuites, 1)

		cases := suites.TestSuites[0].TestCases
		require.Len(t, cases, 3)
		require.NotNil(t, cases[0].Failure)
		require.Nil(t, cases[1].Failure)
		require.NotNil(t, cases[2].Skipped)
	})

	t.Run("file output", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "junit.xml")
		require.NoError(t, WriteJUnitXML(path, report, ts))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(string(data), xmlHeaderPrefix))
		require.Contains(t, string(data), `type="Regression"`)
	})
}

const xmlHeaderPrefix = "<?xml"
