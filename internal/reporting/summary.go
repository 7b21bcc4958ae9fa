// Package reporting renders run snapshots and regression reports for humans
// (colored console tables) and machines (JSON trees, JUnit XML for CI).
package reporting

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/modelbench/modelbench/internal/models"
	"github.com/modelbench/modelbench/internal/regression"
)

var (
	good = color.New(color.FgGreen)
	warn = color.New(color.FgYellow)
	bad  = color.New(color.FgRed)
	dim  = color.New(color.Faint)
)

// InterpretComposite returns a plain-language label for a composite (0-1).
func InterpretComposite(score float64) string {
	pct := score * 100
	switch {
	case pct > 90:
		return "excellent"
	case pct >= 70:
		return "good"
	case pct >= 50:
		return "needs work"
	default:
		return "poor"
	}
}

func compositeColor(score float64) *color.Color {
	switch {
	case score >= 0.7:
		return good
	case score >= 0.5:
		return warn
	default:
		return bad
	}
}

// PrintSummary renders the per-cell composite table for one snapshot.
func PrintSummary(w io.Writer, snap *models.Snapshot) {
	fmt.Fprintf(w, "Run %s (%s)\n\n", snap.RunID, snap.Timestamp.Format("2006-01-02 15:04:05 MST"))

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MODEL\tCONFIG\tCOMPOSITE\t")
	for _, cell := range snap.Cells {
		composite := dim.Sprint("no composite")
		if cell.HasScore {
			composite = compositeColor(cell.Score).Sprintf("%5.1f%% (%s)", cell.Score*100, InterpretComposite(cell.Score))
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t\n", cell.Model, cell.Config.Tag, composite)
	}
	tw.Flush()
}

// PrintCellDetail renders per-suite rows for one cell.
func PrintCellDetail(w io.Writer, cell models.CompositeScore) {
	fmt.Fprintf(w, "\n%s\n", cell.CellKey())

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, suite := range cell.Suites {
		switch {
		case suite.Exempt && suite.Timing != nil:
			fmt.Fprintf(tw, "  %s\t%s\t%s\t\n", suite.SuiteID,
				dim.Sprintf("%d ms avg", suite.Timing.AvgDurationMs),
				dim.Sprintf("%.1f tok/s", suite.Timing.AvgTokensPerSecond))
		default:
			mean := fmt.Sprintf("%.2f / %.0f", suite.Mean, models.MaxScore)
			ci := ""
			if suite.CI95Hi > 0 {
				ci = dim.Sprintf("[%.2f, %.2f]", suite.CI95Lo, suite.CI95Hi)
			}
			partial := ""
			if suite.Partial {
				partial = warn.Sprint("partial")
			}
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t\n", suite.SuiteID, mean, ci, partial)
		}
	}
	tw.Flush()
}

// PrintIdempotencyFailures lists determinism violations across the snapshot.
func PrintIdempotencyFailures(w io.Writer, snap *models.Snapshot) {
	var lines []string
	for _, cell := range snap.Cells {
		for _, suite := range cell.Suites {
			for _, cs := range suite.Cases {
				if cs.IdempotencyFailure {
					lines = append(lines, fmt.Sprintf("%s / %s / %s", cell.CellKey(), suite.SuiteID, cs.CaseID))
				}
			}
		}
	}
	if len(lines) == 0 {
		return
	}
	sort.Strings(lines)
	fmt.Fprintf(w, "\n%s\n", warn.Sprintf("%d determinism violation(s):", len(lines)))
	for _, line := range lines {
		fmt.Fprintf(w, "  %s\n", line)
	}
}

// PrintRegressions renders a comparison report, regressions first.
func PrintRegressions(w io.Writer, report regression.Report) {
	if len(report.Verdicts) == 0 {
		fmt.Fprintln(w, "nothing to compare")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MODEL\tCONFIG\tSUITE\tBASELINE\tCURRENT\tDELTA\tCLASS\t")
	for _, v := range report.Verdicts {
		class := classColor(v.Class).Sprint(string(v.Class))
		delta := "-"
		if v.Class != models.ClassNew && v.Class != models.ClassMissing {
			delta = fmt.Sprintf("%+.1f%%", -v.RelativeDelta*100)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.2f\t%.2f\t%s\t%s\t\n",
			v.Model, v.ConfigTag, v.SuiteID, v.Baseline, v.Current, delta, class)
	}
	tw.Flush()

	if regressed := report.Regressed(); len(regressed) > 0 {
		fmt.Fprintf(w, "\n%s\n", bad.Sprintf("%d suite(s) regressed", len(regressed)))
	} else {
		fmt.Fprintf(w, "\n%s\n", good.Sprint("no regressions"))
	}
}

func classColor(class models.RegressionClass) *color.Color {
	switch class {
	case models.ClassRegressed, models.ClassMissing:
		return bad
	case models.ClassImproved, models.ClassNew:
		return good
	default:
		return dim
	}
}
