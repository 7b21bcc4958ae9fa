package reporting

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/modelbench/modelbench/internal/models"
)

var csvHeader = []string{
	"model", "config", "suite", "kind", "case",
	"mean", "std_dev", "idempotency_failure",
	"avg_duration_ms", "avg_tokens_per_second", "partial",
}

// WriteCaseCSV exports one row per aggregated case, the flat shape
// spreadsheet tooling wants. Exempt suites carry timing in place of scores.
func WriteCaseCSV(path string, snap *models.Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("csv: create dir for %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("csv: create %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		f.Close()
		return fmt.Errorf("csv: write header: %w", err)
	}
	for _, cell := range snap.Cells {
		for _, suite := range cell.Suites {
			for _, cs := range suite.Cases {
				if err := w.Write(caseRow(cell, suite, cs)); err != nil {
					f.Close()
					return fmt.Errorf("csv: write row: %w", err)
				}
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("csv: flush %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("csv: close %s: %w", path, err)
	}
	return nil
}

func caseRow(cell models.CompositeScore, suite models.SuiteResult, cs models.CaseStat) []string {
	return []string{
		cell.Model,
		cell.Config.Tag,
		suite.SuiteID,
		string(suite.Kind),
		cs.CaseID,
		strconv.FormatFloat(cs.Mean, 'f', 3, 64),
		strconv.FormatFloat(cs.StdDev, 'f', 3, 64),
		strconv.FormatBool(cs.IdempotencyFailure),
		strconv.FormatInt(cs.AvgDurationMs, 10),
		strconv.FormatFloat(cs.AvgTokensPerSecond, 'f', 1, 64),
		strconv.FormatBool(cs.Partial),
	}
}
