package reporting

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/modelbench/modelbench/internal/models"
	"github.com/modelbench/modelbench/internal/regression"
)

// WriteSnapshotJSON writes the full aggregated tree as indented JSON.
func WriteSnapshotJSON(path string, snap *models.Snapshot) error {
	return writeJSON(path, snap)
}

// WriteRegressionJSON writes a comparison report as indented JSON.
func WriteRegressionJSON(path string, report regression.Report) error {
	return writeJSON(path, report)
}

func writeJSON(path string, v any) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating report dir: %w", err)
		}
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}
