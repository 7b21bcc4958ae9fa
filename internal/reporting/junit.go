package reporting

import (
	"encoding/xml"
	"fmt"
	"os"
	"time"

	"github.com/modelbench/modelbench/internal/models"
	"github.com/modelbench/modelbench/internal/regression"
)

// JUnit XML schema types, the subset CI systems consume.

// JUnitTestSuites is the top-level container.
type JUnitTestSuites struct {
	XMLName    xml.Name         `xml:"testsuites"`
	Tests      int              `xml:"tests,attr"`
	Failures   int              `xml:"failures,attr"`
	TestSuites []JUnitTestSuite `xml:"testsuite"`
}

// JUnitTestSuite maps to one (model, config) cell.
type JUnitTestSuite struct {
	XMLName   xml.Name        `xml:"testsuite"`
	Name      string          `xml:"name,attr"`
	Tests     int             `xml:"tests,attr"`
	Failures  int             `xml:"failures,attr"`
	Timestamp string          `xml:"timestamp,attr"`
	TestCases []JUnitTestCase `xml:"testcase"`
}

// JUnitTestCase maps to one suite verdict.
type JUnitTestCase struct {
	XMLName   xml.Name      `xml:"testcase"`
	Name      string        `xml:"name,attr"`
	Classname string        `xml:"classname,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
	Skipped   *JUnitSkipped `xml:"skipped,omitempty"`
}

// JUnitFailure marks a regressed suite.
type JUnitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
}

// JUnitSkipped marks a suite present on only one side of the comparison.
type JUnitSkipped struct {
	Message string `xml:"message,attr,omitempty"`
}

// ConvertToJUnit maps a regression report onto JUnit XML: one testsuite per
// cell, one testcase per suite verdict, regressions as failures. Suites
// present on only one side come out skipped rather than failed.
func ConvertToJUnit(report regression.Report, timestamp time.Time) *JUnitTestSuites {
	byCell := make(map[string]*JUnitTestSuite)
	var order []string

	for _, v := range report.Verdicts {
		cellName := fmt.Sprintf("%s | %s", v.Model, v.ConfigTag)
		suite, ok := byCell[cellName]
		if !ok {
			suite = &JUnitTestSuite{
				Name:      cellName,
				Timestamp: timestamp.Format(time.RFC3339),
			}
			byCell[cellName] = suite
			order = append(order, cellName)
		}

		tc := JUnitTestCase{
			Name:      v.SuiteID,
			Classname: cellName,
		}
		switch v.Class {
		case models.ClassRegressed:
			tc.Failure = &JUnitFailure{
				Message: fmt.Sprintf("suite mean fell %.1f%%: %.2f -> %.2f",
					v.RelativeDelta*100, v.Baseline, v.Current),
				Type: "Regression",
			}
			suite.Failures++
		case models.ClassNew:
			tc.Skipped = &JUnitSkipped{Message: "not in baseline"}
		case models.ClassMissing:
			tc.Skipped = &JUnitSkipped{Message: "missing from current run"}
		}
		suite.Tests++
		suite.TestCases = append(suite.TestCases, tc)
	}

	out := &JUnitTestSuites{}
	for _, name := range order {
		suite := byCell[name]
		out.Tests += suite.Tests
		out.Failures += suite.Failures
		out.TestSuites = append(out.TestSuites, *suite)
	}
	return out
}

// WriteJUnitXML writes the regression report as JUnit XML.
func WriteJUnitXML(path string, report regression.Report, timestamp time.Time) error {
	data, err := xml.MarshalIndent(ConvertToJUnit(report, timestamp), "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JUnit XML: %w", err)
	}
	return os.WriteFile(path, append([]byte(xml.Header), data...), 0o644)
}
