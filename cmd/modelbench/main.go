package main

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes for the different failure modes
const (
	ExitSuccess    = 0 // run completed, no gated regressions
	ExitRegression = 1 // run completed but the regression gate tripped
	ExitError      = 2 // configuration or runtime error
)

// RegressionError indicates the benchmark ran to completion but at least
// one suite regressed against the baseline while gating was requested.
type RegressionError struct {
	Count int
}

func (e *RegressionError) Error() string {
	return fmt.Sprintf("%d suite(s) regressed against the baseline", e.Count)
}

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		var regressionErr *RegressionError
		if errors.As(err, &regressionErr) {
			os.Exit(ExitRegression)
		}
		os.Exit(ExitError)
	}
}
