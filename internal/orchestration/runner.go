// Package orchestration expands the benchmark matrix and drives execution
// through a bounded worker pool, then folds the results into a snapshot.
package orchestration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/modelbench/modelbench/internal/aggregate"
	"github.com/modelbench/modelbench/internal/executor"
	"github.com/modelbench/modelbench/internal/models"
	"github.com/modelbench/modelbench/internal/scoring"
	"github.com/modelbench/modelbench/internal/suites"
)

// ErrNoSuites means the filters removed every suite; running an empty
// matrix would silently measure nothing, so it is fatal.
var ErrNoSuites = errors.New("no suites selected")

// DefaultWorkers bounds concurrent inference calls. Local servers serialize
// heavy requests anyway; a small pool keeps queueing fair without drowning
// the server.
const DefaultWorkers = 4

// ProgressEvent reports one completed repeat.
type ProgressEvent struct {
	Model       string
	ConfigTag   string
	SuiteID     string
	CaseID      string
	RepeatIndex int
	Status      models.RunStatus
	Completed   int64
	Total       int64
}

// ProgressListener receives progress events. Called from worker goroutines;
// implementations must be safe for concurrent use.
type ProgressListener func(ProgressEvent)

// Exclusion removes one (model, config) cell from the matrix. An empty
// ConfigTag excludes the model under every configuration.
type Exclusion struct {
	Model     string `yaml:"model" json:"model"`
	ConfigTag string `yaml:"config,omitempty" json:"config,omitempty"`
}

// MatrixSpec is the cross product to run: every model under every
// configuration against every suite, minus exclusions.
type MatrixSpec struct {
	Models     []models.ModelSpec
	Configs    []models.ConfigSpec
	Suites     []models.SuiteSpec
	Exclusions []Exclusion
}

func (m MatrixSpec) excluded(model, configTag string) bool {
	for _, ex := range m.Exclusions {
		if ex.Model == model && (ex.ConfigTag == "" || ex.ConfigTag == configTag) {
			return true
		}
	}
	return false
}

// Runner executes a matrix. Construct with NewRunner; a zero Runner is not
// usable.
type Runner struct {
	exec           *executor.Executor
	selector       *scoring.Selector
	workers        int
	repeatOverride int
	listener       ProgressListener
	logger         *slog.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithWorkers sets the worker pool size. Values below one keep the default.
func WithWorkers(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithRepeatOverride replaces the planned repeat count for every
// configuration. The repeat kind is still derived from the configuration.
func WithRepeatOverride(n int) RunnerOption {
	return func(r *Runner) {
		r.repeatOverride = n
	}
}

// WithProgressListener registers a progress callback.
func WithProgressListener(fn ProgressListener) RunnerOption {
	return func(r *Runner) {
		r.listener = fn
	}
}

// WithLogger replaces the default logger.
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = logger
	}
}

// NewRunner returns a Runner wired to the given executor.
func NewRunner(exec *executor.Executor, opts ...RunnerOption) *Runner {
	r := &Runner{
		exec:     exec,
		selector: scoring.NewSelector(),
		workers:  DefaultWorkers,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// suitePlan is one suite within one cell, with result slots preallocated so
// workers write to disjoint indices without locking.
type suitePlan struct {
	spec  models.SuiteSpec
	strat scoring.Strategy // nil when the suite is exempt
	cases []models.CaseSpec
	runs  [][]*models.RunResult // [case][repeat]
}

type cellPlan struct {
	model  models.ModelSpec
	cfg    models.ConfigSpec
	policy models.RepeatPolicy
	suites []suitePlan
}

// Run executes the whole matrix and returns the aggregated snapshot. On
// cancellation the repeats already finished are still aggregated; the
// snapshot marks the affected cases and suites partial and the context
// error comes back beside it.
func (r *Runner) Run(ctx context.Context, spec MatrixSpec) (*models.Snapshot, error) {
	if len(spec.Suites) == 0 {
		return nil, ErrNoSuites
	}

	cells, total, err := r.plan(spec)
	if err != nil {
		return nil, err
	}
	if len(cells) == 0 {
		return nil, fmt.Errorf("matrix is empty: every cell excluded")
	}

	r.logger.Info("starting run",
		"cells", len(cells),
		"suites", len(spec.Suites),
		"total_repeats", total,
		"workers", r.workers)

	var completed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

schedule:
	for ci := range cells {
		cell := &cells[ci]
		for si := range cell.suites {
			sp := &cell.suites[si]
			for caseIdx := range sp.cases {
				for repeat := 0; repeat < cell.policy.Count; repeat++ {
					if gctx.Err() != nil {
						break schedule
					}
					cs := sp.cases[caseIdx]
					slot := &sp.runs[caseIdx][repeat]
					req := executor.Request{
						Model:        cell.model,
						Config:       cell.cfg,
						Case:         cs,
						SystemPrompt: suites.SystemPrompt(sp.spec.Kind, cell.cfg.SystemStyle),
						RepeatIndex:  repeat,
					}
					suiteID := sp.spec.ID
					g.Go(func() error {
						if gctx.Err() != nil {
							return nil
						}
						result := r.exec.Execute(gctx, req)
						*slot = &result
						done := completed.Add(1)
						if r.listener != nil {
							r.listener(ProgressEvent{
								Model:       req.Model.Name,
								ConfigTag:   req.Config.Tag,
								SuiteID:     suiteID,
								CaseID:      cs.ID,
								RepeatIndex: req.RepeatIndex,
								Status:      result.Status,
								Completed:   done,
								Total:       total,
							})
						}
						return nil
					})
				}
			}
		}
	}
	_ = g.Wait()

	snap := &models.Snapshot{
		RunID:     uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Cells:     make([]models.CompositeScore, 0, len(cells)),
	}
	for ci := range cells {
		snap.Cells = append(snap.Cells, r.fold(&cells[ci]))
	}

	if err := ctx.Err(); err != nil {
		r.logger.Warn("run interrupted", "completed", completed.Load(), "total", total)
		return snap, err
	}
	r.logger.Info("run complete", "completed", completed.Load(), "total", total)
	return snap, nil
}

// plan expands the matrix into cells with preallocated result slots and
// returns the total repeat count.
func (r *Runner) plan(spec MatrixSpec) ([]cellPlan, int64, error) {
	var cells []cellPlan
	var total int64
	for _, model := range spec.Models {
		for _, cfg := range spec.Configs {
			if spec.excluded(model.Name, cfg.Tag) {
				r.logger.Debug("cell excluded", "model", model.Name, "config", cfg.Tag)
				continue
			}
			cell := cellPlan{
				model:  model,
				cfg:    cfg,
				policy: PlanRepeats(cfg, r.repeatOverride),
			}
			for _, suite := range spec.Suites {
				sp := suitePlan{spec: suite}
				if !suite.Exempt {
					strat, err := r.selector.ForSuite(suite.Kind)
					if err != nil {
						return nil, 0, fmt.Errorf("suite %q: %w", suite.ID, err)
					}
					sp.strat = strat
				}
				sp.cases = make([]models.CaseSpec, len(suite.Cases))
				sp.runs = make([][]*models.RunResult, len(suite.Cases))
				for i, cs := range suite.Cases {
					sp.cases[i] = suites.Materialize(cs, cfg)
					sp.runs[i] = make([]*models.RunResult, cell.policy.Count)
					total += int64(cell.policy.Count)
				}
				cell.suites = append(cell.suites, sp)
			}
			cells = append(cells, cell)
		}
	}
	return cells, total, nil
}

// fold aggregates one cell's completed runs into its composite.
func (r *Runner) fold(cell *cellPlan) models.CompositeScore {
	suiteResults := make([]models.SuiteResult, 0, len(cell.suites))
	for _, sp := range cell.suites {
		caseStats := make([]models.CaseStat, 0, len(sp.cases))
		for caseIdx, cs := range sp.cases {
			runs := make([]models.RunResult, 0, len(sp.runs[caseIdx]))
			for _, slot := range sp.runs[caseIdx] {
				if slot != nil {
					runs = append(runs, *slot)
				}
			}
			if len(runs) == 0 {
				continue
			}
			if sp.spec.Exempt {
				caseStats = append(caseStats, aggregate.TimingCase(cs, runs, cell.policy))
			} else {
				caseStats = append(caseStats, aggregate.Case(cs, runs, cell.policy, sp.strat))
			}
		}
		suiteResults = append(suiteResults, aggregate.Suite(sp.spec, caseStats, cell.policy))
	}
	return aggregate.Compose(cell.model.Name, cell.cfg, suiteResults)
}
