package features

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/pucklab/puckcast/internal/progress"
	"github.com/pucklab/puckcast/internal/table"
	"github.com/pucklab/puckcast/internal/telemetry"
)

// Pipeline runs feature passes over a table in two phases. Phase 1 runs the
// per-group passes, optionally in parallel across groups since no group
// pass reads outside its group. Phase 2 runs the cross-group passes after
// every group has finished. Column dependencies are validated up front so a
// misconfigured pass fails before any row is touched.
type Pipeline struct {
	grouper     *table.Grouper
	groupPasses []GroupPass
	tablePasses []TablePass
	log         zerolog.Logger
	metrics     *telemetry.Registry
	parallelism int
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithMetrics attaches Prometheus instrumentation.
func WithMetrics(m *telemetry.Registry) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithParallelism bounds the number of groups processed concurrently in
// phase 1. Zero means GOMAXPROCS; one forces sequential execution.
func WithParallelism(n int) Option {
	return func(p *Pipeline) { p.parallelism = n }
}

// NewPipeline assembles a pipeline from a grouper and ordered passes.
func NewPipeline(grouper *table.Grouper, groupPasses []GroupPass, tablePasses []TablePass, logger zerolog.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		grouper:     grouper,
		groupPasses: groupPasses,
		tablePasses: tablePasses,
		log:         logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Result describes one pipeline run.
type Result struct {
	RunID       string
	Table       *table.RowTable
	Groups      *table.GroupedSeries
	RowsSkipped int
	NewColumns  []string
	Elapsed     time.Duration
}

// Validate checks that every pass's required columns are satisfied by the
// table or by an earlier pass, and that no two passes produce the same
// column.
func (p *Pipeline) Validate(t *table.RowTable) error {
	available := make(map[string]struct{})
	for _, c := range t.Columns() {
		available[c] = struct{}{}
	}

	produced := make(map[string]string)
	check := func(name string, requires, produces []string) error {
		for _, col := range requires {
			if _, ok := available[col]; !ok {
				return fmt.Errorf("pass %s: %w", name, table.UnknownColumnError(col))
			}
		}
		for _, col := range produces {
			if by, dup := produced[col]; dup {
				return fmt.Errorf("pass %s: column %q already produced by %s", name, col, by)
			}
			produced[col] = name
			available[col] = struct{}{}
		}
		return nil
	}

	for _, pass := range p.groupPasses {
		if err := check(pass.Name(), pass.Requires(), pass.Produces()); err != nil {
			return err
		}
	}
	for _, pass := range p.tablePasses {
		if err := check(pass.Name(), pass.Requires(), pass.Produces()); err != nil {
			return err
		}
	}
	return nil
}

// Run validates, groups, and executes every pass, returning the enriched
// table. The table's rows are extended in place; no original field is ever
// overwritten.
func (p *Pipeline) Run(ctx context.Context, t *table.RowTable) (*Result, error) {
	runID := uuid.NewString()
	logger := p.log.With().Str("run_id", runID).Logger()
	if p.metrics != nil {
		p.metrics.PipelineRuns.Inc()
		p.metrics.RowsProcessed.Add(float64(t.Len()))
	}

	if err := p.Validate(t); err != nil {
		return nil, err
	}

	tracker := progress.NewTracker("feature_pipeline", len(p.groupPasses)+len(p.tablePasses)+1, logger)

	gs, err := p.grouper.Group(t)
	if err != nil {
		return nil, err
	}
	tracker.Step("group")
	if p.metrics != nil && gs.Skipped > 0 {
		p.metrics.MalformedTimestamps.Add(float64(gs.Skipped))
	}
	logger.Info().Int("groups", gs.NumGroups()).Int("rows", gs.Len()).
		Int("skipped", gs.Skipped).Msg("table grouped")

	if err := p.runGroupPhase(ctx, gs, tracker); err != nil {
		return nil, err
	}

	for _, pass := range p.tablePasses {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start := time.Now()
		if err := pass.Apply(gs); err != nil {
			if p.metrics != nil {
				p.metrics.PipelineErrors.WithLabelValues(pass.Name()).Inc()
			}
			return nil, fmt.Errorf("pass %s: %w", pass.Name(), err)
		}
		p.observe(pass.Name(), "table", start, len(pass.Produces()))
		tracker.Step(pass.Name())
	}

	newColumns := p.registerColumns(t)
	elapsed := tracker.Done()

	return &Result{
		RunID:       runID,
		Table:       t,
		Groups:      gs,
		RowsSkipped: gs.Skipped,
		NewColumns:  newColumns,
		Elapsed:     elapsed,
	}, nil
}

// runGroupPhase applies every group pass, in declared order, to each group.
// Groups are independent, so they run concurrently; results are identical
// to the sequential order because passes only touch their own group's rows.
func (p *Pipeline) runGroupPhase(ctx context.Context, gs *table.GroupedSeries, tracker *progress.Tracker) error {
	if len(p.groupPasses) == 0 {
		return nil
	}
	start := time.Now()

	limit := p.parallelism
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, key := range gs.Keys() {
		key := key
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rows := gs.Rows(key)
			for _, pass := range p.groupPasses {
				if err := pass.ApplyGroup(key, rows); err != nil {
					if p.metrics != nil {
						p.metrics.PipelineErrors.WithLabelValues(pass.Name()).Inc()
					}
					return fmt.Errorf("pass %s, group %q: %w", pass.Name(), key, err)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, pass := range p.groupPasses {
		p.observe(pass.Name(), "group", start, len(pass.Produces()))
		tracker.Step(pass.Name())
	}
	return nil
}

// registerColumns folds every pass's outputs into the table's column set and
// returns the columns added by this run.
func (p *Pipeline) registerColumns(t *table.RowTable) []string {
	var added []string
	record := func(cols []string) {
		for _, c := range cols {
			if !t.HasColumn(c) {
				t.AddColumn(c)
				added = append(added, c)
			}
		}
	}
	for _, pass := range p.groupPasses {
		record(pass.Produces())
	}
	for _, pass := range p.tablePasses {
		record(pass.Produces())
	}
	return added
}

func (p *Pipeline) observe(pass, phase string, start time.Time, produced int) {
	if p.metrics == nil {
		return
	}
	p.metrics.PassDuration.WithLabelValues(pass, phase).Observe(time.Since(start).Seconds())
	p.metrics.FeaturesAdded.WithLabelValues(pass).Add(float64(produced))
}
