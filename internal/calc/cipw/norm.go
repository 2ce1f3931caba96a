package cipw

import (
	"context"
	"log"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"Petronorm/internal/chem"
)

// Engine computes CIPW norms against one reference table. It is safe for
// concurrent use.
type Engine struct {
	ref     *chem.Reference
	consts  constants
	logger  *log.Logger
	workers int
	observe func(*SampleNorm, []Warning)
}

type EngineOption func(*Engine)

// WithLogger sets the logger warnings are written to.
func WithLogger(l *log.Logger) EngineOption {
	return func(e *Engine) { e.logger = l }
}

// WithWorkers bounds the number of rows computed concurrently.
func WithWorkers(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithObserver registers a callback run once per computed sample, with the
// sample's own warnings. It must be safe for concurrent use.
func WithObserver(fn func(*SampleNorm, []Warning)) EngineOption {
	return func(e *Engine) { e.observe = fn }
}

func NewEngine(ref *chem.Reference, opts ...EngineOption) (*Engine, error) {
	if ref == nil {
		return nil, ErrMissingReference
	}
	consts, err := newConstants(ref)
	if err != nil {
		return nil, err
	}
	e := &Engine{
		ref:     ref,
		consts:  consts,
		logger:  log.Default(),
		workers: runtime.GOMAXPROCS(0),
	}
	for _, o := range opts {
		o(e)
	}
	return e, nil
}

var (
	defaultOnce   sync.Once
	defaultEngine *Engine
	defaultErr    error
)

// Calculate computes the norm of t with an engine over the built-in
// reference table.
func Calculate(t Table, opts Options) (*Result, error) {
	defaultOnce.Do(func() {
		defaultEngine, defaultErr = NewEngine(chem.NewReference())
	})
	if defaultErr != nil {
		return nil, defaultErr
	}
	return defaultEngine.Compute(context.Background(), t, opts)
}

// Compute runs the norm on every row of t. Rows are independent; the
// result keeps input order regardless of scheduling.
func (e *Engine) Compute(ctx context.Context, t Table, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	plan, warnings, err := e.planColumns(t.Columns, opts)
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		e.logger.Printf("cipw: %s", w)
	}

	samples := make([]SampleNorm, len(t.Rows))
	rowWarnings := make([][]Warning, len(t.Rows))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, row := range t.Rows {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			samples[i], rowWarnings[i] = e.sample(plan, i, row, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &Result{
		Options: opts,
		Samples: samples,
		Ignored: plan.ignored,
	}
	res.Warnings = append(res.Warnings, warnings...)
	for _, ws := range rowWarnings {
		res.Warnings = append(res.Warnings, ws...)
	}
	res.buildFrames(plan.idColumns)
	return res, nil
}

// sample runs every stage on one row with fresh state.
func (e *Engine) sample(plan columnPlan, index int, row []Cell, opts Options) (SampleNorm, []Warning) {
	s := e.prepare(plan, index, row, opts)
	m := e.consts.toMolar(&s.wt, opts.MinorIncluded)

	l := &ledger{index: index, pool: m.pool}
	l.allocate(opts)
	terminal := l.resolve()

	out := e.finalize(&s, l, &m.weights, opts)
	out.Terminal = terminal.String()
	out.Steps = make([]string, len(l.steps))
	for i, st := range l.steps {
		out.Steps[i] = st.String()
	}

	warnings := append(s.warnings, l.warnings...)
	for _, w := range warnings {
		e.logger.Printf("cipw: sample %d: %s: %s", index, w.Kind, w.Message)
	}
	if e.observe != nil {
		e.observe(&out, warnings)
	}
	return out, warnings
}
