package symbolic

import (
	"container/list"
	"fmt"
	"sort"

	"github.com/bits-and-blooms/bitset"
	"go.uber.org/zap"

	"github.com/l3aro/go-symflow/pkg/cfg"
	"github.com/l3aro/go-symflow/pkg/syntax"
)

// Status is the progress of one block in a run.
type Status int

const (
	StatusPending Status = iota
	StatusInProgress
	StatusStable
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "PENDING"
	case StatusInProgress:
		return "IN_PROGRESS"
	case StatusStable:
		return "STABLE"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// DiagnosticKind classifies a recovered analysis problem.
type DiagnosticKind string

const (
	DiagUnmodeled      DiagnosticKind = "unmodeled_construct"
	DiagNonConvergence DiagnosticKind = "non_convergence"
)

// Diagnostic records a construct the engine could not model precisely.
type Diagnostic struct {
	Kind    DiagnosticKind  `json:"kind"`
	Pos     syntax.Position `json:"pos"`
	Message string          `json:"message"`
}

// Option configures a run.
type Option func(*runner)

// WithLogger sets the logger warnings are written to.
func WithLogger(logger *zap.Logger) Option {
	return func(r *runner) {
		if logger != nil {
			r.logger = logger.Named("symbolic")
		}
	}
}

// WithMaxIterations caps the number of block visits. Zero or less keeps the
// bound derived from the graph size.
func WithMaxIterations(n int) Option {
	return func(r *runner) {
		r.maxIterations = n
	}
}

// DefaultMaxIterations is the visit bound for a graph with the given number
// of blocks and tracked bindings. Every visit but the first of a block
// follows a strict increase of some binding, and a binding can increase at
// most len(Values) times.
func DefaultMaxIterations(blocks, bindings int) int {
	return blocks*max(1, bindings)*len(Values) + blocks
}

// Result is the outcome of one run over a function.
type Result struct {
	Graph        *cfg.Graph
	Observations []Observation
	Diagnostics  []Diagnostic
	Iterations   int

	entry  []*State
	exit   []*State
	status []Status
}

// EntryState returns the state at the start of b, nil when b is unreachable.
func (r *Result) EntryState(b *cfg.Block) *State { return r.entry[b.ID] }

// ExitState returns the state at the end of b, nil when b is unreachable.
func (r *Result) ExitState(b *cfg.Block) *State { return r.exit[b.ID] }

// Status returns the final status of b.
func (r *Result) Status(b *cfg.Block) Status { return r.status[b.ID] }

// ObservationsAt returns the observations of elements starting on line.
func (r *Result) ObservationsAt(line int) []Observation {
	var out []Observation
	for _, o := range r.Observations {
		if o.Pos.Line == line {
			out = append(out, o)
		}
	}
	return out
}

// Converged reports whether the run reached its fixpoint without hitting the
// iteration cap.
func (r *Result) Converged() bool {
	for _, d := range r.Diagnostics {
		if d.Kind == DiagNonConvergence {
			return false
		}
	}
	return true
}

type runner struct {
	graph         *cfg.Graph
	logger        *zap.Logger
	maxIterations int
	exec          executor

	entry  []*State
	exit   []*State
	status []Status
	edges  map[*cfg.Edge]*State
}

// Execute runs the driver over g until every reachable block is stable and
// returns the inferred states and observations.
func Execute(g *cfg.Graph, opts ...Option) (*Result, error) {
	if g == nil || g.Entry == nil || g.Func == nil {
		return nil, fmt.Errorf("%w: graph without entry", cfg.ErrMalformedInput)
	}
	n := len(g.Blocks)
	r := &runner{
		graph:  g,
		logger: zap.NewNop(),
		entry:  make([]*State, n),
		exit:   make([]*State, n),
		status: make([]Status, n),
		edges:  make(map[*cfg.Edge]*State),
	}
	for _, opt := range opts {
		opt(r)
	}

	initial := InitialState(g.Func)
	if r.maxIterations <= 0 {
		r.maxIterations = DefaultMaxIterations(n, initial.Len())
	}

	iterations, converged := r.fixpoint(initial)
	res := &Result{
		Graph:      g,
		Iterations: iterations,
		entry:      r.entry,
		exit:       r.exit,
		status:     r.status,
	}
	if !converged {
		pos := g.Func.Start
		res.Diagnostics = append(res.Diagnostics, Diagnostic{
			Kind:    DiagNonConvergence,
			Pos:     pos,
			Message: fmt.Sprintf("no fixpoint for %s after %d iterations", g.Func.Name, iterations),
		})
		r.logger.Warn("iteration cap reached",
			zap.String("function", g.Func.Name),
			zap.Int("iterations", iterations),
			zap.Int("blocks", n),
		)
	}
	r.observe(res)
	return res, nil
}

// InitialState is the state at function entry: parameters and every local
// declared anywhere in the body are UNKNOWN, except function declarations
// directly in the body and a function expression's own name, which are
// initialized before the first statement runs and so start TRUTHY.
func InitialState(fn *syntax.Function) *State {
	bindings := make([]*syntax.Binding, 0, len(fn.Params)+len(fn.Locals))
	bindings = append(bindings, fn.Params...)
	bindings = append(bindings, fn.Locals...)
	s := NewState(bindings...)

	own := func(id *syntax.Ident) {
		if id != nil && id.Binding != nil && id.Binding.Owner == fn && id.Binding.Kind == syntax.KindFunction {
			s = s.Set(id.Binding, Truthy)
		}
	}
	if fn.Lit != nil {
		own(fn.Lit.Name)
	}
	for _, st := range fn.Body {
		if d, ok := st.(*syntax.FuncDecl); ok && d.Func != nil {
			own(d.Func.Name)
		}
	}
	return s
}

func (r *runner) fixpoint(initial *State) (int, bool) {
	g := r.graph
	worklist := list.New()
	queued := bitset.New(uint(len(g.Blocks)))
	push := func(b *cfg.Block) {
		if !queued.Test(uint(b.ID)) {
			queued.Set(uint(b.ID))
			worklist.PushBack(b)
		}
	}
	push(g.Entry)

	iterations := 0
	for worklist.Len() > 0 {
		if iterations >= r.maxIterations {
			r.downgrade(queued)
			return iterations, false
		}
		iterations++

		b := worklist.Remove(worklist.Front()).(*cfg.Block)
		queued.Clear(uint(b.ID))
		r.status[b.ID] = StatusInProgress

		in := r.entry[b.ID]
		if b == g.Entry {
			in = in.Merge(initial)
		}
		for _, e := range b.Preds {
			in = in.Merge(r.edges[e])
		}
		r.entry[b.ID] = in
		if in == nil {
			r.status[b.ID] = StatusStable
			continue
		}

		out := r.exec.block(b, in, nil)
		r.exit[b.ID] = out
		r.status[b.ID] = StatusStable

		for _, e := range b.Succs {
			s := r.edgeState(b, e, in, out)
			if old, seen := r.edges[e]; seen && old.Equal(s) {
				continue
			}
			r.edges[e] = s
			r.status[e.To.ID] = StatusPending
			push(e.To)
		}
	}
	return iterations, true
}

// edgeState is the state b contributes along e.
func (r *runner) edgeState(b *cfg.Block, e *cfg.Edge, in, out *State) *State {
	switch e.Type {
	case cfg.EdgeTypeException:
		return in.Merge(out)
	case cfg.EdgeTypeTrue:
		if b.Cond != nil {
			return Assume(out, b.Cond, true)
		}
	case cfg.EdgeTypeFalse:
		if b.Cond != nil {
			return Assume(out, b.Cond, false)
		}
	}
	return out
}

// downgrade gives up on the blocks still waiting and everything reachable
// from them: their states become UNKNOWN for every tracked binding.
func (r *runner) downgrade(unstable *bitset.BitSet) {
	var all *State
	for _, s := range r.entry {
		all = all.Merge(s)
	}
	unknown := all.Widen()

	stack := make([]*cfg.Block, 0, unstable.Count())
	seen := bitset.New(uint(len(r.graph.Blocks)))
	for i, ok := unstable.NextSet(0); ok; i, ok = unstable.NextSet(i + 1) {
		seen.Set(i)
		stack = append(stack, r.graph.Blocks[i])
	}
	for len(stack) > 0 {
		b := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		r.entry[b.ID] = unknown
		r.exit[b.ID] = unknown
		r.status[b.ID] = StatusStable
		for _, e := range b.Succs {
			if !seen.Test(uint(e.To.ID)) {
				seen.Set(uint(e.To.ID))
				stack = append(stack, e.To)
			}
		}
	}
}

// observe replays every reachable block once more from its stable entry
// state and records the state before each element.
func (r *runner) observe(res *Result) {
	reported := make(map[syntax.Node]bool)
	x := executor{unmodeled: func(n syntax.Node, kind string) {
		if reported[n] {
			return
		}
		reported[n] = true
		res.Diagnostics = append(res.Diagnostics, Diagnostic{
			Kind:    DiagUnmodeled,
			Pos:     n.Span().Start,
			Message: "unmodeled " + kind,
		})
	}}

	for _, b := range r.graph.Blocks {
		in := r.entry[b.ID]
		if in == nil {
			continue
		}
		x.block(b, in, func(el syntax.Node, before *State) {
			res.Observations = append(res.Observations, Observation{
				Pos:   el.Span().Start,
				Node:  el,
				Block: b,
				State: before,
			})
		})
	}
	sort.SliceStable(res.Observations, func(i, j int) bool {
		return res.Observations[i].Pos.Offset < res.Observations[j].Pos.Offset
	})
	sort.SliceStable(res.Diagnostics, func(i, j int) bool {
		return res.Diagnostics[i].Pos.Offset < res.Diagnostics[j].Pos.Offset
	})
}
