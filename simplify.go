package algebra

import (
	"errors"
	"fmt"
	"log/slog"
)

// ============================================================
// Fixpoint driver
// ============================================================

// Status is the outcome of one Step.
type Status uint8

const (
	// Rewritten means the tree changed and another step is needed.
	Rewritten Status = iota
	// Stable means no rule and no reordering applies anywhere.
	Stable
	// Exhausted means the step limit cut the walk short. The tree is
	// consistent but not known to be a fixpoint.
	Exhausted
)

func (s Status) String() string {
	switch s {
	case Rewritten:
		return "rewritten"
	case Stable:
		return "stable"
	case Exhausted:
		return "exhausted"
	}
	return fmt.Sprintf("status(%d)", uint8(s))
}

// Done reports whether a caller looping on Step should stop.
func (s Status) Done() bool { return s != Rewritten }

const (
	DefaultStepLimit = 4096
	DefaultMaxPasses = 256
)

var (
	ErrNoFixpoint = errors.New("algebra: no fixpoint within pass limit")
	ErrStepLimit  = errors.New("algebra: step limit reached")
)

// Observer is called after every pass of Run with the tree in its
// intermediate state.
type Observer func(pass int, t *Tree, st Status)

type Option func(*Simplifier)

// WithStepLimit bounds the number of frames one Step may process.
func WithStepLimit(n int) Option {
	return func(s *Simplifier) {
		if n > 0 {
			s.stepLimit = n
		}
	}
}

// WithMaxPasses bounds the number of Steps one Run may take.
func WithMaxPasses(n int) Option {
	return func(s *Simplifier) {
		if n > 0 {
			s.maxPasses = n
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Simplifier) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithObserver(fn Observer) Option {
	return func(s *Simplifier) { s.observer = fn }
}

// Simplifier drives a tree to its fixpoint. It holds no per-tree state and
// may be shared between goroutines working on different trees.
type Simplifier struct {
	stepLimit int
	maxPasses int
	logger    *slog.Logger
	observer  Observer
	sort      func(t *Tree, group Ref) bool
}

func NewSimplifier(opts ...Option) *Simplifier {
	s := &Simplifier{
		stepLimit: DefaultStepLimit,
		maxPasses: DefaultMaxPasses,
		logger:    slog.Default(),
		sort:      (*Tree).SortGroup,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("source", "simplifier")
	return s
}

// frame is one entry of the walk stack. chained marks a node whose parent
// has the same kind: its operands belong to the parent's chain and are
// ordered when the chain head is sorted.
type frame struct {
	ref        Ref
	descending bool
	sorted     bool
	chained    bool
}

// Step applies at most one rewrite to t. It walks the tree depth first with
// an explicit stack, tries the addition or multiplication rules at every sum
// and product, and puts chains into canonical order on the way back up.
func (s *Simplifier) Step(t *Tree) Status {
	st := s.step(t)
	stepsCompleted.WithLabelValues(st.String()).Inc()
	return st
}

func (s *Simplifier) step(t *Tree) Status {
	if t.Root().IsAbsent() {
		return Stable
	}
	stack := []frame{{ref: t.Root(), descending: true}}
	reordered := false

	for steps := 0; len(stack) > 0; steps++ {
		if steps >= s.stepLimit {
			stepLimitReached.Inc()
			s.logger.Warn("step limit reached before fixpoint", "tree", t.ID(), "limit", s.stepLimit)
			return Exhausted
		}
		top := len(stack) - 1
		f := stack[top]
		if f.ref.IsAbsent() {
			stack = stack[:top]
			continue
		}
		n := t.Node(f.ref)

		if f.descending && (n.Kind == KindAdd || n.Kind == KindMul) {
			if res, err := s.combine(t, n); err == nil {
				t.replace(f.ref, res)
				rewritesApplied.WithLabelValues(n.Kind.String()).Inc()
				s.logger.Debug("rewrote node", "tree", t.ID(), "op", n.Kind, "ref", f.ref)
				return Rewritten
			}
		}

		if !n.Kind.IsGroup() {
			stack = stack[:top]
			continue
		}

		if f.descending {
			stack[top].descending = false
			stack = append(stack,
				frame{ref: n.Right, descending: true, chained: t.Kind(n.Right) == n.Kind},
				frame{ref: n.Left, descending: true, chained: t.Kind(n.Left) == n.Kind},
			)
			continue
		}

		if !f.sorted && !f.chained && (n.Kind == KindAdd || n.Kind == KindMul) {
			if !s.sort(t, f.ref) {
				groupsReordered.Inc()
				reordered = true
				// Walk the children again in their new order.
				stack[top].descending = true
				continue
			}
			stack[top].sorted = true
		}
		stack = stack[:top]
	}

	if reordered {
		return Rewritten
	}
	return Stable
}

func (s *Simplifier) combine(t *Tree, n Node) (Ref, error) {
	if n.Kind == KindAdd {
		return t.Add(n.Left, n.Right)
	}
	return t.Multiply(n.Left, n.Right)
}

// Result summarises a Run.
type Result struct {
	Passes int
	Status Status
}

// Run calls Step until the tree is stable. It returns ErrStepLimit when a
// step was cut short and ErrNoFixpoint when the pass limit is reached.
func (s *Simplifier) Run(t *Tree) (Result, error) {
	var res Result
	for res.Passes < s.maxPasses {
		res.Passes++
		res.Status = s.Step(t)
		if s.observer != nil {
			s.observer(res.Passes, t, res.Status)
		}
		switch res.Status {
		case Stable:
			return res, nil
		case Exhausted:
			return res, fmt.Errorf("%w after %d passes", ErrStepLimit, res.Passes)
		}
	}
	s.logger.Warn("no fixpoint within pass limit", "tree", t.ID(), "passes", res.Passes)
	return res, fmt.Errorf("%w: %d passes", ErrNoFixpoint, res.Passes)
}

// StepTree runs one Step with default settings.
func StepTree(t *Tree) Status { return NewSimplifier().Step(t) }

// Simplify runs t to its fixpoint with default settings.
func Simplify(t *Tree) (Result, error) { return NewSimplifier().Run(t) }
