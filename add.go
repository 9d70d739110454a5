package algebra

import (
	"errors"
	"fmt"
)

var (
	// ErrNotCombinable reports that no rule merges the two operands. It is an
	// expected outcome: the caller leaves the subtree as it is.
	ErrNotCombinable = errors.New("algebra: operands cannot be combined")
	// ErrUnimplemented marks operand pairs for which no rule exists yet.
	ErrUnimplemented = fmt.Errorf("%w: rule not implemented", ErrNotCombinable)
)

func unimplemented(op string, a, b Kind) error {
	return fmt.Errorf("%w: %s %s, %s", ErrUnimplemented, op, a, b)
}

func notCombinable(op string, a, b Kind) error {
	return fmt.Errorf("%w: %s %s, %s", ErrNotCombinable, op, a, b)
}

// ============================================================
// Addition rules
// ============================================================

// Add merges the like terms a and b into a new subtree and returns its root.
// Nothing is allocated unless a rule fires. The result may reference
// subtrees of a and b; the caller decides which of the old nodes to free.
func (t *Tree) Add(a, b Ref) (Ref, error) {
	if !t.CanCombineForAddition(a, b, false) {
		return Absent, notCombinable("add", t.Kind(a), t.Kind(b))
	}
	na, nb := t.Node(a), t.Node(b)

	switch na.Kind {
	case KindNumber:
		switch nb.Kind {
		case KindNumber:
			return t.N(na.Value + nb.Value), nil
		case KindMul:
			return t.incrementCoefficient(nb)
		}

	case KindSymbol:
		switch nb.Kind {
		case KindSymbol:
			return t.Group(KindMul, t.N(2), a), nil
		case KindMul:
			return t.incrementCoefficient(nb)
		}

	case KindMul:
		switch nb.Kind {
		case KindNumber, KindSymbol:
			return t.incrementCoefficient(na)
		case KindMul:
			if t.Kind(na.Left) != KindNumber || t.Kind(nb.Left) != KindNumber {
				return Absent, unimplemented("add", na.Kind, nb.Kind)
			}
			sum := t.Node(na.Left).Value + t.Node(nb.Left).Value
			return t.Group(KindMul, t.N(sum), na.Right), nil
		case KindAdd:
			return t.addIntoSum(nb, b, a)
		}

	case KindAdd:
		switch nb.Kind {
		case KindMul:
			return t.addIntoSum(na, a, b)
		case KindAdd:
			return t.addSums(na, nb)
		}

	case KindPow:
		if nb.Kind == KindPow {
			return t.Group(KindMul, t.N(2), t.Clone(a)), nil
		}
	}
	return Absent, unimplemented("add", na.Kind, nb.Kind)
}

// incrementCoefficient bumps the leading numeric factor of mul by one.
func (t *Tree) incrementCoefficient(mul Node) (Ref, error) {
	if t.Kind(mul.Left) != KindNumber {
		return Absent, unimplemented("add", KindMul, t.Kind(mul.Right))
	}
	coeff := t.Node(mul.Left).Value
	return t.Group(KindMul, t.N(coeff+1), mul.Right), nil
}

// addIntoSum merges mul into one operand of the sum, keeping the sibling.
func (t *Tree) addIntoSum(sum Node, sumRef, mul Ref) (Ref, error) {
	if res, err := t.Add(sum.Left, mul); err == nil {
		return t.Group(KindAdd, res, sum.Right), nil
	}
	res, err := t.Add(sum.Right, mul)
	if err != nil {
		return Absent, fmt.Errorf("add %s into %s: %w", KindMul, t.Kind(sumRef), err)
	}
	return t.Group(KindAdd, res, sum.Left), nil
}

// addSums tries the four cross pairs of two sums in order. The first pair
// that merges becomes the left operand, the two leftover operands are
// summed on the right.
func (t *Tree) addSums(a, b Node) (Ref, error) {
	pairs := [...]struct{ x, y, restA, restB Ref }{
		{a.Left, b.Left, a.Right, b.Right},
		{a.Left, b.Right, a.Right, b.Left},
		{a.Right, b.Left, a.Left, b.Right},
		{a.Right, b.Right, a.Left, b.Left},
	}
	var err error
	for _, p := range pairs {
		var res Ref
		res, err = t.Add(p.x, p.y)
		if err != nil {
			continue
		}
		return t.Group(KindAdd, res, t.Group(KindAdd, p.restA, p.restB)), nil
	}
	return Absent, err
}
