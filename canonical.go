package algebra

import "slices"

// ============================================================
// Canonical ordering
// ============================================================

// Kind precedence inside a product: coefficients first, then symbols, then
// compound factors. Sums use the reverse order so constants trail.
var mulPrecedence = [...]int{
	KindNumber: 0,
	KindSymbol: 1,
	KindMul:    2,
	KindAdd:    3,
	KindPow:    4,
	KindDiv:    5,
	KindRoot:   6,
}

type operand struct {
	ref    Ref
	weight int
	kind   Kind
	name   rune
}

// slotPos addresses one child slot of a chain node.
type slotPos struct {
	parent Ref
	side   Side
}

// Operands flattens the maximal chain of nodes sharing group's kind and
// returns the opaque operands in left-to-right order.
func (t *Tree) Operands(group Ref) []Ref {
	ops, _ := t.flatten(group)
	refs := make([]Ref, len(ops))
	for i, op := range ops {
		refs[i] = op.ref
	}
	return refs
}

func (t *Tree) flatten(group Ref) ([]operand, []slotPos) {
	kind := t.Kind(group)
	var (
		ops   []operand
		slots []slotPos
	)
	stack := []slotPos{{group, Right}, {group, Left}}
	for len(stack) > 0 {
		pos := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := t.Node(pos.parent)
		child := n.Left
		if pos.side == Right {
			child = n.Right
		}
		if !child.IsAbsent() && t.Kind(child) == kind {
			stack = append(stack, slotPos{child, Right}, slotPos{child, Left})
			continue
		}
		op := operand{ref: child}
		if !child.IsAbsent() {
			cn := t.Node(child)
			op.kind, op.name = cn.Kind, cn.Name
		}
		ops = append(ops, op)
		slots = append(slots, pos)
	}
	return ops, slots
}

// SortGroup puts the operands of the Add or Mul chain headed by group into
// canonical order. Operands that are like terms of many others come first,
// so that the rewrite rules find them next to each other. It returns true
// when the order was already canonical and the tree is left untouched;
// otherwise the operands are moved into their new slots and false is
// returned.
func (t *Tree) SortGroup(group Ref) bool {
	kind := t.Kind(group)
	if kind != KindAdd && kind != KindMul {
		return true
	}
	ops, slots := t.flatten(group)
	for i := range ops {
		ops[i].weight = 1
		for j := range ops {
			if i != j && t.CanCombineForAddition(ops[i].ref, ops[j].ref, false) {
				ops[i].weight++
			}
		}
	}

	sorted := slices.Clone(ops)
	slices.SortStableFunc(sorted, func(a, b operand) int {
		if a.weight != b.weight {
			return b.weight - a.weight
		}
		pa, pb := precedence(kind, a.kind), precedence(kind, b.kind)
		if pa != pb {
			return pa - pb
		}
		if a.kind == KindSymbol {
			return int(a.name) - int(b.name)
		}
		return 0
	})

	stable := true
	for i := range ops {
		if ops[i].ref != sorted[i].ref {
			stable = false
			break
		}
	}
	if stable {
		return true
	}
	for i, pos := range slots {
		t.Attach(pos.parent, pos.side, sorted[i].ref)
	}
	return false
}

func precedence(group, k Kind) int {
	if k == KindNone || int(k) >= len(mulPrecedence) {
		return len(mulPrecedence)
	}
	p := mulPrecedence[k]
	if group == KindAdd {
		return len(mulPrecedence) - 1 - p
	}
	return p
}
