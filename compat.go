package algebra

// ============================================================
// Like-term predicate
// ============================================================

// CanCombineForAddition reports whether the subtrees a and b are like terms
// that the addition rules may merge. With strict set, numeric leaves must
// also carry equal values; Pow exponents and bases are always compared
// strictly. The relation is symmetric.
func (t *Tree) CanCombineForAddition(a, b Ref, strict bool) bool {
	if a.IsAbsent() || b.IsAbsent() {
		return false
	}
	na, nb := t.Node(a), t.Node(b)
	// Rules are written for one ordering of each pair.
	if na.Kind > nb.Kind {
		a, b = b, a
		na, nb = nb, na
	}

	switch {
	case na.Kind == KindNumber && nb.Kind == KindNumber:
		return !strict || na.Value == nb.Value

	case na.Kind == KindSymbol && nb.Kind == KindSymbol:
		return na.Name == nb.Name

	case na.Kind == KindSymbol && nb.Kind == KindMul:
		return t.Kind(nb.Left) == KindNumber && t.CanCombineForAddition(a, nb.Right, strict)

	case na.Kind == KindAdd && nb.Kind == KindAdd:
		return t.CanCombineForAddition(na.Left, nb.Left, strict) ||
			t.CanCombineForAddition(na.Left, nb.Right, strict) ||
			t.CanCombineForAddition(na.Right, nb.Left, strict) ||
			t.CanCombineForAddition(na.Right, nb.Right, strict)

	case na.Kind == KindAdd && nb.Kind == KindMul:
		return t.CanCombineForAddition(b, na.Left, strict) &&
			t.CanCombineForAddition(b, na.Right, strict)

	case na.Kind == KindMul && nb.Kind == KindMul:
		return t.CanCombineForAddition(na.Left, nb.Left, strict) &&
			t.CanCombineForAddition(na.Right, nb.Right, strict)

	case na.Kind == KindPow && nb.Kind == KindPow:
		return t.CanCombineForAddition(na.Left, nb.Left, true) &&
			t.CanCombineForAddition(na.Right, nb.Right, true)
	}
	return false
}
