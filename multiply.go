package algebra

// ============================================================
// Multiplication rules
// ============================================================

// Multiply rewrites the product of a and b. Unlike Add there is no global
// like-term gate: each kind pair decides on its own. Pairs without a rule
// return ErrUnimplemented; pairs whose rule does not apply to these
// particular operands return ErrNotCombinable.
func (t *Tree) Multiply(a, b Ref) (Ref, error) {
	if a.IsAbsent() || b.IsAbsent() {
		return Absent, notCombinable("mul", t.Kind(a), t.Kind(b))
	}
	na, nb := t.Node(a), t.Node(b)
	if na.Kind > nb.Kind {
		// Every implemented rule is symmetric.
		a, b = b, a
		na, nb = nb, na
	}

	switch na.Kind {
	case KindNumber:
		switch nb.Kind {
		case KindNumber:
			// Squares the left operand.
			return t.N(na.Value * na.Value), nil
		case KindSymbol:
			if na.Value != 1 {
				return Absent, notCombinable("mul", na.Kind, nb.Kind)
			}
			return t.Clone(b), nil
		case KindAdd:
			return t.distribute(nb, a), nil
		case KindMul, KindPow:
			if na.Value != 1 {
				return Absent, unimplemented("mul", na.Kind, nb.Kind)
			}
			return t.Clone(b), nil
		}

	case KindSymbol:
		switch nb.Kind {
		case KindSymbol:
			if na.Name != nb.Name {
				return Absent, notCombinable("mul", na.Kind, nb.Kind)
			}
			return t.Group(KindPow, a, t.N(2)), nil
		case KindAdd:
			return t.distribute(nb, a), nil
		case KindPow:
			return t.raiseExponent(nb, a)
		}

	case KindAdd:
		if nb.Kind == KindAdd {
			return t.foil(na, nb), nil
		}

	case KindMul:
		if nb.Kind == KindPow {
			return t.absorbIntoProduct(na, b)
		}
	}
	return Absent, unimplemented("mul", na.Kind, nb.Kind)
}

// distribute multiplies each operand of sum by a copy of p.
func (t *Tree) distribute(sum Node, p Ref) Ref {
	return t.Group(KindAdd,
		t.Group(KindMul, sum.Left, t.Clone(p)),
		t.Group(KindMul, sum.Right, t.Clone(p)))
}

// foil expands (a+b)(c+d) into (ac+ad)+(bc+bd) over fresh copies.
func (t *Tree) foil(x, y Node) Ref {
	term := func(l, r Ref) Ref { return t.Group(KindMul, t.Clone(l), t.Clone(r)) }
	return t.Group(KindAdd,
		t.Group(KindAdd, term(x.Left, y.Left), term(x.Left, y.Right)),
		t.Group(KindAdd, term(x.Right, y.Left), term(x.Right, y.Right)))
}

// raiseExponent turns base^e * s into base^(e+1) when s matches the base.
func (t *Tree) raiseExponent(pow Node, s Ref) (Ref, error) {
	if !t.CanCombineForAddition(pow.Left, s, false) {
		return Absent, notCombinable("mul", KindPow, t.Kind(s))
	}
	exp := t.Group(KindAdd, t.Clone(pow.Right), t.N(1))
	return t.Group(KindPow, pow.Left, exp), nil
}

// absorbIntoProduct moves pow next to the tail of mul so a later pass can
// merge it with the factor matching its base.
func (t *Tree) absorbIntoProduct(mul Node, pow Ref) (Ref, error) {
	if !t.CanCombineForAddition(mul.Left, t.Left(pow), false) {
		return Absent, notCombinable("mul", KindMul, KindPow)
	}
	return t.Group(KindMul, mul.Left, t.Group(KindMul, mul.Right, t.Clone(pow))), nil
}
