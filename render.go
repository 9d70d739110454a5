package algebra

import (
	"strconv"
	"strings"
)

// ============================================================
// Rendering
// ============================================================

type style uint8

const (
	styleTeX style = iota
	stylePlain
)

// TeX renders the subtree at ref in TeX notation, e.g. x^{2}+2*x+1.
func (t *Tree) TeX(ref Ref) string {
	var sb strings.Builder
	t.render(&sb, ref, KindNone, Left, styleTeX)
	return sb.String()
}

// Text renders the subtree at ref as plain infix, e.g. x^2+2*x+1.
func (t *Tree) Text(ref Ref) string {
	var sb strings.Builder
	t.render(&sb, ref, KindNone, Left, stylePlain)
	return sb.String()
}

// String renders the whole tree in TeX notation.
func (t *Tree) String() string {
	if t.disposed {
		return "<disposed>"
	}
	return t.TeX(t.root)
}

func (t *Tree) render(sb *strings.Builder, ref Ref, parent Kind, side Side, st style) {
	if ref.IsAbsent() {
		sb.WriteByte('?')
		return
	}
	n := t.Node(ref)
	switch n.Kind {
	case KindNumber:
		sb.WriteString(strconv.Itoa(n.Value))

	case KindSymbol:
		sb.WriteRune(n.Name)

	case KindAdd, KindMul:
		op := byte('+')
		if n.Kind == KindMul {
			op = '*'
		}
		pre, post := wrapping(n.Kind, parent, side, st)
		sb.WriteString(pre)
		t.render(sb, n.Left, n.Kind, Left, st)
		sb.WriteByte(op)
		t.render(sb, n.Right, n.Kind, Right, st)
		sb.WriteString(post)

	case KindPow:
		pre, post := wrapping(n.Kind, parent, side, st)
		sb.WriteString(pre)
		t.render(sb, n.Left, n.Kind, Left, st)
		if st == styleTeX {
			sb.WriteString("^{")
			t.render(sb, n.Right, n.Kind, Right, st)
			sb.WriteByte('}')
		} else {
			sb.WriteByte('^')
			t.renderPlainOperand(sb, n.Right, n.Kind, Right)
		}
		sb.WriteString(post)

	case KindDiv:
		if st == styleTeX {
			sb.WriteString(`\frac{`)
			t.render(sb, n.Left, n.Kind, Left, st)
			sb.WriteString("}{")
			t.render(sb, n.Right, n.Kind, Right, st)
			sb.WriteByte('}')
			return
		}
		pre, post := wrapping(n.Kind, parent, side, st)
		sb.WriteString(pre)
		t.renderPlainOperand(sb, n.Left, n.Kind, Left)
		sb.WriteByte('/')
		t.renderPlainOperand(sb, n.Right, n.Kind, Right)
		sb.WriteString(post)

	case KindRoot:
		sb.WriteString(`\sqrt`)
		if !n.Right.IsAbsent() {
			sb.WriteByte('[')
			t.render(sb, n.Right, n.Kind, Right, st)
			sb.WriteByte(']')
		}
		sb.WriteByte('{')
		t.render(sb, n.Left, n.Kind, Left, st)
		sb.WriteByte('}')
	}
}

// renderPlainOperand parenthesises everything except leaves.
func (t *Tree) renderPlainOperand(sb *strings.Builder, ref Ref, parent Kind, side Side) {
	if ref.IsAbsent() || t.Kind(ref).IsLeaf() {
		t.render(sb, ref, parent, side, stylePlain)
		return
	}
	sb.WriteByte('(')
	t.render(sb, ref, KindNone, Left, stylePlain)
	sb.WriteByte(')')
}

// wrapping decides the delimiters around a group so that the output parses
// back into the same tree. Right-leaning chains print flat.
func wrapping(k, parent Kind, side Side, st style) (string, string) {
	switch k {
	case KindAdd:
		switch {
		case parent == KindMul,
			parent == KindPow && side == Left,
			parent == KindAdd && side == Left:
			return "(", ")"
		}
	case KindMul:
		if (parent == KindPow && side == Left) || (parent == KindMul && side == Left) {
			if st == styleTeX {
				return "[", "]"
			}
			return "(", ")"
		}
	case KindPow:
		if parent == KindPow && side == Left {
			if st == styleTeX {
				return "{", "}"
			}
			return "(", ")"
		}
	case KindDiv:
		if parent == KindMul || parent == KindPow || (parent == KindDiv) {
			return "(", ")"
		}
	}
	return "", ""
}
