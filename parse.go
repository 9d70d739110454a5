package algebra

import (
	"fmt"
	"strconv"
	"unicode"
	"unicode/utf8"
)

// ============================================================
// Parsing
// ============================================================

// ParseError reports malformed input together with the byte offset at
// which the problem was found.
type ParseError struct {
	Offset int
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at offset %d: %s", e.Offset, e.Msg)
}

// Parse reads plain infix or the TeX subset produced by TeX and returns a
// new tree holding it. Symbols are single letters; juxtaposition
// multiplies, so 2x and xy are products.
func Parse(src string) (*Tree, error) {
	t := NewTree()
	root, err := t.Parse(src)
	if err != nil {
		t.Dispose()
		return nil, err
	}
	t.SetRoot(root)
	return t, nil
}

// Parse reads src into t and returns the root of the new subtree without
// changing t's root.
// On error nothing allocated by the call is left in t.
func (t *Tree) Parse(src string) (Ref, error) {
	return t.build(func() (Ref, error) { return t.parse(src) })
}

func (t *Tree) parse(src string) (Ref, error) {
	p := &parser{src: src, t: t}
	p.skipSpace()
	if p.eof() {
		return Absent, p.errorf("empty expression")
	}
	root, err := p.sum()
	if err != nil {
		return Absent, err
	}
	if !p.eof() {
		return Absent, p.errorf("unexpected %q", p.peek())
	}
	return root, nil
}

type parser struct {
	src string
	pos int
	t   *Tree
}

func (p *parser) errorf(format string, args ...interface{}) error {
	return &ParseError{Offset: p.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) eof() bool { return p.pos >= len(p.src) }

func (p *parser) peek() rune {
	if p.eof() {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(p.src[p.pos:])
	return r
}

func (p *parser) next() rune {
	r, size := utf8.DecodeRuneInString(p.src[p.pos:])
	p.pos += size
	return r
}

func (p *parser) skipSpace() {
	for !p.eof() {
		if r := p.peek(); unicode.IsSpace(r) {
			p.next()
			continue
		}
		// \left and \right only size delimiters.
		if cmd := p.command(); cmd == "left" || cmd == "right" {
			p.pos += 1 + len(cmd)
			continue
		}
		return
	}
}

// command returns the name of the TeX command at the cursor without
// consuming it, or "" when the cursor is not on a backslash.
func (p *parser) command() string {
	if p.peek() != '\\' {
		return ""
	}
	end := p.pos + 1
	for end < len(p.src) {
		r, size := utf8.DecodeRuneInString(p.src[end:])
		if !unicode.IsLetter(r) {
			break
		}
		end += size
	}
	return p.src[p.pos+1 : end]
}

func (p *parser) expect(r rune) error {
	p.skipSpace()
	if p.peek() != r {
		if p.eof() {
			return p.errorf("expected %q, got end of input", r)
		}
		return p.errorf("expected %q, got %q", r, p.peek())
	}
	p.next()
	return nil
}

func (p *parser) sum() (Ref, error) {
	first, err := p.product()
	if err != nil {
		return Absent, err
	}
	terms := []Ref{first}
	for {
		p.skipSpace()
		switch p.peek() {
		case '+':
			p.next()
			term, err := p.product()
			if err != nil {
				return Absent, err
			}
			terms = append(terms, term)
		case '-':
			p.next()
			term, err := p.product()
			if err != nil {
				return Absent, err
			}
			terms = append(terms, p.negate(term))
		default:
			return p.t.AddOf(terms...), nil
		}
	}
}

func (p *parser) negate(ref Ref) Ref {
	if p.t.Kind(ref) == KindNumber {
		p.t.SetValue(ref, -p.t.Node(ref).Value)
		return ref
	}
	return p.t.Group(KindMul, p.t.N(-1), ref)
}

func (p *parser) product() (Ref, error) {
	first, err := p.power()
	if err != nil {
		return Absent, err
	}
	factors := []Ref{first}
	for {
		p.skipSpace()
		switch cmd := p.command(); {
		case p.peek() == '*', cmd == "cdot", cmd == "times":
			if cmd != "" {
				p.pos += 1 + len(cmd)
			} else {
				p.next()
			}
		case p.peek() == '/':
			p.next()
			den, err := p.power()
			if err != nil {
				return Absent, err
			}
			factors = []Ref{p.t.Group(KindDiv, p.t.MulOf(factors...), den)}
			continue
		case p.startsAtom():
		default:
			return p.t.MulOf(factors...), nil
		}
		f, err := p.power()
		if err != nil {
			return Absent, err
		}
		factors = append(factors, f)
	}
}

// startsAtom reports whether the cursor is on something juxtaposition can
// multiply.
func (p *parser) startsAtom() bool {
	r := p.peek()
	switch {
	case p.eof():
		return false
	case unicode.IsDigit(r), unicode.IsLetter(r), r == '(', r == '[', r == '{':
		return true
	case r == '\\':
		cmd := p.command()
		return cmd == "frac" || cmd == "sqrt"
	}
	return false
}

func (p *parser) power() (Ref, error) {
	base, err := p.atom()
	if err != nil {
		return Absent, err
	}
	p.skipSpace()
	if p.peek() != '^' {
		return base, nil
	}
	p.next()
	exp, err := p.power()
	if err != nil {
		return Absent, err
	}
	return p.t.Group(KindPow, base, exp), nil
}

var closing = map[rune]rune{'(': ')', '[': ']', '{': '}'}

func (p *parser) atom() (Ref, error) {
	p.skipSpace()
	if p.eof() {
		return Absent, p.errorf("unexpected end of input")
	}
	start := p.pos
	r := p.peek()
	switch {
	case unicode.IsDigit(r):
		return p.number(start, false)

	case r == '-':
		p.next()
		p.skipSpace()
		if unicode.IsDigit(p.peek()) {
			return p.number(start, true)
		}
		operand, err := p.atom()
		if err != nil {
			return Absent, err
		}
		return p.negate(operand), nil

	case unicode.IsLetter(r):
		p.next()
		return p.t.S(r), nil

	case closing[r] != 0:
		p.next()
		inner, err := p.sum()
		if err != nil {
			return Absent, err
		}
		if err := p.expect(closing[r]); err != nil {
			return Absent, err
		}
		return inner, nil

	case r == '\\':
		return p.texCommand()
	}
	return Absent, p.errorf("unexpected %q", r)
}

func (p *parser) number(start int, negative bool) (Ref, error) {
	digits := p.pos
	for !p.eof() && unicode.IsDigit(p.peek()) {
		p.next()
	}
	v, err := strconv.Atoi(p.src[digits:p.pos])
	if err != nil {
		return Absent, &ParseError{Offset: start, Msg: fmt.Sprintf("invalid number %q", p.src[start:p.pos])}
	}
	if negative {
		v = -v
	}
	return p.t.N(v), nil
}

func (p *parser) braced() (Ref, error) {
	if err := p.expect('{'); err != nil {
		return Absent, err
	}
	inner, err := p.sum()
	if err != nil {
		return Absent, err
	}
	return inner, p.expect('}')
}

func (p *parser) texCommand() (Ref, error) {
	cmd := p.command()
	switch cmd {
	case "frac":
		p.pos += 1 + len(cmd)
		num, err := p.braced()
		if err != nil {
			return Absent, err
		}
		den, err := p.braced()
		if err != nil {
			return Absent, err
		}
		return p.t.Group(KindDiv, num, den), nil

	case "sqrt":
		p.pos += 1 + len(cmd)
		index := Absent
		p.skipSpace()
		if p.peek() == '[' {
			p.next()
			var err error
			if index, err = p.sum(); err != nil {
				return Absent, err
			}
			if err := p.expect(']'); err != nil {
				return Absent, err
			}
		}
		radicand, err := p.braced()
		if err != nil {
			return Absent, err
		}
		return p.t.Group(KindRoot, radicand, index), nil
	}
	if cmd == "" {
		return Absent, p.errorf("dangling backslash")
	}
	return Absent, p.errorf("unknown command \\%s", cmd)
}
