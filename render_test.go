package algebra_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	algebra "github.com/njchilds90/goalgebra"
)

// ============================================================
// Rendering tests
// ============================================================

func TestRender_TeXAndText(t *testing.T) {
	tests := []struct{ src, tex, text string }{
		{"x^2+2x+1", "x^{2}+2*x+1", "x^2+2*x+1"},
		{"(x+1)^2", "(x+1)^{2}", "(x+1)^2"},
		{"x^(y+1)", "x^{y+1}", "x^(y+1)"},
		{"2*(x+1)", "2*(x+1)", "2*(x+1)"},
		{"(x*y)^2", "[x*y]^{2}", "(x*y)^2"},
		{"(a*b)*c", "[a*b]*c", "(a*b)*c"},
		{"(x^2)^3", "{x^{2}}^{3}", "(x^2)^3"},
		{"(a+b)+c", "(a+b)+c", "(a+b)+c"},
		{`\frac{1}{x}`, `\frac{1}{x}`, "1/x"},
		{"x/y*z", `\frac{x}{y}*z`, "(x/y)*z"},
		{`\frac{x+1}{2}`, `\frac{x+1}{2}`, "(x+1)/2"},
		{`\sqrt[3]{x}`, `\sqrt[3]{x}`, `\sqrt[3]{x}`},
		{"-3+x", "-3+x", "-3+x"},
	}
	for _, tc := range tests {
		tr := mustParse(t, tc.src)
		assert.Equal(t, tc.tex, tr.TeX(tr.Root()), "TeX(%s)", tc.src)
		assert.Equal(t, tc.text, tr.Text(tr.Root()), "Text(%s)", tc.src)
	}
}

// Both renderings parse back into the tree they came from.
func TestRender_RoundTrip(t *testing.T) {
	for _, src := range []string{
		"x^{2}+2*x+1",
		"(1*1+1*x)+x*1+x*x",
		"[x*y]^{2}",
		"{x^{2}}^{3}",
		`\frac{x+1}{x*y}`,
		`\sqrt[2]{x+1}*3`,
		"x^{y^{z}}",
		"2*(x+1)*(x+2)",
		`\frac{1}{x}*\frac{1}{y}`,
	} {
		orig := mustParse(t, src)
		for _, out := range []string{orig.TeX(orig.Root()), orig.Text(orig.Root())} {
			back, err := algebra.Parse(out)
			require.NoError(t, err, "reparse %q (from %q)", out, src)
			assert.True(t, orig.Equal(orig.Root(), back, back.Root()), "%q -> %q", src, out)
		}
	}
}

func TestRender_AbsentChild(t *testing.T) {
	tr := algebra.NewTree()
	tr.SetRoot(tr.Group(algebra.KindPow, tr.S('x'), algebra.Absent))
	assert.Equal(t, "x^{?}", tr.String())
}
