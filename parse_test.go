package algebra_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	algebra "github.com/njchilds90/goalgebra"
)

// ============================================================
// Parser tests
// ============================================================

func TestParse_Forms(t *testing.T) {
	tests := []struct{ src, want string }{
		{"2x", "2*x"},
		{"2 * x", "2*x"},
		{`2\cdot x`, "2*x"},
		{`x \times y`, "x*y"},
		{"xy", "x*y"},
		{"-3", "-3"},
		{"-x", "-1*x"},
		{"x-1", "x+-1"},
		{"x-y", "x+-1*y"},
		{"x^y^z", "x^{y^{z}}"},
		{`\left(x+1\right)^2`, "(x+1)^{2}"},
		{`\sqrt{x}`, `\sqrt{x}`},
		{"2(x+1)", "2*(x+1)"},
		{"[x+1]", "x+1"},
	}
	for _, tc := range tests {
		tr, err := algebra.Parse(tc.src)
		if err != nil {
			t.Errorf("Parse(%q): %v", tc.src, err)
			continue
		}
		if got := tr.String(); got != tc.want {
			t.Errorf("Parse(%q): want %s, got %s", tc.src, tc.want, got)
		}
	}
}

func TestParse_ChainsLeanRight(t *testing.T) {
	tr := mustParse(t, "a+b+c")
	root := tr.Node(tr.Root())
	assert.Equal(t, algebra.KindSymbol, tr.Kind(root.Left))
	assert.Equal(t, algebra.KindAdd, tr.Kind(root.Right))
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		src    string
		offset int
	}{
		{"", 0},
		{"   ", 3},
		{"x+", 2},
		{"(x", 2},
		{"x)", 1},
		{`\foo`, 0},
		{"2 $", 2},
		{`\frac{1}`, 8},
		{"x^", 2},
		{`\`, 0},
	}
	for _, tc := range tests {
		_, err := algebra.Parse(tc.src)
		require.Error(t, err, "Parse(%q)", tc.src)
		var perr *algebra.ParseError
		require.True(t, errors.As(err, &perr), "Parse(%q): want *ParseError, got %T", tc.src, err)
		assert.Equal(t, tc.offset, perr.Offset, "Parse(%q): %v", tc.src, err)
	}
}

func TestParse_IntoExistingTree(t *testing.T) {
	tr := mustParse(t, "x")
	root := tr.Root()
	sub, err := tr.Parse("y+1")
	require.NoError(t, err)
	assert.Equal(t, root, tr.Root(), "method form must not move the root")
	assert.Equal(t, "y+1", tr.TeX(sub))
}

func TestParse_FailureFreesNodes(t *testing.T) {
	tr := algebra.NewTree()
	x := tr.S('x')
	tr.SetRoot(x)

	for _, src := range []string{"x+", "(y*2", `\frac{1}`, "2x)"} {
		_, err := tr.Parse(src)
		require.Error(t, err, "Parse(%q)", src)
		assert.Equal(t, 1, tr.Len(), "Parse(%q) left nodes behind", src)
	}
	assert.True(t, tr.Valid(x))

	sub, err := tr.Parse("y+1")
	require.NoError(t, err)
	assert.Equal(t, 4, tr.Len())
	assert.Equal(t, "y+1", tr.TeX(sub))
}
