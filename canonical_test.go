package algebra_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================
// Canonical ordering tests
// ============================================================

func TestSortGroup_AlreadyCanonical(t *testing.T) {
	for _, src := range []string{"x+1", "2*x*y", "x^{2}+2*x+1", "x"} {
		tr := mustParse(t, src)
		before := tr.Len()
		assert.True(t, tr.SortGroup(tr.Root()), src)
		assert.Equal(t, src, tr.String())
		assert.Equal(t, before, tr.Len(), "sorting must not allocate")
	}
}

func TestSortGroup_Reorders(t *testing.T) {
	tests := []struct{ src, want string }{
		{"1+x", "x+1"},
		{"x*2", "2*x"},
		{"y*x*2", "2*x*y"},
		{"(x+1)*x^{2}*y*3", "3*y*(x+1)*x^{2}"},
		// Like terms gather at the front.
		{"1+x+2", "1+2+x"},
		{"y+x+2x", "2*x+x+y"},
	}
	for _, tc := range tests {
		tr := mustParse(t, tc.src)
		before := tr.Len()
		require.False(t, tr.SortGroup(tr.Root()), tc.src)
		assert.Equal(t, tc.want, tr.String(), tc.src)
		assert.Equal(t, before, tr.Len())
		assert.True(t, tr.SortGroup(tr.Root()), "%s should be canonical after one sort", tc.src)
	}
}

func TestSortGroup_NonGroup(t *testing.T) {
	tr := mustParse(t, "x^{2}")
	assert.True(t, tr.SortGroup(tr.Root()))
}

func TestOperands_FlattensChain(t *testing.T) {
	tr := mustParse(t, "(a+b)+c+d*e")
	ops := tr.Operands(tr.Root())
	require.Len(t, ops, 4)
	got := make([]string, len(ops))
	for i, op := range ops {
		got[i] = tr.TeX(op)
	}
	assert.Equal(t, []string{"a", "b", "c", "d*e"}, got)
}
