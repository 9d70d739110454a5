package session

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	algebra "github.com/njchilds90/goalgebra"
)

func mustParse(t *testing.T, src string) *algebra.Tree {
	t.Helper()
	tree, err := algebra.Parse(src)
	require.NoError(t, err)
	return tree
}

func TestStore_CreateAndGet(t *testing.T) {
	st, err := NewStore(4, nil, nil)
	require.NoError(t, err)

	tree := mustParse(t, "x+x")
	snap, err := st.Create(tree)
	require.NoError(t, err)
	assert.Equal(t, tree.ID(), snap.ID)
	assert.Equal(t, "x+x", snap.TeX)
	assert.JSONEq(t, `{"type":"add","terms":[{"type":"sym","name":"x"},{"type":"sym","name":"x"}]}`, string(snap.Expr))

	got, err := st.Get(snap.ID)
	require.NoError(t, err)
	assert.Equal(t, snap.TeX, got.TeX)
}

func TestStore_StepUntilStable(t *testing.T) {
	st, err := NewStore(4, nil, nil)
	require.NoError(t, err)
	snap, err := st.Create(mustParse(t, "x+x"))
	require.NoError(t, err)

	snap, err = st.Step(snap.ID)
	require.NoError(t, err)
	assert.Equal(t, "rewritten", snap.Status)
	assert.Equal(t, "2*x", snap.TeX)

	snap, err = st.Step(snap.ID)
	require.NoError(t, err)
	assert.Equal(t, "stable", snap.Status)
	assert.Equal(t, 2, snap.Steps)
}

func TestStore_Run(t *testing.T) {
	st, err := NewStore(4, nil, nil)
	require.NoError(t, err)
	snap, err := st.Create(mustParse(t, "(1+x)*(1+x)"))
	require.NoError(t, err)

	snap, err = st.Run(snap.ID)
	require.NoError(t, err)
	assert.Equal(t, "stable", snap.Status)
	assert.Equal(t, "x^{2}+2*x+1", snap.TeX)
}

func TestStore_Graft(t *testing.T) {
	st, err := NewStore(4, nil, nil)
	require.NoError(t, err)
	snap, err := st.Create(mustParse(t, "x"))
	require.NoError(t, err)

	sub := mustParse(t, "y")
	defer sub.Dispose()
	snap, err = st.Graft(snap.ID, sub)
	require.NoError(t, err)
	assert.Equal(t, "y+x", snap.TeX)
}

func TestStore_EvictionDisposesTree(t *testing.T) {
	st, err := NewStore(1, nil, nil)
	require.NoError(t, err)

	first := mustParse(t, "x")
	_, err = st.Create(first)
	require.NoError(t, err)
	_, err = st.Create(mustParse(t, "y"))
	require.NoError(t, err)

	assert.Equal(t, 1, st.Len())
	assert.True(t, first.Disposed())
	_, err = st.Get(first.ID())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_Delete(t *testing.T) {
	st, err := NewStore(2, nil, nil)
	require.NoError(t, err)
	tree := mustParse(t, "x")
	snap, err := st.Create(tree)
	require.NoError(t, err)

	assert.True(t, st.Delete(snap.ID))
	assert.True(t, tree.Disposed())
	assert.False(t, st.Delete(snap.ID))
}

func TestStore_UnknownID(t *testing.T) {
	st, err := NewStore(2, nil, nil)
	require.NoError(t, err)
	_, err = st.Step(uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNewStore_InvalidSize(t *testing.T) {
	_, err := NewStore(0, nil, nil)
	assert.Error(t, err)
}
