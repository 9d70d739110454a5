package algebra_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	algebra "github.com/njchilds90/goalgebra"
)

func sym(name string) map[string]interface{} {
	return map[string]interface{}{"type": "sym", "name": name}
}

func num(v string) map[string]interface{} {
	return map[string]interface{}{"type": "num", "value": v}
}

// ============================================================
// JSON tests
// ============================================================

func TestToJSON_FlattensChains(t *testing.T) {
	tr := mustParse(t, "1+x+y^{2}")
	got, err := tr.ToJSON(tr.Root())
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"add","terms":[
		{"type":"num","value":"1"},
		{"type":"sym","name":"x"},
		{"type":"pow","base":{"type":"sym","name":"y"},"exp":{"type":"num","value":"2"}}
	]}`, got)
}

func TestToJSON_RootIndexOptional(t *testing.T) {
	tr := mustParse(t, `\sqrt{x}*\sqrt[3]{\frac{1}{y}}`)
	got, err := tr.ToJSON(tr.Root())
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"mul","factors":[
		{"type":"root","radicand":{"type":"sym","name":"x"}},
		{"type":"root","index":{"type":"num","value":"3"},
		 "radicand":{"type":"div","num":{"type":"num","value":"1"},"den":{"type":"sym","name":"y"}}}
	]}`, got)
}

func TestFromJSON_BuildsChains(t *testing.T) {
	tr, err := algebra.FromJSON(map[string]interface{}{
		"type":  "add",
		"terms": []interface{}{num("1"), sym("x"), sym("y")},
	})
	require.NoError(t, err)
	want := mustParse(t, "1+x+y")
	assert.True(t, tr.Equal(tr.Root(), want, want.Root()))
}

func TestFromJSON_SingleTermList(t *testing.T) {
	tr, err := algebra.FromJSON(map[string]interface{}{
		"type":    "mul",
		"factors": []interface{}{sym("x")},
	})
	require.NoError(t, err)
	assert.Equal(t, "x", tr.String())
}

func TestFromJSON_NumericValue(t *testing.T) {
	tr, err := algebra.FromJSON(map[string]interface{}{"type": "num", "value": float64(-4)})
	require.NoError(t, err)
	assert.Equal(t, "-4", tr.String())

	_, err = algebra.FromJSON(map[string]interface{}{"type": "num", "value": 2.5})
	assert.Error(t, err)
}

func TestFromJSON_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   map[string]interface{}
	}{
		{"nil", nil},
		{"missing type", map[string]interface{}{"name": "x"}},
		{"unknown type", map[string]interface{}{"type": "log"}},
		{"long symbol", sym("xy")},
		{"bad number", num("1.5")},
		{"empty terms", map[string]interface{}{"type": "add", "terms": []interface{}{}}},
		{"terms not array", map[string]interface{}{"type": "add", "terms": "x"}},
		{"bad factor", map[string]interface{}{"type": "mul", "factors": []interface{}{sym("x"), "y"}}},
		{"missing exp", map[string]interface{}{"type": "pow", "base": sym("x")}},
		{"nested error", map[string]interface{}{"type": "div", "num": num("1"), "den": sym("")}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tr, err := algebra.FromJSON(tc.in)
			assert.Error(t, err)
			assert.Nil(t, tr)
		})
	}
}

func TestTree_MarshalRoundTrip(t *testing.T) {
	orig := mustParse(t, "x^{2}+2*x+1")
	b, err := json.Marshal(orig)
	require.NoError(t, err)

	var doc struct {
		ID   string                 `json:"id"`
		Expr map[string]interface{} `json:"expr"`
	}
	require.NoError(t, json.Unmarshal(b, &doc))
	assert.Equal(t, orig.ID().String(), doc.ID)
	assert.Equal(t, "add", doc.Expr["type"])

	var back algebra.Tree
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, orig.ID(), back.ID())
	assert.True(t, orig.Equal(orig.Root(), &back, back.Root()))
	assert.Equal(t, "x^{2}+2*x+1", back.String())
}

func TestTree_UnmarshalErrors(t *testing.T) {
	var tr algebra.Tree
	assert.Error(t, json.Unmarshal([]byte(`{"expr":{"type":"sym"}}`), &tr))
	assert.Error(t, json.Unmarshal([]byte(`{"id":"not-a-uuid"}`), &tr))
}

func TestTree_MarshalDisposed(t *testing.T) {
	tr := mustParse(t, "x")
	tr.Dispose()
	_, err := json.Marshal(tr)
	assert.ErrorIs(t, err, algebra.ErrDisposed)
}

func TestFromJSON_FailureFreesNodes(t *testing.T) {
	tr := algebra.NewTree()
	x := tr.S('x')
	loose := tr.N(3)

	_, err := tr.FromJSON(map[string]interface{}{
		"type":  "add",
		"terms": []interface{}{sym("x"), num("2"), sym("")},
	})
	require.Error(t, err)
	assert.Equal(t, 2, tr.Len())
	assert.True(t, tr.Valid(x))
	assert.True(t, tr.Valid(loose))

	_, err = tr.FromJSON(map[string]interface{}{
		"type": "pow",
		"base": map[string]interface{}{"type": "mul", "factors": []interface{}{sym("y"), num("4")}},
	})
	require.Error(t, err)
	assert.Equal(t, 2, tr.Len())
}
