package algebra

import (
	"encoding/json"
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/google/uuid"
)

// ============================================================
// JSON Serialization
// ============================================================

// ToJSON encodes the subtree at ref. Sum and product chains are written as
// flat term and factor lists.
func (t *Tree) ToJSON(ref Ref) (string, error) {
	b, err := json.Marshal(t.toJSON(ref))
	return string(b), err
}

func (t *Tree) toJSON(ref Ref) map[string]interface{} {
	if ref.IsAbsent() {
		return nil
	}
	n := t.Node(ref)
	switch n.Kind {
	case KindNumber:
		return map[string]interface{}{"type": "num", "value": strconv.Itoa(n.Value)}
	case KindSymbol:
		return map[string]interface{}{"type": "sym", "name": string(n.Name)}
	case KindAdd, KindMul:
		ops := t.Operands(ref)
		out := make([]interface{}, len(ops))
		for i, op := range ops {
			out[i] = t.toJSON(op)
		}
		if n.Kind == KindAdd {
			return map[string]interface{}{"type": "add", "terms": out}
		}
		return map[string]interface{}{"type": "mul", "factors": out}
	case KindPow:
		return map[string]interface{}{"type": "pow", "base": t.toJSON(n.Left), "exp": t.toJSON(n.Right)}
	case KindDiv:
		return map[string]interface{}{"type": "div", "num": t.toJSON(n.Left), "den": t.toJSON(n.Right)}
	case KindRoot:
		m := map[string]interface{}{"type": "root", "radicand": t.toJSON(n.Left)}
		if !n.Right.IsAbsent() {
			m["index"] = t.toJSON(n.Right)
		}
		return m
	}
	return nil
}

// FromJSON decodes an expression object into a new tree.
func FromJSON(data map[string]interface{}) (*Tree, error) {
	t := NewTree()
	root, err := t.FromJSON(data)
	if err != nil {
		t.Dispose()
		return nil, err
	}
	t.SetRoot(root)
	return t, nil
}

// FromJSON decodes an expression object into t and returns the root of the
// new subtree. On error nothing allocated by the call is left in t.
func (t *Tree) FromJSON(data map[string]interface{}) (Ref, error) {
	return t.build(func() (Ref, error) { return t.decode(data) })
}

func (t *Tree) decode(data map[string]interface{}) (Ref, error) {
	if data == nil {
		return Absent, fmt.Errorf("expression must be an object")
	}
	typAny, ok := data["type"]
	if !ok {
		return Absent, fmt.Errorf("missing 'type' field")
	}
	typ, ok := typAny.(string)
	if !ok || typ == "" {
		return Absent, fmt.Errorf("field 'type' must be a non-empty string")
	}

	sub := func(field string) (Ref, error) {
		v, ok := data[field]
		if !ok {
			return Absent, fmt.Errorf("%s: missing %q", typ, field)
		}
		m, ok := v.(map[string]interface{})
		if !ok {
			return Absent, fmt.Errorf("%s: %q must be an object", typ, field)
		}
		ref, err := t.decode(m)
		if err != nil {
			return Absent, fmt.Errorf("%s: %s: %w", typ, field, err)
		}
		return ref, nil
	}

	subList := func(field string) ([]Ref, error) {
		v, ok := data[field]
		if !ok {
			return nil, fmt.Errorf("%s: missing %q", typ, field)
		}
		raw, ok := v.([]interface{})
		if !ok {
			return nil, fmt.Errorf("%s: %q must be an array", typ, field)
		}
		if len(raw) == 0 {
			return nil, fmt.Errorf("%s: %q must not be empty", typ, field)
		}
		out := make([]Ref, len(raw))
		for i, it := range raw {
			m, ok := it.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("%s: %q[%d] must be an object", typ, field, i)
			}
			ref, err := t.decode(m)
			if err != nil {
				return nil, fmt.Errorf("%s: %s[%d]: %w", typ, field, i, err)
			}
			out[i] = ref
		}
		return out, nil
	}

	switch typ {
	case "num":
		valAny, ok := data["value"]
		if !ok {
			return Absent, fmt.Errorf("num: missing 'value'")
		}
		switch val := valAny.(type) {
		case string:
			v, err := strconv.Atoi(val)
			if err != nil {
				return Absent, fmt.Errorf("invalid num value: %s", val)
			}
			return t.N(v), nil
		case float64:
			if val != float64(int(val)) {
				return Absent, fmt.Errorf("num: 'value' must be an integer, got %v", val)
			}
			return t.N(int(val)), nil
		}
		return Absent, fmt.Errorf("num: 'value' must be a string or a number")

	case "sym":
		name, ok := data["name"].(string)
		if !ok || utf8.RuneCountInString(name) != 1 {
			return Absent, fmt.Errorf("sym: 'name' must be a single character")
		}
		r, _ := utf8.DecodeRuneInString(name)
		return t.S(r), nil

	case "add", "mul":
		field, kind := "terms", KindAdd
		if typ == "mul" {
			field, kind = "factors", KindMul
		}
		refs, err := subList(field)
		if err != nil {
			return Absent, err
		}
		return t.chain(kind, refs), nil

	case "pow":
		base, err := sub("base")
		if err != nil {
			return Absent, err
		}
		exp, err := sub("exp")
		if err != nil {
			return Absent, err
		}
		return t.PowOf(base, exp), nil

	case "div":
		num, err := sub("num")
		if err != nil {
			return Absent, err
		}
		den, err := sub("den")
		if err != nil {
			return Absent, err
		}
		return t.DivOf(num, den), nil

	case "root":
		radicand, err := sub("radicand")
		if err != nil {
			return Absent, err
		}
		index := Absent
		if _, ok := data["index"]; ok {
			if index, err = sub("index"); err != nil {
				return Absent, err
			}
		}
		return t.RootOf(radicand, index), nil
	}
	return Absent, fmt.Errorf("unknown expression type: %s", typ)
}

type treeDocument struct {
	ID   uuid.UUID              `json:"id"`
	Expr map[string]interface{} `json:"expr"`
}

// MarshalJSON writes the tree identity together with its expression.
func (t *Tree) MarshalJSON() ([]byte, error) {
	if t.disposed {
		return nil, ErrDisposed
	}
	return json.Marshal(treeDocument{ID: t.id, Expr: t.toJSON(t.root)})
}

// UnmarshalJSON replaces the contents of t with the decoded document. A
// missing id keeps the current one.
func (t *Tree) UnmarshalJSON(data []byte) error {
	var doc treeDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decoding tree: %w", err)
	}
	fresh := NewTree()
	if doc.Expr != nil {
		root, err := fresh.FromJSON(doc.Expr)
		if err != nil {
			return fmt.Errorf("decoding tree: %w", err)
		}
		fresh.root = root
	}
	if doc.ID != uuid.Nil {
		fresh.id = doc.ID
	} else if t.id != uuid.Nil {
		fresh.id = t.id
	}
	*t = *fresh
	return nil
}
