package algebra

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// ============================================================
// MCP Tool Interface
// ============================================================

type ToolRequest struct {
	Tool   string                 `json:"tool"`
	Params map[string]interface{} `json:"params"`
}

type ToolResponse struct {
	Result interface{} `json:"result,omitempty"`
	LaTeX  string      `json:"latex,omitempty"`
	String string      `json:"string,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// HandleToolCall runs one tool against a scratch tree. Expression params
// may be given as source text or as expression objects.
func HandleToolCall(req ToolRequest) ToolResponse {
	t := NewTree()
	defer t.Dispose()

	getExpr := func(key string) (Ref, error) { return t.fromParam(req.Params, key) }
	getBool := func(key string) (bool, error) {
		v, ok := req.Params[key]
		if !ok {
			return false, nil
		}
		b, ok := v.(bool)
		if !ok {
			return false, fmt.Errorf("param %s must be a boolean", key)
		}
		return b, nil
	}
	getInt := func(key string) (int, error) {
		v, ok := req.Params[key]
		if !ok {
			return 0, nil
		}
		n, ok := v.(float64)
		if !ok || n < 0 || n != math.Trunc(n) || n > math.MaxInt32 {
			return 0, fmt.Errorf("param %s must be a non-negative integer", key)
		}
		return int(n), nil
	}
	getPair := func() (Ref, Ref, error) {
		a, err := getExpr("a")
		if err != nil {
			return Absent, Absent, err
		}
		b, err := getExpr("b")
		if err != nil {
			return Absent, Absent, err
		}
		return a, b, nil
	}
	respond := func(ref Ref, extra map[string]interface{}) ToolResponse {
		result := map[string]interface{}{"expr": t.toJSON(ref)}
		for k, v := range extra {
			result[k] = v
		}
		return ToolResponse{Result: result, LaTeX: t.TeX(ref), String: t.Text(ref)}
	}
	combined := func(ref Ref, err error) ToolResponse {
		if err != nil {
			return ToolResponse{
				Result: map[string]interface{}{"combined": false, "unimplemented": errors.Is(err, ErrUnimplemented)},
				Error:  err.Error(),
			}
		}
		return respond(ref, map[string]interface{}{"combined": true})
	}

	switch req.Tool {
	case "simplify":
		root, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		limit, err := getInt("step_limit")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		t.SetRoot(root)
		var trace []string
		s := NewSimplifier(WithStepLimit(limit), WithObserver(func(_ int, tr *Tree, st Status) {
			if st == Rewritten {
				trace = append(trace, tr.String())
			}
		}))
		res, err := s.Run(t)
		resp := respond(t.Root(), map[string]interface{}{
			"passes": res.Passes,
			"status": res.Status.String(),
			"trace":  trace,
		})
		if err != nil {
			resp.Error = err.Error()
		}
		return resp

	case "step":
		root, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		t.SetRoot(root)
		st := StepTree(t)
		return respond(t.Root(), map[string]interface{}{"status": st.String()})

	case "to_latex":
		root, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return respond(root, nil)

	case "parse":
		src, ok := req.Params["src"].(string)
		if !ok {
			return ToolResponse{Error: "param src must be a string"}
		}
		root, err := t.Parse(src)
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return respond(root, nil)

	case "can_combine":
		a, b, err := getPair()
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		strict, err := getBool("strict")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		ok := t.CanCombineForAddition(a, b, strict)
		return ToolResponse{Result: ok, String: fmt.Sprintf("%t", ok)}

	case "combine_add":
		a, b, err := getPair()
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return combined(t.Add(a, b))

	case "combine_mul":
		a, b, err := getPair()
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return combined(t.Multiply(a, b))

	case "canonicalize":
		root, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		stable := t.SortGroup(root)
		return respond(root, map[string]interface{}{"stable": stable})

	case "graft":
		base, err := getExpr("base")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		sub := NewTree()
		defer sub.Dispose()
		subRoot, err := sub.fromParam(req.Params, "sub")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		t.SetRoot(base)
		sub.SetRoot(subRoot)
		t.Graft(sub)
		return respond(t.Root(), nil)

	case "mcp_spec":
		return ToolResponse{Result: MCPToolSpec(), String: "MCP tool specification"}
	}

	return ToolResponse{Error: fmt.Sprintf("unknown tool: %s", req.Tool)}
}

func (t *Tree) fromParam(params map[string]interface{}, key string) (Ref, error) {
	switch val := params[key].(type) {
	case nil:
		return Absent, fmt.Errorf("missing param: %s", key)
	case string:
		return t.Parse(val)
	case map[string]interface{}:
		return t.FromJSON(val)
	}
	return Absent, fmt.Errorf("invalid type for param %s", key)
}

func MCPToolSpec() string {
	// Expression params also accept source text.
	expr := "object"
	tools := []map[string]interface{}{
		ts("simplify", "Rewrite an expression to its fixpoint. Optional step_limit (integer)", []string{"expr"}, map[string]string{"expr": expr, "step_limit": "integer"}),
		ts("step", "Apply a single rewrite or reordering step", []string{"expr"}, map[string]string{"expr": expr}),
		ts("to_latex", "Render an expression as TeX", []string{"expr"}, map[string]string{"expr": expr}),
		ts("parse", "Parse infix or TeX source into an expression object", []string{"src"}, map[string]string{"src": "string"}),
		ts("can_combine", "Report whether a and b are like terms", []string{"a", "b"}, map[string]string{"a": expr, "b": expr, "strict": "boolean"}),
		ts("combine_add", "Apply the addition rules to a and b", []string{"a", "b"}, map[string]string{"a": expr, "b": expr}),
		ts("combine_mul", "Apply the multiplication rules to a and b", []string{"a", "b"}, map[string]string{"a": expr, "b": expr}),
		ts("canonicalize", "Sort the top sum or product into canonical order", []string{"expr"}, map[string]string{"expr": expr}),
		ts("graft", "Graft sub into base", []string{"base", "sub"}, map[string]string{"base": expr, "sub": expr}),
		ts("mcp_spec", "Return this tool schema", []string{}, map[string]string{}),
	}
	spec := map[string]interface{}{"tools": tools}
	b, _ := json.MarshalIndent(spec, "", "  ")
	return string(b)
}

func ts(name, description string, required []string, props map[string]string) map[string]interface{} {
	properties := map[string]interface{}{}
	for k, typ := range props {
		properties[k] = map[string]interface{}{"type": typ}
	}
	return map[string]interface{}{
		"name":        name,
		"description": description,
		"inputSchema": map[string]interface{}{
			"type":       "object",
			"properties": properties,
			"required":   required,
		},
	}
}
