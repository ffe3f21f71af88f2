package lang

import "math"

// ToNative converts expression trees to plain Go values (maps, slices,
// strings, and numbers) suitable for JSON or YAML encoding.
//
// Each node becomes a map with a "kind" key. Binary operations use the
// operator's long name (e.g. "add") as their kind.
func ToNative(exprs ...Expr) []any {
	out := make([]any, len(exprs))
	for i, e := range exprs {
		out[i] = toNative(e)
	}

	return out
}

func toNative(e Expr) any {
	switch n := e.(type) {
	case *Number:
		return map[string]any{"kind": KindNumber.String(), "value": nativeNumber(n.Value)}

	case *Var:
		return map[string]any{"kind": KindVar.String(), "name": n.Name}

	case *Binary:
		return map[string]any{
			"kind":  n.Op.Name(),
			"left":  toNative(n.Left),
			"right": toNative(n.Right),
		}

	case *Let:
		return map[string]any{
			"kind":  KindLet.String(),
			"name":  n.Name,
			"value": toNative(n.Value),
		}

	case *Return:
		return map[string]any{"kind": KindReturn.String(), "value": toNative(n.Value)}

	case *Call:
		return map[string]any{
			"kind": KindCall.String(),
			"name": n.Name,
			"args": ToNative(n.Args...),
		}

	case *Define:
		params := make([]any, len(n.Params))
		for i, p := range n.Params {
			params[i] = p
		}

		return map[string]any{
			"kind":   KindDefine.String(),
			"name":   n.Name,
			"params": params,
			"body":   ToNative(n.Body...),
		}

	case *If:
		branches := make([]any, len(n.Branches))
		for i, br := range n.Branches {
			branches[i] = map[string]any{
				"left":  toNative(br.Left),
				"right": toNative(br.Right),
				"body":  ToNative(br.Body...),
			}
		}

		return map[string]any{
			"kind":     KindIf.String(),
			"branches": branches,
			"else":     ToNative(n.Else...),
		}

	default:
		return nil
	}
}

// nativeNumber keeps non-finite values encodable; JSON has no Inf or NaN.
func nativeNumber(v float64) any {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return FormatResult(v)
	}

	return v
}
