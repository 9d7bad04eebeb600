package term

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/apd/v3"
)

// String renders t in a human-readable, mostly infix notation.
// The output is for debugging only and is not parsed back.
func String(t Term) string {
	var sb strings.Builder
	render(&sb, t)
	return sb.String()
}

func render(sb *strings.Builder, t Term) {
	switch x := t.(type) {
	case Value:
		sb.WriteString(FormatHost(x.V))
	case Unbound:
		if x.Name == "" {
			sb.WriteString("_")
			return
		}
		sb.WriteString(x.Name)
	case DimUnbound:
		fmt.Fprintf(sb, "%s^%d", x.Name, x.N)
	case *Node:
		ops := make([]string, len(x.operands))
		for i, op := range x.operands {
			ops[i] = String(op)
		}
		sb.WriteString(renderNode(x.kind, ops))
	default:
		fmt.Fprintf(sb, "<%T>", t)
	}
}

func renderNode(k *Kind, ops []string) string {
	if k.Render != nil {
		return k.Render(ops)
	}
	sym := k.Symbol
	if sym == "" {
		sym = k.Name
	}
	if k.Infix && len(ops) == 2 {
		return "(" + ops[0] + " " + sym + " " + ops[1] + ")"
	}
	return sym + "(" + strings.Join(ops, ", ") + ")"
}

// FormatHost renders a boxed host value.
func FormatHost(v any) string {
	switch x := v.(type) {
	case int64:
		return strconv.FormatInt(x, 10)
	case *apd.Decimal:
		return x.Text('f')
	case string:
		return strconv.Quote(x)
	default:
		return fmt.Sprint(x)
	}
}
