package plan

import (
	"fmt"
	"strings"
)

// String renders the plan as an indented instruction listing.
func (p *Plan) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "plan %s -> %s, %d slots, block <= %d bits\n", p.Logical, p.Word, p.Slots, p.blockBits)
	dump(&b, p.Root, 0)
	return b.String()
}

func dump(b *strings.Builder, n Node, depth int) {
	indent := strings.Repeat("  ", depth)
	switch n := n.(type) {
	case *RolledLoop:
		fmt.Fprintf(b, "%srolled x%d%s%s\n", indent, n.Tokensize, alignment(n.Aligned), inits(n.Inits))
		dump(b, n.Body, depth+1)
	case *UnrolledLoop:
		fmt.Fprintf(b, "%sunrolled %d x%d%s%s\n", indent, n.Count, n.Tokensize, alignment(n.Aligned), inits(n.Inits))
		for i, it := range n.Iterations {
			if j := first(n.Iterations, it); j < i {
				fmt.Fprintf(b, "%s  iteration %d: as %d\n", indent, i, j)
				continue
			}
			fmt.Fprintf(b, "%s  iteration %d:\n", indent, i)
			dump(b, it, depth+2)
		}
	case *KnownValue:
		fmt.Fprintf(b, "%sknown %s = %d\n", indent, n.Name, n.Value)
		dump(b, n.Next, depth)
	case *RuntimeValue:
		fmt.Fprintf(b, "%sruntime %s@%d = %s%s\n", indent, n.Name, n.Slot, n.Expr, peek(n.Peek))
		dump(b, n.Next, depth)
	case *SwitchValue:
		fmt.Fprintf(b, "%sswitch %s@%d = %s%s [%d cases]\n", indent, n.Name, n.Slot, n.Expr, peek(n.Peek), len(n.Cases))
		for i, c := range n.Cases {
			fmt.Fprintf(b, "%s  case %d:\n", indent, n.Lo+uint64(i))
			dump(b, c, depth+2)
		}
	case *Seq:
		for _, s := range n.Steps {
			dump(b, s, depth)
		}
	case *Field:
		fmt.Fprintf(b, "%sfield %s = %s : %d%s\n", indent, n.Name, n.Value, n.Width, position(n.Pos))
	case *EncodeStep:
		width := fmt.Sprint(n.Width)
		if n.WidthExpr != nil {
			width = n.WidthExpr.String()
		}
		fmt.Fprintf(b, "%sencode [%d] %s : %s%s\n", indent, n.Index, n.Transform, width, position(n.Pos))
	case *AdaptiveUpdate:
		fmt.Fprintf(b, "%supdate %s@%d = %s\n", indent, n.Name, n.Slot, n.Expr)
	}
}

func first(nodes []Node, n Node) int {
	for i, x := range nodes {
		if x == n {
			return i
		}
	}
	return -1
}

func alignment(aligned bool) string {
	if aligned {
		return " aligned"
	}
	return ""
}

func inits(in []Init) string {
	if len(in) == 0 {
		return ""
	}
	parts := make([]string, len(in))
	for i, x := range in {
		parts[i] = fmt.Sprintf("%s@%d=%d", x.Name, x.Slot, x.Value)
	}
	return " init " + strings.Join(parts, ",")
}

func peek(p *Peek) string {
	if p == nil {
		return ""
	}
	return fmt.Sprintf(" (decode: header +%d:%d)", p.Offset, p.Width)
}

func position(pos int) string {
	if pos < 0 {
		return " @?"
	}
	return fmt.Sprintf(" @%d", pos)
}
