package ir

import (
	"fmt"
	"strings"
)

// Format renderiza a árvore numa forma compacta, útil em logs e testes:
//
//	Parenthesized(Binary(Or, Compare(Member(UserId), Equal, Constant("a")), ...))
func Format(n Node) string {
	var sb strings.Builder
	format(&sb, n)
	return sb.String()
}

func format(sb *strings.Builder, n Node) {
	switch v := n.(type) {
	case nil:
		sb.WriteString("<nil>")
	case *Constant:
		fmt.Fprintf(sb, "Constant(%#v)", v.Value)
	case *RecordParameter:
		fmt.Fprintf(sb, "Record(%s)", v.Name)
	case *ExtensionParameter:
		fmt.Fprintf(sb, "Extension(%s)", v.Name)
	case *MemberAccessor:
		fmt.Fprintf(sb, "Member(%s)", strings.Join(v.Path(), "."))
	case *Compare:
		sb.WriteString("Compare(")
		format(sb, v.Left)
		fmt.Fprintf(sb, ", %s, ", v.Op)
		format(sb, v.Right)
		sb.WriteString(")")
	case *Binary:
		fmt.Fprintf(sb, "Binary(%s, ", v.Op)
		format(sb, v.Left)
		sb.WriteString(", ")
		format(sb, v.Right)
		sb.WriteString(")")
	case *MethodCall:
		fmt.Fprintf(sb, "%s(", v.Method)
		format(sb, v.Instance)
		for _, a := range v.Args {
			sb.WriteString(", ")
			format(sb, a)
		}
		sb.WriteString(")")
	case *MemberExists:
		sb.WriteString("MemberExists(")
		format(sb, v.Accessor)
		sb.WriteString(")")
	case *Inverse:
		sb.WriteString("Inverse(")
		format(sb, v.Body)
		sb.WriteString(")")
	case *Parenthesized:
		sb.WriteString("Parenthesized(")
		format(sb, v.Body)
		sb.WriteString(")")
	default:
		fmt.Fprintf(sb, "%s(?)", n.Kind())
	}
}
