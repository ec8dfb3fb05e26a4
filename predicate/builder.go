package predicate

import "github.com/raywall/dynexpr/schema"

// Nomes dos parâmetros produzidos por Where.
const (
	RecordParam    = "record"
	ExtensionParam = "ext"
)

// Term é um pedaço de predicado em construção.
type Term struct {
	e Expr
}

// Expr expõe a árvore construída até aqui.
func (t Term) Expr() Expr { return t.e }

// Extension dá acesso às asserções que só existem no DynamoDB.
type Extension struct {
	e Expr
}

// Where monta o predicado (registro, extensão) -> bool sobre recordType.
//
//	p := predicate.Where(userType, func(u predicate.Term, _ predicate.Extension) predicate.Term {
//		return predicate.Or(u.Get("UserId").StartsWith("abc"), u.Get("TenantId").Eq("t1"))
//	})
//	node, err := predicate.Compile(p)
func Where(recordType *schema.Type, fn func(r Term, x Extension) Term) *Lambda {
	body := fn(Term{e: &Ref{Name: RecordParam}}, Extension{e: &Ref{Name: ExtensionParam}})
	return &Lambda{
		Params: []Param{
			{Name: RecordParam, Type: recordType},
			{Name: ExtensionParam, Extension: true},
		},
		Body: body.e,
	}
}

// MemberExists vira attribute_exists(path); negado, attribute_not_exists(path).
func (x Extension) MemberExists(member Term) Term {
	return Term{e: &Call{Target: x.e, Method: "MemberExists", Args: []Expr{member.e}}}
}

// Get acessa um membro.
func (t Term) Get(name string) Term {
	return Term{e: &Member{Target: t.e, Name: name}}
}

func (t Term) Eq(v any) Term { return t.compare(OpEqual, v) }
func (t Term) Ne(v any) Term { return t.compare(OpNotEqual, v) }
func (t Term) Lt(v any) Term { return t.compare(OpLess, v) }
func (t Term) Le(v any) Term { return t.compare(OpLessOrEqual, v) }
func (t Term) Gt(v any) Term { return t.compare(OpGreater, v) }
func (t Term) Ge(v any) Term { return t.compare(OpGreaterOrEqual, v) }

func (t Term) compare(op BinaryOp, v any) Term {
	return Term{e: &BinaryExpr{Op: op, Left: t.e, Right: operand(v)}}
}

// StartsWith vira begins_with.
func (t Term) StartsWith(prefix any) Term {
	return Term{e: &Call{Target: t.e, Method: "StartsWith", Args: []Expr{operand(prefix)}}}
}

// Contains vira contains.
func (t Term) Contains(v any) Term {
	return Term{e: &Call{Target: t.e, Method: "Contains", Args: []Expr{operand(v)}}}
}

// Len é o tamanho de uma string ou coleção (size).
func (t Term) Len() Term {
	return Term{e: &Member{Target: t.e, Name: "Length"}}
}

// Count é o tamanho de uma coleção (size).
func (t Term) Count() Term {
	return Term{e: &Call{Target: t.e, Method: "Count"}}
}

// And combina termos da esquerda para a direita.
func And(a, b Term, more ...Term) Term {
	return fold(OpAndAlso, a, b, more)
}

// Or combina termos da esquerda para a direita.
func Or(a, b Term, more ...Term) Term {
	return fold(OpOrElse, a, b, more)
}

func fold(op BinaryOp, a, b Term, more []Term) Term {
	out := Term{e: &BinaryExpr{Op: op, Left: a.e, Right: b.e}}
	for _, t := range more {
		out = Term{e: &BinaryExpr{Op: op, Left: out.e, Right: t.e}}
	}
	return out
}

// Not nega um termo.
func Not(t Term) Term { return Term{e: &UnaryExpr{Op: OpNot, Operand: t.e}} }

// Convert marca uma conversão de tipo (sem efeito na saída).
func Convert(t Term) Term { return Term{e: &UnaryExpr{Op: OpConvert, Operand: t.e}} }

// ArrayLength é o tamanho de um array.
func ArrayLength(t Term) Term { return Term{e: &UnaryExpr{Op: OpArrayLength, Operand: t.e}} }

// Value é um literal.
func Value(v any) Term { return Term{e: &Const{Value: v}} }

// Capture captura um valor vivo; Get sobre ele é avaliado na compilação.
func Capture(v any, typ *schema.Type) Term { return Term{e: &Captured{Value: v, Type: typ}} }

func operand(v any) Expr {
	switch x := v.(type) {
	case Term:
		return x.e
	case Expr:
		return x
	}
	return &Const{Value: v}
}
