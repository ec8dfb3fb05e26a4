package predicate

import (
	"fmt"
	"strings"

	"github.com/raywall/dynexpr/ir"
	"github.com/raywall/dynexpr/schema"
)

type parser struct {
	record     string
	recordType *schema.Type
	extension  string
}

// Compile transforma o predicado em IR.
//
// Regras principais:
//   - exatamente um parâmetro de registro e no máximo um de extensão;
//   - And/Or sempre viram Parenthesized(Binary), Not vira Inverse;
//   - acesso a membro sobre valor capturado é avaliado aqui mesmo;
//   - numa comparação, a constante é convertida para o tipo do outro lado.
//
// Qualquer formato não reconhecido aborta a compilação com *ParseError.
func Compile(l *Lambda) (ir.Node, error) {
	if l == nil {
		return nil, &ParseError{Reason: "nil predicate"}
	}

	var ctx parser
	for _, p := range l.Params {
		switch {
		case p.Extension:
			if ctx.extension != "" {
				return nil, &ParseError{Member: p.Name, Reason: "more than one extension parameter"}
			}
			ctx.extension = p.Name
		default:
			if ctx.record != "" {
				return nil, &ParseError{Member: p.Name, Reason: "more than one record parameter"}
			}
			if p.Type == nil || p.Type.Kind() != schema.KindRecord {
				return nil, &ParseError{Member: p.Name, Reason: "record parameter must have a record type"}
			}
			ctx.record = p.Name
			ctx.recordType = p.Type
		}
	}
	if ctx.record == "" {
		return nil, &ParseError{Reason: "the record parameter is missing"}
	}
	if l.Body == nil {
		return nil, &ParseError{Reason: "empty predicate body"}
	}

	return ctx.visit(l.Body)
}

// Accessor resolve um caminho pontilhado de membros ("IdentityInfo.Type")
// sobre recordType e retorna o acessor correspondente.
func Accessor(recordType *schema.Type, path string) (*ir.MemberAccessor, error) {
	if path == "" {
		return nil, &ParseError{Reason: "empty member path"}
	}
	var body Expr = &Ref{Name: "record"}
	for _, seg := range strings.Split(path, ".") {
		body = &Member{Target: body, Name: seg}
	}
	return EnsureAccessor(&Lambda{
		Params: []Param{{Name: "record", Type: recordType}},
		Body:   body,
	})
}

// EnsureAccessor compila um lambda cujo corpo deve ser um acesso a membro.
func EnsureAccessor(l *Lambda) (*ir.MemberAccessor, error) {
	node, err := Compile(l)
	if err != nil {
		return nil, err
	}
	acc, ok := node.(*ir.MemberAccessor)
	if !ok {
		return nil, &ParseError{Reason: fmt.Sprintf("a member accessor was expected, but received %s", node.Kind())}
	}
	return acc, nil
}

func (c *parser) visit(e Expr) (ir.Node, error) {
	switch v := e.(type) {
	case *BinaryExpr:
		return c.binary(v)
	case *UnaryExpr:
		return c.unary(v)
	case *Call:
		return c.call(v)
	case *Member:
		return c.member(v)
	case *Ref:
		return c.ref(v)
	case *Const:
		return &ir.Constant{Value: v.Value}, nil
	case *Captured:
		return &ir.Constant{Value: v.Value, Type: v.Type}, nil
	case nil:
		return nil, &ParseError{Reason: "nil expression"}
	}
	return nil, &ParseError{Reason: fmt.Sprintf("not supported expression type %T", e)}
}

func (c *parser) ref(r *Ref) (ir.Node, error) {
	switch {
	case r.Name == c.record:
		return &ir.RecordParameter{Name: r.Name, Type: c.recordType}, nil
	case c.extension != "" && r.Name == c.extension:
		return &ir.ExtensionParameter{Name: r.Name}, nil
	}
	return nil, &ParseError{Member: r.Name, Reason: "the lambda parameter is unknown or not supported"}
}

func (c *parser) unary(u *UnaryExpr) (ir.Node, error) {
	operand, err := c.visit(u.Operand)
	if err != nil {
		return nil, err
	}
	switch u.Op {
	case OpNot:
		return &ir.Inverse{Body: operand}, nil
	case OpConvert:
		return operand, nil
	case OpArrayLength:
		return &ir.MethodCall{Instance: operand, Method: ir.MethodSize}, nil
	}
	return nil, &ParseError{Reason: fmt.Sprintf("not supported unary operator %d", int(u.Op))}
}

var compareOps = map[BinaryOp]ir.CompareOp{
	OpEqual:          ir.Equal,
	OpNotEqual:       ir.NotEqual,
	OpLess:           ir.LessThan,
	OpLessOrEqual:    ir.LessThanOrEqual,
	OpGreater:        ir.GreaterThan,
	OpGreaterOrEqual: ir.GreaterThanOrEqual,
}

func (c *parser) binary(b *BinaryExpr) (ir.Node, error) {
	left, err := c.visit(b.Left)
	if err != nil {
		return nil, err
	}
	right, err := c.visit(b.Right)
	if err != nil {
		return nil, err
	}

	switch b.Op {
	case OpAndAlso:
		return &ir.Parenthesized{Body: &ir.Binary{Left: left, Op: ir.And, Right: right}}, nil
	case OpOrElse:
		return &ir.Parenthesized{Body: &ir.Binary{Left: left, Op: ir.Or, Right: right}}, nil
	}

	op, ok := compareOps[b.Op]
	if !ok {
		return nil, &ParseError{Reason: fmt.Sprintf("not supported binary operator %d", int(b.Op))}
	}
	l, err := castTo(left, right)
	if err != nil {
		return nil, err
	}
	r, err := castTo(right, left)
	if err != nil {
		return nil, err
	}
	return &ir.Compare{Left: l, Op: op, Right: r}, nil
}

// castTo converte a constante n para o tipo do nó de referência, quando ele
// for um membro ou uma chamada de método.
func castTo(n, reference ir.Node) (ir.Node, error) {
	constant, ok := n.(*ir.Constant)
	if !ok {
		return n, nil
	}

	var typ *schema.Type
	switch ref := reference.(type) {
	case *ir.MethodCall:
		typ = ref.ReturnType()
	case *ir.MemberAccessor:
		typ = ref.Type
	}
	if typ == nil {
		return n, nil
	}
	return coerce(constant, typ)
}

func coerce(constant *ir.Constant, typ *schema.Type) (*ir.Constant, error) {
	v, err := typ.Coerce(constant.Value)
	if err != nil {
		return nil, err
	}
	return &ir.Constant{Value: v, Type: typ}, nil
}

var methods = map[string]ir.Method{
	"StartsWith": ir.MethodBeginsWith,
	"BeginsWith": ir.MethodBeginsWith,
	"Contains":   ir.MethodContains,
	"Length":     ir.MethodSize,
	"Count":      ir.MethodSize,
	"Size":       ir.MethodSize,
}

func (c *parser) call(call *Call) (ir.Node, error) {
	var instance ir.Node
	if call.Target != nil {
		n, err := c.visit(call.Target)
		if err != nil {
			return nil, err
		}
		instance = n
	}

	args := make([]ir.Node, 0, len(call.Args))
	for i, a := range call.Args {
		n, err := c.visit(a)
		if err != nil {
			return nil, err
		}
		if call.Target == nil && i == 0 {
			instance = n
			continue
		}
		args = append(args, n)
	}

	if call.Method == "MemberExists" {
		if _, ok := instance.(*ir.ExtensionParameter); !ok {
			return nil, &ParseError{Method: call.Method, Reason: "only available on the extension parameter"}
		}
		if len(args) != 1 {
			return nil, &ParseError{Method: call.Method, Reason: "the argument must be a single member accessor"}
		}
		acc, ok := args[0].(*ir.MemberAccessor)
		if !ok {
			return nil, &ParseError{Method: call.Method, Reason: "the argument must be a member accessor"}
		}
		return &ir.MemberExists{Accessor: acc}, nil
	}

	method, ok := methods[call.Method]
	if !ok {
		return nil, &ParseError{Method: call.Method, Reason: "not supported method"}
	}

	if method != ir.MethodSize {
		argType := schema.String
		if acc, ok := instance.(*ir.MemberAccessor); ok && method == ir.MethodContains && acc.Type != nil && acc.Type.IsCollection() {
			argType = acc.Type.Elem()
		}
		for i, a := range args {
			constant, ok := a.(*ir.Constant)
			if !ok || argType == nil {
				continue
			}
			coerced, err := coerce(constant, argType)
			if err != nil {
				return nil, err
			}
			args[i] = coerced
		}
	}

	return &ir.MethodCall{Instance: instance, Method: method, Args: args}, nil
}

func (c *parser) member(m *Member) (ir.Node, error) {
	if m.Target == nil {
		return nil, &ParseError{Member: m.Name, Reason: "static members are not supported"}
	}
	instance, err := c.visit(m.Target)
	if err != nil {
		return nil, err
	}

	if constant, ok := instance.(*ir.Constant); ok {
		if constant.Value == nil {
			return constant, nil
		}
		v, typ, err := evaluate(constant.Value, constant.Type, m.Name)
		if err != nil {
			return nil, err
		}
		return &ir.Constant{Value: v, Type: typ}, nil
	}

	var owner *schema.Type
	switch inst := instance.(type) {
	case *ir.RecordParameter:
		owner = inst.Type
	case *ir.MemberAccessor:
		owner = inst.Type
		if (m.Name == "Length" || m.Name == "Count") && owner != nil &&
			(owner.Kind() == schema.KindString || owner.IsCollection()) {
			return &ir.MethodCall{Instance: instance, Method: ir.MethodSize}, nil
		}
	default:
		return nil, &ParseError{Member: m.Name, Reason: fmt.Sprintf("the member accessor must be applied to a record member, not %s", instance.Kind())}
	}

	if owner == nil {
		return nil, &ParseError{Member: m.Name, Reason: "the owner type is unknown"}
	}
	member, ok := owner.Member(m.Name)
	if !ok {
		return nil, &ParseError{Member: m.Name, Reason: fmt.Sprintf("not a member of %s", owner.Name())}
	}
	return &ir.MemberAccessor{Instance: instance, Name: m.Name, Type: member.Type}, nil
}
