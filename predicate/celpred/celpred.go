// Package celpred traduz predicados escritos em CEL para a árvore de entrada
// do compilador de predicados.
//
//	p, _ := celpred.New()
//	node, err := p.Compile(userType, `record.UserId.startsWith("abc") || record.TenantId == "t1"`)
//
// Só a sintaxe é usada: a expressão nunca é avaliada pelo CEL. Funções e
// macros suportadas: && || ! == != < <= > >=, startsWith, contains, size,
// in, has(), ext.memberExists() e as conversões int/uint/double/string/dyn.
package celpred

import (
	"fmt"

	"github.com/google/cel-go/cel"
	celast "github.com/google/cel-go/common/ast"
	"github.com/google/cel-go/common/operators"
	"github.com/google/cel-go/common/overloads"
	"github.com/google/cel-go/common/types"
	"github.com/raywall/dynexpr/ir"
	"github.com/raywall/dynexpr/predicate"
	"github.com/raywall/dynexpr/schema"
)

const memberExists = "memberExists"

type constant struct {
	value any
	typ   *schema.Type
}

// Parser guarda o ambiente CEL e os nomes das variáveis. Depois de criado
// não muda e pode ser usado por várias goroutines.
type Parser struct {
	env       *cel.Env
	record    string
	extension string
	constants map[string]constant
}

// Option configura o Parser.
type Option func(*Parser)

// WithRecordVar troca o nome da variável do registro (padrão "record").
func WithRecordVar(name string) Option {
	return func(p *Parser) { p.record = name }
}

// WithExtensionVar troca o nome da variável de extensão (padrão "ext").
func WithExtensionVar(name string) Option {
	return func(p *Parser) { p.extension = name }
}

// WithConstant expõe um valor vivo à expressão. Acessos a membros sobre ele
// são resolvidos na compilação usando a tabela de acessores de typ.
func WithConstant(name string, value any, typ *schema.Type) Option {
	return func(p *Parser) { p.constants[name] = constant{value: value, typ: typ} }
}

// New cria um Parser.
func New(opts ...Option) (*Parser, error) {
	p := &Parser{
		record:    predicate.RecordParam,
		extension: predicate.ExtensionParam,
		constants: make(map[string]constant),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.record == "" || p.extension == "" || p.record == p.extension {
		return nil, fmt.Errorf("celpred: invalid variables %q and %q", p.record, p.extension)
	}

	envOpts := []cel.EnvOption{
		cel.StdLib(),
		cel.Variable(p.record, cel.DynType),
		cel.Variable(p.extension, cel.DynType),
	}
	for name := range p.constants {
		envOpts = append(envOpts, cel.Variable(name, cel.DynType))
	}
	env, err := cel.NewEnv(envOpts...)
	if err != nil {
		return nil, fmt.Errorf("celpred: init: %w", err)
	}
	p.env = env
	return p, nil
}

// Parse converte a expressão num predicado sobre recordType.
func (p *Parser) Parse(recordType *schema.Type, src string) (*predicate.Lambda, error) {
	parsed, issues := p.env.Parse(src)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("celpred: %w", issues.Err())
	}

	body, err := p.visit(parsed.NativeRep().Expr())
	if err != nil {
		return nil, err
	}
	return &predicate.Lambda{
		Params: []predicate.Param{
			{Name: p.record, Type: recordType},
			{Name: p.extension, Extension: true},
		},
		Body: body,
	}, nil
}

// Compile é Parse seguido de predicate.Compile.
func (p *Parser) Compile(recordType *schema.Type, src string) (ir.Node, error) {
	l, err := p.Parse(recordType, src)
	if err != nil {
		return nil, err
	}
	return predicate.Compile(l)
}

var binaryOps = map[string]predicate.BinaryOp{
	operators.LogicalAnd:    predicate.OpAndAlso,
	operators.LogicalOr:     predicate.OpOrElse,
	operators.Equals:        predicate.OpEqual,
	operators.NotEquals:     predicate.OpNotEqual,
	operators.Less:          predicate.OpLess,
	operators.LessEquals:    predicate.OpLessOrEqual,
	operators.Greater:       predicate.OpGreater,
	operators.GreaterEquals: predicate.OpGreaterOrEqual,
}

var conversions = map[string]bool{
	overloads.TypeConvertInt:    true,
	overloads.TypeConvertUint:   true,
	overloads.TypeConvertDouble: true,
	overloads.TypeConvertString: true,
	overloads.TypeConvertDyn:    true,
}

func (p *Parser) visit(e celast.Expr) (predicate.Expr, error) {
	switch e.Kind() {
	case celast.LiteralKind:
		return literal(e)
	case celast.IdentKind:
		return p.ident(e.AsIdent())
	case celast.SelectKind:
		return p.selection(e.AsSelect())
	case celast.CallKind:
		return p.call(e.AsCall())
	}
	return nil, &predicate.ParseError{Reason: fmt.Sprintf("unsupported CEL expression (id %d)", e.ID())}
}

func literal(e celast.Expr) (predicate.Expr, error) {
	v := e.AsLiteral()
	if _, ok := v.(types.Null); ok {
		return &predicate.Const{Value: nil}, nil
	}
	return &predicate.Const{Value: v.Value()}, nil
}

func (p *Parser) ident(name string) (predicate.Expr, error) {
	switch name {
	case p.record, p.extension:
		return &predicate.Ref{Name: name}, nil
	}
	if c, ok := p.constants[name]; ok {
		return &predicate.Captured{Value: c.value, Type: c.typ}, nil
	}
	return nil, &predicate.ParseError{Member: name, Reason: "unknown variable"}
}

func (p *Parser) selection(sel celast.SelectExpr) (predicate.Expr, error) {
	target, err := p.visit(sel.Operand())
	if err != nil {
		return nil, err
	}
	member := &predicate.Member{Target: target, Name: sel.FieldName()}
	if !sel.IsTestOnly() {
		return member, nil
	}
	// has(record.a.b)
	return &predicate.Call{
		Target: &predicate.Ref{Name: p.extension},
		Method: "MemberExists",
		Args:   []predicate.Expr{member},
	}, nil
}

func (p *Parser) call(c celast.CallExpr) (predicate.Expr, error) {
	fn := c.FunctionName()

	args := make([]predicate.Expr, 0, len(c.Args()))
	for _, a := range c.Args() {
		x, err := p.visit(a)
		if err != nil {
			return nil, err
		}
		args = append(args, x)
	}

	var target predicate.Expr
	if c.IsMemberFunction() {
		t, err := p.visit(c.Target())
		if err != nil {
			return nil, err
		}
		target = t
	}

	if op, ok := binaryOps[fn]; ok && len(args) == 2 {
		return &predicate.BinaryExpr{Op: op, Left: args[0], Right: args[1]}, nil
	}

	switch {
	case fn == operators.LogicalNot && len(args) == 1:
		return &predicate.UnaryExpr{Op: predicate.OpNot, Operand: args[0]}, nil
	case fn == operators.In && len(args) == 2:
		return &predicate.Call{Target: args[1], Method: "Contains", Args: args[:1]}, nil
	case conversions[fn] && target == nil && len(args) == 1:
		return &predicate.UnaryExpr{Op: predicate.OpConvert, Operand: args[0]}, nil
	case fn == overloads.Size:
		if target != nil {
			return &predicate.Call{Target: target, Method: "Size", Args: args}, nil
		}
		if len(args) == 1 {
			return &predicate.Call{Target: args[0], Method: "Size"}, nil
		}
	case fn == overloads.StartsWith && target != nil:
		return &predicate.Call{Target: target, Method: "StartsWith", Args: args}, nil
	case fn == overloads.Contains && target != nil:
		return &predicate.Call{Target: target, Method: "Contains", Args: args}, nil
	case fn == memberExists && target != nil:
		return &predicate.Call{Target: target, Method: "MemberExists", Args: args}, nil
	}
	return nil, &predicate.ParseError{Method: fn, Reason: "not supported in predicates"}
}
