package transpile

import (
	"fmt"
	"strings"

	"github.com/raywall/dynexpr/alias"
	"github.com/raywall/dynexpr/ir"
	"github.com/raywall/dynexpr/projection"
)

const (
	attributeExists    = "attribute_exists("
	attributeNotExists = "attribute_not_exists("
)

// Transpiler converte IR em expressões do DynamoDB. Não guarda estado: o
// valor zero está pronto para uso e pode ser compartilhado entre goroutines.
// O estado de cada operação vive no *alias.Scope recebido.
type Transpiler struct{}

// ToExpression renderiza um nó usando a projeção do tipo na direção ativa.
func (Transpiler) ToExpression(n ir.Node, scope *alias.Scope, proj *projection.Projection) (string, error) {
	v := &visitor{scope: scope, proj: proj}
	return v.visit(n)
}

// Conditions renderiza várias condições de topo unidas com " and ". Com mais
// de uma, cada condição que não está entre parênteses é envolvida antes.
func (t Transpiler) Conditions(nodes []ir.Node, scope *alias.Scope, proj *projection.Projection) (string, error) {
	if len(nodes) == 0 {
		return "", nil
	}
	wrapped := ir.Wrap(nodes)
	parts := make([]string, len(wrapped))
	for i, n := range wrapped {
		s, err := t.ToExpression(n, scope, proj)
		if err != nil {
			return "", err
		}
		parts[i] = s
	}
	return strings.Join(parts, " and "), nil
}

// ProjectionExpression emite os caminhos mínimos para reconstruir o
// registro na leitura. Cada nível da hierarquia é visitado uma única vez, o
// que garante término em tipos autorreferentes. Retorna "" quando não há
// atributos.
func (Transpiler) ProjectionExpression(proj *projection.Projection, scope *alias.Scope) string {
	if proj == nil {
		return ""
	}
	visited := make(map[projection.LevelID]struct{})
	attrs := projectLevel(proj, proj.Root(), scope, visited)
	return strings.Join(attrs, ", ")
}

func projectLevel(proj *projection.Projection, id projection.LevelID, scope *alias.Scope, visited map[projection.LevelID]struct{}) []string {
	if _, seen := visited[id]; seen {
		return nil
	}
	visited[id] = struct{}{}

	var attrs []string
	for _, seg := range proj.Segments(id) {
		a := scope.Name(seg.Name)
		if !proj.HasSegments(seg.Nested) {
			attrs = append(attrs, a)
			continue
		}
		for _, child := range projectLevel(proj, seg.Nested, scope, visited) {
			attrs = append(attrs, a+"."+child)
		}
	}
	return attrs
}

type visitor struct {
	scope *alias.Scope
	proj  *projection.Projection
}

func (v *visitor) visit(n ir.Node) (string, error) {
	switch node := n.(type) {
	case *ir.Binary:
		return v.infix(node.Left, node.Op.Token(), node.Right)
	case *ir.Compare:
		return v.compare(node)
	case *ir.Constant:
		return v.scope.Value(node.Value, node.Type), nil
	case *ir.MemberAccessor:
		return v.member(node)
	case *ir.MethodCall:
		return v.method(node)
	case *ir.MemberExists:
		if node.Accessor == nil {
			return "", &ArityError{Method: "MemberExists", MissingInstance: true}
		}
		path, err := v.member(node.Accessor)
		if err != nil {
			return "", err
		}
		return attributeExists + path + ")", nil
	case *ir.Inverse:
		return v.inverse(node)
	case *ir.Parenthesized:
		body, err := v.visit(node.Body)
		if err != nil {
			return "", err
		}
		return "(" + body + ")", nil
	case *ir.RecordParameter, *ir.ExtensionParameter:
		return "", &NotSupportedError{What: fmt.Sprintf("a bare %s cannot be rendered", n.Kind())}
	case nil:
		return "", fmt.Errorf("%w: nil node", ErrUnknownNode)
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownNode, n.Kind())
}

func (v *visitor) infix(left ir.Node, token string, right ir.Node) (string, error) {
	l, err := v.visit(left)
	if err != nil {
		return "", err
	}
	r, err := v.visit(right)
	if err != nil {
		return "", err
	}
	return l + token + r, nil
}

// compare liga a constante ao membro do outro lado, para que o valor saia
// com a mesma representação do atributo gravado.
func (v *visitor) compare(c *ir.Compare) (string, error) {
	l, err := v.operand(c.Left, c.Right)
	if err != nil {
		return "", err
	}
	r, err := v.operand(c.Right, c.Left)
	if err != nil {
		return "", err
	}
	return l + c.Op.Token() + r, nil
}

func (v *visitor) operand(n, other ir.Node) (string, error) {
	k, ok := n.(*ir.Constant)
	if !ok {
		return v.visit(n)
	}
	if acc, ok := other.(*ir.MemberAccessor); ok {
		return v.scope.MemberValue(k.Value, k.Type, acc.Path()), nil
	}
	return v.scope.Value(k.Value, k.Type), nil
}

// inverse troca attribute_exists por attribute_not_exists (e vice-versa)
// quando o corpo é uma asserção de existência; no resto, prefixa "not ".
func (v *visitor) inverse(n *ir.Inverse) (string, error) {
	body, err := v.visit(n.Body)
	if err != nil {
		return "", err
	}
	if !isExistsChain(n.Body) {
		return "not " + body, nil
	}
	switch {
	case strings.HasPrefix(body, attributeExists):
		return attributeNotExists + strings.TrimPrefix(body, attributeExists), nil
	case strings.HasPrefix(body, attributeNotExists):
		return attributeExists + strings.TrimPrefix(body, attributeNotExists), nil
	}
	return "not " + body, nil
}

func isExistsChain(n ir.Node) bool {
	switch node := n.(type) {
	case *ir.MemberExists:
		return true
	case *ir.Inverse:
		return isExistsChain(node.Body)
	}
	return false
}

func (v *visitor) method(m *ir.MethodCall) (string, error) {
	name := m.Method.FuncName()
	if name == "" {
		return "", &NotSupportedError{What: fmt.Sprintf("method %s", m.Method)}
	}
	if m.Instance == nil {
		return "", &ArityError{Method: m.Method.String(), MissingInstance: true}
	}
	if len(m.Args) != m.Method.Arity() {
		return "", &ArityError{Method: m.Method.String(), Want: m.Method.Arity(), Got: len(m.Args)}
	}

	instance, err := v.visit(m.Instance)
	if err != nil {
		return "", err
	}
	if instance == "" {
		return "", &ArityError{Method: m.Method.String(), MissingInstance: true}
	}

	parts := []string{instance}
	for _, a := range m.Args {
		s, err := v.visit(a)
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}
	return name + "(" + strings.Join(parts, ", ") + ")", nil
}

// member resolve a cadeia de acessores salto a salto pela tabela de nomes:
// cada membro pode expandir para vários segmentos físicos, e cada segmento
// recebe seu próprio alias.
func (v *visitor) member(acc *ir.MemberAccessor) (string, error) {
	var chain []*ir.MemberAccessor
	var cur ir.Node = acc
	for {
		a, ok := cur.(*ir.MemberAccessor)
		if !ok || a == nil {
			break
		}
		chain = append(chain, a)
		cur = a.Instance
	}
	if _, ok := cur.(*ir.RecordParameter); !ok {
		kind := "nil"
		if cur != nil {
			kind = cur.Kind().String()
		}
		return "", &NotSupportedError{What: fmt.Sprintf("member %s is not reached from the record parameter (%s)", acc.Name, kind)}
	}

	var (
		names    projection.NameTable
		typeName string
	)
	if v.proj != nil {
		names = v.proj.Names()
		typeName = v.proj.Type().Name()
	}

	var aliases []string
	for i := len(chain) - 1; i >= 0; i-- {
		hop := chain[i]
		ref, ok := names.Lookup(hop.Name)
		if !ok {
			return "", &ResolutionError{Member: hop.Name, Type: typeName}
		}
		for _, seg := range strings.Split(ref.Path, ".") {
			aliases = append(aliases, v.scope.Name(seg))
		}
		if ref.Nested.Len() > 0 {
			names = ref.Nested
			if ref.Type != nil {
				typeName = ref.Type.Name()
			}
		}
	}
	return strings.Join(aliases, "."), nil
}
