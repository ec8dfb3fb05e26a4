package predicate

import (
	"fmt"
	"strings"

	"github.com/raywall/dynexpr/attrval"
	"github.com/raywall/dynexpr/schema"
)

// EvaluateMemberPath resolve um caminho pontilhado ("IdentityInfo.Type")
// sobre um valor vivo, usando a tabela de acessores de typ.
//
// Um valor intermediário nil encerra a avaliação com nil. Um segmento que não
// existe no tipo é erro.
func EvaluateMemberPath(value any, typ *schema.Type, path string) (any, error) {
	cur := value
	for _, seg := range strings.Split(path, ".") {
		v, t, err := evaluate(cur, typ, seg)
		if err != nil {
			return nil, err
		}
		if v == nil {
			return nil, nil
		}
		cur, typ = v, t
	}
	return cur, nil
}

func evaluate(value any, typ *schema.Type, name string) (any, *schema.Type, error) {
	if attrval.IsNil(value) {
		return nil, nil, nil
	}
	if typ == nil {
		return nil, nil, &ParseError{Member: name, Reason: fmt.Sprintf("cannot evaluate a member of an untyped value %T", value)}
	}
	m, ok := typ.Member(name)
	if !ok {
		return nil, nil, &ParseError{Member: name, Reason: fmt.Sprintf("the member was not found in %s", typ.Name())}
	}
	return m.Get(value), m.Type, nil
}
