package transpile

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/raywall/dynexpr/alias"
	"github.com/raywall/dynexpr/ir"
	"github.com/raywall/dynexpr/predicate"
	"github.com/raywall/dynexpr/projection"
	"github.com/raywall/dynexpr/schema"
)

var (
	// ErrZeroDelta é retornado por Increase com delta zero.
	ErrZeroDelta = errors.New("transpile: increase delta must not be zero")
	// ErrDeltaOverflow é retornado por Increase quando o valor absoluto do
	// delta não cabe no tipo (math.MinInt64, math.MinInt).
	ErrDeltaOverflow = errors.New("transpile: increase delta overflows when negated")
)

type section int

const (
	sectionSet section = iota
	sectionRemove
	sectionAdd
	sectionDelete
)

var sectionNames = [...]string{"SET", "REMOVE", "ADD", "DELETE"}

type clause struct {
	section section
	render  func(path string, scope *alias.Scope) string
	member  *ir.MemberAccessor
}

// Update acumula diretivas de atualização de um registro e gera a
// UpdateExpression. As seções saem sempre na ordem SET, REMOVE, ADD, DELETE.
//
// Erros de membro ou de conversão ficam guardados e são devolvidos por Build.
type Update struct {
	recordType *schema.Type
	proj       *projection.Projection
	clauses    []clause
	err        error
}

// NewUpdate cria um builder para recordType usando a projeção de escrita.
func NewUpdate(recordType *schema.Type, proj *projection.Projection) *Update {
	return &Update{recordType: recordType, proj: proj}
}

func (u *Update) accessor(member string) *ir.MemberAccessor {
	if u.err != nil {
		return nil
	}
	acc, err := predicate.Accessor(u.recordType, member)
	if err != nil {
		u.err = err
		return nil
	}
	return acc
}

func (u *Update) value(acc *ir.MemberAccessor, v any) (any, bool) {
	if acc.Type == nil {
		return v, true
	}
	out, err := acc.Type.Coerce(v)
	if err != nil {
		u.err = fmt.Errorf("transpile: %s: %w", acc.Name, err)
		return nil, false
	}
	return out, true
}

func (u *Update) add(s section, acc *ir.MemberAccessor, render func(path string, scope *alias.Scope) string) *Update {
	u.clauses = append(u.clauses, clause{section: s, member: acc, render: render})
	return u
}

// Set grava value no membro: "path = :v".
func (u *Update) Set(member string, value any) *Update {
	acc := u.accessor(member)
	if acc == nil {
		return u
	}
	v, ok := u.value(acc, value)
	if !ok {
		return u
	}
	return u.add(sectionSet, acc, func(path string, scope *alias.Scope) string {
		return path + " = " + scope.MemberValue(v, acc.Type, acc.Path())
	})
}

// SetIfNotExists só grava quando o atributo não existe:
// "path = if_not_exists(path, :v)".
func (u *Update) SetIfNotExists(member string, value any) *Update {
	acc := u.accessor(member)
	if acc == nil {
		return u
	}
	v, ok := u.value(acc, value)
	if !ok {
		return u
	}
	return u.add(sectionSet, acc, func(path string, scope *alias.Scope) string {
		return path + " = if_not_exists(" + path + ", " + scope.MemberValue(v, acc.Type, acc.Path()) + ")"
	})
}

// Increase soma delta ao membro numérico: "path = path + :v", ou
// "path = path - :v" com o valor absoluto quando delta é negativo.
func (u *Update) Increase(member string, delta any) *Update {
	acc := u.accessor(member)
	if acc == nil {
		return u
	}
	if acc.Type == nil {
		u.err = &NotSupportedError{What: fmt.Sprintf("increase on untyped member %s", acc.Name)}
		return u
	}
	switch acc.Type.Kind() {
	case schema.KindInt, schema.KindInt64, schema.KindFloat:
	default:
		u.err = &NotSupportedError{What: fmt.Sprintf("increase on %s member %s", acc.Type.Name(), acc.Name)}
		return u
	}
	v, ok := u.value(acc, delta)
	if !ok {
		return u
	}

	sign := " + "
	switch n := v.(type) {
	case int:
		if n == math.MinInt {
			u.err = ErrDeltaOverflow
		}
		if n < 0 {
			sign, v = " - ", -n
		}
		if n == 0 {
			u.err = ErrZeroDelta
		}
	case int64:
		if n == math.MinInt64 {
			u.err = ErrDeltaOverflow
		}
		if n < 0 {
			sign, v = " - ", -n
		}
		if n == 0 {
			u.err = ErrZeroDelta
		}
	case float64:
		if n < 0 {
			sign, v = " - ", -n
		}
		if n == 0 {
			u.err = ErrZeroDelta
		}
	}
	if u.err != nil {
		return u
	}
	return u.add(sectionSet, acc, func(path string, scope *alias.Scope) string {
		return path + " = " + path + sign + scope.Value(v, acc.Type)
	})
}

// AppendToList concatena values ao fim da lista. Uma lista vazia não gera
// cláusula.
func (u *Update) AppendToList(member string, values any) *Update {
	return u.listAppend(member, values, false)
}

// PrependToList concatena values no início da lista.
func (u *Update) PrependToList(member string, values any) *Update {
	return u.listAppend(member, values, true)
}

func (u *Update) listAppend(member string, values any, prepend bool) *Update {
	acc := u.accessor(member)
	if acc == nil {
		return u
	}
	n, err := collectionLen(acc.Name, values)
	if err != nil {
		u.err = err
		return u
	}
	if n == 0 {
		return u
	}
	return u.add(sectionSet, acc, func(path string, scope *alias.Scope) string {
		a := scope.Value(values, acc.Type)
		if prepend {
			return path + " = list_append(" + a + ", " + path + ")"
		}
		return path + " = list_append(" + path + ", " + a + ")"
	})
}

// Add usa a ação ADD (números e conjuntos): "path :v".
func (u *Update) Add(member string, value any) *Update {
	acc := u.accessor(member)
	if acc == nil {
		return u
	}
	v, ok := u.value(acc, value)
	if !ok {
		return u
	}
	return u.add(sectionAdd, acc, func(path string, scope *alias.Scope) string {
		return path + " " + scope.Value(v, acc.Type)
	})
}

// Delete remove elementos de um conjunto: "path :v". Um conjunto vazio não
// gera cláusula.
func (u *Update) Delete(member string, values any) *Update {
	acc := u.accessor(member)
	if acc == nil {
		return u
	}
	n, err := collectionLen(acc.Name, values)
	if err != nil {
		u.err = err
		return u
	}
	if n == 0 {
		return u
	}
	return u.add(sectionDelete, acc, func(path string, scope *alias.Scope) string {
		return path + " " + scope.Value(values, acc.Type)
	})
}

// Remove apaga o atributo.
func (u *Update) Remove(member string) *Update {
	acc := u.accessor(member)
	if acc == nil {
		return u
	}
	return u.add(sectionRemove, acc, func(path string, _ *alias.Scope) string {
		return path
	})
}

// Err devolve o primeiro erro acumulado.
func (u *Update) Err() error { return u.err }

// Build gera a UpdateExpression usando scope, o mesmo da ConditionExpression
// da operação.
func (u *Update) Build(scope *alias.Scope) (string, error) {
	if u.err != nil {
		return "", u.err
	}
	if len(u.clauses) == 0 {
		return "", ErrEmptyUpdate
	}

	v := &visitor{scope: scope, proj: u.proj}
	var parts []string
	for s := range sectionNames {
		var items []string
		for _, c := range u.clauses {
			if c.section != section(s) {
				continue
			}
			path, err := v.member(c.member)
			if err != nil {
				return "", err
			}
			items = append(items, c.render(path, scope))
		}
		if len(items) > 0 {
			parts = append(parts, sectionNames[s]+" "+strings.Join(items, ", "))
		}
	}
	return strings.Join(parts, " "), nil
}

func collectionLen(member string, values any) (int, error) {
	if values == nil {
		return 0, fmt.Errorf("transpile: %s: values must not be nil", member)
	}
	rv := reflect.ValueOf(values)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len(), nil
	}
	return 0, fmt.Errorf("transpile: %s: %T is not a collection", member, values)
}
