package transpile

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/raywall/dynexpr/alias"
)

// QueryOperator é o operador de um componente de chave.
type QueryOperator int

const (
	Equals QueryOperator = iota
	NotEquals
	Contains
	NotContains
	BeginsWith
	Greater
	GreaterOrEqual
	Less
	LessOrEqual
)

var queryOperatorNames = [...]string{
	Equals:         "Equals",
	NotEquals:      "NotEquals",
	Contains:       "Contains",
	NotContains:    "NotContains",
	BeginsWith:     "BeginsWith",
	Greater:        "Greater",
	GreaterOrEqual: "GreaterOrEqual",
	Less:           "Less",
	LessOrEqual:    "LessOrEqual",
}

func (op QueryOperator) String() string {
	if op >= 0 && int(op) < len(queryOperatorNames) {
		return queryOperatorNames[op]
	}
	return fmt.Sprintf("QueryOperator(%d)", int(op))
}

// PartitionKey é um componente de chave usado em KeyConditionExpression e
// na montagem do Key das operações de item.
type PartitionKey struct {
	Name     string
	Value    any
	Operator QueryOperator
}

// Key cria um componente de igualdade.
func Key(name string, value any) PartitionKey {
	return PartitionKey{Name: name, Value: value, Operator: Equals}
}

// KeyWith cria um componente com operador explícito.
func KeyWith(name string, op QueryOperator, value any) PartitionKey {
	return PartitionKey{Name: name, Value: value, Operator: op}
}

// KeyCondition gera a KeyConditionExpression: uma cláusula por componente,
// unidas com " and ". Só Equals, BeginsWith e as comparações de ordem são
// aceitas.
func (Transpiler) KeyCondition(keys []PartitionKey, scope *alias.Scope) (string, error) {
	clauses := make([]string, 0, len(keys))
	for _, k := range keys {
		name := scope.Name(k.Name)
		value := scope.Value(k.Value, nil)

		var clause string
		switch k.Operator {
		case BeginsWith:
			clause = "begins_with(" + name + ", " + value + ")"
		case Equals:
			clause = name + " = " + value
		case Less:
			clause = name + " < " + value
		case LessOrEqual:
			clause = name + " <= " + value
		case Greater:
			clause = name + " > " + value
		case GreaterOrEqual:
			clause = name + " >= " + value
		default:
			return "", &NotSupportedError{What: fmt.Sprintf("the key condition operator %s", k.Operator)}
		}
		clauses = append(clauses, clause)
	}
	return strings.Join(clauses, " and "), nil
}

// Composite monta um valor de chave composta: cada segmento é codificado
// como query string e os segmentos são unidos por '#'.
func Composite(segments ...string) (string, error) {
	if len(segments) == 0 {
		return "", errors.New("transpile: composite key needs at least one segment")
	}
	out := make([]string, len(segments))
	for i, s := range segments {
		out[i] = url.QueryEscape(s)
	}
	return strings.Join(out, "#"), nil
}
