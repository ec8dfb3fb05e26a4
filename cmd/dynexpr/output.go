package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/raywall/dynexpr/alias"
	"github.com/raywall/dynexpr/attrval"
	"github.com/spf13/cobra"
)

// textRenderer é implementado pelos resultados que têm saída em texto.
type textRenderer interface {
	renderText(w io.Writer)
}

func render(cmd *cobra.Command, opts *rootOptions, v textRenderer) error {
	w := cmd.OutOrStdout()
	if opts.Format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	v.renderText(w)
	return nil
}

// expressionOutput é o que a maioria dos comandos imprime: a expressão e os
// placeholders usados por ela.
type expressionOutput struct {
	Expression string                     `json:"expression"`
	Names      map[string]string          `json:"names,omitempty"`
	Values     map[string]json.RawMessage `json:"values,omitempty"`
}

func newExpressionOutput(expr string, scope *alias.Scope) (*expressionOutput, error) {
	avs, err := scope.AttributeValues()
	if err != nil {
		return nil, err
	}
	values, err := rawValues(avs)
	if err != nil {
		return nil, err
	}
	return &expressionOutput{Expression: expr, Names: scope.Names(), Values: values}, nil
}

// rawValues serializa cada valor no formato DynamoDB JSON.
func rawValues(avs map[string]types.AttributeValue) (map[string]json.RawMessage, error) {
	if len(avs) == 0 {
		return nil, nil
	}
	data, err := attrval.MarshalJSON(avs)
	if err != nil {
		return nil, err
	}
	var out map[string]json.RawMessage
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (o *expressionOutput) renderText(w io.Writer) {
	fmt.Fprintf(w, "expression: %s\n", o.Expression)
	if len(o.Names) > 0 {
		fmt.Fprintln(w, "names:")
		for _, k := range sortedKeys(o.Names) {
			fmt.Fprintf(w, "  %s = %s\n", k, o.Names[k])
		}
	}
	if len(o.Values) > 0 {
		fmt.Fprintln(w, "values:")
		for _, k := range sortedKeys(o.Values) {
			fmt.Fprintf(w, "  %s = %s\n", k, o.Values[k])
		}
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
