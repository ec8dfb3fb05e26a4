// Copyright 2025 Raywall Malheiros de Souza
// Licensed under the Mozilla Public License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	https://www.mozilla.org/en-US/MPL/2.0/
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package attrval converte valores Go de/para types.AttributeValue
// respeitando o tipo declarado no schema, e serializa mapas de atributos
// numa forma JSON canônica.
package attrval

import (
	"fmt"
	"reflect"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/raywall/dynexpr/schema"
	"github.com/spf13/cast"
)

// IsNil reconhece nil e ponteiros, maps e slices nulos.
func IsNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// Marshal converte v para AttributeValue. Conjuntos declarados com
// schema.SetOf viram SS, NS ou BS; o restante segue o attributevalue.Marshal.
func Marshal(v any, t *schema.Type) (types.AttributeValue, error) {
	if IsNil(v) {
		return &types.AttributeValueMemberNULL{Value: true}, nil
	}
	if t != nil && t.Kind() == schema.KindSet {
		return marshalSet(v, t.Elem())
	}
	av, err := attributevalue.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("attrval: marshal %T: %w", v, err)
	}
	return av, nil
}

func marshalSet(v any, elem *schema.Type) (types.AttributeValue, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("attrval: set value must be a slice, got %T", v)
	}

	kind := schema.KindString
	if elem != nil {
		kind = elem.Kind()
	}

	switch kind {
	case schema.KindInt, schema.KindInt64, schema.KindFloat:
		out := make([]string, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			s, err := cast.ToStringE(rv.Index(i).Interface())
			if err != nil {
				return nil, fmt.Errorf("attrval: number set: %w", err)
			}
			out = append(out, s)
		}
		return &types.AttributeValueMemberNS{Value: out}, nil
	case schema.KindBinary:
		out := make([][]byte, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			b, ok := rv.Index(i).Interface().([]byte)
			if !ok {
				return nil, fmt.Errorf("attrval: binary set element %T", rv.Index(i).Interface())
			}
			out = append(out, b)
		}
		return &types.AttributeValueMemberBS{Value: out}, nil
	default:
		out := make([]string, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			s, err := cast.ToStringE(rv.Index(i).Interface())
			if err != nil {
				return nil, fmt.Errorf("attrval: string set: %w", err)
			}
			out = append(out, s)
		}
		return &types.AttributeValueMemberSS{Value: out}, nil
	}
}

// Unmarshal decodifica av em out (ponteiro), como attributevalue.Unmarshal.
func Unmarshal(av types.AttributeValue, out any) error {
	if err := attributevalue.Unmarshal(av, out); err != nil {
		return fmt.Errorf("attrval: unmarshal into %T: %w", out, err)
	}
	return nil
}

// Lookup percorre um caminho pontilhado dentro de um item, descendo por
// atributos M. Retorna false quando algum segmento não existe.
func Lookup(item map[string]types.AttributeValue, segments []string) (types.AttributeValue, bool) {
	var cur types.AttributeValue
	src := item
	for i, seg := range segments {
		av, ok := src[seg]
		if !ok {
			return nil, false
		}
		cur = av
		if i == len(segments)-1 {
			break
		}
		m, ok := av.(*types.AttributeValueMemberM)
		if !ok {
			return nil, false
		}
		src = m.Value
	}
	return cur, cur != nil
}

// Put grava av no caminho pontilhado, criando os mapas intermediários.
func Put(item map[string]types.AttributeValue, segments []string, av types.AttributeValue) error {
	dst := item
	for i, seg := range segments {
		if i == len(segments)-1 {
			dst[seg] = av
			return nil
		}
		next, ok := dst[seg]
		if !ok {
			m := &types.AttributeValueMemberM{Value: make(map[string]types.AttributeValue)}
			dst[seg] = m
			dst = m.Value
			continue
		}
		m, ok := next.(*types.AttributeValueMemberM)
		if !ok {
			return fmt.Errorf("attrval: segment %q is not a map", seg)
		}
		dst = m.Value
	}
	return nil
}
