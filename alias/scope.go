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

// Package alias aloca os placeholders de nomes e valores usados nas
// expressões do DynamoDB.
//
// Um Scope vale para uma única operação (uma requisição) e não deve ser
// compartilhado entre goroutines nem reaproveitado.
package alias

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/raywall/dynexpr/attrval"
	"github.com/raywall/dynexpr/schema"
)

const (
	NamePrefix  = "#attr_name_"
	ValuePrefix = ":attr_val_"
	// NullAlias é compartilhado por todo valor nulo, seja qual for o tipo.
	NullAlias = ":attr_val_null"
)

// Entry é um valor registrado no escopo. Member só é preenchido quando o
// valor foi ligado a um membro que o Codec converte.
type Entry struct {
	Alias  string
	Value  any
	Type   *schema.Type
	Member []string
}

// Codec converte valores comparados ou gravados num membro do registro para
// a mesma representação que o mapeamento usa no item.
type Codec interface {
	// Binds indica se os valores de member passam por Encode.
	Binds(member []string) bool
	Encode(member []string, v any) (types.AttributeValue, error)
}

type valueKey struct {
	t      *schema.Type
	v      any
	member string
}

// Scope guarda os aliases de uma operação.
type Scope struct {
	names   map[string]string
	byAlias map[string]string
	values  map[valueKey]string
	entries []Entry
	null    bool
	codec   Codec
}

// Option ajusta um Scope.
type Option func(*Scope)

// WithCodec faz os valores ligados a membros passarem por c.
func WithCodec(c Codec) Option {
	return func(s *Scope) { s.codec = c }
}

// NewScope cria um escopo vazio.
func NewScope(opts ...Option) *Scope {
	s := &Scope{
		names:   make(map[string]string),
		byAlias: make(map[string]string),
		values:  make(map[valueKey]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name retorna o alias do nome de atributo, deduplicando pelo texto literal.
func (s *Scope) Name(attr string) string {
	if a, ok := s.names[attr]; ok {
		return a
	}
	a := NamePrefix + strconv.Itoa(len(s.names))
	s.names[attr] = a
	s.byAlias[a] = attr
	return a
}

// Value retorna o alias de um valor com tipo declarado t.
//
// Valores comparáveis são deduplicados por (tipo, valor); valores não
// comparáveis (slices, maps) sempre recebem um alias novo. nil usa NullAlias.
// Quando t é nil o tipo é inferido do valor Go.
func (s *Scope) Value(v any, t *schema.Type) string {
	return s.value(v, t, nil)
}

// MemberValue é Value para um valor comparado com ou gravado em member
// (nomes dos membros a partir da raiz do registro). Quando o Codec liga o
// membro, o valor é convertido por ele e só é deduplicado dentro do mesmo
// membro; nos demais casos equivale a Value.
func (s *Scope) MemberValue(v any, t *schema.Type, member []string) string {
	if s.codec == nil || len(member) == 0 || !s.codec.Binds(member) {
		member = nil
	}
	return s.value(v, t, member)
}

func (s *Scope) value(v any, t *schema.Type, member []string) string {
	if attrval.IsNil(v) {
		return s.Null()
	}
	if t == nil {
		t = schema.TypeOf(v)
	}

	key := valueKey{t: t, v: v, member: strings.Join(member, ".")}
	comparable := schema.Comparable(v)
	if comparable {
		if a, ok := s.values[key]; ok {
			return a
		}
	}

	a := ValuePrefix + strconv.Itoa(len(s.entries))
	s.entries = append(s.entries, Entry{Alias: a, Value: v, Type: t, Member: member})
	if comparable {
		s.values[key] = a
	}
	return a
}

// Null registra e retorna o alias de nulo.
func (s *Scope) Null() string {
	s.null = true
	return NullAlias
}

// Names é o mapa alias -> nome para ExpressionAttributeNames (nil quando vazio).
func (s *Scope) Names() map[string]string {
	if len(s.byAlias) == 0 {
		return nil
	}
	out := make(map[string]string, len(s.byAlias))
	for k, v := range s.byAlias {
		out[k] = v
	}
	return out
}

// HasValues indica se algum valor (inclusive nulo) foi registrado.
func (s *Scope) HasValues() bool {
	return len(s.entries) > 0 || s.null
}

// Values lista os valores na ordem de alocação (sem o nulo).
func (s *Scope) Values() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// AttributeValues converte os valores para ExpressionAttributeValues
// (nil quando vazio).
func (s *Scope) AttributeValues() (map[string]types.AttributeValue, error) {
	if !s.HasValues() {
		return nil, nil
	}
	out := make(map[string]types.AttributeValue, len(s.entries)+1)
	for _, e := range s.entries {
		var (
			av  types.AttributeValue
			err error
		)
		if e.Member != nil {
			av, err = s.codec.Encode(e.Member, e.Value)
		} else {
			av, err = attrval.Marshal(e.Value, e.Type)
		}
		if err != nil {
			return nil, fmt.Errorf("alias: value %s: %w", e.Alias, err)
		}
		out[e.Alias] = av
	}
	if s.null {
		out[NullAlias] = &types.AttributeValueMemberNULL{Value: true}
	}
	return out, nil
}
