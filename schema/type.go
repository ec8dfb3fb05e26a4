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
package schema

import (
	"sort"
	"strings"
	"time"
)

// Kind identifica a família de um Type.
type Kind int

const (
	KindAny Kind = iota
	KindString
	KindInt
	KindInt64
	KindFloat
	KindBool
	KindTime
	KindBinary
	KindEnum
	KindList
	KindSet
	KindMap
	KindRecord
)

var kindNames = map[Kind]string{
	KindAny:    "any",
	KindString: "string",
	KindInt:    "int",
	KindInt64:  "int64",
	KindFloat:  "float",
	KindBool:   "bool",
	KindTime:   "time",
	KindBinary: "binary",
	KindEnum:   "enum",
	KindList:   "list",
	KindSet:    "set",
	KindMap:    "map",
	KindRecord: "record",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "unknown"
}

// ParseKind é o inverso de Kind.String.
func ParseKind(s string) (Kind, bool) {
	for k, n := range kindNames {
		if n == strings.ToLower(s) {
			return k, true
		}
	}
	return KindAny, false
}

// Type descreve o tipo declarado de um membro ou de um registro.
//
// A identidade de um Type é o seu ponteiro: dois valores iguais só
// compartilham alias quando declarados com o mesmo *Type.
type Type struct {
	name    string
	kind    Kind
	elem    *Type
	enum    map[string]struct{}
	members map[string]*Member
	order   []string
	newFn   func() any
}

// Tipos primitivos compartilhados.
var (
	Any    = &Type{name: "any", kind: KindAny}
	String = &Type{name: "string", kind: KindString}
	Int    = &Type{name: "int", kind: KindInt}
	Int64  = &Type{name: "int64", kind: KindInt64}
	Float  = &Type{name: "float", kind: KindFloat}
	Bool   = &Type{name: "bool", kind: KindBool}
	Time   = &Type{name: "time", kind: KindTime}
	Binary = &Type{name: "binary", kind: KindBinary}
)

// ListOf cria um tipo lista com elementos do tipo informado.
func ListOf(elem *Type) *Type {
	return &Type{name: "list<" + elem.Name() + ">", kind: KindList, elem: elem}
}

// SetOf cria um tipo conjunto (SS, NS ou BS no DynamoDB).
func SetOf(elem *Type) *Type {
	return &Type{name: "set<" + elem.Name() + ">", kind: KindSet, elem: elem}
}

// MapOf cria um mapa string -> elem.
func MapOf(elem *Type) *Type {
	return &Type{name: "map<" + elem.Name() + ">", kind: KindMap, elem: elem}
}

// Enum cria um tipo enumerado baseado em string.
func Enum(name string, values ...string) *Type {
	t := &Type{name: name, kind: KindEnum, enum: make(map[string]struct{}, len(values))}
	for _, v := range values {
		t.enum[v] = struct{}{}
	}
	return t
}

func (t *Type) Name() string { return t.name }
func (t *Type) Kind() Kind   { return t.kind }

// Elem retorna o tipo dos elementos de List, Set e Map (nil nos demais).
func (t *Type) Elem() *Type { return t.elem }

func (t *Type) String() string { return t.name }

// EnumValues retorna os valores aceitos de um Enum, ordenados.
func (t *Type) EnumValues() []string {
	out := make([]string, 0, len(t.enum))
	for v := range t.enum {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// IsCollection indica se o tipo suporta size() e contains().
func (t *Type) IsCollection() bool {
	return t.kind == KindList || t.kind == KindSet || t.kind == KindMap
}

// Member procura um membro registrado num tipo Record.
func (t *Type) Member(name string) (*Member, bool) {
	if t.members == nil {
		return nil, false
	}
	m, ok := t.members[name]
	return m, ok
}

// Members retorna os membros na ordem de registro.
func (t *Type) Members() []*Member {
	out := make([]*Member, 0, len(t.order))
	for _, name := range t.order {
		out = append(out, t.members[name])
	}
	return out
}

// New cria uma instância vazia do registro (ponteiro para a struct, ou
// Dynamic para registros dinâmicos). Retorna nil para tipos não-Record.
func (t *Type) New() any {
	if t.newFn == nil {
		return nil
	}
	return t.newFn()
}

func (t *Type) register(m *Member) {
	if _, exists := t.members[m.Name]; !exists {
		t.order = append(t.order, m.Name)
	}
	t.members[m.Name] = m
}

// TypeOf infere o Type de um valor Go sem declaração explícita.
func TypeOf(v any) *Type {
	switch v.(type) {
	case string:
		return String
	case bool:
		return Bool
	case int, int8, int16, int32, uint, uint8, uint16, uint32:
		return Int
	case int64, uint64:
		return Int64
	case float32, float64:
		return Float
	case time.Time:
		return Time
	case []byte:
		return Binary
	default:
		return Any
	}
}
