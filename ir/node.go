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

// Package ir define a representação intermediária produzida pelo compilador
// de predicados e consumida pelo transpiler.
//
// O conjunto de nós é fechado: quem percorre a árvore deve tratar todos os
// Kind ou falhar. Os nós são imutáveis depois de construídos; a identidade de
// um nó é o seu ponteiro.
package ir

import (
	"fmt"

	"github.com/raywall/dynexpr/schema"
)

// Kind é a tag de variante de um Node.
type Kind int

const (
	KindConstant Kind = iota + 1
	KindRecordParameter
	KindExtensionParameter
	KindMemberAccessor
	KindCompare
	KindBinary
	KindMethodCall
	KindMemberExists
	KindInverse
	KindParenthesized
)

func (k Kind) String() string {
	switch k {
	case KindConstant:
		return "Constant"
	case KindRecordParameter:
		return "RecordParameter"
	case KindExtensionParameter:
		return "ExtensionParameter"
	case KindMemberAccessor:
		return "MemberAccessor"
	case KindCompare:
		return "Compare"
	case KindBinary:
		return "Binary"
	case KindMethodCall:
		return "MethodCall"
	case KindMemberExists:
		return "MemberExists"
	case KindInverse:
		return "Inverse"
	case KindParenthesized:
		return "Parenthesized"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Node é um nó da IR.
type Node interface {
	Kind() Kind
}

// Constant é um literal. Type é o tipo declarado após coerção (nil quando
// nenhum tipo pôde ser inferido).
type Constant struct {
	Value any
	Type  *schema.Type
}

// RecordParameter é o parâmetro do predicado ligado ao registro.
type RecordParameter struct {
	Name string
	Type *schema.Type
}

// ExtensionParameter é o parâmetro opcional que expõe MemberExists.
type ExtensionParameter struct {
	Name string
}

// MemberAccessor acessa o membro Name de Instance.
type MemberAccessor struct {
	Instance Node
	Name     string
	Type     *schema.Type
}

// Compare é uma comparação binária.
type Compare struct {
	Left  Node
	Op    CompareOp
	Right Node
}

// Binary é um AND/OR.
type Binary struct {
	Left  Node
	Op    BinaryOp
	Right Node
}

// MethodCall é uma função nativa do DynamoDB aplicada a Instance.
type MethodCall struct {
	Instance Node
	Method   Method
	Args     []Node
}

// MemberExists é a asserção attribute_exists sobre um membro.
type MemberExists struct {
	Accessor *MemberAccessor
}

// Inverse é uma negação.
type Inverse struct {
	Body Node
}

// Parenthesized marca um agrupamento explícito.
type Parenthesized struct {
	Body Node
}

func (*Constant) Kind() Kind           { return KindConstant }
func (*RecordParameter) Kind() Kind    { return KindRecordParameter }
func (*ExtensionParameter) Kind() Kind { return KindExtensionParameter }
func (*MemberAccessor) Kind() Kind     { return KindMemberAccessor }
func (*Compare) Kind() Kind            { return KindCompare }
func (*Binary) Kind() Kind             { return KindBinary }
func (*MethodCall) Kind() Kind         { return KindMethodCall }
func (*MemberExists) Kind() Kind       { return KindMemberExists }
func (*Inverse) Kind() Kind            { return KindInverse }
func (*Parenthesized) Kind() Kind      { return KindParenthesized }

// ReturnType é o tipo produzido pela chamada: Size retorna inteiro, as
// demais retornam booleano.
func (m *MethodCall) ReturnType() *schema.Type {
	if m.Method == MethodSize {
		return schema.Int
	}
	return schema.Bool
}

// Path retorna os nomes dos membros do acessor, da raiz até ele.
func (m *MemberAccessor) Path() []string {
	var rev []string
	var cur Node = m
	for cur != nil {
		acc, ok := cur.(*MemberAccessor)
		if !ok || acc == nil {
			break
		}
		rev = append(rev, acc.Name)
		cur = acc.Instance
	}
	out := make([]string, len(rev))
	for i, name := range rev {
		out[len(rev)-1-i] = name
	}
	return out
}

// Wrap prepara várias condições de topo para serem unidas com "and":
// quando há mais de uma, cada nó que ainda não é Parenthesized é envolvido.
// Só as posições do slice retornado mudam; os nós originais não são tocados.
func Wrap(nodes []Node) []Node {
	out := make([]Node, len(nodes))
	copy(out, nodes)
	if len(out) < 2 {
		return out
	}
	for i, n := range out {
		if n.Kind() != KindParenthesized {
			out[i] = &Parenthesized{Body: n}
		}
	}
	return out
}
