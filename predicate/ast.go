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
package predicate

import "github.com/raywall/dynexpr/schema"

// Expr é um nó da árvore de entrada do compilador. A árvore é produzida pelo
// builder fluente (Where) ou por um front-end como o celpred.
type Expr interface {
	hostExpr()
}

// Lambda é a função (registro, extensão) -> bool.
type Lambda struct {
	Params []Param
	Body   Expr
}

// Param declara um parâmetro. Extension marca o parâmetro de extensão, que
// só serve para MemberExists.
type Param struct {
	Name      string
	Type      *schema.Type
	Extension bool
}

// Ref referencia um parâmetro pelo nome.
type Ref struct {
	Name string
}

// Member acessa o membro Name de Target.
type Member struct {
	Target Expr
	Name   string
}

// Call chama Method sobre Target. Com Target nil o primeiro argumento faz o
// papel de instância.
type Call struct {
	Target Expr
	Method string
	Args   []Expr
}

// BinaryOp enumera os operadores binários aceitos.
type BinaryOp int

const (
	OpAndAlso BinaryOp = iota + 1
	OpOrElse
	OpEqual
	OpNotEqual
	OpLess
	OpLessOrEqual
	OpGreater
	OpGreaterOrEqual
)

// BinaryExpr é uma operação binária.
type BinaryExpr struct {
	Op          BinaryOp
	Left, Right Expr
}

// UnaryOp enumera os operadores unários aceitos.
type UnaryOp int

const (
	OpNot UnaryOp = iota + 1
	// OpConvert é uma conversão de tipo; não gera nada na saída.
	OpConvert
	// OpArrayLength é o tamanho de um array ou string.
	OpArrayLength
)

// UnaryExpr é uma operação unária.
type UnaryExpr struct {
	Op      UnaryOp
	Operand Expr
}

// Const é um literal.
type Const struct {
	Value any
}

// Captured é um valor vivo capturado pelo predicado. Acessos a membros sobre
// ele são avaliados durante a compilação, usando a tabela de acessores de Type.
type Captured struct {
	Value any
	Type  *schema.Type
}

func (*Ref) hostExpr()        {}
func (*Member) hostExpr()     {}
func (*Call) hostExpr()       {}
func (*BinaryExpr) hostExpr() {}
func (*UnaryExpr) hostExpr()  {}
func (*Const) hostExpr()      {}
func (*Captured) hostExpr()   {}
