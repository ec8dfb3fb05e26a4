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

// Package projection mantém, por tipo e por direção (leitura/escrita), o
// mapa de membros lógicos para caminhos físicos de atributos do DynamoDB.
//
// Cada projeção tem duas visões construídas das mesmas declarações:
//
//   - NameTable: membro -> (caminho, tipo, tabela do tipo aninhado), usada
//     para resolver acessores de membros;
//   - hierarquia: uma trie de segmentos de caminho guardada numa arena de
//     níveis (LevelID), usada apenas para emitir ProjectionExpression.
//
// O Index é montado uma vez (Builder.Build) e é somente leitura depois disso;
// leituras concorrentes não precisam de sincronização.
package projection

import (
	"github.com/raywall/dynexpr/schema"
)

// Direction separa as projeções de leitura e de escrita.
type Direction int

const (
	Read Direction = iota
	Write
)

func (d Direction) String() string {
	if d == Write {
		return "write"
	}
	return "read"
}

// NameRef é a entrada de um membro lógico.
type NameRef struct {
	// Path é o caminho físico, possivelmente com vários segmentos ("a.b.c").
	Path string
	// Type é o tipo declarado do membro.
	Type *schema.Type
	// Nested é a tabela do tipo do membro (vazia quando ele não tem membros).
	Nested NameTable
}

type table struct {
	entries map[string]NameRef
	order   []string
}

// NameTable é uma visão somente leitura sobre a tabela de nomes de um tipo.
// Tabelas de tipos aninhados são compartilhadas por referência, então uma
// declaração feita depois do vínculo continua visível.
type NameTable struct {
	t *table
}

// Lookup resolve um membro lógico.
func (n NameTable) Lookup(member string) (NameRef, bool) {
	if n.t == nil {
		return NameRef{}, false
	}
	ref, ok := n.t.entries[member]
	return ref, ok
}

// Len é o número de membros declarados.
func (n NameTable) Len() int {
	if n.t == nil {
		return 0
	}
	return len(n.t.entries)
}

// Members retorna os membros na ordem da primeira declaração.
func (n NameTable) Members() []string {
	if n.t == nil {
		return nil
	}
	out := make([]string, len(n.t.order))
	copy(out, n.t.order)
	return out
}

// LevelID identifica um nível da hierarquia dentro da arena.
type LevelID int

// Segment é um nó da hierarquia: um segmento de caminho e o nível abaixo dele.
type Segment struct {
	Name   string
	Nested LevelID
}

type level struct {
	segs  []Segment
	index map[string]int
}

type arena struct {
	levels []*level
}

func (a *arena) alloc() LevelID {
	a.levels = append(a.levels, &level{index: make(map[string]int)})
	return LevelID(len(a.levels) - 1)
}

// Projection é a projeção de um tipo numa direção.
type Projection struct {
	owner *schema.Type
	names NameTable
	root  LevelID
	arena *arena
}

// Type é o tipo dono da projeção.
func (p *Projection) Type() *schema.Type { return p.owner }

// Names retorna a tabela de nomes do tipo.
func (p *Projection) Names() NameTable { return p.names }

// Root é o nível raiz da hierarquia do tipo.
func (p *Projection) Root() LevelID { return p.root }

// Segments lista os filhos de um nível na ordem de inserção.
func (p *Projection) Segments(id LevelID) []Segment {
	if int(id) < 0 || int(id) >= len(p.arena.levels) {
		return nil
	}
	lv := p.arena.levels[id]
	out := make([]Segment, len(lv.segs))
	copy(out, lv.segs)
	return out
}

// HasSegments indica se o nível tem filhos.
func (p *Projection) HasSegments(id LevelID) bool {
	if int(id) < 0 || int(id) >= len(p.arena.levels) {
		return false
	}
	return len(p.arena.levels[id].segs) > 0
}
