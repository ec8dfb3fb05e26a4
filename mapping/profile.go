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

// Package mapping declara como cada tipo de registro é lido de e gravado em
// itens do DynamoDB, e monta a partir disso o índice de projeções usado pelo
// transpiler.
//
//	p := mapping.NewProfile()
//	p.Read(userType).
//		Required("UserId", "record_id").
//		Optional("Name", "profile.name")
//	p.Write(userType).
//		PartitionReserved("UserId", "record_id").
//		From("Name", "profile.name")
//	m, err := p.Build()
//
// Um membro obrigatório ausente no item é erro na leitura; um opcional fica
// com o valor zero.
package mapping

import (
	"strings"

	"github.com/raywall/dynexpr/projection"
	"github.com/raywall/dynexpr/schema"
)

type field struct {
	member   string
	path     string
	segments []string
	required bool
	reserved bool
	source   *schema.Kind

	m    *schema.Member
	conv *Converter
}

// FieldOption ajusta uma declaração de membro.
type FieldOption func(*field)

// Stored indica que o atributo é gravado com outro tipo e precisa de um
// conversor registrado para (kind, tipo do membro).
func Stored(kind schema.Kind) FieldOption {
	return func(f *field) { f.source = &kind }
}

type typeMap struct {
	t      *schema.Type
	fields []*field
	index  map[string]int
}

func newTypeMap(t *schema.Type) *typeMap {
	return &typeMap{t: t, index: make(map[string]int)}
}

func (tm *typeMap) add(f *field, opts []FieldOption) {
	f.segments = strings.Split(f.path, ".")
	for _, opt := range opts {
		opt(f)
	}
	if i, ok := tm.index[f.member]; ok {
		tm.fields[i] = f
		return
	}
	tm.index[f.member] = len(tm.fields)
	tm.fields = append(tm.fields, f)
}

// Profile acumula os mapeamentos até Build.
type Profile struct {
	reads      map[*schema.Type]*typeMap
	writes     map[*schema.Type]*typeMap
	order      []*schema.Type
	converters *Converters
}

// NewProfile cria um perfil com os conversores padrão.
func NewProfile() *Profile {
	return &Profile{
		reads:      make(map[*schema.Type]*typeMap),
		writes:     make(map[*schema.Type]*typeMap),
		converters: NewConverters(),
	}
}

// Converters expõe o registro para conversores próprios.
func (p *Profile) Converters() *Converters { return p.converters }

func (p *Profile) track(t *schema.Type) {
	_, r := p.reads[t]
	_, w := p.writes[t]
	if !r && !w {
		p.order = append(p.order, t)
	}
}

// ReadMap declara como um tipo é lido.
type ReadMap struct {
	tm *typeMap
}

// Read retorna o mapa de leitura de t.
func (p *Profile) Read(t *schema.Type) *ReadMap {
	tm, ok := p.reads[t]
	if !ok {
		p.track(t)
		tm = newTypeMap(t)
		p.reads[t] = tm
	}
	return &ReadMap{tm: tm}
}

// Required liga member a path; o atributo precisa existir no item.
func (r *ReadMap) Required(member, path string, opts ...FieldOption) *ReadMap {
	r.tm.add(&field{member: member, path: path, required: true}, opts)
	return r
}

// Optional liga member a path; sem o atributo o membro fica com o valor zero.
func (r *ReadMap) Optional(member, path string, opts ...FieldOption) *ReadMap {
	r.tm.add(&field{member: member, path: path}, opts)
	return r
}

// WriteMap declara como um tipo é gravado.
type WriteMap struct {
	tm *typeMap
}

// Write retorna o mapa de escrita de t.
func (p *Profile) Write(t *schema.Type) *WriteMap {
	tm, ok := p.writes[t]
	if !ok {
		p.track(t)
		tm = newTypeMap(t)
		p.writes[t] = tm
	}
	return &WriteMap{tm: tm}
}

// From grava member em path.
func (w *WriteMap) From(member, path string, opts ...FieldOption) *WriteMap {
	w.tm.add(&field{member: member, path: path}, opts)
	return w
}

// PartitionReserved marca path como atributo de chave: o valor vem das
// chaves da operação e não do registro, mas o membro continua resolvível em
// condições e atualizações.
func (w *WriteMap) PartitionReserved(member, path string) *WriteMap {
	w.tm.add(&field{member: member, path: path, reserved: true}, nil)
	return w
}

// Build valida o perfil e monta o Mapper. Membros e conversores que não
// existem falham aqui, nunca durante o uso.
func (p *Profile) Build() (*Mapper, error) {
	b := projection.NewBuilder()

	for _, t := range p.order {
		if tm, ok := p.reads[t]; ok {
			if err := p.resolve(b, projection.Read, tm); err != nil {
				return nil, err
			}
		}
		if tm, ok := p.writes[t]; ok {
			if err := p.resolve(b, projection.Write, tm); err != nil {
				return nil, err
			}
		}
	}

	return &Mapper{
		index:  b.Build(),
		reads:  p.reads,
		writes: p.writes,
	}, nil
}

func (p *Profile) resolve(b *projection.Builder, dir projection.Direction, tm *typeMap) error {
	for _, f := range tm.fields {
		m, ok := tm.t.Member(f.member)
		if !ok {
			return &ConfigurationError{Type: tm.t.Name(), Member: f.member, Path: f.path, Reason: "no such member"}
		}
		f.m = m
		if f.source != nil {
			conv, ok := p.converters.Lookup(*f.source, m.Type)
			if !ok {
				return &ConfigurationError{
					Type: tm.t.Name(), Member: f.member, Path: f.path,
					Reason: "no converter from " + f.source.String() + " to " + m.Type.Name(),
				}
			}
			f.conv = &conv
		}
		if err := b.Declare(tm.t, dir, f.member, f.path, m.Type); err != nil {
			return &ConfigurationError{Type: tm.t.Name(), Member: f.member, Path: f.path, Reason: err.Error()}
		}
	}
	return nil
}
