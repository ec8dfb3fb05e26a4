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
	"fmt"
	"reflect"
)

// Member é uma entrada da tabela de acessores de um Record.
type Member struct {
	Name string
	Type *Type

	get func(rec any) any
	set func(rec any, v any) error
	ref func(rec any) any
}

// Get lê o valor do membro. Um registro nil, ou um valor nil
// (ponteiro, slice ou map), resulta em nil.
func (m *Member) Get(rec any) any {
	return m.get(rec)
}

// Set atribui v ao membro. v deve ser do tipo Go do campo (ou ponteiro para ele).
func (m *Member) Set(rec any, v any) error {
	return m.set(rec, v)
}

// Ref retorna um ponteiro para o campo, ou nil quando o registro não é
// uma struct (registros dinâmicos).
func (m *Member) Ref(rec any) any {
	if m.ref == nil {
		return nil
	}
	return m.ref(rec)
}

// RecordType amarra um tipo Go T ao seu descritor.
type RecordType[T any] struct {
	t *Type
}

// NewRecord cria o descritor de um registro. O *Type já existe antes dos
// campos serem declarados, então um registro pode referenciar a si mesmo.
func NewRecord[T any](name string) *RecordType[T] {
	return &RecordType[T]{t: &Type{
		name:    name,
		kind:    KindRecord,
		members: make(map[string]*Member),
		newFn:   func() any { return new(T) },
	}}
}

// Type retorna o descritor do registro.
func (r *RecordType[T]) Type() *Type { return r.t }

// Field registra um membro de T. Registrar o mesmo nome de novo sobrescreve.
//
//	user := schema.NewRecord[User]("User")
//	schema.Field(user, "UserId", schema.String, func(u *User) *string { return &u.UserId })
func Field[T, V any](r *RecordType[T], name string, typ *Type, field func(*T) *V) *Member {
	m := &Member{
		Name: name,
		Type: typ,
		get: func(rec any) any {
			var t *T
			switch r := rec.(type) {
			case *T:
				t = r
			case T:
				t = &r
			}
			if t == nil {
				return nil
			}
			return normalizeNil(*field(t))
		},
		set: func(rec any, v any) error {
			t, ok := rec.(*T)
			if !ok || t == nil {
				return fmt.Errorf("schema: %s.%s: unexpected record %T", r.t.name, name, rec)
			}
			dst := field(t)
			if v == nil {
				var zero V
				*dst = zero
				return nil
			}
			switch x := v.(type) {
			case V:
				*dst = x
			case *V:
				if x != nil {
					*dst = *x
				}
			default:
				return fmt.Errorf("schema: %s.%s: cannot assign %T", r.t.name, name, v)
			}
			return nil
		},
		ref: func(rec any) any {
			t, ok := rec.(*T)
			if !ok || t == nil {
				return nil
			}
			return field(t)
		},
	}
	r.t.register(m)
	return m
}

// Dynamic é a representação de um registro declarado em tempo de execução.
type Dynamic map[string]any

// DynamicRecord descreve registros sem struct Go correspondente.
type DynamicRecord struct {
	t *Type
}

// NewDynamicRecord cria o descritor de um registro dinâmico.
func NewDynamicRecord(name string) *DynamicRecord {
	return &DynamicRecord{t: &Type{
		name:    name,
		kind:    KindRecord,
		members: make(map[string]*Member),
		newFn:   func() any { return Dynamic{} },
	}}
}

func (d *DynamicRecord) Type() *Type { return d.t }

// Field registra um membro do registro dinâmico.
func (d *DynamicRecord) Field(name string, typ *Type) *Member {
	m := &Member{
		Name: name,
		Type: typ,
		get: func(rec any) any {
			r, ok := rec.(Dynamic)
			if !ok || r == nil {
				return nil
			}
			return normalizeNil(r[name])
		},
		set: func(rec any, v any) error {
			r, ok := rec.(Dynamic)
			if !ok || r == nil {
				return fmt.Errorf("schema: %s.%s: unexpected record %T", d.t.name, name, rec)
			}
			r[name] = v
			return nil
		},
	}
	d.t.register(m)
	return m
}

func normalizeNil(v any) any {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface:
		if rv.IsNil() {
			return nil
		}
	}
	return v
}
