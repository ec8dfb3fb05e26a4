package mapping

import (
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/raywall/dynexpr/alias"
	"github.com/raywall/dynexpr/attrval"
	"github.com/raywall/dynexpr/projection"
	"github.com/raywall/dynexpr/schema"
	"github.com/raywall/dynexpr/transpile"
)

// Mapper converte registros de/para itens segundo um perfil já validado.
// É somente leitura e pode ser compartilhado entre goroutines.
type Mapper struct {
	index  *projection.Index
	reads  map[*schema.Type]*typeMap
	writes map[*schema.Type]*typeMap
}

// Index retorna o índice de projeções montado pelo perfil.
func (m *Mapper) Index() *projection.Index { return m.index }

// ReadProjection é a projeção de leitura de t (nil quando não mapeado).
func (m *Mapper) ReadProjection(t *schema.Type) *projection.Projection { return m.index.Read(t) }

// WriteProjection é a projeção de escrita de t (nil quando não mapeado).
func (m *Mapper) WriteProjection(t *schema.Type) *projection.Projection { return m.index.Write(t) }

// New decodifica item num registro novo de t.
func (m *Mapper) New(t *schema.Type, item map[string]types.AttributeValue) (any, error) {
	out := t.New()
	if out == nil {
		return nil, &ConfigurationError{Type: t.Name(), Reason: "not a record type"}
	}
	if err := m.FromAttributes(t, item, out); err != nil {
		return nil, err
	}
	return out, nil
}

// FromAttributes preenche out (ponteiro para a struct, ou schema.Dynamic)
// com os atributos de item.
func (m *Mapper) FromAttributes(t *schema.Type, item map[string]types.AttributeValue, out any) error {
	tm, ok := m.reads[t]
	if !ok {
		return &ConfigurationError{Type: t.Name(), Reason: "no read mapping"}
	}

	for _, f := range tm.fields {
		av, found := attrval.Lookup(item, f.segments)
		if !found {
			if f.required {
				return &ConfigurationError{Type: t.Name(), Member: f.member, Path: f.path, Reason: "required attribute is missing"}
			}
			continue
		}
		if _, null := av.(*types.AttributeValueMemberNULL); null {
			if err := f.m.Set(out, nil); err != nil {
				return err
			}
			continue
		}
		if err := m.decodeField(f, av, out); err != nil {
			return fmt.Errorf("mapping: %s.%s: %w", t.Name(), f.member, err)
		}
	}
	return nil
}

func (m *Mapper) decodeField(f *field, av types.AttributeValue, out any) error {
	if f.conv != nil {
		v, err := f.conv.Read(av)
		if err != nil {
			return err
		}
		return f.m.Set(out, v)
	}

	if f.m.Type.Kind() == schema.KindRecord {
		if _, mapped := m.reads[f.m.Type]; mapped {
			mv, ok := av.(*types.AttributeValueMemberM)
			if !ok {
				return fmt.Errorf("expected a map attribute, got %T", av)
			}
			nested, err := m.New(f.m.Type, mv.Value)
			if err != nil {
				return err
			}
			return f.m.Set(out, nested)
		}
	}

	if ref := f.m.Ref(out); ref != nil {
		return attrval.Unmarshal(av, ref)
	}

	var v any
	if err := attrval.Unmarshal(av, &v); err != nil {
		return err
	}
	v, err := f.m.Type.Coerce(v)
	if err != nil {
		return err
	}
	return f.m.Set(out, v)
}

// ToAttributes monta o item de record. Membros nulos são omitidos, membros
// PartitionReserved são ignorados e as chaves são gravadas com os nomes
// reais dos atributos.
func (m *Mapper) ToAttributes(t *schema.Type, record any, keys []transpile.PartitionKey) (map[string]types.AttributeValue, error) {
	tm, ok := m.writes[t]
	if !ok {
		return nil, &ConfigurationError{Type: t.Name(), Reason: "no write mapping"}
	}

	item := make(map[string]types.AttributeValue, len(tm.fields)+len(keys))
	for _, f := range tm.fields {
		if f.reserved {
			continue
		}
		v := f.m.Get(record)
		if attrval.IsNil(v) {
			continue
		}
		av, err := m.encodeField(f, v)
		if err != nil {
			return nil, fmt.Errorf("mapping: %s.%s: %w", t.Name(), f.member, err)
		}
		if err := attrval.Put(item, f.segments, av); err != nil {
			return nil, err
		}
	}

	key, err := m.KeyAttributes(keys)
	if err != nil {
		return nil, err
	}
	for k, av := range key {
		item[k] = av
	}
	return item, nil
}

func (m *Mapper) encodeField(f *field, v any) (types.AttributeValue, error) {
	if f.conv != nil {
		return f.conv.Write(v)
	}
	if f.m.Type.Kind() == schema.KindRecord {
		if _, mapped := m.writes[f.m.Type]; mapped {
			nested, err := m.ToAttributes(f.m.Type, v, nil)
			if err != nil {
				return nil, err
			}
			return &types.AttributeValueMemberM{Value: nested}, nil
		}
	}
	return attrval.Marshal(v, f.m.Type)
}

// Codec devolve o conversor de valores de expressão para t na direção dir.
// Membros com Stored ou com tipo registro mapeado saem como o item os grava;
// os demais seguem a conversão padrão.
func (m *Mapper) Codec(t *schema.Type, dir projection.Direction) alias.Codec {
	maps := m.reads
	if dir == projection.Write {
		maps = m.writes
	}
	return &memberCodec{m: m, t: t, maps: maps}
}

type memberCodec struct {
	m    *Mapper
	t    *schema.Type
	maps map[*schema.Type]*typeMap
}

func (c *memberCodec) field(member []string) *field {
	var f *field
	cur := c.t
	for _, name := range member {
		tm, ok := c.maps[cur]
		if !ok {
			return nil
		}
		i, ok := tm.index[name]
		if !ok {
			return nil
		}
		f = tm.fields[i]
		if f.m == nil {
			return nil
		}
		cur = f.m.Type
	}
	return f
}

func (c *memberCodec) Binds(member []string) bool {
	f := c.field(member)
	if f == nil {
		return false
	}
	if f.conv != nil {
		return true
	}
	if f.m.Type.Kind() == schema.KindRecord {
		_, mapped := c.m.writes[f.m.Type]
		return mapped
	}
	return false
}

func (c *memberCodec) Encode(member []string, v any) (types.AttributeValue, error) {
	f := c.field(member)
	if f == nil {
		return nil, &ConfigurationError{Type: c.t.Name(), Member: strings.Join(member, "."), Reason: "no such mapped member"}
	}
	av, err := c.m.encodeField(f, v)
	if err != nil {
		return nil, fmt.Errorf("mapping: %s.%s: %w", c.t.Name(), strings.Join(member, "."), err)
	}
	return av, nil
}

// ToAttributeValue converte um valor solto respeitando o tipo declarado.
func (m *Mapper) ToAttributeValue(v any, t *schema.Type) (types.AttributeValue, error) {
	return attrval.Marshal(v, t)
}

// KeyAttributes monta o Key de GetItem/DeleteItem/UpdateItem.
func (m *Mapper) KeyAttributes(keys []transpile.PartitionKey) (map[string]types.AttributeValue, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	out := make(map[string]types.AttributeValue, len(keys))
	for _, k := range keys {
		if k.Operator != transpile.Equals {
			return nil, &transpile.NotSupportedError{What: fmt.Sprintf("key %s with operator %s", k.Name, k.Operator)}
		}
		av, err := attrval.Marshal(k.Value, nil)
		if err != nil {
			return nil, fmt.Errorf("mapping: key %s: %w", k.Name, err)
		}
		out[k.Name] = av
	}
	return out, nil
}
