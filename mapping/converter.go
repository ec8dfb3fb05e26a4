package mapping

import (
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/raywall/dynexpr/schema"
	"github.com/spf13/cast"
)

// Converter traduz entre o atributo gravado e o valor do membro quando os
// dois têm representações diferentes (ex.: número gravado como string).
type Converter struct {
	Read  func(av types.AttributeValue) (any, error)
	Write func(v any) (types.AttributeValue, error)
}

// ConverterKey identifica um conversor: o tipo do atributo gravado e o tipo
// declarado do membro.
type ConverterKey struct {
	Source schema.Kind
	Target *schema.Type
}

// Converters é o registro de conversores de um perfil.
type Converters struct {
	m map[ConverterKey]Converter
}

// NewConverters cria um registro já com os conversores padrão:
// string <-> int, int64, float e bool, e epoch (segundos) <-> time.
func NewConverters() *Converters {
	c := &Converters{m: make(map[ConverterKey]Converter)}
	c.Register(schema.KindString, schema.Int, stringConverter(func(s string) (any, error) { return cast.ToIntE(s) }))
	c.Register(schema.KindString, schema.Int64, stringConverter(func(s string) (any, error) { return cast.ToInt64E(s) }))
	c.Register(schema.KindString, schema.Float, stringConverter(func(s string) (any, error) { return cast.ToFloat64E(s) }))
	c.Register(schema.KindString, schema.Bool, stringConverter(func(s string) (any, error) { return cast.ToBoolE(s) }))
	c.Register(schema.KindInt64, schema.Time, epochConverter())
	return c
}

// Register adiciona ou substitui um conversor.
func (c *Converters) Register(source schema.Kind, target *schema.Type, conv Converter) {
	c.m[ConverterKey{Source: source, Target: target}] = conv
}

// Lookup procura o conversor de source para target.
func (c *Converters) Lookup(source schema.Kind, target *schema.Type) (Converter, bool) {
	conv, ok := c.m[ConverterKey{Source: source, Target: target}]
	return conv, ok
}

func stringConverter(parse func(string) (any, error)) Converter {
	return Converter{
		Read: func(av types.AttributeValue) (any, error) {
			s, ok := av.(*types.AttributeValueMemberS)
			if !ok {
				return nil, fmt.Errorf("expected a string attribute, got %T", av)
			}
			return parse(s.Value)
		},
		Write: func(v any) (types.AttributeValue, error) {
			s, err := cast.ToStringE(v)
			if err != nil {
				return nil, err
			}
			return &types.AttributeValueMemberS{Value: s}, nil
		},
	}
}

func epochConverter() Converter {
	return Converter{
		Read: func(av types.AttributeValue) (any, error) {
			n, ok := av.(*types.AttributeValueMemberN)
			if !ok {
				return nil, fmt.Errorf("expected a number attribute, got %T", av)
			}
			sec, err := strconv.ParseInt(n.Value, 10, 64)
			if err != nil {
				return nil, err
			}
			return time.Unix(sec, 0).UTC(), nil
		},
		Write: func(v any) (types.AttributeValue, error) {
			t, err := cast.ToTimeE(v)
			if err != nil {
				return nil, err
			}
			return &types.AttributeValueMemberN{Value: strconv.FormatInt(t.Unix(), 10)}, nil
		},
	}
}
