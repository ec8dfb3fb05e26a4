package alias_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/raywall/dynexpr/alias"
	"github.com/raywall/dynexpr/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScope_Name(t *testing.T) {
	s := alias.NewScope()

	assert.Equal(t, "#attr_name_0", s.Name("record_id"))
	assert.Equal(t, "#attr_name_1", s.Name("record_type"))
	assert.Equal(t, "#attr_name_0", s.Name("record_id"))
	assert.Equal(t, map[string]string{
		"#attr_name_0": "record_id",
		"#attr_name_1": "record_type",
	}, s.Names())
}

func TestScope_Value(t *testing.T) {
	t.Run("comparable values are deduplicated by type and value", func(t *testing.T) {
		s := alias.NewScope()

		a := s.Value("abc", schema.String)
		b := s.Value("abc", schema.String)
		c := s.Value(0, schema.Int)
		d := s.Value(0, schema.Int)

		assert.Equal(t, ":attr_val_0", a)
		assert.Equal(t, a, b)
		assert.Equal(t, ":attr_val_1", c)
		assert.Equal(t, c, d)
		assert.Len(t, s.Values(), 2)
	})

	t.Run("same value under another declared type gets a new alias", func(t *testing.T) {
		s := alias.NewScope()
		status := schema.Enum("Status", "abc")

		assert.Equal(t, ":attr_val_0", s.Value("abc", schema.String))
		assert.Equal(t, ":attr_val_1", s.Value("abc", status))
	})

	t.Run("non comparable values are never deduplicated", func(t *testing.T) {
		s := alias.NewScope()
		list := schema.ListOf(schema.String)

		a := s.Value([]string{"x"}, list)
		b := s.Value([]string{"x"}, list)

		assert.Equal(t, ":attr_val_0", a)
		assert.Equal(t, ":attr_val_1", b)
	})

	t.Run("null shares one alias and does not consume the counter", func(t *testing.T) {
		s := alias.NewScope()

		assert.Equal(t, alias.NullAlias, s.Value(nil, schema.String))
		var p *string
		assert.Equal(t, alias.NullAlias, s.Value(p, schema.String))
		assert.Equal(t, ":attr_val_0", s.Value("x", nil))
		assert.True(t, s.HasValues())
	})
}

func TestScope_AttributeValues(t *testing.T) {
	t.Run("empty scope", func(t *testing.T) {
		s := alias.NewScope()
		values, err := s.AttributeValues()

		require.NoError(t, err)
		assert.Nil(t, values)
		assert.Nil(t, s.Names())
		assert.False(t, s.HasValues())
	})

	t.Run("typed values", func(t *testing.T) {
		s := alias.NewScope()
		s.Value("abc", schema.String)
		s.Value(42, schema.Int)
		s.Value([]string{"a", "b"}, schema.SetOf(schema.String))
		s.Null()

		values, err := s.AttributeValues()
		require.NoError(t, err)

		assert.Equal(t, &types.AttributeValueMemberS{Value: "abc"}, values[":attr_val_0"])
		assert.Equal(t, &types.AttributeValueMemberN{Value: "42"}, values[":attr_val_1"])
		assert.Equal(t, &types.AttributeValueMemberSS{Value: []string{"a", "b"}}, values[":attr_val_2"])
		assert.Equal(t, &types.AttributeValueMemberNULL{Value: true}, values[alias.NullAlias])
	})
}

// stringCodec grava como string os membros listados em bound.
type stringCodec struct {
	bound map[string]bool
}

func (c stringCodec) Binds(member []string) bool {
	return c.bound[strings.Join(member, ".")]
}

func (c stringCodec) Encode(member []string, v any) (types.AttributeValue, error) {
	return &types.AttributeValueMemberS{Value: fmt.Sprint(v)}, nil
}

func TestScope_MemberValue(t *testing.T) {
	codec := stringCodec{bound: map[string]bool{"Balance": true, "Limits.Max": true}}

	t.Run("bound members go through the codec", func(t *testing.T) {
		s := alias.NewScope(alias.WithCodec(codec))

		a := s.MemberValue(int64(10), schema.Int64, []string{"Balance"})
		b := s.MemberValue(int64(10), schema.Int64, []string{"Limits", "Max"})
		c := s.MemberValue(int64(10), schema.Int64, []string{"Count"})
		d := s.Value(int64(10), schema.Int64)
		e := s.MemberValue(int64(10), schema.Int64, []string{"Balance"})

		assert.Equal(t, ":attr_val_0", a)
		assert.Equal(t, ":attr_val_1", b)
		assert.Equal(t, ":attr_val_2", c)
		assert.Equal(t, c, d)
		assert.Equal(t, a, e)
		assert.Equal(t, []string{"Balance"}, s.Values()[0].Member)
		assert.Nil(t, s.Values()[2].Member)

		values, err := s.AttributeValues()
		require.NoError(t, err)
		assert.Equal(t, map[string]types.AttributeValue{
			":attr_val_0": &types.AttributeValueMemberS{Value: "10"},
			":attr_val_1": &types.AttributeValueMemberS{Value: "10"},
			":attr_val_2": &types.AttributeValueMemberN{Value: "10"},
		}, values)
	})

	t.Run("without codec it behaves like Value", func(t *testing.T) {
		s := alias.NewScope()

		assert.Equal(t, ":attr_val_0", s.MemberValue(int64(10), schema.Int64, []string{"Balance"}))
		assert.Equal(t, ":attr_val_0", s.Value(int64(10), schema.Int64))
		assert.Nil(t, s.Values()[0].Member)
	})

	t.Run("null stays shared", func(t *testing.T) {
		s := alias.NewScope(alias.WithCodec(codec))
		assert.Equal(t, alias.NullAlias, s.MemberValue(nil, schema.Int64, []string{"Balance"}))
		assert.Empty(t, s.Values())
	})
}
