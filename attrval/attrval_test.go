package attrval_test

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/raywall/dynexpr/attrval"
	"github.com/raywall/dynexpr/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshal(t *testing.T) {
	tests := []struct {
		name string
		in   any
		typ  *schema.Type
		want types.AttributeValue
	}{
		{name: "nil", in: nil, typ: schema.String, want: &types.AttributeValueMemberNULL{Value: true}},
		{name: "nil pointer", in: (*string)(nil), typ: schema.String, want: &types.AttributeValueMemberNULL{Value: true}},
		{name: "string", in: "a", typ: schema.String, want: &types.AttributeValueMemberS{Value: "a"}},
		{name: "number", in: 3, typ: schema.Int, want: &types.AttributeValueMemberN{Value: "3"}},
		{name: "list", in: []string{"a"}, typ: schema.ListOf(schema.String), want: &types.AttributeValueMemberL{
			Value: []types.AttributeValue{&types.AttributeValueMemberS{Value: "a"}},
		}},
		{name: "string set", in: []string{"a", "b"}, typ: schema.SetOf(schema.String), want: &types.AttributeValueMemberSS{Value: []string{"a", "b"}}},
		{name: "number set", in: []int{1, 2}, typ: schema.SetOf(schema.Int), want: &types.AttributeValueMemberNS{Value: []string{"1", "2"}}},
		{name: "binary set", in: [][]byte{{1}}, typ: schema.SetOf(schema.Binary), want: &types.AttributeValueMemberBS{Value: [][]byte{{1}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := attrval.Marshal(tt.in, tt.typ)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("set needs a slice", func(t *testing.T) {
		_, err := attrval.Marshal("x", schema.SetOf(schema.String))
		assert.Error(t, err)
	})
}

func TestLookupPut(t *testing.T) {
	item := map[string]types.AttributeValue{}

	require.NoError(t, attrval.Put(item, []string{"profile", "name"}, &types.AttributeValueMemberS{Value: "Ray"}))
	require.NoError(t, attrval.Put(item, []string{"profile", "age"}, &types.AttributeValueMemberN{Value: "30"}))

	av, ok := attrval.Lookup(item, []string{"profile", "name"})
	require.True(t, ok)
	assert.Equal(t, &types.AttributeValueMemberS{Value: "Ray"}, av)

	profile := item["profile"].(*types.AttributeValueMemberM)
	assert.Len(t, profile.Value, 2)

	_, ok = attrval.Lookup(item, []string{"profile", "missing"})
	assert.False(t, ok)
	_, ok = attrval.Lookup(item, []string{"profile", "name", "deeper"})
	assert.False(t, ok)

	assert.Error(t, attrval.Put(item, []string{"profile", "name", "deeper"}, &types.AttributeValueMemberS{Value: "x"}))
}

func TestUnmarshal(t *testing.T) {
	var n int
	require.NoError(t, attrval.Unmarshal(&types.AttributeValueMemberN{Value: "12"}, &n))
	assert.Equal(t, 12, n)

	var s string
	assert.Error(t, attrval.Unmarshal(&types.AttributeValueMemberM{}, &s))
}

func TestJSON(t *testing.T) {
	item := map[string]types.AttributeValue{
		"pk":   &types.AttributeValueMemberS{Value: "USER#1"},
		"n":    &types.AttributeValueMemberN{Value: "10"},
		"ok":   &types.AttributeValueMemberBOOL{Value: false},
		"nil":  &types.AttributeValueMemberNULL{Value: true},
		"bin":  &types.AttributeValueMemberB{Value: []byte("raw")},
		"tags": &types.AttributeValueMemberSS{Value: []string{"a"}},
		"nums": &types.AttributeValueMemberNS{Value: []string{"1"}},
		"bins": &types.AttributeValueMemberBS{Value: [][]byte{[]byte("x")}},
		"list": &types.AttributeValueMemberL{Value: []types.AttributeValue{&types.AttributeValueMemberS{Value: "a"}}},
		"map":  &types.AttributeValueMemberM{Value: map[string]types.AttributeValue{"k": &types.AttributeValueMemberS{Value: "v"}}},
	}

	data, err := attrval.MarshalJSON(item)
	require.NoError(t, err)

	again, err := attrval.MarshalJSON(item)
	require.NoError(t, err)
	assert.Equal(t, data, again)

	back, err := attrval.UnmarshalJSON(data)
	require.NoError(t, err)
	assert.Equal(t, item, back)

	_, err = attrval.UnmarshalJSON([]byte(`{"pk":{}}`))
	assert.Error(t, err)
}

func TestJSON_NilCollections(t *testing.T) {
	item := map[string]types.AttributeValue{
		"bin":  &types.AttributeValueMemberB{},
		"tags": &types.AttributeValueMemberSS{},
		"nums": &types.AttributeValueMemberNS{},
		"bins": &types.AttributeValueMemberBS{},
	}

	data, err := attrval.MarshalJSON(item)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "null")

	back, err := attrval.UnmarshalJSON(data)
	require.NoError(t, err)
	assert.Equal(t, map[string]types.AttributeValue{
		"bin":  &types.AttributeValueMemberB{Value: []byte{}},
		"tags": &types.AttributeValueMemberSS{Value: []string{}},
		"nums": &types.AttributeValueMemberNS{Value: []string{}},
		"bins": &types.AttributeValueMemberBS{Value: [][]byte{}},
	}, back)
}
