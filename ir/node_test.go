package ir_test

import (
	"testing"

	"github.com/raywall/dynexpr/ir"
	"github.com/raywall/dynexpr/schema"
	"github.com/stretchr/testify/assert"
)

func TestWrap(t *testing.T) {
	record := &ir.RecordParameter{Name: "r"}
	a := &ir.Compare{Left: &ir.MemberAccessor{Instance: record, Name: "A"}, Op: ir.Equal, Right: &ir.Constant{Value: 1}}
	b := &ir.Parenthesized{Body: &ir.Binary{Left: a, Op: ir.Or, Right: a}}

	t.Run("single node is kept", func(t *testing.T) {
		out := ir.Wrap([]ir.Node{a})
		assert.Same(t, a, out[0])
	})

	t.Run("several nodes are wrapped once", func(t *testing.T) {
		in := []ir.Node{a, b}
		out := ir.Wrap(in)

		assert.Equal(t, ir.KindParenthesized, out[0].Kind())
		assert.Same(t, b, out[1])
		assert.Same(t, a, in[0])
	})
}

func TestMemberAccessor_Path(t *testing.T) {
	record := &ir.RecordParameter{Name: "r"}
	doc := &ir.MemberAccessor{Instance: record, Name: "Document"}
	num := &ir.MemberAccessor{Instance: doc, Name: "Number"}

	assert.Equal(t, []string{"Document", "Number"}, num.Path())
	var nilAcc *ir.MemberAccessor
	assert.Empty(t, nilAcc.Path())
}

func TestMethod(t *testing.T) {
	assert.Equal(t, 0, ir.MethodSize.Arity())
	assert.Equal(t, 1, ir.MethodContains.Arity())
	assert.Equal(t, "begins_with", ir.MethodBeginsWith.FuncName())
	assert.Same(t, schema.Int, (&ir.MethodCall{Method: ir.MethodSize}).ReturnType())
	assert.Same(t, schema.Bool, (&ir.MethodCall{Method: ir.MethodContains}).ReturnType())
}

func TestFormat(t *testing.T) {
	record := &ir.RecordParameter{Name: "r"}
	name := &ir.MemberAccessor{Instance: record, Name: "Name"}
	n := &ir.Inverse{Body: &ir.Parenthesized{Body: &ir.Binary{
		Left:  &ir.MethodCall{Instance: name, Method: ir.MethodBeginsWith, Args: []ir.Node{&ir.Constant{Value: "a"}}},
		Op:    ir.And,
		Right: &ir.MemberExists{Accessor: name},
	}}}

	assert.Equal(t, `Inverse(Parenthesized(Binary(And, BeginsWith(Member(Name), Constant("a")), MemberExists(Member(Name)))))`, ir.Format(n))
	assert.Equal(t, "<nil>", ir.Format(nil))
	assert.Equal(t, " <> ", ir.NotEqual.Token())
	assert.Equal(t, " or ", ir.Or.Token())
}
