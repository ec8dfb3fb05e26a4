package celpred_test

import (
	"testing"

	"github.com/raywall/dynexpr/ir"
	"github.com/raywall/dynexpr/predicate"
	"github.com/raywall/dynexpr/predicate/celpred"
	"github.com/raywall/dynexpr/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type profile struct {
	Kind string
}

type user struct {
	UserId   string
	TenantId string
	Age      int
	Tags     []string
	Profile  *profile
}

type session struct {
	TenantId string
}

func fixtureTypes() (*schema.Type, *schema.Type) {
	pr := schema.NewRecord[profile]("Profile")
	schema.Field(pr, "Kind", schema.String, func(p *profile) *string { return &p.Kind })

	u := schema.NewRecord[user]("User")
	schema.Field(u, "UserId", schema.String, func(u *user) *string { return &u.UserId })
	schema.Field(u, "TenantId", schema.String, func(u *user) *string { return &u.TenantId })
	schema.Field(u, "Age", schema.Int, func(u *user) *int { return &u.Age })
	schema.Field(u, "Tags", schema.ListOf(schema.String), func(u *user) *[]string { return &u.Tags })
	schema.Field(u, "Profile", pr.Type(), func(u *user) **profile { return &u.Profile })

	s := schema.NewRecord[session]("Session")
	schema.Field(s, "TenantId", schema.String, func(s *session) *string { return &s.TenantId })
	return u.Type(), s.Type()
}

func TestParser_Compile(t *testing.T) {
	userType, sessionType := fixtureTypes()
	p, err := celpred.New(celpred.WithConstant("session", &session{TenantId: "t7"}, sessionType))
	require.NoError(t, err)

	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "starts with or equality",
			src:  `record.UserId.startsWith("abc") || record.TenantId == "t1"`,
			want: `Parenthesized(Binary(Or, BeginsWith(Member(UserId), Constant("abc")), Compare(Member(TenantId), Equal, Constant("t1"))))`,
		},
		{
			name: "grouping is preserved",
			src:  `(record.UserId == "a" || record.UserId == "b") && record.Age > 18`,
			want: `Parenthesized(Binary(And, Parenthesized(Binary(Or, Compare(Member(UserId), Equal, Constant("a")), ` +
				`Compare(Member(UserId), Equal, Constant("b")))), Compare(Member(Age), GreaterThan, Constant(18))))`,
		},
		{
			name: "global size",
			src:  `size(record.Tags) == 0`,
			want: `Compare(Size(Member(Tags)), Equal, Constant(0))`,
		},
		{
			name: "member size",
			src:  `record.UserId.size() <= 10`,
			want: `Compare(Size(Member(UserId)), LessThanOrEqual, Constant(10))`,
		},
		{
			name: "in becomes contains",
			src:  `"vip" in record.Tags`,
			want: `Contains(Member(Tags), Constant("vip"))`,
		},
		{
			name: "contains",
			src:  `record.UserId.contains("x")`,
			want: `Contains(Member(UserId), Constant("x"))`,
		},
		{
			name: "has macro",
			src:  `!has(record.Profile.Kind)`,
			want: `Inverse(MemberExists(Member(Profile.Kind)))`,
		},
		{
			name: "extension call",
			src:  `ext.memberExists(record.Profile)`,
			want: `MemberExists(Member(Profile))`,
		},
		{
			name: "conversion is transparent",
			src:  `record.Age != int("21")`,
			want: `Compare(Member(Age), NotEqual, Constant(21))`,
		},
		{
			name: "null literal",
			src:  `record.TenantId == null`,
			want: `Compare(Member(TenantId), Equal, Constant(<nil>))`,
		},
		{
			name: "captured constant",
			src:  `record.TenantId == session.TenantId`,
			want: `Compare(Member(TenantId), Equal, Constant("t7"))`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node, err := p.Compile(userType, tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ir.Format(node))
		})
	}
}

func TestParser_CustomVariables(t *testing.T) {
	userType, _ := fixtureTypes()
	p, err := celpred.New(celpred.WithRecordVar("u"), celpred.WithExtensionVar("dyn"))
	require.NoError(t, err)

	node, err := p.Compile(userType, `dyn.memberExists(u.UserId)`)
	require.NoError(t, err)
	assert.Equal(t, `MemberExists(Member(UserId))`, ir.Format(node))

	_, err = celpred.New(celpred.WithRecordVar("x"), celpred.WithExtensionVar("x"))
	assert.Error(t, err)
}

func TestParser_Errors(t *testing.T) {
	userType, _ := fixtureTypes()
	p, err := celpred.New()
	require.NoError(t, err)

	t.Run("syntax", func(t *testing.T) {
		_, err := p.Parse(userType, `record.UserId ==`)
		assert.Error(t, err)
	})

	tests := []struct {
		name string
		src  string
	}{
		{name: "unknown variable", src: `other.UserId == "a"`},
		{name: "unsupported function", src: `record.UserId.endsWith("a")`},
		{name: "comprehension", src: `record.Tags.exists(t, t == "a")`},
		{name: "list literal", src: `record.UserId in ["a", "b"]`},
		{name: "arithmetic", src: `record.Age + 1 > 2`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Compile(userType, tt.src)

			var pe *predicate.ParseError
			assert.ErrorAs(t, err, &pe)
		})
	}
}
