package transpile_test

import (
	"testing"

	"github.com/raywall/dynexpr/projection"
	"github.com/raywall/dynexpr/schema"
	"github.com/stretchr/testify/require"
)

type identity struct {
	Type   string
	Number string
}

type user struct {
	UserId   string
	TenantId string
	Name     string
	UserName string
	Status   string
	Age      int
	Tags     []string
	Identity *identity
	Parent   *user
}

var statusType = schema.Enum("Status", "Active", "Blocked")

type fixture struct {
	user     *schema.Type
	identity *schema.Type
	index    *projection.Index
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	idRec := schema.NewRecord[identity]("Identity")
	schema.Field(idRec, "Type", schema.String, func(i *identity) *string { return &i.Type })
	schema.Field(idRec, "Number", schema.String, func(i *identity) *string { return &i.Number })

	userRec := schema.NewRecord[user]("User")
	schema.Field(userRec, "UserId", schema.String, func(u *user) *string { return &u.UserId })
	schema.Field(userRec, "TenantId", schema.String, func(u *user) *string { return &u.TenantId })
	schema.Field(userRec, "Name", schema.String, func(u *user) *string { return &u.Name })
	schema.Field(userRec, "UserName", schema.String, func(u *user) *string { return &u.UserName })
	schema.Field(userRec, "Status", statusType, func(u *user) *string { return &u.Status })
	schema.Field(userRec, "Age", schema.Int, func(u *user) *int { return &u.Age })
	schema.Field(userRec, "Tags", schema.ListOf(schema.String), func(u *user) *[]string { return &u.Tags })
	schema.Field(userRec, "Identity", idRec.Type(), func(u *user) **identity { return &u.Identity })
	schema.Field(userRec, "Parent", userRec.Type(), func(u *user) **user { return &u.Parent })

	ut, it := userRec.Type(), idRec.Type()
	b := projection.NewBuilder()
	for _, dir := range []projection.Direction{projection.Read, projection.Write} {
		declare := func(owner *schema.Type, member, path string) {
			m, ok := owner.Member(member)
			require.True(t, ok, member)
			require.NoError(t, b.Declare(owner, dir, member, path, m.Type))
		}
		declare(ut, "UserId", "record_id")
		declare(ut, "TenantId", "record_type")
		declare(ut, "Name", "profile.name")
		declare(ut, "Tags", "profile.tags")
		declare(ut, "Status", "status")
		declare(ut, "UserName", "user_name")
		declare(ut, "Identity", "identity")
		declare(ut, "Parent", "parent")
		declare(it, "Type", "doc_type")
		declare(it, "Number", "doc_number")
	}
	return fixture{user: ut, identity: it, index: b.Build()}
}
