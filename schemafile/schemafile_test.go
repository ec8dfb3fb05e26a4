package schemafile_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/raywall/dynexpr/alias"
	"github.com/raywall/dynexpr/schema"
	"github.com/raywall/dynexpr/schemafile"
	"github.com/raywall/dynexpr/transpile"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const usersYAML = `
version: "1"
types:
  - name: Document
    fields:
      - {name: Type, kind: string}
      - {name: Number, kind: string}
    read:
      - {member: Type, path: type, required: true}
      - {member: Number, path: number}
    write:
      - {member: Type, path: type}
      - {member: Number, path: number}
  - name: User
    table: users
    fields:
      - {name: UserId, kind: string}
      - {name: Age, kind: int}
      - {name: Status, kind: enum, values: [Active, Blocked]}
      - {name: Tags, kind: list, elem: string}
      - {name: Document, kind: record, ref: Document}
      - {name: Manager, kind: record, ref: User}
    read:
      - {member: UserId, path: record_id, required: true}
      - {member: Age, path: profile.age, stored: string}
      - {member: Status, path: status}
      - {member: Tags, path: profile.tags}
      - {member: Document, path: doc}
      - {member: Manager, path: manager}
    write:
      - {member: UserId, path: record_id, reserved: true}
      - {member: Age, path: profile.age, stored: string}
      - {member: Status, path: status}
      - {member: Document, path: doc}
`

type MockS3 struct {
	GetObjectFunc func(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

func (m *MockS3) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	return m.GetObjectFunc(ctx, params, optFns...)
}

func TestParse(t *testing.T) {
	s, err := schemafile.Parse([]byte(usersYAML))
	require.NoError(t, err)

	user, ok := s.Type("User")
	require.True(t, ok)
	doc, ok := s.Type("Document")
	require.True(t, ok)

	assert.Equal(t, []*schema.Type{doc, user}, s.Types())
	assert.Equal(t, "users", s.Table("User"))
	assert.Empty(t, s.Table("Document"))

	m, ok := user.Member("Manager")
	require.True(t, ok)
	assert.Same(t, user, m.Type)

	tags, ok := user.Member("Tags")
	require.True(t, ok)
	assert.Equal(t, schema.KindList, tags.Type.Kind())
	assert.Same(t, schema.String, tags.Type.Elem())

	status, ok := user.Member("Status")
	require.True(t, ok)
	assert.Equal(t, []string{"Active", "Blocked"}, status.Type.EnumValues())
}

func TestSchema_Mapper(t *testing.T) {
	s, err := schemafile.Parse([]byte(usersYAML))
	require.NoError(t, err)
	user, _ := s.Type("User")

	m, err := s.Mapper()
	require.NoError(t, err)

	t.Run("read", func(t *testing.T) {
		item := map[string]types.AttributeValue{
			"record_id": &types.AttributeValueMemberS{Value: "u1"},
			"profile": &types.AttributeValueMemberM{Value: map[string]types.AttributeValue{
				"age":  &types.AttributeValueMemberS{Value: "42"},
				"tags": &types.AttributeValueMemberL{Value: []types.AttributeValue{&types.AttributeValueMemberS{Value: "x"}}},
			}},
			"doc": &types.AttributeValueMemberM{Value: map[string]types.AttributeValue{
				"type": &types.AttributeValueMemberS{Value: "CPF"},
			}},
		}
		rec, err := m.New(user, item)
		require.NoError(t, err)

		r := rec.(schemafile.Record)
		assert.Equal(t, "u1", r["UserId"])
		assert.Equal(t, 42, r["Age"])
		assert.Equal(t, []any{"x"}, r["Tags"])
		assert.Equal(t, "CPF", r["Document"].(schemafile.Record)["Type"])
	})

	t.Run("write", func(t *testing.T) {
		rec := schemafile.Record{"UserId": "u1", "Age": 7, "Status": "Active"}
		item, err := m.ToAttributes(user, rec, []transpile.PartitionKey{transpile.Key("record_id", "u1")})
		require.NoError(t, err)
		assert.Equal(t, map[string]types.AttributeValue{
			"record_id": &types.AttributeValueMemberS{Value: "u1"},
			"profile": &types.AttributeValueMemberM{Value: map[string]types.AttributeValue{
				"age": &types.AttributeValueMemberS{Value: "7"},
			}},
			"status": &types.AttributeValueMemberS{Value: "Active"},
		}, item)
	})

	t.Run("projection over a self-referencing type", func(t *testing.T) {
		got := transpile.Transpiler{}.ProjectionExpression(m.ReadProjection(user), alias.NewScope())
		assert.Equal(t, "#attr_name_0, #attr_name_1.#attr_name_2, #attr_name_1.#attr_name_3, #attr_name_4, #attr_name_5.#attr_name_6, #attr_name_5.#attr_name_7", got)
	})
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{name: "invalid yaml", yaml: "types: [", want: "parse yaml"},
		{name: "missing version", yaml: "types:\n  - name: A\n    fields:\n      - {name: X, kind: string}\n", want: "Version"},
		{name: "no types", yaml: "version: \"1\"\n", want: "Types"},
		{name: "invalid kind", yaml: "version: \"1\"\ntypes:\n  - name: A\n    fields:\n      - {name: X, kind: decimal}\n", want: "oneof"},
		{name: "duplicate type", yaml: "version: \"1\"\ntypes:\n  - name: A\n    fields:\n      - {name: X, kind: string}\n  - name: A\n    fields:\n      - {name: Y, kind: string}\n", want: "declared twice"},
		{name: "unknown ref", yaml: "version: \"1\"\ntypes:\n  - name: A\n    fields:\n      - {name: X, kind: record, ref: B}\n", want: "unknown record type"},
		{name: "list without elem", yaml: "version: \"1\"\ntypes:\n  - name: A\n    fields:\n      - {name: X, kind: list}\n", want: "unknown type"},
		{name: "enum without values", yaml: "version: \"1\"\ntypes:\n  - name: A\n    fields:\n      - {name: X, kind: enum}\n", want: "enum without values"},
		{name: "reserved read", yaml: "version: \"1\"\ntypes:\n  - name: A\n    fields:\n      - {name: X, kind: string}\n    read:\n      - {member: X, path: x, reserved: true}\n", want: "reserved"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := schemafile.Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoader_Load(t *testing.T) {
	t.Run("file system", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "/etc/dynexpr/schema.yaml", []byte(usersYAML), 0o644))

		s, err := (&schemafile.Loader{Fs: fs}).Load(context.Background(), "/etc/dynexpr/schema.yaml")
		require.NoError(t, err)
		_, ok := s.Type("User")
		assert.True(t, ok)
	})

	t.Run("default file system", func(t *testing.T) {
		orig := schemafile.AppFs
		t.Cleanup(func() { schemafile.AppFs = orig })
		schemafile.AppFs = afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(schemafile.AppFs, "schema.yaml", []byte(usersYAML), 0o644))

		_, err := schemafile.Load(context.Background(), "schema.yaml")
		require.NoError(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := (&schemafile.Loader{Fs: afero.NewMemMapFs()}).Load(context.Background(), "nope.yaml")
		assert.Error(t, err)
	})

	t.Run("s3", func(t *testing.T) {
		client := &MockS3{
			GetObjectFunc: func(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
				assert.Equal(t, "configs", aws.ToString(params.Bucket))
				assert.Equal(t, "dynexpr/schema.yaml", aws.ToString(params.Key))
				return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(usersYAML))}, nil
			},
		}
		s, err := (&schemafile.Loader{S3: client}).Load(context.Background(), "s3://configs/dynexpr/schema.yaml")
		require.NoError(t, err)
		assert.Equal(t, "users", s.Table("User"))
	})

	t.Run("s3 error", func(t *testing.T) {
		boom := errors.New("access denied")
		client := &MockS3{
			GetObjectFunc: func(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
				return nil, boom
			},
		}
		_, err := (&schemafile.Loader{S3: client}).Load(context.Background(), "s3://configs/schema.yaml")
		assert.ErrorIs(t, err, boom)
	})

	t.Run("invalid s3 location", func(t *testing.T) {
		_, err := (&schemafile.Loader{S3: &MockS3{}}).Load(context.Background(), "s3://configs")
		assert.Error(t, err)
	})
}
