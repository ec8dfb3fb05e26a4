// dyndb/store_test.go
package dyndb_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/raywall/dynexpr/dyndb"
	"github.com/raywall/dynexpr/transpile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewService(t *testing.T) {
	m := newMapper(t)

	t.Run("client is required", func(t *testing.T) {
		_, err := dyndb.NewService(nil, dyndb.Config{TableName: "accounts"}, m, nil)
		assert.Error(t, err)
	})

	t.Run("mapper is required", func(t *testing.T) {
		_, err := dyndb.NewService(&dyndb.MockClient{}, dyndb.Config{TableName: "accounts"}, nil, nil)
		assert.Error(t, err)
	})

	t.Run("table name from environment", func(t *testing.T) {
		t.Setenv("DYNEXPR_TABLE_NAME", "from-env")
		svc, err := dyndb.NewService(&dyndb.MockClient{}, dyndb.Config{}, m, nil)
		require.NoError(t, err)
		assert.NotNil(t, svc)
	})

	t.Run("missing table name", func(t *testing.T) {
		t.Setenv("DYNEXPR_TABLE_NAME", "")
		_, err := dyndb.NewService(&dyndb.MockClient{}, dyndb.Config{}, m, nil)
		assert.Error(t, err)
	})

	t.Run("invalid cursor key", func(t *testing.T) {
		_, err := dyndb.NewService(&dyndb.MockClient{}, dyndb.Config{TableName: "accounts", EncryptKey: "not-a-key"}, m, nil)
		assert.Error(t, err)
	})
}

func TestService_Get(t *testing.T) {
	idx := dyndb.PrimaryKey(transpile.Key("account_id", "a1"), transpile.Key("tenant_id", "t1"))

	t.Run("success", func(t *testing.T) {
		var got *dynamodb.GetItemInput
		client := &dyndb.MockClient{
			GetItemFn: func(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
				got = params
				return &dynamodb.GetItemOutput{Item: accountItem("a1")}, nil
			},
		}
		svc, _ := newService(t, client)

		rec, err := svc.Get(context.Background(), accountType, idx)
		require.NoError(t, err)
		assert.Equal(t, &account{AccountId: "a1", TenantId: "t1", Status: "Active", Balance: 10}, rec)

		require.NotNil(t, got)
		assert.Equal(t, "accounts", aws.ToString(got.TableName))
		assert.False(t, aws.ToBool(got.ConsistentRead))
		assert.Equal(t, map[string]types.AttributeValue{
			"account_id": &types.AttributeValueMemberS{Value: "a1"},
			"tenant_id":  &types.AttributeValueMemberS{Value: "t1"},
		}, got.Key)
		assert.Equal(t, "#attr_name_0, #attr_name_1, #attr_name_2, #attr_name_3, #attr_name_4", aws.ToString(got.ProjectionExpression))
		assert.Equal(t, map[string]string{
			"#attr_name_0": "account_id",
			"#attr_name_1": "tenant_id",
			"#attr_name_2": "status",
			"#attr_name_3": "balance",
			"#attr_name_4": "tags",
		}, got.ExpressionAttributeNames)
	})

	t.Run("consistent read", func(t *testing.T) {
		client := &dyndb.MockClient{
			GetItemFn: func(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
				assert.True(t, aws.ToBool(params.ConsistentRead))
				return &dynamodb.GetItemOutput{Item: accountItem("a1")}, nil
			},
		}
		svc, _ := newService(t, client)

		_, err := svc.GetConsistent(context.Background(), accountType, idx)
		require.NoError(t, err)
	})

	t.Run("not found", func(t *testing.T) {
		client := &dyndb.MockClient{
			GetItemFn: func(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
				return &dynamodb.GetItemOutput{}, nil
			},
		}
		svc, _ := newService(t, client)

		_, err := svc.Get(context.Background(), accountType, idx)
		assert.ErrorIs(t, err, dyndb.ErrNotFound)
	})

	t.Run("client error", func(t *testing.T) {
		boom := errors.New("throttled")
		client := &dyndb.MockClient{
			GetItemFn: func(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
				return nil, boom
			},
		}
		metrics := &fakeMetrics{}
		svc, _ := newService(t, client, dyndb.WithMetrics(metrics))

		_, err := svc.Get(context.Background(), accountType, idx)
		assert.ErrorIs(t, err, boom)

		require.NotEmpty(t, metrics.recorded)
		assert.Equal(t, "dynexpr.request.count", metrics.recorded[0].name)
		assert.Contains(t, metrics.recorded[0].tags, "status:error")
		assert.Contains(t, metrics.recorded[0].tags, "operation:get")
	})

	t.Run("key operator must be equality", func(t *testing.T) {
		svc, _ := newService(t, &dyndb.MockClient{})
		_, err := svc.Get(context.Background(), accountType, dyndb.PrimaryKey(transpile.KeyWith("account_id", transpile.BeginsWith, "a")))

		var nsErr *transpile.NotSupportedError
		assert.ErrorAs(t, err, &nsErr)
	})
}
