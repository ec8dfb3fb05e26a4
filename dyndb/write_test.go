package dyndb_test

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/raywall/dynexpr/dyndb"
	"github.com/raywall/dynexpr/predicate"
	"github.com/raywall/dynexpr/transpile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var accountKey = dyndb.PrimaryKey(transpile.Key("account_id", "a1"), transpile.Key("tenant_id", "t1"))

func TestPutBuilder_Exec(t *testing.T) {
	rec := &account{AccountId: "a1", TenantId: "t1", Status: "Active", Balance: 10}

	t.Run("conditional put", func(t *testing.T) {
		var got *dynamodb.PutItemInput
		client := &dyndb.MockClient{
			PutItemFn: func(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
				got = params
				return &dynamodb.PutItemOutput{}, nil
			},
		}
		svc, _ := newService(t, client)

		err := svc.Put(accountType, rec, accountKey).
			When(func(a predicate.Term, x predicate.Extension) predicate.Term {
				return predicate.Not(x.MemberExists(a.Get("Status")))
			}).
			Exec(context.Background())
		require.NoError(t, err)

		require.NotNil(t, got)
		assert.Equal(t, "accounts", aws.ToString(got.TableName))
		assert.Equal(t, "attribute_not_exists(#attr_name_0)", aws.ToString(got.ConditionExpression))
		assert.Equal(t, map[string]string{"#attr_name_0": "status"}, got.ExpressionAttributeNames)
		assert.Nil(t, got.ExpressionAttributeValues)
		assert.Equal(t, types.ReturnValueNone, got.ReturnValues)
		assert.Equal(t, map[string]types.AttributeValue{
			"account_id": &types.AttributeValueMemberS{Value: "a1"},
			"tenant_id":  &types.AttributeValueMemberS{Value: "t1"},
			"status":     &types.AttributeValueMemberS{Value: "Active"},
			"balance":    &types.AttributeValueMemberN{Value: "10"},
		}, got.Item)
	})

	t.Run("unconditional put", func(t *testing.T) {
		client := &dyndb.MockClient{
			PutItemFn: func(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
				assert.Nil(t, params.ConditionExpression)
				assert.Nil(t, params.ExpressionAttributeNames)
				return &dynamodb.PutItemOutput{}, nil
			},
		}
		svc, _ := newService(t, client)
		require.NoError(t, svc.Put(accountType, rec, accountKey).Exec(context.Background()))
	})

	t.Run("compile error is returned on exec", func(t *testing.T) {
		client := &dyndb.MockClient{}
		svc, _ := newService(t, client)

		err := svc.Put(accountType, rec, accountKey).
			When(func(a predicate.Term, _ predicate.Extension) predicate.Term {
				return a.Get("Missing").Eq("x")
			}).
			Exec(context.Background())

		var parseErr *predicate.ParseError
		assert.ErrorAs(t, err, &parseErr)
	})
}

func TestDeleteBuilder_Exec(t *testing.T) {
	var got *dynamodb.DeleteItemInput
	client := &dyndb.MockClient{
		DeleteItemFn: func(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
			got = params
			return &dynamodb.DeleteItemOutput{}, nil
		},
	}
	svc, _ := newService(t, client)

	err := svc.Delete(accountType, accountKey).
		When(func(a predicate.Term, _ predicate.Extension) predicate.Term {
			return a.Get("Status").Eq("Closed")
		}).
		Condition(expression.Name("balance").Equal(expression.Value(0))).
		Exec(context.Background())
	require.NoError(t, err)

	require.NotNil(t, got)
	assert.Equal(t, "(#attr_name_0 = :attr_val_0) and (#0 = :0)", aws.ToString(got.ConditionExpression))
	assert.Equal(t, map[string]string{"#attr_name_0": "status", "#0": "balance"}, got.ExpressionAttributeNames)
	assert.Equal(t, map[string]types.AttributeValue{
		":attr_val_0": &types.AttributeValueMemberS{Value: "Closed"},
		":0":          &types.AttributeValueMemberN{Value: "0"},
	}, got.ExpressionAttributeValues)
	assert.Equal(t, map[string]types.AttributeValue{
		"account_id": &types.AttributeValueMemberS{Value: "a1"},
		"tenant_id":  &types.AttributeValueMemberS{Value: "t1"},
	}, got.Key)
}

func TestUpdateBuilder_Exec(t *testing.T) {
	t.Run("update and condition share one scope", func(t *testing.T) {
		var got *dynamodb.UpdateItemInput
		client := &dyndb.MockClient{
			UpdateItemFn: func(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
				got = params
				return &dynamodb.UpdateItemOutput{}, nil
			},
		}
		svc, _ := newService(t, client)

		err := svc.Update(accountType, accountKey).
			Set("Status", "Blocked").
			Increase("Balance", -5).
			When(func(a predicate.Term, _ predicate.Extension) predicate.Term {
				return a.Get("Status").Eq("Active")
			}).
			Exec(context.Background())
		require.NoError(t, err)

		require.NotNil(t, got)
		assert.Equal(t, "SET #attr_name_0 = :attr_val_0, #attr_name_1 = #attr_name_1 - :attr_val_1", aws.ToString(got.UpdateExpression))
		assert.Equal(t, "#attr_name_0 = :attr_val_2", aws.ToString(got.ConditionExpression))
		assert.Equal(t, map[string]string{"#attr_name_0": "status", "#attr_name_1": "balance"}, got.ExpressionAttributeNames)
		assert.Equal(t, map[string]types.AttributeValue{
			":attr_val_0": &types.AttributeValueMemberS{Value: "Blocked"},
			":attr_val_1": &types.AttributeValueMemberN{Value: "5"},
			":attr_val_2": &types.AttributeValueMemberS{Value: "Active"},
		}, got.ExpressionAttributeValues)
	})

	t.Run("set operations", func(t *testing.T) {
		var got *dynamodb.UpdateItemInput
		client := &dyndb.MockClient{
			UpdateItemFn: func(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
				got = params
				return &dynamodb.UpdateItemOutput{}, nil
			},
		}
		svc, _ := newService(t, client)

		err := svc.Update(accountType, accountKey).
			DeleteFromSet("Tags", []string{"old"}).
			Add("Tags", []string{"new"}).
			Exec(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "ADD #attr_name_0 :attr_val_0 DELETE #attr_name_0 :attr_val_1", aws.ToString(got.UpdateExpression))
		assert.Nil(t, got.ConditionExpression)
	})

	t.Run("empty update", func(t *testing.T) {
		svc, _ := newService(t, &dyndb.MockClient{})
		err := svc.Update(accountType, accountKey).Exec(context.Background())
		assert.ErrorIs(t, err, transpile.ErrEmptyUpdate)
	})

	t.Run("zero delta", func(t *testing.T) {
		svc, _ := newService(t, &dyndb.MockClient{})
		err := svc.Update(accountType, accountKey).Increase("Balance", 0).Exec(context.Background())
		assert.ErrorIs(t, err, transpile.ErrZeroDelta)
	})
}
