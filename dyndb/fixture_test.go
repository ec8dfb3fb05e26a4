package dyndb_test

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/raywall/dynexpr/cursor"
	"github.com/raywall/dynexpr/dyndb"
	"github.com/raywall/dynexpr/mapping"
	"github.com/raywall/dynexpr/schema"
	"github.com/stretchr/testify/require"
)

type account struct {
	AccountId string
	TenantId  string
	Status    string
	Balance   int64
	Tags      []string
}

var accountType = func() *schema.Type {
	r := schema.NewRecord[account]("Account")
	schema.Field(r, "AccountId", schema.String, func(a *account) *string { return &a.AccountId })
	schema.Field(r, "TenantId", schema.String, func(a *account) *string { return &a.TenantId })
	schema.Field(r, "Status", schema.String, func(a *account) *string { return &a.Status })
	schema.Field(r, "Balance", schema.Int64, func(a *account) *int64 { return &a.Balance })
	schema.Field(r, "Tags", schema.SetOf(schema.String), func(a *account) *[]string { return &a.Tags })
	return r.Type()
}()

func newMapper(t *testing.T) *mapping.Mapper {
	t.Helper()
	p := mapping.NewProfile()
	p.Read(accountType).
		Required("AccountId", "account_id").
		Required("TenantId", "tenant_id").
		Optional("Status", "status").
		Optional("Balance", "balance").
		Optional("Tags", "tags")
	p.Write(accountType).
		PartitionReserved("AccountId", "account_id").
		PartitionReserved("TenantId", "tenant_id").
		From("Status", "status").
		From("Balance", "balance").
		From("Tags", "tags")
	m, err := p.Build()
	require.NoError(t, err)
	return m
}

type recordedMetric struct {
	kind  string
	name  string
	value float64
	tags  []string
}

type fakeMetrics struct {
	recorded []recordedMetric
}

func (f *fakeMetrics) Count(name string, value float64, tags []string) error {
	f.recorded = append(f.recorded, recordedMetric{"count", name, value, tags})
	return nil
}

func (f *fakeMetrics) Gauge(name string, value float64, tags []string) error {
	f.recorded = append(f.recorded, recordedMetric{"gauge", name, value, tags})
	return nil
}

func (f *fakeMetrics) Histogram(name string, value float64, tags []string) error {
	f.recorded = append(f.recorded, recordedMetric{"histogram", name, value, tags})
	return nil
}

func newService(t *testing.T, client dyndb.Client, opts ...dyndb.Option) (*dyndb.Service, *cursor.Codec) {
	t.Helper()
	key, err := cursor.GenerateKey()
	require.NoError(t, err)
	codec, err := cursor.New(key, key)
	require.NoError(t, err)

	svc, err := dyndb.NewService(client, dyndb.Config{TableName: "accounts"}, newMapper(t), codec, opts...)
	require.NoError(t, err)
	return svc, codec
}

func accountItem(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"account_id": &types.AttributeValueMemberS{Value: id},
		"tenant_id":  &types.AttributeValueMemberS{Value: "t1"},
		"status":     &types.AttributeValueMemberS{Value: "Active"},
		"balance":    &types.AttributeValueMemberN{Value: "10"},
	}
}
