// dyndb/query.go
package dyndb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/raywall/dynexpr/pkg/metrics"
	"github.com/raywall/dynexpr/predicate"
	"github.com/raywall/dynexpr/projection"
	"github.com/raywall/dynexpr/schema"
)

// QueryBuilder é o builder fluente de consultas.
type QueryBuilder struct {
	s                 *Service
	recordType        *schema.Type
	idx               Index
	filters           predicates
	exclusiveStartKey string
	limit             int32
	take              int
	scanForward       bool
}

// Query inicia uma consulta sobre idx (tabela base ou índice secundário).
func (s *Service) Query(recordType *schema.Type, idx Index) *QueryBuilder {
	return &QueryBuilder{
		s:           s,
		recordType:  recordType,
		idx:         idx,
		filters:     predicates{recordType: recordType},
		scanForward: true,
	}
}

// Where adiciona um filtro; vários filtros são unidos com "and".
func (qb *QueryBuilder) Where(fn PredicateFunc) *QueryBuilder {
	qb.filters.addFunc(fn)
	return qb
}

// WhereLambda adiciona um filtro já montado (ex.: vindo de celpred).
func (qb *QueryBuilder) WhereLambda(l *predicate.Lambda) *QueryBuilder {
	qb.filters.add(l)
	return qb
}

// Filter adiciona um filtro do pacote expression do SDK.
func (qb *QueryBuilder) Filter(cond expression.ConditionBuilder) *QueryBuilder {
	qb.filters.addRaw(cond)
	return qb
}

// ExclusiveStartKey retoma a partir de um cursor devolvido em ListResult.
func (qb *QueryBuilder) ExclusiveStartKey(token string) *QueryBuilder {
	qb.exclusiveStartKey = token
	return qb
}

// Limit define o tamanho de cada página pedida ao DynamoDB.
func (qb *QueryBuilder) Limit(n int32) *QueryBuilder {
	qb.limit = n
	return qb
}

// Take interrompe a paginação quando n itens foram acumulados.
func (qb *QueryBuilder) Take(n int) *QueryBuilder {
	qb.take = n
	return qb
}

func (qb *QueryBuilder) ScanIndexForward(forward bool) *QueryBuilder {
	qb.scanForward = forward
	return qb
}

// List executa a consulta.
func (qb *QueryBuilder) List(ctx context.Context) (*ListResult, error) {
	return qb.list(ctx, false)
}

// ListConsistent executa a consulta com leitura consistente.
func (qb *QueryBuilder) ListConsistent(ctx context.Context) (*ListResult, error) {
	return qb.list(ctx, true)
}

func (qb *QueryBuilder) input(consistent bool) (*dynamodb.QueryInput, error) {
	e := qb.s.newExpressions(qb.recordType, projection.Read)
	keyCond, err := qb.s.tr.KeyCondition(qb.idx.Keys, e.scope)
	if err != nil {
		return nil, err
	}
	proj := qb.s.mapper.ReadProjection(qb.recordType)
	filter, err := qb.filters.render(qb.s.tr, e, proj, true)
	if err != nil {
		return nil, err
	}
	startKey, err := qb.s.codec.Decode(qb.exclusiveStartKey)
	if err != nil {
		return nil, fmt.Errorf("dyndb: exclusive start key: %w", err)
	}
	projExpr := qb.s.tr.ProjectionExpression(proj, e.scope)
	names, values, err := e.attributes()
	if err != nil {
		return nil, err
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(qb.s.cfg.TableName),
		IndexName:                 optional(qb.idx.Name),
		ConsistentRead:            aws.Bool(consistent),
		ScanIndexForward:          aws.Bool(qb.scanForward),
		KeyConditionExpression:    aws.String(keyCond),
		FilterExpression:          optional(filter),
		ProjectionExpression:      optional(projExpr),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
		ExclusiveStartKey:         startKey,
	}
	if qb.limit > 0 {
		input.Limit = aws.Int32(qb.limit)
	}
	return input, nil
}

// list pagina sequencialmente até acabar a tabela ou atingir Take. O
// contexto é verificado entre as páginas.
func (qb *QueryBuilder) list(ctx context.Context, consistent bool) (*ListResult, error) {
	op := qb.s.begin("query", qb.recordType)
	input, err := qb.input(consistent)
	if err != nil {
		return nil, op.fail(err)
	}
	op.log.Debug().
		Str("key_condition", aws.ToString(input.KeyConditionExpression)).
		Str("filter", aws.ToString(input.FilterExpression)).
		Msg("query")

	items := make([]any, 0)
	pages := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, op.fail(err)
		}
		out, err := qb.s.client.Query(ctx, input)
		if err != nil {
			return nil, op.fail(fmt.Errorf("dyndb: query failed: %w", err))
		}
		pages++
		input.ExclusiveStartKey = out.LastEvaluatedKey

		for _, item := range out.Items {
			rec, err := qb.s.mapper.New(qb.recordType, item)
			if err != nil {
				return nil, op.fail(fmt.Errorf("dyndb: unmarshal failed: %w", err))
			}
			items = append(items, rec)
			if qb.take > 0 && len(items) >= qb.take {
				break
			}
		}

		if len(out.LastEvaluatedKey) == 0 || (qb.take > 0 && len(items) >= qb.take) {
			break
		}
	}
	_ = qb.s.metrics.Record(metrics.QueryPages, float64(pages), op.tags("ok")...)

	token, err := qb.s.codec.Encode(input.ExclusiveStartKey)
	if err != nil {
		return nil, op.fail(err)
	}
	op.done()
	return &ListResult{Items: items, Cursor: token}, nil
}
