// dyndb/store.go
package dyndb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"github.com/raywall/dynexpr/alias"
	"github.com/raywall/dynexpr/cursor"
	"github.com/raywall/dynexpr/envloader"
	"github.com/raywall/dynexpr/mapping"
	"github.com/raywall/dynexpr/pkg/metrics"
	"github.com/raywall/dynexpr/projection"
	"github.com/raywall/dynexpr/schema"
	"github.com/raywall/dynexpr/transpile"
	"github.com/rs/zerolog"
)

// Service executa operações de item e consultas sobre uma tabela, montando
// as expressões a partir dos predicados compilados.
type Service struct {
	client  Client
	cfg     Config
	mapper  *mapping.Mapper
	codec   *cursor.Codec
	tr      transpile.Transpiler
	log     zerolog.Logger
	metrics *metrics.Processor
	newID   func() string
}

// Option configura o Service.
type Option func(*Service)

// WithLogger define o logger usado pelo serviço (padrão: zerolog.Nop()).
func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) { s.log = l }
}

// WithMetrics define o provedor de métricas (padrão: descarta).
func WithMetrics(p metrics.Provider, tags ...string) Option {
	return func(s *Service) { s.metrics = metrics.NewProcessor(p, tags...) }
}

// NewService cria o serviço. Com TableName vazio a configuração é lida do
// ambiente. Sem codec, um é criado a partir das chaves de cfg.
func NewService(client Client, cfg Config, mapper *mapping.Mapper, codec *cursor.Codec, opts ...Option) (*Service, error) {
	if client == nil {
		return nil, fmt.Errorf("dyndb: client is required")
	}
	if mapper == nil {
		return nil, fmt.Errorf("dyndb: mapper is required")
	}
	if cfg.TableName == "" {
		if err := envloader.Load(&cfg); err != nil {
			return nil, fmt.Errorf("dyndb: load config: %w", err)
		}
	}
	if cfg.TableName == "" {
		return nil, fmt.Errorf("dyndb: table name is required")
	}
	if codec == nil {
		c, err := cursor.New(cfg.EncryptKey, cfg.DecryptKey)
		if err != nil {
			return nil, fmt.Errorf("dyndb: cursor: %w", err)
		}
		codec = c
	}

	s := &Service{
		client:  client,
		cfg:     cfg,
		mapper:  mapper,
		codec:   codec,
		log:     zerolog.Nop(),
		metrics: metrics.NewProcessor(nil),
		newID:   func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Get lê um item pela chave primária usando a projeção de leitura do tipo.
func (s *Service) Get(ctx context.Context, recordType *schema.Type, idx Index) (any, error) {
	return s.get(ctx, recordType, idx, false)
}

// GetConsistent é Get com leitura fortemente consistente.
func (s *Service) GetConsistent(ctx context.Context, recordType *schema.Type, idx Index) (any, error) {
	return s.get(ctx, recordType, idx, true)
}

func (s *Service) get(ctx context.Context, recordType *schema.Type, idx Index, consistent bool) (any, error) {
	op := s.begin("get", recordType)
	key, err := s.mapper.KeyAttributes(idx.Keys)
	if err != nil {
		return nil, op.fail(err)
	}

	scope := alias.NewScope()
	input := &dynamodb.GetItemInput{
		TableName:      aws.String(s.cfg.TableName),
		Key:            key,
		ConsistentRead: aws.Bool(consistent),
	}
	if p := s.tr.ProjectionExpression(s.mapper.ReadProjection(recordType), scope); p != "" {
		input.ProjectionExpression = aws.String(p)
		input.ExpressionAttributeNames = scope.Names()
	}

	out, err := s.client.GetItem(ctx, input)
	if err != nil {
		return nil, op.fail(fmt.Errorf("dyndb: get failed: %w", err))
	}
	if len(out.Item) == 0 {
		op.done()
		return nil, ErrNotFound
	}

	rec, err := s.mapper.New(recordType, out.Item)
	if err != nil {
		return nil, op.fail(fmt.Errorf("dyndb: unmarshal failed: %w", err))
	}
	op.done()
	return rec, nil
}

// operation acompanha uma chamada: id para correlação nos logs, latência
// e contagem por resultado.
type operation struct {
	s     *Service
	name  string
	log   zerolog.Logger
	start time.Time
}

func (s *Service) begin(name string, recordType *schema.Type) *operation {
	l := s.log.With().
		Str("operation", name).
		Str("operation_id", s.newID()).
		Str("table", s.cfg.TableName).
		Str("record_type", recordType.Name()).
		Logger()
	return &operation{s: s, name: name, log: l, start: time.Now()}
}

func (o *operation) tags(status string) []string {
	return []string{"operation:" + o.name, "table:" + o.s.cfg.TableName, "status:" + status}
}

func (o *operation) record(status string) {
	_ = o.s.metrics.Record(metrics.RequestCount, 1, o.tags(status)...)
	_ = o.s.metrics.Record(metrics.RequestLatency, float64(time.Since(o.start).Milliseconds()), o.tags(status)...)
}

func (o *operation) done() {
	o.record("ok")
}

func (o *operation) fail(err error) error {
	o.log.Error().Err(err).Msg("dynamodb request failed")
	o.record("error")
	return err
}

// expressions reúne as partes de um pedido que compartilham o mesmo escopo
// de aliases, mais as condições montadas com o pacote expression do SDK.
type expressions struct {
	scope  *alias.Scope
	names  map[string]string
	values map[string]types.AttributeValue
}

// newExpressions cria o escopo da operação; os valores ligados a membros de
// recordType passam pelos conversores do mapeamento na direção dir.
func (s *Service) newExpressions(recordType *schema.Type, dir projection.Direction) *expressions {
	return &expressions{scope: alias.NewScope(alias.WithCodec(s.mapper.Codec(recordType, dir)))}
}

// merge junta a condição compilada com uma condição do SDK. Os placeholders
// do SDK (#0, :0) não colidem com os nossos (#attr_name_0, :attr_val_0).
func (e *expressions) merge(compiled string, raw *expression.ConditionBuilder, filter bool) (string, error) {
	if raw == nil {
		return compiled, nil
	}
	b := expression.NewBuilder()
	if filter {
		b = b.WithFilter(*raw)
	} else {
		b = b.WithCondition(*raw)
	}
	expr, err := b.Build()
	if err != nil {
		return "", fmt.Errorf("dyndb: build condition: %w", err)
	}
	e.names = expr.Names()
	e.values = expr.Values()

	other := expr.Condition()
	if filter {
		other = expr.Filter()
	}
	if other == nil || *other == "" {
		return compiled, nil
	}
	if compiled == "" {
		return *other, nil
	}
	return strings.Join([]string{"(" + compiled + ")", "(" + *other + ")"}, " and "), nil
}

// attributes devolve nomes e valores finais, ou nil quando vazios.
func (e *expressions) attributes() (map[string]string, map[string]types.AttributeValue, error) {
	names := e.scope.Names()
	if len(e.names) > 0 && names == nil {
		names = make(map[string]string, len(e.names))
	}
	for k, v := range e.names {
		names[k] = v
	}
	values, err := e.scope.AttributeValues()
	if err != nil {
		return nil, nil, fmt.Errorf("dyndb: expression values: %w", err)
	}
	if len(e.values) > 0 && values == nil {
		values = make(map[string]types.AttributeValue, len(e.values))
	}
	for k, v := range e.values {
		values[k] = v
	}
	if len(names) == 0 {
		names = nil
	}
	if len(values) == 0 {
		values = nil
	}
	return names, values, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return aws.String(s)
}
