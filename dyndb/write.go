package dyndb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/raywall/dynexpr/ir"
	"github.com/raywall/dynexpr/predicate"
	"github.com/raywall/dynexpr/projection"
	"github.com/raywall/dynexpr/schema"
	"github.com/raywall/dynexpr/transpile"
)

// PredicateFunc é a forma fluente de um predicado sobre o registro.
type PredicateFunc func(r predicate.Term, x predicate.Extension) predicate.Term

// predicates acumula condições de topo e guarda o primeiro erro de
// compilação para ser devolvido na execução.
type predicates struct {
	recordType *schema.Type
	nodes      []ir.Node
	raw        *expression.ConditionBuilder
	err        error
}

func (p *predicates) add(l *predicate.Lambda) {
	if p.err != nil {
		return
	}
	n, err := predicate.Compile(l)
	if err != nil {
		p.err = err
		return
	}
	p.nodes = append(p.nodes, n)
}

func (p *predicates) addFunc(fn PredicateFunc) {
	if fn == nil {
		if p.err == nil {
			p.err = fmt.Errorf("dyndb: nil predicate")
		}
		return
	}
	p.add(predicate.Where(p.recordType, fn))
}

func (p *predicates) addRaw(cond expression.ConditionBuilder) {
	if p.raw == nil {
		p.raw = &cond
		return
	}
	tmp := p.raw.And(cond)
	p.raw = &tmp
}

// render transpila as condições no escopo de e e junta a condição do SDK.
func (p *predicates) render(tr transpile.Transpiler, e *expressions, proj *projection.Projection, filter bool) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	compiled, err := tr.Conditions(p.nodes, e.scope, proj)
	if err != nil {
		return "", err
	}
	return e.merge(compiled, p.raw, filter)
}

// PutBuilder grava um registro completo, opcionalmente condicionado.
type PutBuilder struct {
	s          *Service
	recordType *schema.Type
	record     any
	idx        Index
	conds      predicates
}

// Put inicia a gravação de record; as chaves de idx são gravadas com os
// nomes reais dos atributos.
func (s *Service) Put(recordType *schema.Type, record any, idx Index) *PutBuilder {
	return &PutBuilder{s: s, recordType: recordType, record: record, idx: idx, conds: predicates{recordType: recordType}}
}

// When adiciona uma condição avaliada sobre a projeção de escrita.
func (b *PutBuilder) When(fn PredicateFunc) *PutBuilder {
	b.conds.addFunc(fn)
	return b
}

// WhenLambda adiciona uma condição já montada (ex.: vinda de celpred).
func (b *PutBuilder) WhenLambda(l *predicate.Lambda) *PutBuilder {
	b.conds.add(l)
	return b
}

// Condition adiciona uma condição do pacote expression do SDK.
func (b *PutBuilder) Condition(cond expression.ConditionBuilder) *PutBuilder {
	b.conds.addRaw(cond)
	return b
}

// Exec envia o PutItem.
func (b *PutBuilder) Exec(ctx context.Context) error {
	op := b.s.begin("put", b.recordType)
	e := b.s.newExpressions(b.recordType, projection.Write)
	cond, err := b.conds.render(b.s.tr, e, b.s.mapper.WriteProjection(b.recordType), false)
	if err != nil {
		return op.fail(err)
	}
	item, err := b.s.mapper.ToAttributes(b.recordType, b.record, b.idx.Keys)
	if err != nil {
		return op.fail(fmt.Errorf("dyndb: marshal failed: %w", err))
	}
	names, values, err := e.attributes()
	if err != nil {
		return op.fail(err)
	}

	input := &dynamodb.PutItemInput{
		TableName:                 aws.String(b.s.cfg.TableName),
		Item:                      item,
		ConditionExpression:       optional(cond),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
		ReturnValues:              types.ReturnValueNone,
	}
	op.log.Debug().Str("condition", cond).Int("attributes", len(item)).Msg("put item")

	if _, err := b.s.client.PutItem(ctx, input); err != nil {
		return op.fail(fmt.Errorf("dyndb: put failed: %w", err))
	}
	op.done()
	return nil
}

// DeleteBuilder remove um item pela chave.
type DeleteBuilder struct {
	s          *Service
	recordType *schema.Type
	idx        Index
	conds      predicates
}

// Delete inicia a remoção do item identificado por idx.
func (s *Service) Delete(recordType *schema.Type, idx Index) *DeleteBuilder {
	return &DeleteBuilder{s: s, recordType: recordType, idx: idx, conds: predicates{recordType: recordType}}
}

// When adiciona uma condição avaliada sobre a projeção de leitura.
func (b *DeleteBuilder) When(fn PredicateFunc) *DeleteBuilder {
	b.conds.addFunc(fn)
	return b
}

// WhenLambda adiciona uma condição já montada.
func (b *DeleteBuilder) WhenLambda(l *predicate.Lambda) *DeleteBuilder {
	b.conds.add(l)
	return b
}

// Condition adiciona uma condição do pacote expression do SDK.
func (b *DeleteBuilder) Condition(cond expression.ConditionBuilder) *DeleteBuilder {
	b.conds.addRaw(cond)
	return b
}

// Exec envia o DeleteItem.
func (b *DeleteBuilder) Exec(ctx context.Context) error {
	op := b.s.begin("delete", b.recordType)
	e := b.s.newExpressions(b.recordType, projection.Read)
	cond, err := b.conds.render(b.s.tr, e, b.s.mapper.ReadProjection(b.recordType), false)
	if err != nil {
		return op.fail(err)
	}
	key, err := b.s.mapper.KeyAttributes(b.idx.Keys)
	if err != nil {
		return op.fail(err)
	}
	names, values, err := e.attributes()
	if err != nil {
		return op.fail(err)
	}

	input := &dynamodb.DeleteItemInput{
		TableName:                 aws.String(b.s.cfg.TableName),
		Key:                       key,
		ConditionExpression:       optional(cond),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
		ReturnValues:              types.ReturnValueNone,
	}
	op.log.Debug().Str("condition", cond).Msg("delete item")

	if _, err := b.s.client.DeleteItem(ctx, input); err != nil {
		return op.fail(fmt.Errorf("dyndb: delete failed: %w", err))
	}
	op.done()
	return nil
}

// UpdateBuilder altera membros de um item. A UpdateExpression e a
// ConditionExpression compartilham o mesmo escopo de aliases.
type UpdateBuilder struct {
	s          *Service
	recordType *schema.Type
	idx        Index
	update     *transpile.Update
	conds      predicates
}

// Update inicia a alteração do item identificado por idx.
func (s *Service) Update(recordType *schema.Type, idx Index) *UpdateBuilder {
	return &UpdateBuilder{
		s:          s,
		recordType: recordType,
		idx:        idx,
		update:     transpile.NewUpdate(recordType, s.mapper.WriteProjection(recordType)),
		conds:      predicates{recordType: recordType},
	}
}

// Set atribui value ao membro (caminho pontilhado, ex.: "Identity.Type").
func (b *UpdateBuilder) Set(member string, value any) *UpdateBuilder {
	b.update.Set(member, value)
	return b
}

// SetIfNotExists atribui value apenas se o atributo ainda não existir.
func (b *UpdateBuilder) SetIfNotExists(member string, value any) *UpdateBuilder {
	b.update.SetIfNotExists(member, value)
	return b
}

// Increase soma delta (negativo subtrai) a um membro numérico.
func (b *UpdateBuilder) Increase(member string, delta any) *UpdateBuilder {
	b.update.Increase(member, delta)
	return b
}

// AppendToList concatena values ao fim da lista.
func (b *UpdateBuilder) AppendToList(member string, values any) *UpdateBuilder {
	b.update.AppendToList(member, values)
	return b
}

// PrependToList concatena values ao início da lista.
func (b *UpdateBuilder) PrependToList(member string, values any) *UpdateBuilder {
	b.update.PrependToList(member, values)
	return b
}

// Add usa a seção ADD (números e conjuntos).
func (b *UpdateBuilder) Add(member string, value any) *UpdateBuilder {
	b.update.Add(member, value)
	return b
}

// DeleteFromSet remove values de um conjunto (seção DELETE).
func (b *UpdateBuilder) DeleteFromSet(member string, values any) *UpdateBuilder {
	b.update.Delete(member, values)
	return b
}

// Remove apaga o atributo.
func (b *UpdateBuilder) Remove(member string) *UpdateBuilder {
	b.update.Remove(member)
	return b
}

// When adiciona uma condição avaliada sobre a projeção de escrita.
func (b *UpdateBuilder) When(fn PredicateFunc) *UpdateBuilder {
	b.conds.addFunc(fn)
	return b
}

// WhenLambda adiciona uma condição já montada.
func (b *UpdateBuilder) WhenLambda(l *predicate.Lambda) *UpdateBuilder {
	b.conds.add(l)
	return b
}

// Condition adiciona uma condição do pacote expression do SDK.
func (b *UpdateBuilder) Condition(cond expression.ConditionBuilder) *UpdateBuilder {
	b.conds.addRaw(cond)
	return b
}

// Exec envia o UpdateItem.
func (b *UpdateBuilder) Exec(ctx context.Context) error {
	op := b.s.begin("update", b.recordType)
	e := b.s.newExpressions(b.recordType, projection.Write)
	upd, err := b.update.Build(e.scope)
	if err != nil {
		return op.fail(err)
	}
	cond, err := b.conds.render(b.s.tr, e, b.s.mapper.WriteProjection(b.recordType), false)
	if err != nil {
		return op.fail(err)
	}
	key, err := b.s.mapper.KeyAttributes(b.idx.Keys)
	if err != nil {
		return op.fail(err)
	}
	names, values, err := e.attributes()
	if err != nil {
		return op.fail(err)
	}

	input := &dynamodb.UpdateItemInput{
		TableName:                 aws.String(b.s.cfg.TableName),
		Key:                       key,
		UpdateExpression:          aws.String(upd),
		ConditionExpression:       optional(cond),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
		ReturnValues:              types.ReturnValueNone,
	}
	op.log.Debug().Str("update", upd).Str("condition", cond).Msg("update item")

	if _, err := b.s.client.UpdateItem(ctx, input); err != nil {
		return op.fail(fmt.Errorf("dyndb: update failed: %w", err))
	}
	op.done()
	return nil
}
