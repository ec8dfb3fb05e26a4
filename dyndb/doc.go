// Package dyndb executa operações do DynamoDB a partir de predicados
// compilados, sobre o AWS SDK Go v2.
//
// Visão Geral:
// O `Service` recebe um `Client` (o *dynamodb.Client do SDK ou o
// `MockClient`), um `mapping.Mapper` com as projeções de leitura e escrita
// dos tipos e um `cursor.Codec` para os tokens de paginação. Cada operação
// usa um único `alias.Scope`, de modo que as expressões de chave, filtro,
// condição, update e projeção compartilham os mesmos placeholders.
//
// Funcionalidades Principais:
//   - Get/GetConsistent: leitura por chave com ProjectionExpression.
//   - Put/Delete/Update: builders fluentes com `When(...)` condicional.
//   - Query: filtros compilados, Limit/Take, paginação com cursor cifrado.
//   - Condições do pacote `expression` do SDK podem ser combinadas com as
//     compiladas (`Filter`, `Condition`).
//   - Logs com zerolog e métricas via `metrics.Provider`.
//
// Exemplo de Query:
//
//	svc, _ := dyndb.NewService(client, dyndb.Config{TableName: "users"}, mapper, nil)
//	res, err := svc.Query(userType, dyndb.SecondaryIndex("by-tenant", transpile.Key("tenant_id", "t1"))).
//		Where(func(u predicate.Term, _ predicate.Extension) predicate.Term {
//			return u.Get("Status").Eq("Active")
//		}).
//		Take(50).
//		List(ctx)
//
// Configuração:
// Com `Config.TableName` vazio, a tabela e as chaves do cursor são lidas
// das variáveis DYNEXPR_TABLE_NAME, DYNEXPR_CURSOR_ENCRYPT_KEY e
// DYNEXPR_CURSOR_DECRYPT_KEY.
package dyndb
