// Package dynexpr compila predicados, projeções e atualizações escritos em Go
// (ou em CEL) para as expressões de texto do DynamoDB, com placeholders
// deduplicados e cursores de paginação cifrados.
//
// Visão Geral:
// O núcleo não faz chamadas de rede. Ele só transforma:
//
//  1. predicate: predicado sobre um registro -> IR (pacote ir).
//  2. projection: perfis de leitura/escrita -> índice de nomes e caminhos.
//  3. alias: um escopo por operação aloca #attr_name_N e :attr_val_N.
//  4. transpile: IR -> KeyConditionExpression, FilterExpression,
//     ConditionExpression, ProjectionExpression e UpdateExpression.
//  5. cursor: LastEvaluatedKey <-> token AES-GCM em base64.
//
// Em volta do núcleo:
//
//   - mapping: registro <-> atributos com semântica Required/Optional.
//   - dyndb: Get/Put/Delete/Update/Query montados a partir do núcleo, com
//     paginação, logs (zerolog) e métricas (Datadog).
//   - predicate/celpred: predicados em texto CEL.
//   - schemafile: tipos e mapeamentos declarados em YAML (arquivo ou S3).
//   - keysource: chaves do cursor via env, SSM ou Secrets Manager.
//   - cmd/dynexpr: CLI (compile, projection, cursor, query).
//
// Exemplo de Início Rápido:
//
//	s, err := schemafile.Load(ctx, "schema.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//	user, _ := s.Type("User")
//	mapper, err := s.Mapper()
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	client, err := dyndb.NewClient(ctx, "sa-east-1", "")
//	if err != nil {
//		log.Fatal(err)
//	}
//	svc, err := dyndb.NewService(client, dyndb.Config{TableName: "users"}, mapper, nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	p, _ := celpred.New()
//	filter, err := p.Parse(user, `record.Age >= 18`)
//	if err != nil {
//		log.Fatal(err)
//	}
//	page, err := svc.Query(user, dyndb.PrimaryKey(transpile.Key("tenant_id", "t1"))).
//		WhereLambda(filter).
//		Take(50).
//		List(ctx)
package dynexpr
