// Copyright 2025 Raywall Malheiros de Souza
// Licensed under the Mozilla Public License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	https://www.mozilla.org/en-US/MPL/2.0/
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package dyndb

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/raywall/dynexpr/transpile"
)

// ErrNotFound – erro padrão quando o item não existe
var ErrNotFound = errors.New("dyndb: item not found")

// Client interface para abstrair o cliente DynamoDB
type Client interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// Config contém a tabela e as chaves do cursor de paginação.
// Campos vazios são preenchidos pelas variáveis de ambiente.
type Config struct {
	TableName  string `env:"DYNEXPR_TABLE_NAME"`
	EncryptKey string `env:"DYNEXPR_CURSOR_ENCRYPT_KEY"`
	DecryptKey string `env:"DYNEXPR_CURSOR_DECRYPT_KEY"`
}

// Index identifica um item (tabela base) ou uma consulta (tabela ou GSI).
type Index struct {
	Name string
	Keys []transpile.PartitionKey
}

// PrimaryKey cria um índice sobre a tabela base.
func PrimaryKey(keys ...transpile.PartitionKey) Index {
	return Index{Keys: keys}
}

// SecondaryIndex cria um índice sobre um GSI/LSI.
func SecondaryIndex(name string, keys ...transpile.PartitionKey) Index {
	return Index{Name: name, Keys: keys}
}

// ListResult é uma página de resultados. Cursor vazio indica fim dos dados
// (ou paginação sem chave de criptografia configurada).
type ListResult struct {
	Items  []any
	Cursor string
}
