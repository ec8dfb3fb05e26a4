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
//
// Package envloader sobrepõe variáveis de ambiente a campos de uma struct Go
// usando as tags `env`, `envDefault` e `envSeparator`.
//
// No dynexpr ele roda depois do YAML: a configuração lida do arquivo é o
// ponto de partida e as variáveis (DYNEXPR_TABLE_NAME,
// DYNEXPR_CURSOR_ENCRYPT_KEY, DD_TAGS...) têm prioridade. Um campo sem
// variável e sem default mantém o valor que já tinha.
//
// Tipos suportados: string, inteiros e unsigned (com checagem de overflow),
// bool, float, time.Duration e []string (separador padrão ","). Structs
// aninhadas e ponteiros para struct são percorridos. As conversões usam
// github.com/spf13/cast.
//
//	type Config struct {
//		Table   string        `env:"DYNEXPR_TABLE_NAME"`
//		Timeout time.Duration `env:"DYNEXPR_TIMEOUT" envDefault:"2s"`
//		Tags    []string      `env:"DD_TAGS"`
//	}
//
//	cfg := Config{Table: "accounts"}
//	if err := envloader.Load(&cfg); err != nil {
//		log.Fatal(err)
//	}
package envloader
