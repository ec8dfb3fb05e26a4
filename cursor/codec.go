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

// Package cursor cifra o LastEvaluatedKey de uma consulta num token opaco de
// continuação, e faz o caminho inverso.
//
// Formato do token: base64(nonce || AES-GCM(json)), onde json é o mapa de
// atributos em DynamoDB JSON. As chaves de cifragem e decifragem podem ser
// diferentes, o que permite rotação.
package cursor

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/raywall/dynexpr/attrval"
)

// CodecError indica um token malformado ou que não pode ser decifrado com a
// chave configurada. Nunca há fallback para texto puro.
type CodecError struct {
	Op  string
	Err error
}

func (e *CodecError) Error() string {
	return fmt.Sprintf("cursor: %s: %v", e.Op, e.Err)
}

func (e *CodecError) Unwrap() error {
	return e.Err
}

var (
	errShortToken = errors.New("token shorter than the nonce")
	errKeySize    = errors.New("key must be 16, 24 or 32 bytes")
)

// Codec cifra e decifra tokens. É imutável e seguro para uso concorrente.
type Codec struct {
	encrypt cipher.AEAD
	decrypt cipher.AEAD
	random  io.Reader
}

// New cria um codec a partir de chaves AES em base64. Uma chave vazia
// desliga o lado correspondente: Encode devolve "" e Decode devolve nil.
func New(encryptKey, decryptKey string) (*Codec, error) {
	enc, err := newAEAD(encryptKey)
	if err != nil {
		return nil, &CodecError{Op: "encrypt key", Err: err}
	}
	dec, err := newAEAD(decryptKey)
	if err != nil {
		return nil, &CodecError{Op: "decrypt key", Err: err}
	}
	return &Codec{encrypt: enc, decrypt: dec, random: rand.Reader}, nil
}

func newAEAD(key string) (cipher.AEAD, error) {
	if key == "" {
		return nil, nil
	}
	raw, err := base64.StdEncoding.DecodeString(key)
	if err != nil {
		return nil, err
	}
	switch len(raw) {
	case 16, 24, 32:
	default:
		return nil, errKeySize
	}
	block, err := aes.NewCipher(raw)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Encode serializa e cifra o cursor com um nonce novo a cada chamada.
func (c *Codec) Encode(key map[string]types.AttributeValue) (string, error) {
	if c == nil || c.encrypt == nil || len(key) == 0 {
		return "", nil
	}

	plain, err := attrval.MarshalJSON(key)
	if err != nil {
		return "", &CodecError{Op: "encode", Err: err}
	}

	nonce := make([]byte, c.encrypt.NonceSize())
	if _, err := io.ReadFull(c.random, nonce); err != nil {
		return "", &CodecError{Op: "encode", Err: err}
	}
	sealed := c.encrypt.Seal(nonce, nonce, plain, nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decode decifra um token produzido por Encode.
func (c *Codec) Decode(token string) (map[string]types.AttributeValue, error) {
	if c == nil || c.decrypt == nil || token == "" {
		return nil, nil
	}

	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return nil, &CodecError{Op: "decode", Err: err}
	}
	size := c.decrypt.NonceSize()
	if len(raw) < size {
		return nil, &CodecError{Op: "decode", Err: errShortToken}
	}

	plain, err := c.decrypt.Open(nil, raw[:size], raw[size:], nil)
	if err != nil {
		return nil, &CodecError{Op: "decrypt", Err: err}
	}
	key, err := attrval.UnmarshalJSON(plain)
	if err != nil {
		return nil, &CodecError{Op: "decode", Err: err}
	}
	return key, nil
}

// GenerateKey cria uma chave AES-256 aleatória já em base64.
func GenerateKey() (string, error) {
	raw := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, raw); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}
