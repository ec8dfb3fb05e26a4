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
package envloader

import (
	"fmt"
	"reflect"
)

// InvalidConfigError indica que Load não recebeu um ponteiro para struct
// (ex.: dyndb.Config passado por valor).
type InvalidConfigError struct {
	Value reflect.Type
}

func (e *InvalidConfigError) Error() string {
	if e.Value.Kind() != reflect.Ptr {
		return fmt.Sprintf("envloader: expected a pointer to a config struct, got %s", e.Value.Kind())
	}
	return fmt.Sprintf("envloader: expected a pointer to a config struct, got pointer to %s", e.Value.Elem().Kind())
}

// FieldError aponta a variável que não pôde ser aplicada ao campo, por
// exemplo DD_ENABLED=talvez num bool. Err é a causa: um erro do cast,
// um *OverflowError ou um *UnsupportedTypeError.
type FieldError struct {
	FieldName string
	EnvVar    string
	Value     string
	Err       error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("envloader: %s=%q cannot be applied to field %s: %v",
		e.EnvVar, e.Value, e.FieldName, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// UnsupportedTypeError indica um campo com tag env de um tipo que Load não
// preenche. Só slices de string são aceitos entre as coleções (DD_TAGS).
type UnsupportedTypeError struct {
	Type reflect.Type
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("envloader: fields of type %s cannot be loaded from the environment", e.Type)
}

// OverflowError indica um número que não cabe no campo, como um
// int32 recebendo "3000000000".
type OverflowError struct {
	Value string
	Type  reflect.Type
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("envloader: %s overflows %s", e.Value, e.Type)
}
