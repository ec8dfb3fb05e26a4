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
package transpile

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownNode indica uma variante de IR que o transpiler não conhece.
	ErrUnknownNode = errors.New("transpile: unknown node kind")
	// ErrEmptyUpdate é retornado por Update.Build sem nenhuma cláusula.
	ErrEmptyUpdate = errors.New("transpile: nothing to update")
)

// ResolutionError indica um membro sem entrada na projeção.
type ResolutionError struct {
	Member string
	Type   string
}

func (e *ResolutionError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("transpile: member %s is not mapped", e.Member)
	}
	return fmt.Sprintf("transpile: member %s is not mapped in %s", e.Member, e.Type)
}

// ArityError indica chamada com número errado de argumentos ou sem instância.
type ArityError struct {
	Method string
	Want   int
	Got    int
	// MissingInstance é true quando a chamada não tem sobre o que operar.
	MissingInstance bool
}

func (e *ArityError) Error() string {
	if e.MissingInstance {
		return fmt.Sprintf("transpile: %s: the instance operand is missing", e.Method)
	}
	return fmt.Sprintf("transpile: %s expects %d argument(s), got %d", e.Method, e.Want, e.Got)
}

// NotSupportedError indica uma construção válida na IR mas sem forma na
// linguagem de expressões.
type NotSupportedError struct {
	What string
}

func (e *NotSupportedError) Error() string {
	return "transpile: not supported: " + e.What
}
