package injector

import (
	"context"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/raywall/dynexpr/keysource"
)

// Regex para capturar padrões ${tipo.chave}
// Ex: ${env.CURSOR_KEY}, ${ssm./dynexpr/cursor}, ${secret.dynexpr/cursor#encrypt_key}
var pattern = regexp.MustCompile(`\$\{(env|ssm|secret)\.([^}]+)\}`)

type Injector struct {
	loader *keysource.Loader
}

// New cria o injector. Com loader nil, os clientes da AWS são criados sob
// demanda a partir da configuração padrão.
func New(loader *keysource.Loader) *Injector {
	if loader == nil {
		loader = &keysource.Loader{}
	}
	return &Injector{loader: loader}
}

func (i *Injector) Inject(ctx context.Context, target interface{}) error {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return fmt.Errorf("target deve ser um ponteiro para struct não nulo")
	}
	return i.injectRecursive(ctx, v.Elem())
}

func (i *Injector) injectRecursive(ctx context.Context, v reflect.Value) error {
	switch v.Kind() {
	case reflect.Struct:
		for k := 0; k < v.NumField(); k++ {
			value := v.Field(k)

			// Strings com Interpolação "${...}"
			if value.Kind() == reflect.String && value.CanSet() {
				newValue, err := i.interpolateString(ctx, value.String())
				if err != nil {
					return err
				}
				value.SetString(newValue)
				continue
			}

			if value.CanSet() || value.Kind() == reflect.Ptr {
				if err := i.injectRecursive(ctx, value); err != nil {
					return err
				}
			}
		}

	case reflect.Ptr:
		if !v.IsNil() {
			return i.injectRecursive(ctx, v.Elem())
		}

	case reflect.Slice:
		for j := 0; j < v.Len(); j++ {
			elem := v.Index(j)
			if elem.Kind() == reflect.String && elem.CanSet() {
				newValue, err := i.interpolateString(ctx, elem.String())
				if err != nil {
					return err
				}
				elem.SetString(newValue)
				continue
			}
			if err := i.injectRecursive(ctx, elem); err != nil {
				return err
			}
		}
	}
	return nil
}

// interpolateString realiza a substituição baseada em Regex
func (i *Injector) interpolateString(ctx context.Context, input string) (string, error) {
	if !strings.Contains(input, "${") {
		return input, nil
	}

	var err error
	result := pattern.ReplaceAllStringFunc(input, func(match string) string {
		if err != nil {
			return match
		}
		// match é algo como "${env.VAR_NAME}"
		content := match[2 : len(match)-1]
		sourceType, key, _ := strings.Cut(content, ".")

		val, resolveErr := i.fetchValue(ctx, sourceType, key)
		if resolveErr != nil {
			err = resolveErr // Captura erro para retornar depois
			return match
		}
		return val
	})

	return result, err
}

// fetchValue traduz o padrão para uma referência do keysource
func (i *Injector) fetchValue(ctx context.Context, sourceType, key string) (string, error) {
	switch sourceType {
	case "env":
		return i.loader.Load(ctx, "env://"+key)
	case "ssm":
		return i.loader.Load(ctx, "ssm://"+key)
	case "secret":
		return i.loader.Load(ctx, "secretsmanager://"+key)
	}
	return "", fmt.Errorf("fonte desconhecida: %s", sourceType)
}
