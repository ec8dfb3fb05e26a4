package schema

import (
	"fmt"
	"reflect"

	"github.com/spf13/cast"
)

// CastError indica que uma constante não pode ser convertida para o tipo
// declarado do outro lado da comparação.
type CastError struct {
	Type  *Type
	Value any
	Err   error
}

func (e *CastError) Error() string {
	return fmt.Sprintf("schema: cannot cast %v (%T) to %s: %v", e.Value, e.Value, e.Type, e.Err)
}

func (e *CastError) Unwrap() error {
	return e.Err
}

// Coerce converte v para o tipo t. nil é sempre aceito.
func (t *Type) Coerce(v any) (any, error) {
	if v == nil {
		return nil, nil
	}

	if st, ok := v.(fmt.Stringer); ok && t.kind == KindEnum {
		v = st.String()
	}
	v = underlying(v)

	var (
		out any
		err error
	)
	switch t.kind {
	case KindString:
		out, err = cast.ToStringE(v)
	case KindInt:
		out, err = cast.ToIntE(v)
	case KindInt64:
		out, err = cast.ToInt64E(v)
	case KindFloat:
		out, err = cast.ToFloat64E(v)
	case KindBool:
		out, err = cast.ToBoolE(v)
	case KindTime:
		out, err = cast.ToTimeE(v)
	case KindBinary:
		switch b := v.(type) {
		case []byte:
			out = b
		case string:
			out = []byte(b)
		default:
			err = fmt.Errorf("unable to cast %#v of type %T to []byte", v, v)
		}
	case KindEnum:
		var s string
		s, err = cast.ToStringE(v)
		if err == nil {
			if _, ok := t.enum[s]; !ok {
				err = fmt.Errorf("%q is not a member of %s", s, t.name)
			}
		}
		out = s
	case KindList, KindSet:
		if k := reflect.TypeOf(v).Kind(); k != reflect.Slice && k != reflect.Array && k != reflect.Map {
			err = fmt.Errorf("%T is not a collection", v)
		}
		out = v
	default:
		out = v
	}

	if err != nil {
		return nil, &CastError{Type: t, Value: v, Err: err}
	}
	return out, nil
}

// underlying converte tipos nomeados (type Status string) para o tipo base,
// que é o que o cast sabe tratar.
func underlying(v any) any {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint()
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	}
	return v
}

// Comparable indica se v suporta igualdade e pode ser usado como chave de
// deduplicação.
func Comparable(v any) bool {
	if v == nil {
		return true
	}
	return reflect.ValueOf(v).Comparable()
}
