package attrval

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// jsonValue é o formato "DynamoDB JSON": exatamente um campo preenchido.
type jsonValue struct {
	S    *string                `json:"S,omitempty"`
	N    *string                `json:"N,omitempty"`
	B    *[]byte                `json:"B,omitempty"`
	BOOL *bool                  `json:"BOOL,omitempty"`
	NULL *bool                  `json:"NULL,omitempty"`
	M    *map[string]*jsonValue `json:"M,omitempty"`
	L    *[]*jsonValue          `json:"L,omitempty"`
	SS   *[]string              `json:"SS,omitempty"`
	NS   *[]string              `json:"NS,omitempty"`
	BS   *[][]byte              `json:"BS,omitempty"`
}

// MarshalJSON serializa o mapa de atributos. As chaves dos mapas saem
// ordenadas, então a saída é determinística.
func MarshalJSON(item map[string]types.AttributeValue) ([]byte, error) {
	m, err := toJSONMap(item)
	if err != nil {
		return nil, err
	}
	return json.Marshal(m)
}

// UnmarshalJSON é o inverso de MarshalJSON.
func UnmarshalJSON(data []byte) (map[string]types.AttributeValue, error) {
	var m map[string]*jsonValue
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("attrval: %w", err)
	}
	return fromJSONMap(m)
}

func toJSONMap(item map[string]types.AttributeValue) (map[string]*jsonValue, error) {
	out := make(map[string]*jsonValue, len(item))
	for k, av := range item {
		jv, err := toJSON(av)
		if err != nil {
			return nil, fmt.Errorf("attrval: attribute %q: %w", k, err)
		}
		out[k] = jv
	}
	return out, nil
}

func toJSON(av types.AttributeValue) (*jsonValue, error) {
	switch v := av.(type) {
	case *types.AttributeValueMemberS:
		return &jsonValue{S: &v.Value}, nil
	case *types.AttributeValueMemberN:
		return &jsonValue{N: &v.Value}, nil
	case *types.AttributeValueMemberB:
		b := orEmpty(v.Value)
		return &jsonValue{B: &b}, nil
	case *types.AttributeValueMemberBOOL:
		return &jsonValue{BOOL: &v.Value}, nil
	case *types.AttributeValueMemberNULL:
		return &jsonValue{NULL: &v.Value}, nil
	case *types.AttributeValueMemberM:
		m, err := toJSONMap(v.Value)
		if err != nil {
			return nil, err
		}
		return &jsonValue{M: &m}, nil
	case *types.AttributeValueMemberL:
		l := make([]*jsonValue, 0, len(v.Value))
		for _, e := range v.Value {
			jv, err := toJSON(e)
			if err != nil {
				return nil, err
			}
			l = append(l, jv)
		}
		return &jsonValue{L: &l}, nil
	case *types.AttributeValueMemberSS:
		ss := orEmpty(v.Value)
		return &jsonValue{SS: &ss}, nil
	case *types.AttributeValueMemberNS:
		ns := orEmpty(v.Value)
		return &jsonValue{NS: &ns}, nil
	case *types.AttributeValueMemberBS:
		bs := orEmpty(v.Value)
		return &jsonValue{BS: &bs}, nil
	}
	return nil, fmt.Errorf("unsupported attribute value %T", av)
}

// orEmpty troca nil por um slice vazio: nil sairia como null, que o
// decodificador lê como atributo sem tipo.
func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func fromJSONMap(m map[string]*jsonValue) (map[string]types.AttributeValue, error) {
	out := make(map[string]types.AttributeValue, len(m))
	for k, jv := range m {
		av, err := fromJSON(jv)
		if err != nil {
			return nil, fmt.Errorf("attrval: attribute %q: %w", k, err)
		}
		out[k] = av
	}
	return out, nil
}

var errEmptyValue = errors.New("attribute value has no type")

func fromJSON(jv *jsonValue) (types.AttributeValue, error) {
	if jv == nil {
		return nil, errEmptyValue
	}
	switch {
	case jv.S != nil:
		return &types.AttributeValueMemberS{Value: *jv.S}, nil
	case jv.N != nil:
		return &types.AttributeValueMemberN{Value: *jv.N}, nil
	case jv.B != nil:
		return &types.AttributeValueMemberB{Value: *jv.B}, nil
	case jv.BOOL != nil:
		return &types.AttributeValueMemberBOOL{Value: *jv.BOOL}, nil
	case jv.NULL != nil:
		return &types.AttributeValueMemberNULL{Value: *jv.NULL}, nil
	case jv.M != nil:
		m, err := fromJSONMap(*jv.M)
		if err != nil {
			return nil, err
		}
		return &types.AttributeValueMemberM{Value: m}, nil
	case jv.L != nil:
		l := make([]types.AttributeValue, 0, len(*jv.L))
		for _, e := range *jv.L {
			av, err := fromJSON(e)
			if err != nil {
				return nil, err
			}
			l = append(l, av)
		}
		return &types.AttributeValueMemberL{Value: l}, nil
	case jv.SS != nil:
		return &types.AttributeValueMemberSS{Value: *jv.SS}, nil
	case jv.NS != nil:
		return &types.AttributeValueMemberNS{Value: *jv.NS}, nil
	case jv.BS != nil:
		return &types.AttributeValueMemberBS{Value: *jv.BS}, nil
	}
	return nil, errEmptyValue
}
