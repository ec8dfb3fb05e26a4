// Package schemafile carrega tipos de registro e mapeamentos declarados em
// YAML, para uso sem structs Go (CLI, ferramentas, testes de expressão).
//
// Exemplo:
//
//	version: "1"
//	types:
//	  - name: User
//	    table: users
//	    fields:
//	      - {name: UserId, kind: string}
//	      - {name: Tags, kind: list, elem: string}
//	    read:
//	      - {member: UserId, path: record_id, required: true}
//	      - {member: Tags, path: profile.tags}
package schemafile

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/raywall/dynexpr/mapping"
	"github.com/raywall/dynexpr/schema"
	"gopkg.in/yaml.v3"
)

// Record é a representação em memória de um registro declarado no arquivo.
type Record = schema.Dynamic

// Schema é o resultado do carregamento: tipos por nome, o profile de
// mapeamento e a tabela de cada tipo.
type Schema struct {
	types   map[string]*schema.Type
	order   []string
	tables  map[string]string
	profile *mapping.Profile
}

// Type devolve o tipo declarado com name.
func (s *Schema) Type(name string) (*schema.Type, bool) {
	t, ok := s.types[name]
	return t, ok
}

// Types lista os tipos na ordem do arquivo.
func (s *Schema) Types() []*schema.Type {
	out := make([]*schema.Type, 0, len(s.order))
	for _, n := range s.order {
		out = append(out, s.types[n])
	}
	return out
}

// Table devolve a tabela associada ao tipo ("" quando não declarada).
func (s *Schema) Table(typeName string) string { return s.tables[typeName] }

func (s *Schema) Profile() *mapping.Profile { return s.profile }

// Mapper constrói o mapper a partir do profile.
func (s *Schema) Mapper() (*mapping.Mapper, error) { return s.profile.Build() }

var primitives = map[schema.Kind]*schema.Type{
	schema.KindAny:    schema.Any,
	schema.KindString: schema.String,
	schema.KindInt:    schema.Int,
	schema.KindInt64:  schema.Int64,
	schema.KindFloat:  schema.Float,
	schema.KindBool:   schema.Bool,
	schema.KindTime:   schema.Time,
	schema.KindBinary: schema.Binary,
}

// Parse valida e interpreta um documento YAML.
func Parse(data []byte) (*Schema, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("schemafile: parse yaml: %w", err)
	}
	if err := validate(&doc); err != nil {
		return nil, err
	}
	return build(&doc)
}

func validate(doc *Document) error {
	if err := validator.New().Struct(doc); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			var errMsgs []string
			for _, e := range validationErrors {
				errMsgs = append(errMsgs, fmt.Sprintf("field '%s' failed on '%s'", e.Namespace(), e.Tag()))
			}
			return fmt.Errorf("schemafile: validation errors:\n- %s", strings.Join(errMsgs, "\n- "))
		}
		return fmt.Errorf("schemafile: validation: %w", err)
	}
	return nil
}

func build(doc *Document) (*Schema, error) {
	s := &Schema{
		types:   make(map[string]*schema.Type, len(doc.Types)),
		tables:  make(map[string]string),
		profile: mapping.NewProfile(),
	}

	// Todos os registros existem antes dos campos: permite referências
	// adiante e tipos autorreferentes.
	records := make(map[string]*schema.DynamicRecord, len(doc.Types))
	for _, td := range doc.Types {
		if _, dup := records[td.Name]; dup {
			return nil, fmt.Errorf("schemafile: type %s declared twice", td.Name)
		}
		if _, ok := schema.ParseKind(td.Name); ok {
			return nil, fmt.Errorf("schemafile: type name %s collides with a kind", td.Name)
		}
		r := schema.NewDynamicRecord(td.Name)
		records[td.Name] = r
		s.types[td.Name] = r.Type()
		s.order = append(s.order, td.Name)
		if td.Table != "" {
			s.tables[td.Name] = td.Table
		}
	}

	for _, td := range doc.Types {
		r := records[td.Name]
		for _, fd := range td.Fields {
			typ, err := s.fieldType(td.Name, fd)
			if err != nil {
				return nil, err
			}
			r.Field(fd.Name, typ)
		}
	}

	for _, td := range doc.Types {
		if err := s.mappings(td); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// resolve interpreta um kind primitivo ou o nome de um tipo do arquivo.
func (s *Schema) resolve(name string) (*schema.Type, error) {
	if t, ok := s.types[name]; ok {
		return t, nil
	}
	if k, ok := schema.ParseKind(name); ok {
		if t, ok := primitives[k]; ok {
			return t, nil
		}
	}
	return nil, fmt.Errorf("unknown type %q", name)
}

func (s *Schema) fieldType(owner string, fd FieldDef) (*schema.Type, error) {
	kind, _ := schema.ParseKind(fd.Kind)
	var (
		typ *schema.Type
		err error
	)
	switch kind {
	case schema.KindEnum:
		if len(fd.Values) == 0 {
			err = errors.New("enum without values")
			break
		}
		typ = schema.Enum(owner+"."+fd.Name, fd.Values...)
	case schema.KindList, schema.KindSet, schema.KindMap:
		var elem *schema.Type
		elem, err = s.resolve(fd.Elem)
		if err != nil {
			break
		}
		switch kind {
		case schema.KindList:
			typ = schema.ListOf(elem)
		case schema.KindSet:
			typ = schema.SetOf(elem)
		default:
			typ = schema.MapOf(elem)
		}
	case schema.KindRecord:
		t, ok := s.types[fd.Ref]
		if !ok {
			err = fmt.Errorf("unknown record type %q", fd.Ref)
		}
		typ = t
	default:
		typ = primitives[kind]
	}
	if err != nil {
		return nil, fmt.Errorf("schemafile: %s.%s: %w", owner, fd.Name, err)
	}
	return typ, nil
}

func (s *Schema) mappings(td TypeDef) error {
	t := s.types[td.Name]
	if len(td.Read) > 0 {
		rm := s.profile.Read(t)
		for _, md := range td.Read {
			if md.Reserved {
				return fmt.Errorf("schemafile: %s.%s: reserved is only valid in write mappings", td.Name, md.Member)
			}
			opts := storedOption(md)
			if md.Required {
				rm.Required(md.Member, md.Path, opts...)
			} else {
				rm.Optional(md.Member, md.Path, opts...)
			}
		}
	}
	if len(td.Write) > 0 {
		wm := s.profile.Write(t)
		for _, md := range td.Write {
			if md.Reserved {
				wm.PartitionReserved(md.Member, md.Path)
				continue
			}
			wm.From(md.Member, md.Path, storedOption(md)...)
		}
	}
	return nil
}

func storedOption(md MappingDef) []mapping.FieldOption {
	if md.Stored == "" {
		return nil
	}
	k, _ := schema.ParseKind(md.Stored)
	return []mapping.FieldOption{mapping.Stored(k)}
}
