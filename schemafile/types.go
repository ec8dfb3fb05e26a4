package schemafile

// Document é a raiz do arquivo YAML de esquema.
type Document struct {
	Version string    `yaml:"version" validate:"required"`
	Types   []TypeDef `yaml:"types" validate:"required,min=1,dive"`
}

// TypeDef declara um tipo de registro e, opcionalmente, seus mapeamentos.
type TypeDef struct {
	Name   string       `yaml:"name" validate:"required"`
	Table  string       `yaml:"table"`
	Fields []FieldDef   `yaml:"fields" validate:"required,min=1,dive"`
	Read   []MappingDef `yaml:"read" validate:"dive"`
	Write  []MappingDef `yaml:"write" validate:"dive"`
}

// FieldDef declara um membro. Elem é usado por list/set/map e Ref por
// record; ambos aceitam um kind primitivo ou o nome de outro tipo.
type FieldDef struct {
	Name   string   `yaml:"name" validate:"required"`
	Kind   string   `yaml:"kind" validate:"required,oneof=any string int int64 float bool time binary enum list set map record"`
	Elem   string   `yaml:"elem"`
	Ref    string   `yaml:"ref"`
	Values []string `yaml:"values"`
}

// MappingDef liga um membro a um caminho de atributo.
type MappingDef struct {
	Member   string `yaml:"member" validate:"required"`
	Path     string `yaml:"path" validate:"required"`
	Required bool   `yaml:"required"`
	Reserved bool   `yaml:"reserved"`
	Stored   string `yaml:"stored" validate:"omitempty,oneof=string int int64 float bool"`
}
