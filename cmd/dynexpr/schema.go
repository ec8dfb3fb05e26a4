package main

import (
	"context"
	"fmt"

	"github.com/raywall/dynexpr/mapping"
	"github.com/raywall/dynexpr/projection"
	"github.com/raywall/dynexpr/schema"
	"github.com/raywall/dynexpr/schemafile"
	"github.com/spf13/cobra"
)

// schemaFlags são as flags comuns aos comandos que leem um schema.
type schemaFlags struct {
	Location  string
	TypeName  string
	Direction string
}

func (f *schemaFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.Location, "schema", "", "arquivo de schema (caminho local ou s3://bucket/key)")
	cmd.Flags().StringVar(&f.TypeName, "type", "", "nome do tipo de registro")
	cmd.Flags().StringVar(&f.Direction, "direction", "read", "perfil de mapeamento (read|write)")
	_ = cmd.MarkFlagRequired("type")
}

// loaded reúne o que os comandos precisam depois de ler o schema.
type loaded struct {
	schema     *schemafile.Schema
	recordType *schema.Type
	mapper     *mapping.Mapper
	projection *projection.Projection
	direction  projection.Direction
}

func (f *schemaFlags) load(ctx context.Context) (*loaded, error) {
	if f.Location == "" {
		return nil, fmt.Errorf("flag --schema é obrigatória")
	}
	s, err := schemafile.Load(ctx, f.Location)
	if err != nil {
		return nil, err
	}
	return resolveType(s, f.TypeName, f.Direction)
}

func resolveType(s *schemafile.Schema, typeName, direction string) (*loaded, error) {
	t, ok := s.Type(typeName)
	if !ok {
		return nil, fmt.Errorf("tipo %q não existe no schema", typeName)
	}
	m, err := s.Mapper()
	if err != nil {
		return nil, err
	}

	var (
		proj *projection.Projection
		dir  projection.Direction
	)
	switch direction {
	case "read", "":
		proj, dir = m.ReadProjection(t), projection.Read
	case "write":
		proj, dir = m.WriteProjection(t), projection.Write
	default:
		return nil, fmt.Errorf("direção inválida %q: use read ou write", direction)
	}
	if proj == nil {
		return nil, fmt.Errorf("tipo %q não tem mapeamento de %s", typeName, direction)
	}
	return &loaded{schema: s, recordType: t, mapper: m, projection: proj, direction: dir}, nil
}
