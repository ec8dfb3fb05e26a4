package main

import (
	"github.com/raywall/dynexpr/alias"
	"github.com/raywall/dynexpr/ir"
	"github.com/raywall/dynexpr/predicate/celpred"
	"github.com/raywall/dynexpr/transpile"
	"github.com/spf13/cobra"
)

func newCompileCommand(rootOpts *rootOptions) *cobra.Command {
	flags := &schemaFlags{}

	cmd := &cobra.Command{
		Use:   "compile <cel>...",
		Short: "Compila predicados CEL numa expressão de filtro",
		Long: `Compila um ou mais predicados CEL sobre o tipo informado e imprime a
expressão resultante com os nomes e valores dos placeholders.

Vários predicados são unidos com "and".`,
		Example: `  dynexpr compile --schema schema.yaml --type User 'record.UserId.startsWith("abc")'`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := flags.load(cmd.Context())
			if err != nil {
				return err
			}
			out, err := compile(l, args)
			if err != nil {
				return err
			}
			rootOpts.log.Debug().
				Str("type", flags.TypeName).
				Int("predicates", len(args)).
				Msg("predicados compilados")
			return render(cmd, rootOpts, out)
		},
	}
	flags.register(cmd)

	return cmd
}

func compile(l *loaded, sources []string) (*expressionOutput, error) {
	parser, err := celpred.New()
	if err != nil {
		return nil, err
	}

	nodes := make([]ir.Node, 0, len(sources))
	for _, src := range sources {
		n, err := parser.Compile(l.recordType, src)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}

	scope := alias.NewScope(alias.WithCodec(l.mapper.Codec(l.recordType, l.direction)))
	expr, err := transpile.Transpiler{}.Conditions(nodes, scope, l.projection)
	if err != nil {
		return nil, err
	}
	return newExpressionOutput(expr, scope)
}
