package main

import (
	"github.com/raywall/dynexpr/alias"
	"github.com/raywall/dynexpr/transpile"
	"github.com/spf13/cobra"
)

func newProjectionCommand(rootOpts *rootOptions) *cobra.Command {
	flags := &schemaFlags{}

	cmd := &cobra.Command{
		Use:   "projection",
		Short: "Imprime a ProjectionExpression de um tipo",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := flags.load(cmd.Context())
			if err != nil {
				return err
			}
			scope := alias.NewScope()
			expr := transpile.Transpiler{}.ProjectionExpression(l.projection, scope)
			out, err := newExpressionOutput(expr, scope)
			if err != nil {
				return err
			}
			return render(cmd, rootOpts, out)
		},
	}
	flags.register(cmd)

	return cmd
}
