package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"

	"github.com/joho/godotenv"
	"github.com/raywall/dynexpr/pkg/config"
	"github.com/raywall/dynexpr/pkg/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// rootOptions guarda as flags globais.
type rootOptions struct {
	Format   string
	LogLevel string
	EnvFile  string

	log zerolog.Logger
}

var validFormats = []string{"text", "json"}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "dynexpr",
		Short:         "Compila predicados CEL em expressões do DynamoDB",
		Long:          "Ferramentas para compilar filtros, projeções e cursores de paginação a partir de um schema YAML.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(validFormats, opts.Format) {
				return fmt.Errorf("formato inválido %q: use um de %v", opts.Format, validFormats)
			}
			if err := loadEnvFile(opts.EnvFile); err != nil {
				return err
			}
			// Logs vão para stderr para não corromper a saída JSON
			opts.log = logger.Configure(config.LoggingConf{
				Enabled: true,
				Level:   opts.LogLevel,
				Format:  "console",
			}, cmd.ErrOrStderr())
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "formato de saída (json|text)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "warn", "nível de log (debug|info|warn|error)")
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", ".env", "arquivo .env carregado antes de cada comando")

	cmd.AddCommand(newCompileCommand(opts))
	cmd.AddCommand(newProjectionCommand(opts))
	cmd.AddCommand(newCursorCommand(opts))
	cmd.AddCommand(newQueryCommand(opts))

	return cmd
}

// loadEnvFile carrega o .env sem sobrescrever variáveis já definidas.
// Um arquivo inexistente é ignorado.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("falha ao carregar %s: %w", path, err)
	}
	return nil
}
