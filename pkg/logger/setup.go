package logger

import (
	"io"
	"strings"
	"time"

	"github.com/raywall/dynexpr/pkg/config"
	"github.com/rs/zerolog"
)

// Configure inicializa o logger global baseando-se na configuração do YAML.
// A saída é out (o CLI usa stderr para não misturar com o resultado).
func Configure(cfg config.LoggingConf, out io.Writer) zerolog.Logger {
	// Define o nível de log (default: info)
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	// Define o output (JSON para produção, Console "bonito" para local se solicitado)
	output := out
	if !cfg.Enabled || out == nil {
		output = io.Discard
	} else if cfg.Format == "console" {
		output = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339, NoColor: true}
	}

	// Cria o logger com contexto padrão
	return zerolog.New(output).
		With().
		Timestamp().
		Str("component", "dynexpr").
		Logger()
}
