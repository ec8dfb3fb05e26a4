package config

import (
	"context"
	"fmt"

	"github.com/raywall/dynexpr/envloader"
	"github.com/raywall/dynexpr/pkg/config/injector"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// AppFs é o sistema de arquivos de onde Load lê o YAML.
var AppFs = afero.NewOsFs()

// Load lê o arquivo, aplica as variáveis de ambiente (tags env), resolve as
// interpolações ${...} e valida o resultado.
func Load(ctx context.Context, path string, inj *injector.Injector) (*Config, error) {
	data, err := afero.ReadFile(AppFs, path)
	if err != nil {
		return nil, fmt.Errorf("falha ao ler configuração %s: %w", path, err)
	}
	return Parse(ctx, data, inj)
}

// Parse é Load sobre o conteúdo já lido.
func Parse(ctx context.Context, data []byte, inj *injector.Injector) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("falha ao interpretar YAML: %w", err)
	}
	if err := envloader.Load(cfg); err != nil {
		return nil, fmt.Errorf("falha ao aplicar variáveis de ambiente: %w", err)
	}
	if inj == nil {
		inj = injector.New(nil)
	}
	if err := inj.Inject(ctx, cfg); err != nil {
		return nil, fmt.Errorf("falha ao resolver interpolações: %w", err)
	}
	if err := NewValidator().Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
