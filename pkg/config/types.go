package config

// Config representa a estrutura raiz do arquivo YAML do dynexpr.
type Config struct {
	Version string      `yaml:"version" validate:"required"`
	Schema  string      `yaml:"schema" env:"DYNEXPR_SCHEMA"`
	Table   TableConf   `yaml:"table" validate:"required"`
	Cursor  CursorConf  `yaml:"cursor"`
	Logging LoggingConf `yaml:"logging"`
	Metrics MetricsConf `yaml:"metrics"`
}

// TableConf identifica a tabela e o endpoint do DynamoDB.
type TableConf struct {
	Name     string `yaml:"name" env:"DYNEXPR_TABLE_NAME" validate:"required"`
	Region   string `yaml:"region" env:"AWS_REGION"`
	Endpoint string `yaml:"endpoint" env:"DYNEXPR_DYNAMODB_ENDPOINT" validate:"omitempty,url"`
}

// CursorConf contém as chaves AES (base64) do cursor. Aceitam
// interpolação: "${env.X}", "${ssm./path}", "${secret.id#campo}".
type CursorConf struct {
	EncryptKey string `yaml:"encrypt_key" env:"DYNEXPR_CURSOR_ENCRYPT_KEY"`
	DecryptKey string `yaml:"decrypt_key" env:"DYNEXPR_CURSOR_DECRYPT_KEY"`
}

type LoggingConf struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format  string `yaml:"format" validate:"omitempty,oneof=json console"`
}

type MetricsConf struct {
	Datadog DatadogConf `yaml:"datadog"`
}

type DatadogConf struct {
	Enabled   bool     `yaml:"enabled" env:"DD_ENABLED"`
	Addr      string   `yaml:"addr" env:"DD_AGENT_HOST" validate:"required_if=Enabled true"`
	Namespace string   `yaml:"namespace"`
	Tags      []string `yaml:"tags" env:"DD_TAGS"`
}
