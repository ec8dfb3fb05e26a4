// Package keysource resolve as chaves AES do cursor de paginação a partir
// do ambiente, do SSM Parameter Store ou do Secrets Manager.
//
// Referências aceitas por Load:
//
//	env://DYNEXPR_CURSOR_KEY
//	ssm:///dynexpr/cursor-key
//	secretsmanager://dynexpr/cursor#encrypt_key
//
// Qualquer outro valor é devolvido como está (chave literal).
package keysource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

const (
	schemeEnv     = "env://"
	schemeSSM     = "ssm://"
	schemeSecrets = "secretsmanager://"
)

// ErrEmptyKey indica que a fonte existe mas não tem valor.
var ErrEmptyKey = errors.New("keysource: empty key")

// FromEnv lê a chave de uma variável de ambiente.
func FromEnv(name string) (string, error) {
	v, ok := os.LookupEnv(name)
	if !ok {
		return "", fmt.Errorf("keysource: environment variable %s is not set", name)
	}
	if v == "" {
		return "", fmt.Errorf("keysource: env %s: %w", name, ErrEmptyKey)
	}
	return v, nil
}

// FromSSM lê um parâmetro (SecureString é decifrado).
func FromSSM(ctx context.Context, client SSMClient, name string) (string, error) {
	out, err := client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("keysource: ssm get parameter %s: %w", name, err)
	}
	if out.Parameter == nil || aws.ToString(out.Parameter.Value) == "" {
		return "", fmt.Errorf("keysource: ssm %s: %w", name, ErrEmptyKey)
	}
	return aws.ToString(out.Parameter.Value), nil
}

// FromSecretsManager lê um segredo. id pode terminar em "#campo" quando o
// segredo é um objeto JSON.
func FromSecretsManager(ctx context.Context, client SecretsClient, id string) (string, error) {
	secretID, field, _ := strings.Cut(id, "#")
	out, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretID),
	})
	if err != nil {
		return "", fmt.Errorf("keysource: secretsmanager get secret %s: %w", secretID, err)
	}
	val := aws.ToString(out.SecretString)

	if field != "" {
		var data map[string]any
		if err := json.Unmarshal([]byte(val), &data); err != nil {
			return "", fmt.Errorf("keysource: secret %s is not a JSON object: %w", secretID, err)
		}
		s, ok := data[field].(string)
		if !ok {
			return "", fmt.Errorf("keysource: secret %s has no string field %q", secretID, field)
		}
		val = s
	}
	if val == "" {
		return "", fmt.Errorf("keysource: secret %s: %w", id, ErrEmptyKey)
	}
	return val, nil
}

// Loader resolve referências. Os clientes da AWS são criados sob demanda
// quando não informados.
type Loader struct {
	Region  string
	SSM     SSMClient
	Secrets SecretsClient
}

// Load resolve ref conforme o esquema.
func (l *Loader) Load(ctx context.Context, ref string) (string, error) {
	switch {
	case ref == "":
		return "", nil
	case strings.HasPrefix(ref, schemeEnv):
		return FromEnv(strings.TrimPrefix(ref, schemeEnv))
	case strings.HasPrefix(ref, schemeSSM):
		client, err := l.ssmClient(ctx)
		if err != nil {
			return "", err
		}
		return FromSSM(ctx, client, strings.TrimPrefix(ref, schemeSSM))
	case strings.HasPrefix(ref, schemeSecrets):
		client, err := l.secretsClient(ctx)
		if err != nil {
			return "", err
		}
		return FromSecretsManager(ctx, client, strings.TrimPrefix(ref, schemeSecrets))
	}
	return ref, nil
}

func (l *Loader) ssmClient(ctx context.Context) (SSMClient, error) {
	if l.SSM != nil {
		return l.SSM, nil
	}
	cfg, err := awsConfig(ctx, l.Region)
	if err != nil {
		return nil, fmt.Errorf("keysource: aws config: %w", err)
	}
	l.SSM = ssm.NewFromConfig(cfg)
	return l.SSM, nil
}

func (l *Loader) secretsClient(ctx context.Context) (SecretsClient, error) {
	if l.Secrets != nil {
		return l.Secrets, nil
	}
	cfg, err := awsConfig(ctx, l.Region)
	if err != nil {
		return nil, fmt.Errorf("keysource: aws config: %w", err)
	}
	l.Secrets = secretsmanager.NewFromConfig(cfg)
	return l.Secrets, nil
}

// Load resolve ref com um Loader padrão.
func Load(ctx context.Context, ref string) (string, error) {
	return (&Loader{}).Load(ctx, ref)
}
