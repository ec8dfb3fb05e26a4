package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/raywall/dynexpr/cursor"
)

type ConfigValidator struct {
	validate *validator.Validate
}

// NewValidator cria uma nova instância do validador
func NewValidator() *ConfigValidator {
	return &ConfigValidator{
		validate: validator.New(),
	}
}

// Validate realiza validações estruturais (tags) e semânticas (lógica)
func (cv *ConfigValidator) Validate(cfg *Config) error {
	// 1. Validação Estrutural (Tags do struct: required, oneof, etc)
	if err := cv.validate.Struct(cfg); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			var errMsgs []string
			for _, e := range validationErrors {
				errMsgs = append(errMsgs, fmt.Sprintf("Campo '%s' falhou na regra '%s'", e.Namespace(), e.Tag()))
			}
			return fmt.Errorf("erros de validação estrutural:\n- %s", strings.Join(errMsgs, "\n- "))
		}
		return fmt.Errorf("erro de validação estrutural: %w", err)
	}

	// 2. Validação Semântica
	if err := cv.validateSemantics(cfg); err != nil {
		return fmt.Errorf("erro de validação semântica: %w", err)
	}

	return nil
}

func (cv *ConfigValidator) validateSemantics(cfg *Config) error {
	// Chaves ainda não interpoladas não podem ser verificadas aqui.
	for _, k := range []string{cfg.Cursor.EncryptKey, cfg.Cursor.DecryptKey} {
		if strings.Contains(k, "${") {
			return fmt.Errorf("chave do cursor não resolvida: '%s'", k)
		}
	}

	// Chaves precisam ser AES válidas (16, 24 ou 32 bytes em base64).
	if _, err := cursor.New(cfg.Cursor.EncryptKey, cfg.Cursor.DecryptKey); err != nil {
		return err
	}

	// Só cifrar sem conseguir decifrar quebra a paginação do próprio serviço.
	if cfg.Cursor.EncryptKey != "" && cfg.Cursor.DecryptKey == "" {
		return fmt.Errorf("cursor.decrypt_key é obrigatória quando cursor.encrypt_key está definida")
	}
	return nil
}
