package mapping

import "fmt"

// ConfigurationError indica um mapeamento inconsistente: na montagem do
// perfil (membro ou conversor inexistente) ou na leitura de um item que não
// tem um atributo obrigatório.
type ConfigurationError struct {
	Type   string
	Member string
	Path   string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("mapping: %s.%s (%s): %s", e.Type, e.Member, e.Path, e.Reason)
	}
	return fmt.Sprintf("mapping: %s.%s: %s", e.Type, e.Member, e.Reason)
}
