package predicate

import "fmt"

// ParseError indica um formato de predicado não suportado. Member ou Method
// identificam o ponto da falha.
type ParseError struct {
	Member string
	Method string
	Reason string
}

func (e *ParseError) Error() string {
	switch {
	case e.Method != "":
		return fmt.Sprintf("predicate: method %s: %s", e.Method, e.Reason)
	case e.Member != "":
		return fmt.Sprintf("predicate: member %s: %s", e.Member, e.Reason)
	}
	return "predicate: " + e.Reason
}
