package ir

// CompareOp é o operador de um Compare.
type CompareOp int

const (
	Equal CompareOp = iota + 1
	NotEqual
	LessThan
	LessThanOrEqual
	GreaterThan
	GreaterThanOrEqual
)

// Token é a forma do operador na expressão do DynamoDB.
func (op CompareOp) Token() string {
	switch op {
	case Equal:
		return " = "
	case NotEqual:
		return " <> "
	case LessThan:
		return " < "
	case LessThanOrEqual:
		return " <= "
	case GreaterThan:
		return " > "
	case GreaterThanOrEqual:
		return " >= "
	}
	return ""
}

func (op CompareOp) String() string {
	switch op {
	case Equal:
		return "Equal"
	case NotEqual:
		return "NotEqual"
	case LessThan:
		return "LessThan"
	case LessThanOrEqual:
		return "LessThanOrEqual"
	case GreaterThan:
		return "GreaterThan"
	case GreaterThanOrEqual:
		return "GreaterThanOrEqual"
	}
	return "CompareOp(?)"
}

// BinaryOp é AND ou OR.
type BinaryOp int

const (
	And BinaryOp = iota + 1
	Or
)

func (op BinaryOp) Token() string {
	switch op {
	case And:
		return " and "
	case Or:
		return " or "
	}
	return ""
}

func (op BinaryOp) String() string {
	switch op {
	case And:
		return "And"
	case Or:
		return "Or"
	}
	return "BinaryOp(?)"
}

// Method é o vocabulário fixo de funções.
type Method int

const (
	MethodBeginsWith Method = iota + 1
	MethodContains
	MethodSize
)

// Arity é o número de argumentos além da instância.
func (m Method) Arity() int {
	if m == MethodSize {
		return 0
	}
	return 1
}

// FuncName é o nome da função nativa.
func (m Method) FuncName() string {
	switch m {
	case MethodBeginsWith:
		return "begins_with"
	case MethodContains:
		return "contains"
	case MethodSize:
		return "size"
	}
	return ""
}

func (m Method) String() string {
	switch m {
	case MethodBeginsWith:
		return "BeginsWith"
	case MethodContains:
		return "Contains"
	case MethodSize:
		return "Size"
	}
	return "Method(?)"
}
