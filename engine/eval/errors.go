package eval

import "fmt"

// Error codes carried by EvalError.
const (
	CodeUnbound      = "unbound_identifier"
	CodeUnknownFunc  = "unknown_function"
	CodeTypeMismatch = "type_mismatch"
	CodeArity        = "arity"
	CodeMalformed    = "malformed"
)

// EvalError reports an expression that cannot be evaluated in the current
// context. Callers contain it at the effect-block level.
type EvalError struct {
	Code   string
	Name   string
	Detail string
}

func (e *EvalError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("eval %s: %s", e.Code, e.Name)
	}
	return fmt.Sprintf("eval %s: %s: %s", e.Code, e.Name, e.Detail)
}

// Unbound reports an identifier the context cannot resolve.
func Unbound(name string) error {
	return &EvalError{Code: CodeUnbound, Name: name}
}

// UnknownFunc reports a function the context does not provide.
func UnknownFunc(name string) error {
	return &EvalError{Code: CodeUnknownFunc, Name: name}
}

// Mismatch reports an operator or function applied to the wrong types.
func Mismatch(name, detail string) error {
	return &EvalError{Code: CodeTypeMismatch, Name: name, Detail: detail}
}

// Arity reports a call with the wrong number of arguments.
func Arity(name string, want, got int) error {
	return &EvalError{Code: CodeArity, Name: name, Detail: fmt.Sprintf("want %d args, got %d", want, got)}
}
