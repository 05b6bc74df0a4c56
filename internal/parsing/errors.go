package parsing

import "fmt"

// ParseError describes why a magnitude string could not be normalized
type ParseError struct {
	Input   string
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("parse error: %q: %s: %v", e.Input, e.Message, e.Cause)
	}
	return fmt.Sprintf("parse error: %q: %s", e.Input, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}
