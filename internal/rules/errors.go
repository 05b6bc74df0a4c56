package rules

import "fmt"

// ConfigurationError means a rule set could not be read, parsed or validated
type ConfigurationError struct {
	Source  string
	Message string
	Cause   error
}

func (e *ConfigurationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("rule set %s: %s: %v", e.Source, e.Message, e.Cause)
	}
	return fmt.Sprintf("rule set %s: %s", e.Source, e.Message)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Cause
}
