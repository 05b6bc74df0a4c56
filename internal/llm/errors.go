package llm

import "fmt"

// APICallError represents a failed completion call to a provider
type APICallError struct {
	Provider   Provider
	Model      string
	StatusCode int
	Message    string
	Cause      error
}

func (e *APICallError) Error() string {
	prefix := fmt.Sprintf("%s API call failed", e.Provider)
	if e.Model != "" {
		prefix += fmt.Sprintf(" (model %s)", e.Model)
	}
	if e.StatusCode != 0 {
		prefix += fmt.Sprintf(" with status %d", e.StatusCode)
	}
	switch {
	case e.Cause != nil && e.Message != "":
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Cause)
	case e.Cause != nil:
		return fmt.Sprintf("%s: %v", prefix, e.Cause)
	case e.Message != "":
		return fmt.Sprintf("%s: %s", prefix, e.Message)
	}
	return prefix
}

func (e *APICallError) Unwrap() error {
	return e.Cause
}

// Retryable reports whether the failure was a rate limit or server-side error
func (e *APICallError) Retryable() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}
