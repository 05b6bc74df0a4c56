package extraction

import "fmt"

// ExtractionError means no structured data could be recovered from model text
type ExtractionError struct {
	Cause string `json:"cause"`
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed: %s", e.Cause)
}
