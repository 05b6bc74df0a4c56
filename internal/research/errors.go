package research

import (
	"errors"
	"fmt"
)

// ErrMissingEntityName is returned when there is no company name to research
var ErrMissingEntityName = errors.New("company name is required")

// PartitionError represents one partition that produced no usable data
type PartitionError struct {
	Partition string `json:"partition"`
	Message   string `json:"message"`
	Cause     error  `json:"-"`
}

func (e *PartitionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("partition %s: %s: %v", e.Partition, e.Message, e.Cause)
	}
	return fmt.Sprintf("partition %s: %s", e.Partition, e.Message)
}

func (e *PartitionError) Unwrap() error {
	return e.Cause
}
