package analytics

import (
	"errors"
	"fmt"
)

// ErrContractViolation is matched by every ContractViolationError.
var ErrContractViolation = errors.New("entry collection contract violated")

// ContractViolationError reports input that is not a collection of
// entry-like records. It signals a caller bug, never bad data inside an
// otherwise well-formed entry.
type ContractViolationError struct {
	Position int // -1 when the document as a whole is wrong
	Reason   string
}

func (e *ContractViolationError) Error() string {
	if e.Position < 0 {
		return fmt.Sprintf("entry collection contract violated: %s", e.Reason)
	}
	return fmt.Sprintf("entry collection contract violated at position %d: %s", e.Position, e.Reason)
}

// Is makes errors.Is(err, ErrContractViolation) succeed.
func (e *ContractViolationError) Is(target error) bool {
	return target == ErrContractViolation
}

// NewContractViolationError creates a ContractViolationError
func NewContractViolationError(position int, reason string) *ContractViolationError {
	return &ContractViolationError{Position: position, Reason: reason}
}
