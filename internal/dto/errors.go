package dto

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// ErrContract marks every construction-time contract violation
var ErrContract = errors.New("dto contract violation")

// ContractError identifies the DTO and field that violated a generation contract
type ContractError struct {
	DTO    string
	Field  string
	Reason string
}

func (e *ContractError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("dto %s: %s", e.DTO, e.Reason)
	}
	return fmt.Sprintf("dto %s, field %s: %s", e.DTO, e.Field, e.Reason)
}

// Is lets errors.Is(err, ErrContract) match any ContractError
func (e *ContractError) Is(target error) bool {
	return target == ErrContract
}

func contractError(dto, field, format string, args ...interface{}) error {
	return errors.WithStack(&ContractError{
		DTO:    dto,
		Field:  field,
		Reason: fmt.Sprintf(format, args...),
	})
}
