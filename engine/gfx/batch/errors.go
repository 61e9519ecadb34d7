package batch

import (
	"errors"
	"fmt"
)

var (
	ErrNilBus           = errors.New("nil notification bus")
	ErrCapacityExceeded = errors.New("batch capacity exceeded")
	ErrEmptyItem        = errors.New("cannot batch an empty draw item")
	ErrReleased         = errors.New("batching manager released by shutdown")
)

// CapacityError is returned by Add when no slot is free.
type CapacityError struct {
	Kind ItemKind
}

func (e *CapacityError) Error() string { return fmt.Sprintf("The %s batch is full.", e.Kind) }

func (e *CapacityError) Is(target error) bool { return target == ErrCapacityExceeded }
