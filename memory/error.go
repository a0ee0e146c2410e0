package memory

import (
	"errors"
	"fmt"
	"math"
)

// ErrOutOfRange is matched by every OutOfRangeError through errors.Is.
var ErrOutOfRange = errors.New("number out of range")

// Role names the quantity that failed a range check.
type Role string

// The roles a checked number can play.
const (
	RoleAddress Role = "address"
	RoleValue   Role = "value"
	RoleNumber  Role = "number"
)

// An OutOfRangeError reports a number that does not fit in its bit width.
type OutOfRangeError struct {
	Role   Role
	Number uint64
	Bits   uint
}

// Max returns the highest number that fits in the checked width.
func (e *OutOfRangeError) Max() uint64 {
	if e.Bits >= 64 {
		return math.MaxUint64
	}

	return 1<<e.Bits - 1
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf(
		"%s out of range: expected a number in the interval [0; %d] but got %d",
		e.Role, e.Max(), e.Number)
}

// Is makes errors.Is(err, ErrOutOfRange) hold.
func (e *OutOfRangeError) Is(target error) bool {
	return target == ErrOutOfRange
}

// A ParseError reports a malformed line of dump text.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
