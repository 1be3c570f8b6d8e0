package engine

import "fmt"

const (
	OpInit      = "init"
	OpLoad      = "load"
	OpExecute   = "execute"
	OpSerialize = "serialize"
)

// Error is the single failure type the engine reports. Op names the
// operation that failed; there is no finer taxonomy.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("engine %s failed: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
