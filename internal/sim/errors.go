package sim

import (
	"errors"
	"fmt"
)

// Domain errors for problem assembly and evaluation.
var (
	// ErrUnknownVariable indicates a name that no component declares.
	ErrUnknownVariable = errors.New("sim: unknown variable")

	// ErrShapeMismatch indicates a value whose length disagrees with its declaration.
	ErrShapeMismatch = errors.New("sim: shape mismatch")

	// ErrDuplicateOutput indicates two components promoting the same output.
	ErrDuplicateOutput = errors.New("sim: output declared by more than one component")

	// ErrConnectedInput indicates a direct assignment to an input fed by Connect.
	ErrConnectedInput = errors.New("sim: input is connected")

	// ErrSparsity indicates a partial whose index mapping breaks its declared pattern.
	ErrSparsity = errors.New("sim: partial violates declared sparsity")

	// ErrUndeclaredPartial indicates a write to a partial that was never declared.
	ErrUndeclaredPartial = errors.New("sim: partial not declared")

	// ErrNotSetUp indicates use of a problem before Setup.
	ErrNotSetUp = errors.New("sim: problem not set up")

	// ErrNonFinite indicates an output holding NaN or Inf.
	ErrNonFinite = errors.New("sim: non-finite output (NaN or Inf detected)")
)

// EvalError wraps an error with the component and stage that raised it.
type EvalError struct {
	Component string
	Stage     string
	Wrapped   error
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Component, e.Stage, e.Wrapped)
}

func (e *EvalError) Unwrap() error {
	return e.Wrapped
}
