package statement

import (
	"errors"
	"fmt"

	"github.com/seenimoa/finratios/pkg/models"
)

// ErrStructural is wrapped by every StructuralError.
var ErrStructural = errors.New("structural transform error")

// ErrNotCleaned is returned by Cleaner.LongForm before a successful Clean.
var ErrNotCleaned = errors.New("statement not cleaned; call Clean first")

// StructuralError reports a malformed statement schema found while cleaning
// or pivoting. It is fatal for the run.
type StructuralError struct {
	Stage         string // "clean" or "pivot"
	StatementType models.StatementType
	Prefix        string
	Err           error
}

func (e *StructuralError) Error() string {
	switch {
	case e.StatementType != "":
		return fmt.Sprintf("%s %s statement: %v", e.Stage, e.StatementType, e.Err)
	case e.Prefix != "":
		return fmt.Sprintf("%s prefix %q: %v", e.Stage, e.Prefix, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StructuralError) Unwrap() []error { return []error{ErrStructural, e.Err} }

func cleanError(t models.StatementType, format string, args ...any) error {
	return &StructuralError{Stage: "clean", StatementType: t, Err: fmt.Errorf(format, args...)}
}

func pivotError(prefix string, format string, args ...any) error {
	return &StructuralError{Stage: "pivot", Prefix: prefix, Err: fmt.Errorf(format, args...)}
}
