package pipeline

import (
	"fmt"

	"github.com/seenimoa/finratios/pkg/models"
)

// Stage names a pipeline step.
type Stage string

const (
	StageValidate Stage = "validate"
	StageRead     Stage = "read"
	StageClean    Stage = "clean"
	StagePivot    Stage = "pivot"
	StageRatio    Stage = "ratio"
	StageWrite    Stage = "write"
)

// StageError reports the step, statement and company a run failed on.
type StageError struct {
	Stage         Stage
	StatementType models.StatementType // empty for whole-run stages
	Company       string
	Err           error
}

func (e *StageError) Error() string {
	if e.StatementType != "" {
		return fmt.Sprintf("%s %s [%s]: %v", e.Stage, e.StatementType.Label(), e.Company, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Stage, e.Company, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }
