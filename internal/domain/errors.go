package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingContent is returned when the html field is absent, empty or not a string.
	ErrMissingContent = errors.New(`required parameter "html" is missing`)
	// ErrRenderingFailure matches every *RenderingFailure via errors.Is.
	ErrRenderingFailure = errors.New("rendering failed")
)

// Stage names the step of a conversion that failed.
type Stage string

const (
	StageAcquire Stage = "acquire"
	StageLoad    Stage = "load"
	StagePrint   Stage = "print"
)

// RenderingFailure wraps the underlying cause of a failed conversion. The
// cause is for operators; callers only see a generic message.
type RenderingFailure struct {
	Stage Stage
	Err   error
}

func (e *RenderingFailure) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrRenderingFailure, e.Stage, e.Err)
}

func (e *RenderingFailure) Unwrap() []error {
	return []error{ErrRenderingFailure, e.Err}
}
