package remote

import "fmt"

// Stage names the step of a remote parse that failed.
type Stage string

const (
	// StageGenerate means the generator call itself failed.
	StageGenerate Stage = "generate"

	// StageExtract means the reply contained no balanced JSON span.
	StageExtract Stage = "extract"

	// StageDecode means the JSON span did not decode to an object.
	StageDecode Stage = "decode"
)

// ParseFailure is returned when the remote model is unreachable or its reply
// cannot be reduced to a JSON object. Callers typically fall back to the
// dictionary parser.
type ParseFailure struct {
	Stage Stage

	// Raw is the generator reply, empty for StageGenerate.
	Raw string

	Cause error
}

func (e *ParseFailure) Error() string {
	return fmt.Sprintf("remote parse failed at %s: %v", e.Stage, e.Cause)
}

func (e *ParseFailure) Unwrap() error {
	return e.Cause
}
