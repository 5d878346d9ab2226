package processor

import "fmt"

// Stage names the pipeline step a ProcessingError came from.
type Stage string

const (
	StageDecode    Stage = "decode"
	StageComposite Stage = "composite"
	StageEncode    Stage = "encode"
)

// ProcessingError is a recoverable failure inside the watermark pipeline.
// Callers at the public boundary turn it into "return the original bytes".
type ProcessingError struct {
	Stage Stage
	Err   error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("watermark %s: %v", e.Stage, e.Err)
}

func (e *ProcessingError) Unwrap() error {
	return e.Err
}
