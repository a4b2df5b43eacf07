package orchestrator

import "fmt"

// Kind classifies why a check failed. Configuration problems abort the whole
// run; every other kind is scoped to the single check that produced it.
type Kind string

const (
	KindUnavailable   Kind = "unavailable"    // no parseable payload
	KindTimeout       Kind = "timeout"        // deadline elapsed, subprocess killed
	KindSpawnFailed   Kind = "spawn_failed"   // executable missing or not launchable
	KindConfigInvalid Kind = "config_invalid" // bad check type or settings
)

// Phase names the orchestration step a failure occurred in. Normalizing
// never produces a CheckError; failures there degrade to synthetic records.
type Phase string

const (
	PhaseInvoking   Phase = "invoking"
	PhaseExtracting Phase = "extracting"
)

// CheckError is the typed failure returned by RunCheck. Diagnostic carries a
// truncated tail of the subprocess output for display by the report layer.
type CheckError struct {
	Check      string
	Kind       Kind
	Phase      Phase
	Diagnostic string
	Err        error
}

func (e *CheckError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("check %s: %s: %v", e.Check, e.Kind, e.Err)
	}
	return fmt.Sprintf("check %s: %s", e.Check, e.Kind)
}

func (e *CheckError) Unwrap() error {
	return e.Err
}
