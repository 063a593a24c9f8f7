package domain

import "fmt"

// ValidationError reports a client-side validation failure attributed to a
// specific input field. It is raised before any network call is made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ChallengeRejectedError reports that the Authority refused to issue a
// challenge for the intent (business rule or upstream error on initiate).
type ChallengeRejectedError struct {
	Message    string
	StatusCode int
}

func (e *ChallengeRejectedError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "failed to initiate transfer"
}

// ExecutionRejectedError reports that the Authority refused to execute the
// transfer (invalid or expired passcode, balance changed concurrently, etc.).
type ExecutionRejectedError struct {
	Message    string
	StatusCode int
}

func (e *ExecutionRejectedError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "failed to execute transfer"
}

// TransportError reports a network-level failure of an Authority call.
// User-facing handling matches the corresponding rejection; it exists as a
// distinct type so transport failures can be logged separately.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
