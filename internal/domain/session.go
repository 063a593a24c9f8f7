package domain

// Step represents the phase of the two-phase transfer workflow
type Step string

const (
	// StepDetails is the first phase: the user is entering transfer details
	StepDetails Step = "details"
	// StepOtp is the second phase: a challenge was issued and the user is entering the passcode
	StepOtp Step = "otp"
)

// Status represents the in-flight status of a transfer session
type Status string

const (
	StatusIdle       Status = "idle"
	StatusProcessing Status = "processing"
	StatusSuccess    Status = "success"
	StatusError      Status = "error"
)

// SessionState is a point-in-time snapshot of a transfer session.
// The session itself is owned exclusively by the transfer orchestrator;
// callers only ever observe copies.
type SessionState struct {
	Step            Step
	Status          Status
	FeedbackMessage string
	StoredIntent    *TransferIntent // set only after a successful initiate
	EnteredOtp      string
}
