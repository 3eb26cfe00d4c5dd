package availability

// ValidationError reports a malformed schedule, duration or query input.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid schedule input: " + e.Reason
}
