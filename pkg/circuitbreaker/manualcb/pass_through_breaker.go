package manualcb

// passThroughBreaker is used when a circuit breaker is disabled via
// configuration. It allows all requests to pass through.
type passThroughBreaker struct{}

func NewPassThroughBreaker() *passThroughBreaker {
	return &passThroughBreaker{}
}

// IsAllowed always returns true.
func (nb *passThroughBreaker) IsAllowed() bool {
	return true
}

// RecordSuccess does nothing.
func (nb *passThroughBreaker) RecordSuccess() {}

// RecordFailure does nothing.
func (nb *passThroughBreaker) RecordFailure() {}
