package circuitbreaker

// ManualCircuitBreaker is recorded by hand: callers ask permission before
// an attempt and report the outcome afterwards.
type ManualCircuitBreaker interface {
	IsAllowed() bool
	RecordSuccess()
	RecordFailure()
}
