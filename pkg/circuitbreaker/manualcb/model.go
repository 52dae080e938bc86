package manualcb

// CBConfig parameterizes the failsafe-go breaker. Thresholds follow the
// failsafe semantics of rate-over-window for failures and
// ratio-over-capacity for half-open successes.
type CBConfig struct {
	CBName                        string
	FailureRateThreshold          int
	FailureExecutionThreshold     int
	FailureThresholdingPeriodInMS int
	SuccessRatioThreshold         int
	SuccessThresholdingCapacity   int
	WithDelayInMS                 int
}
