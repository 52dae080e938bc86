package circuitbreaker

// Config parameterizes one manual circuit breaker. When Enabled is false a
// pass-through breaker is returned and every request is permitted.
type Config struct {
	Enabled bool   `json:"enabled"`
	Name    string `json:"name"`
	Version int    `json:"version"`

	// FailureRateThreshold is the failure percentage (1-100) that trips the
	// breaker, evaluated over FailureRateWindowInMs once at least
	// FailureRateMinimumWindow executions were recorded.
	FailureRateThreshold     int `json:"failure-rate-threshold"`
	FailureRateMinimumWindow int `json:"failure-rate-minimum-window"`
	FailureRateWindowInMs    int `json:"failure-rate-window-in-ms"`

	// SuccessCountThreshold of the last SuccessCountWindow executions must
	// succeed in half-open state before the breaker closes again.
	SuccessCountThreshold int `json:"success-count-threshold"`
	SuccessCountWindow    int `json:"success-count-window"`

	// WithDelayInMS delays state transitions to let the downstream settle.
	WithDelayInMS int `json:"with-delay-in-ms"`
}

func BuildConfig(serviceName string) *Config {
	return &Config{
		Enabled: true,
		Name:    serviceName,
		Version: 1,
	}
}
