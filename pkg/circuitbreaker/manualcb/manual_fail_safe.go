package manualcb

import (
	"time"

	fscb "github.com/failsafe-go/failsafe-go/circuitbreaker"
	"github.com/rs/zerolog/log"

	"github.com/Meesho/BharatMLStack/trainset-builder/pkg/metric"
)

// failsafeBreaker wraps a failsafe-go circuit breaker behind the manual
// record/permit interface.
type failsafeBreaker struct {
	breaker fscb.CircuitBreaker[any]
}

func NewManualFailsafeBreaker(config *CBConfig) *failsafeBreaker {
	cb := fscb.Builder[any]().
		WithFailureRateThreshold(uint(config.FailureRateThreshold), uint(config.FailureExecutionThreshold), time.Duration(config.FailureThresholdingPeriodInMS)*time.Millisecond).
		WithSuccessThresholdRatio(uint(config.SuccessRatioThreshold), uint(config.SuccessThresholdingCapacity)).
		WithDelay(time.Duration(config.WithDelayInMS) * time.Millisecond).
		OnStateChanged(func(event fscb.StateChangedEvent) {
			log.Debug().Msgf("Circuit Breaker '%s' changed state from %s to %s", config.CBName, event.OldState, event.NewState)
			metric.Incr("cb_state_changed", []string{"name:" + config.CBName, "from:" + event.OldState.String(), "to:" + event.NewState.String()})
		}).
		Build()
	return &failsafeBreaker{breaker: cb}
}

// IsAllowed returns true if a request is permitted.
func (b *failsafeBreaker) IsAllowed() bool {
	return b.breaker.TryAcquirePermit()
}

// RecordSuccess records a successful execution.
func (b *failsafeBreaker) RecordSuccess() {
	b.breaker.RecordSuccess()
}

// RecordFailure records a failed execution.
func (b *failsafeBreaker) RecordFailure() {
	b.breaker.RecordFailure()
}
